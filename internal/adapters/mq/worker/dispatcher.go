// Package worker fans change notifications out to subscribers from a single
// goroutine.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/diamond/internal/domain/model"
	"github.com/okian/diamond/pkg/logger"
	"github.com/okian/diamond/pkg/metrics"
)

// Handler is invoked once per change, on the dispatcher goroutine.
type Handler func(ctx context.Context, c model.Change)

// Queue defines how the dispatcher receives changes.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Change
}

type subscriber struct {
	id uint64
	fn Handler
}

// Subscription is the cancellable handle returned by Subscribe.
type Subscription struct {
	once sync.Once
	d    *Dispatcher
	id   uint64
}

// Cancel removes the subscriber. It is safe to call more than once and
// from inside the handler itself.
func (s *Subscription) Cancel() {
	s.once.Do(func() { s.d.remove(s.id) })
}

// Dispatcher delivers each dequeued change to every subscriber in
// registration order.
type Dispatcher struct {
	queue  Queue
	name   string
	logger logger.Logger

	mu     sync.RWMutex
	subs   []subscriber
	nextID uint64

	stopOnce sync.Once
	shutdown chan struct{}
	done     chan struct{}
}

// NewDispatcher creates a dispatcher reading from q.
func NewDispatcher(q Queue, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		queue:    q,
		name:     "dispatcher",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logger.Get().Named(d.name)
	}
	return d
}

// Subscribe registers fn for every future change.
func (d *Dispatcher) Subscribe(fn Handler) *Subscription {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.subs = append(d.subs, subscriber{id: id, fn: fn})
	n := len(d.subs)
	d.mu.Unlock()

	metrics.UpdateSubscriberCount(n)
	return &Subscription{d: d, id: id}
}

func (d *Dispatcher) remove(id uint64) {
	d.mu.Lock()
	for i, s := range d.subs {
		if s.id == id {
			d.subs = append(d.subs[:i:i], d.subs[i+1:]...)
			break
		}
	}
	n := len(d.subs)
	d.mu.Unlock()

	metrics.UpdateSubscriberCount(n)
}

// Subscribers returns the number of registered subscribers.
func (d *Dispatcher) Subscribers() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs)
}

// Run dispatches until ctx is done, Shutdown is called or the queue closes.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	defer d.logger.Debug(ctx, "dispatch loop stopped", logger.String("dispatcher", d.name))

	changes := d.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.shutdown:
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			d.dispatch(ctx, c)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, c model.Change) {
	start := time.Now()
	defer func() { metrics.RecordDispatchLatency(metrics.Since(start)) }()

	d.mu.RLock()
	subs := make([]subscriber, len(d.subs))
	copy(subs, d.subs)
	d.mu.RUnlock()

	for _, s := range subs {
		d.deliver(ctx, s, c)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, s subscriber, c model.Change) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordSubscriberPanic()
			d.logger.Error(ctx, "subscriber panicked",
				logger.Any("subscriber", s.id),
				logger.Int64("evaluationID", c.EvaluationID),
				logger.Any("panic", r),
			)
		}
	}()
	s.fn(ctx, c)
}

// Shutdown stops the dispatch loop and waits for the in-flight change.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.stopOnce.Do(func() { close(d.shutdown) })

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		d.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
