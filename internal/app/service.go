// Package service wires storage, deduplication and change notification
// around the scoring core and serves the views the HTTP adapters need.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	changequeue "github.com/okian/diamond/internal/adapters/mq/queue"
	"github.com/okian/diamond/internal/adapters/mq/worker"
	"github.com/okian/diamond/internal/adapters/repository"
	"github.com/okian/diamond/internal/domain/dedupe"
	"github.com/okian/diamond/internal/domain/model"
	"github.com/okian/diamond/internal/domain/scoring"
	"github.com/okian/diamond/internal/domain/types"
	"github.com/okian/diamond/pkg/logger"
	"github.com/okian/diamond/pkg/metrics"
)

// SubmitRequest is a coach's form post.
type SubmitRequest = types.SubmitRequest

// Service implements the API dependencies for the evaluation system.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	deduper    dedupe.Deduper
	queue      *changequeue.InMemoryQueue
	dispatcher *worker.Dispatcher
	self       *worker.Subscription

	snapshot  atomic.Pointer[Snapshot]
	rebuildMu sync.Mutex

	// pending holds submission IDs whose insert is in flight.
	pendingMu sync.Mutex
	pending   map[string]chan struct{}

	queueSize   int
	dedupeSize  int
	recentLimit int
	now         func() time.Time

	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	logger logger.Logger
}

// New constructs a Service over store with default configuration.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		queueSize:   1024,
		dedupeSize:  10_000,
		recentLimit: 20,
		now:         time.Now,
		pending:     make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(newSnapshot(nil, time.Time{}))
	return s
}

// Start builds the first snapshot and begins dispatching changes.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = changequeue.NewInMemoryQueue(changequeue.WithCapacity(s.queueSize))
	s.dispatcher = worker.NewDispatcher(s.queue, worker.WithName("changes"), worker.WithLogger(s.logger.Named("changes")))

	if err := s.Rebuild(ctx); err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}

	// Registered first so later subscribers observe the rebuilt snapshot.
	s.self = s.dispatcher.Subscribe(s.onChange)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		s.dispatcher.Run(runCtx)
	}()

	s.started = true
	snap := s.Snapshot()
	s.logger.Info(ctx, "evaluation service started",
		logger.Int("evaluations", len(snap.Evaluations)),
		logger.Int("players", len(snap.Players)),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop drains pending changes and stops the dispatcher. The store is owned
// by the caller and left open.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping evaluation service...")

	_ = s.queue.Close()
	var err error
	select {
	case <-s.done:
	case <-ctx.Done():
		err = s.dispatcher.Shutdown(ctx)
	}
	s.cancel()
	s.self.Cancel()

	s.started = false
	s.logger.Info(ctx, "evaluation service stopped")
	return err
}

func (s *Service) onChange(ctx context.Context, c model.Change) {
	// A snapshot listed after the change already contains it.
	if s.Snapshot().BuiltAt.After(c.At) {
		return
	}
	if err := s.Rebuild(ctx); err != nil {
		s.logger.Error(ctx, "snapshot rebuild failed",
			logger.Int64("evaluationID", c.EvaluationID),
			logger.Error(err),
		)
	}
}

// Rebuild refetches every evaluation and publishes a fresh snapshot.
func (s *Service) Rebuild(ctx context.Context) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	start := time.Now()
	evals, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	snap := newSnapshot(evals, start)
	s.snapshot.Store(snap)

	metrics.RecordSnapshotRebuild(metrics.Since(start))
	metrics.UpdateEvaluationsTotal(len(snap.Evaluations))
	metrics.UpdatePlayersTotal(len(snap.Players))
	return nil
}

// Snapshot returns the most recently published snapshot. Never nil.
func (s *Service) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Submit validates and stores one evaluation. The bool result reports a
// repeated SubmissionID, in which case nothing is stored.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (model.Evaluation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.Evaluation{}, false, ErrNotStarted
	}

	if req.SubmissionID != "" {
		release, dup, err := s.claim(ctx, req.SubmissionID)
		if err != nil {
			return model.Evaluation{}, false, err
		}
		if dup {
			metrics.RecordSubmissionDuplicate()
			s.logger.Debug(ctx, "duplicate submission", logger.String("submissionID", req.SubmissionID))
			return model.Evaluation{}, true, nil
		}
		defer release()
	}

	ev, err := s.build(req)
	if err == nil {
		ev, err = s.store.Insert(ctx, ev)
		if err != nil {
			metrics.RecordSubmissionRejected("store")
		}
	}
	if err != nil {
		if req.SubmissionID != "" {
			s.deduper.Unrecord(ctx, req.SubmissionID)
		}
		return model.Evaluation{}, false, err
	}
	metrics.RecordSubmissionAccepted()

	change := model.Change{Kind: model.ChangeInserted, EvaluationID: ev.ID, PlayerName: ev.PlayerName, At: time.Now()}
	if err := s.queue.Enqueue(ctx, change); err != nil {
		// A full queue still holds changes whose rebuild will refetch this
		// record; only subscribers miss the individual notification.
		s.logger.Warn(ctx, "change notification dropped",
			logger.Int64("evaluationID", ev.ID),
			logger.Error(err),
		)
	}

	s.logger.Info(ctx, "evaluation stored",
		logger.Int64("id", ev.ID),
		logger.String("player", ev.PlayerName),
		logger.String("type", ev.Type.String()),
		logger.Float64("average", ev.AverageScore),
	)
	return ev, false, nil
}

// claim records id unless it was already stored. While another submission
// with the same id is in flight, claim waits for it: a failed attempt
// unrecords the id, so the waiter gets to store its own copy.
func (s *Service) claim(ctx context.Context, id string) (release func(), dup bool, err error) {
	for {
		s.pendingMu.Lock()
		busy, ok := s.pending[id]
		if !ok {
			break
		}
		s.pendingMu.Unlock()
		select {
		case <-busy:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
	defer s.pendingMu.Unlock()

	if s.deduper.SeenAndRecord(ctx, id) {
		return nil, true, nil
	}
	done := make(chan struct{})
	s.pending[id] = done
	return func() {
		s.pendingMu.Lock()
		delete(s.pending, id)
		s.pendingMu.Unlock()
		close(done)
	}, false, nil
}

func (s *Service) build(req SubmitRequest) (model.Evaluation, error) {
	typ, err := model.ParseType(req.Type)
	if err != nil {
		metrics.RecordSubmissionRejected("unknown_type")
		return model.Evaluation{}, err
	}
	sub, err := model.DecodeSubmission(typ, req.Fields)
	if err != nil {
		metrics.RecordSubmissionRejected("unknown_type")
		return model.Evaluation{}, err
	}
	ev, err := model.NewEvaluation(req.PlayerName, req.EvaluatorName, req.Notes, sub, s.now())
	if err != nil {
		metrics.RecordSubmissionRejected("validation")
		return model.Evaluation{}, err
	}
	return ev, nil
}

// FetchAll returns every stored evaluation, newest first.
func (s *Service) FetchAll(ctx context.Context) ([]model.Evaluation, error) {
	return s.store.List(ctx)
}

// Subscribe registers fn for every change after the snapshot is rebuilt.
// The returned cancel func is safe to call more than once.
func (s *Service) Subscribe(fn func(ctx context.Context, c model.Change)) (cancel func(), err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.dispatcher.Subscribe(fn).Cancel, nil
}

// Players returns every summary in default name order.
func (s *Service) Players(_ context.Context) []scoring.PlayerSummary {
	return s.Snapshot().Players
}

// Ranges returns the current colour ranges.
func (s *Service) Ranges(_ context.Context) scoring.ScoreRanges {
	return s.Snapshot().Ranges
}

// Heatmap returns the coloured table sorted by field and dir.
func (s *Service) Heatmap(_ context.Context, field scoring.SortField, dir scoring.Direction) types.Heatmap {
	snap := s.Snapshot()
	return types.NewHeatmap(scoring.Sort(snap.Players, field, dir), snap.Ranges, field, dir)
}

// Player returns the profile of an exact name.
func (s *Service) Player(_ context.Context, name string) (types.Profile, error) {
	snap := s.Snapshot()
	p, ok := snap.Player(name)
	if !ok {
		return types.Profile{}, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
	}
	return types.Profile{Summary: p, Row: types.NewRow(&p, snap.Ranges)}, nil
}

// History reads a player's evaluations from the store, newest first. Unlike
// Player it sees records the snapshot has not picked up yet.
func (s *Service) History(ctx context.Context, name string) ([]model.Evaluation, error) {
	evals, err := s.store.ByPlayer(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(evals) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
	}
	return evals, nil
}

// Recent returns the newest evaluations; limit <= 0 uses the default.
func (s *Service) Recent(ctx context.Context, limit int) ([]model.Evaluation, error) {
	if limit <= 0 {
		limit = s.recentLimit
	}
	return s.store.Recent(ctx, limit)
}

// Evaluation returns one stored record.
func (s *Service) Evaluation(ctx context.Context, id int64) (model.Evaluation, error) {
	return s.store.Get(ctx, id)
}

// RecentLimit is the default feed length.
func (s *Service) RecentLimit() int { return s.recentLimit }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.Snapshot()
	stats := map[string]interface{}{
		"started":     s.started,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"evaluations": len(snap.Evaluations),
		"players":     len(snap.Players),
	}
	if !snap.BuiltAt.IsZero() {
		stats["snapshotBuiltAt"] = snap.BuiltAt.UTC().Format(time.RFC3339Nano)
	}

	if s.started {
		ctx := context.Background()
		stats["queueLength"] = s.queue.Len(ctx)
		stats["subscribers"] = s.dispatcher.Subscribers()
		stats["dedupeEntries"] = s.deduper.Size()
		if n, err := s.store.Count(ctx); err == nil {
			stats["storedEvaluations"] = n
		} else if !errors.Is(err, repository.ErrClosed) {
			s.logger.Warn(ctx, "count failed", logger.Error(err))
		}
	}
	return stats
}
