package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/diamond/internal/domain/model"
)

// MemoryStore is a Store held in process memory. Nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	evals  []model.Evaluation // insertion order
	nextID int64
	closed bool
	opts   options
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore{opts: o}
}

func (s *MemoryStore) Insert(_ context.Context, ev model.Evaluation) (model.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Evaluation{}, ErrClosed
	}

	s.nextID++
	ev.ID = s.nextID
	stampTimes(&ev, s.opts.now)
	ev.Ratings = cloneRatings(ev.Ratings)
	s.evals = append(s.evals, ev)
	return clone(ev), nil
}

func (s *MemoryStore) List(_ context.Context) ([]model.Evaluation, error) {
	return s.filter(func(*model.Evaluation) bool { return true }, 0)
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]model.Evaluation, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	return s.filter(func(*model.Evaluation) bool { return true }, limit)
}

func (s *MemoryStore) Get(_ context.Context, id int64) (model.Evaluation, error) {
	out, err := s.filter(func(e *model.Evaluation) bool { return e.ID == id }, 1)
	if err != nil {
		return model.Evaluation{}, err
	}
	if len(out) == 0 {
		return model.Evaluation{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return out[0], nil
}

func (s *MemoryStore) ByPlayer(_ context.Context, name string) ([]model.Evaluation, error) {
	return s.filter(func(e *model.Evaluation) bool { return e.PlayerName == name }, 0)
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.evals), nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// filter returns matching records newest first; limit <= 0 means all.
func (s *MemoryStore) filter(match func(*model.Evaluation) bool, limit int) ([]model.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	out := []model.Evaluation{}
	for i := range s.evals {
		if match(&s.evals[i]) {
			out = append(out, clone(s.evals[i]))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func clone(ev model.Evaluation) model.Evaluation {
	ev.Ratings = cloneRatings(ev.Ratings)
	return ev
}

func cloneRatings(r []model.Rating) []model.Rating {
	if r == nil {
		return nil
	}
	out := make([]model.Rating, len(r))
	copy(out, r)
	return out
}
