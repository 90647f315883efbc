// Package repository persists evaluation records.
package repository

import (
	"context"

	"github.com/okian/diamond/internal/domain/model"
)

// Store provides append-only access to evaluations. Records are never
// updated or deleted once inserted.
type Store interface {
	// Insert assigns an ID, fills missing timestamps and stores ev.
	Insert(ctx context.Context, ev model.Evaluation) (model.Evaluation, error)

	// List returns every evaluation, newest first (ID desc on ties).
	List(ctx context.Context) ([]model.Evaluation, error)

	// Recent returns at most limit evaluations, newest first.
	Recent(ctx context.Context, limit int) ([]model.Evaluation, error)

	// Get returns ErrNotFound if id is unknown.
	Get(ctx context.Context, id int64) (model.Evaluation, error)

	// ByPlayer returns the evaluations of an exact player name, newest first.
	ByPlayer(ctx context.Context, name string) ([]model.Evaluation, error)

	Count(ctx context.Context) (int, error)
	Close() error
}
