package repository

import (
	"errors"
	"fmt"

	"github.com/okian/diamond/internal/domain/model"
)

// Sentinel kinds for store errors.
var (
	ErrNotFound     = fmt.Errorf("evaluation %w", model.ErrNotFound)
	ErrInvalidLimit = errors.New("invalid limit")
	ErrClosed       = errors.New("store closed")
	ErrMigrate      = errors.New("migration failed")
)
