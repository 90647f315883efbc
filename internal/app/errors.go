package service

import (
	"fmt"

	"github.com/okian/diamond/internal/domain/model"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted     = fmt.Errorf("service not started: %w", model.ErrUnavailable)
	ErrPlayerNotFound = fmt.Errorf("player %w", model.ErrNotFound)
)
