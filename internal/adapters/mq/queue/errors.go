package queue

import "errors"

// Sentinel kinds for enqueue failures.
var (
	ErrFull   = errors.New("change queue full")
	ErrClosed = errors.New("change queue closed")
)
