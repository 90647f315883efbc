package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrUnknownType       = errors.New("unknown evaluation type")
	ErrInvalidSubmission = errors.New("invalid submission")

	// ErrNotFound is wrapped by every lookup miss, whichever layer reports it.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable marks a backend that cannot serve requests right now.
	ErrUnavailable = errors.New("unavailable")
)
