// Package seeder generates random evaluations, posts them to a running
// server and checks the resulting heatmap for consistency.
package seeder

import (
	"errors"
	"time"

	"github.com/okian/diamond/internal/domain/types"
)

// Sentinel kinds for seeding failures.
var (
	ErrInvalidConfig = errors.New("invalid seeder config")
	ErrUnhealthy     = errors.New("service unhealthy")
	ErrVerify        = errors.New("verification failed")
)

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL       string        // Base URL of the service
	Evaluations   int           // Number of evaluations to generate
	Players       int           // Number of distinct players
	Workers       int           // Number of concurrent submitters
	DuplicateRate float64       // Fraction of submissions re-sent with the same ID
	Seed          uint64        // Generator seed; 0 picks one from the clock
	Timeout       time.Duration // HTTP request timeout
	SettleTimeout time.Duration // How long to wait for the heatmap to catch up
	Verbose       bool          // Log every failed submission
}

// Validate checks the run parameters.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.Join(ErrInvalidConfig, errors.New("base url is required"))
	case c.Evaluations < 1:
		return errors.Join(ErrInvalidConfig, errors.New("evaluations must be positive"))
	case c.Players < 1 || c.Players > c.Evaluations:
		return errors.Join(ErrInvalidConfig, errors.New("players must be between 1 and evaluations"))
	case c.Workers < 1:
		return errors.Join(ErrInvalidConfig, errors.New("workers must be positive"))
	case c.DuplicateRate < 0 || c.DuplicateRate > 1:
		return errors.Join(ErrInvalidConfig, errors.New("duplicate rate must be within [0,1]"))
	}
	return nil
}

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Submitted  int
	Created    int
	Duplicates int
	Failed     int
	Players    int
	StartTime  time.Time
	Duration   time.Duration
}

// submitResponse mirrors POST /evaluations.
type submitResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// submission is one planned request; resend marks a deliberate duplicate.
type submission struct {
	req    types.SubmitRequest
	resend bool
}
