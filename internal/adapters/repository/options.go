package repository

import "time"

// Option configures a store.
type Option func(*options)

type options struct {
	now         func() time.Time
	busyTimeout time.Duration
}

func defaultOptions() options {
	return options{
		now:         time.Now,
		busyTimeout: 5 * time.Second,
	}
}

// WithClock overrides the clock used for missing timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithBusyTimeout sets how long sqlite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}
