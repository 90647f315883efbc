// Package config defines service configuration and its layered loader.
package config

import (
	"context"
	"time"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver picks the evaluation store: sqlite or memory.
	StoreDriver string `koanf:"store_driver"`

	// DBPath is the sqlite database file.
	DBPath string `koanf:"db_path"`

	// BusyTimeout is how long sqlite waits on a locked database.
	BusyTimeout time.Duration `koanf:"busy_timeout"`

	// QueueSize bounds the change notification queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize caps the number of remembered submission IDs.
	DedupeSize int `koanf:"dedupe_size"`

	// RecentLimit is the default length of the recent feed and
	// MaxRecentLimit caps GET /evaluations?limit.
	RecentLimit    int `koanf:"recent_limit"`
	MaxRecentLimit int `koanf:"max_recent_limit"`

	// TeamName is shown in page titles.
	TeamName string `koanf:"team_name"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New returns a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		StoreDriver:     DriverSQLite,
		DBPath:          "diamond.db",
		BusyTimeout:     5 * time.Second,
		QueueSize:       1024,
		DedupeSize:      10_000,
		RecentLimit:     20,
		MaxRecentLimit:  200,
		TeamName:        "Diamond",
		ShutdownTimeout: 10 * time.Second,
	}
}
