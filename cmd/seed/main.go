package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/diamond/internal/seeder"
	"github.com/okian/diamond/pkg/logger"
)

// Default configuration constants.
const (
	defaultEvaluations   = 500
	defaultPlayers       = 40
	defaultWorkers       = 2 // multiplier for runtime.NumCPU()
	defaultDuplicateRate = 0.05
	defaultTimeout       = 10 * time.Second
	defaultSettle        = 30 * time.Second
	defaultRunTimeout    = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		evaluations = flag.Int("evaluations", defaultEvaluations, "Number of evaluations to generate and submit")
		players     = flag.Int("players", defaultPlayers, "Number of distinct players")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		dupRate     = flag.Float64("duplicates", defaultDuplicateRate, "Fraction of submissions re-sent with the same submission_id")
		seed        = flag.Uint64("seed", 0, "Generator seed (0 = time based)")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settle      = flag.Duration("settle", defaultSettle, "How long to wait for the heatmap to reflect the run")
		logFormat   = flag.String("log-format", logger.FormatText, "Log format: text or json")
		verbose     = flag.Bool("verbose", false, "Log every failed submission")
	)
	flag.Parse()

	if err := logger.InitWithOptions(logger.WithFormat(*logFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	stats, err := seeder.Run(ctx, &seeder.Config{
		BaseURL:       *baseURL,
		Evaluations:   *evaluations,
		Players:       *players,
		Workers:       *workers,
		DuplicateRate: *dupRate,
		Seed:          *seed,
		Timeout:       *timeout,
		SettleTimeout: *settle,
		Verbose:       *verbose,
	})
	if err != nil {
		logger.Get().Error(ctx, "seeding failed", logger.Error(err))
		os.Exit(1)
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("created", stats.Created),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("failed", stats.Failed),
		logger.Int("players", stats.Players),
		logger.Duration("duration", stats.Duration),
	)
}
