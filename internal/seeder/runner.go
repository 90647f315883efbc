package seeder

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/diamond/pkg/logger"
)

const settlePoll = 100 * time.Millisecond

// Run seeds the service and verifies the heatmap it serves afterwards.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Get().Named("seeder")
	stats := &Stats{StartTime: time.Now()}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(stats.StartTime.UnixNano())
	}
	log.Info(ctx, "starting seeding run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("evaluations", cfg.Evaluations),
		logger.Int("players", cfg.Players),
		logger.Int("workers", cfg.Workers),
		logger.Any("seed", seed),
	)

	c := newClient(cfg.BaseURL, cfg.Timeout)
	if err := c.get(ctx, "/healthz", nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}

	gen := NewGenerator(seed)
	players := gen.PlayerNames(cfg.Players)
	plan := gen.Plan(cfg, players)
	stats.Generated = len(plan)

	submitAll(ctx, cfg, c, plan, stats, log)
	log.Info(ctx, "submission completed",
		logger.Int("created", stats.Created),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("failed", stats.Failed),
	)

	baseline, err := waitForPlayers(ctx, c, len(players), cfg.SettleTimeout)
	if err != nil {
		return stats, err
	}
	stats.Players = len(baseline.Rows)
	if err := verifyHeatmap(baseline, players); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "seeding verified",
		logger.Int("players", stats.Players),
		logger.Duration("duration", stats.Duration),
	)
	return stats, nil
}

// submitAll fans the plan out over cfg.Workers goroutines.
func submitAll(ctx context.Context, cfg *Config, c *client, plan []submission, stats *Stats, log logger.Logger) {
	var submitted, created, duplicates, failed atomic.Int64

	work := make(chan submission, cfg.Workers*2)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range work {
				submitted.Add(1)
				out, err := c.submit(ctx, s.req)
				switch out {
				case outcomeCreated:
					created.Add(1)
				case outcomeDuplicate:
					duplicates.Add(1)
				default:
					failed.Add(1)
					if cfg.Verbose {
						log.Warn(ctx, "submission failed",
							logger.String("submissionID", s.req.SubmissionID),
							logger.Error(err),
						)
					}
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for _, s := range plan {
			select {
			case <-ctx.Done():
				return
			case work <- s:
			}
		}
	}()
	wg.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Created = int(created.Load())
	stats.Duplicates = int(duplicates.Load())
	stats.Failed = int(failed.Load())
}
