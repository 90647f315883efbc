package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/diamond/internal/domain/scoring"
	"github.com/okian/diamond/internal/domain/types"
)

// waitForPlayers polls /heatmap until it lists at least want players. The
// snapshot is rebuilt asynchronously after each insert.
func waitForPlayers(ctx context.Context, c *client, want int, timeout time.Duration) (types.Heatmap, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var h types.Heatmap
	for {
		if err := c.get(ctx, "/heatmap", &h); err == nil && len(h.Rows) >= want {
			return h, nil
		}
		select {
		case <-ctx.Done():
			return h, fmt.Errorf("%w: heatmap has %d of %d players: %w", ErrVerify, len(h.Rows), want, ctx.Err())
		case <-time.After(settlePoll):
		}
	}
}

// verifyHeatmap checks one row per generated player and that every scored
// value lies inside the range it was coloured against.
func verifyHeatmap(h types.Heatmap, players []string) error {
	seen := make(map[string]bool, len(h.Rows))
	for i := range h.Rows {
		row := &h.Rows[i]
		if seen[row.Name] {
			return fmt.Errorf("%w: duplicate row for %q", ErrVerify, row.Name)
		}
		seen[row.Name] = true

		if err := inRange(row.Name, "overall", row.Overall, h.Ranges.Score); err != nil {
			return err
		}
		if err := inRange(row.Name, "velocity", row.Velocity, h.Ranges.Velocity); err != nil {
			return err
		}
		for t, c := range row.Categories {
			if err := inRange(row.Name, t.String(), c, h.Ranges.Score); err != nil {
				return err
			}
		}
	}
	for _, p := range players {
		if !seen[p] {
			return fmt.Errorf("%w: no row for %q", ErrVerify, p)
		}
	}
	return nil
}

func inRange(player, column string, c types.Cell, r scoring.Range) error {
	if c.Missing() {
		return nil
	}
	if c.Value < r.Min || c.Value > r.Max {
		return fmt.Errorf("%w: %s %s %.3f outside [%.3f, %.3f]", ErrVerify, player, column, c.Value, r.Min, r.Max)
	}
	return nil
}
