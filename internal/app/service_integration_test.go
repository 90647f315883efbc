package service_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/okian/diamond/internal/adapters/repository"
	service "github.com/okian/diamond/internal/app"
	"github.com/okian/diamond/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceWithSQLite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping sqlite integration test in short mode")
	}

	Convey("Given a service backed by a sqlite file", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "diamond.db")
		store, err := repository.OpenSQLite(ctx, path)
		So(err, ShouldBeNil)

		svc := service.New(store, service.WithQueueSize(8))
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When many coaches submit concurrently", func() {
			const players, perPlayer = 10, 5
			var wg sync.WaitGroup
			errs := make(chan error, players*perPlayer)
			for p := 0; p < players; p++ {
				for i := 0; i < perPlayer; i++ {
					wg.Add(1)
					go func(p, i int) {
						defer wg.Done()
						req := pitching(fmt.Sprintf("Player %02d", p), float64(60+p), float64(2+i), 5)
						req.SubmissionID = fmt.Sprintf("p%d-e%d", p, i)
						if _, _, err := svc.Submit(ctx, req); err != nil {
							errs <- err
						}
					}(p, i)
				}
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				So(err, ShouldBeNil)
			}

			So(svc.Stop(ctx), ShouldBeNil)
			So(svc.Rebuild(ctx), ShouldBeNil)

			Convey("Then every record is stored and aggregated", func() {
				snap := svc.Snapshot()
				So(snap.Evaluations, ShouldHaveLength, players*perPlayer)
				So(snap.Players, ShouldHaveLength, players)
				for _, p := range snap.Players {
					So(p.Evaluations, ShouldHaveLength, perPlayer)
					So(p.Overall, ShouldAlmostEqual, 4.5, 1e-9)
				}
				So(snap.Ranges.Velocity.Min, ShouldEqual, 60.0)
				So(snap.Ranges.Velocity.Max, ShouldEqual, 69.0)

				h := svc.Heatmap(ctx, scoring.FieldVelocity, scoring.DirDesc)
				So(h.Rows[0].Name, ShouldEqual, "Player 09")
				So(h.Rows[0].Velocity.Bucket, ShouldEqual, scoring.Excellent)
			})

			Convey("And the data survives a reopen", func() {
				So(store.Close(), ShouldBeNil)
				reopened, err := repository.OpenSQLite(ctx, path)
				So(err, ShouldBeNil)
				defer reopened.Close()

				again := service.New(reopened)
				So(again.Start(ctx), ShouldBeNil)
				defer again.Stop(ctx)
				So(again.Snapshot().Evaluations, ShouldHaveLength, players*perPlayer)
			})
		})

		Reset(func() {
			_ = svc.Stop(ctx)
			_ = store.Close()
		})
	})
}
