package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/diamond/internal/adapters/repository"
	service "github.com/okian/diamond/internal/app"
	"github.com/okian/diamond/internal/domain/model"
	"github.com/okian/diamond/internal/domain/scoring"
	"github.com/okian/diamond/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func pitching(player string, mph, mechanics, control float64) service.SubmitRequest {
	return service.SubmitRequest{
		PlayerName:    player,
		EvaluatorName: "Coach Kim",
		Type:          "pitching",
		Fields:        model.Fields{"velocity": mph, "mechanics": mechanics, "control": control},
	}
}

func batting(player string, v float64) service.SubmitRequest {
	return service.SubmitRequest{
		PlayerName:    player,
		EvaluatorName: "Coach Lee",
		Type:          "batting",
		Fields:        model.Fields{"mechanics": v, "contact": v, "power": v},
	}
}

// waitForChange blocks until the next change has been applied to the snapshot.
func waitForChange(svc *service.Service) (wait func()) {
	ch := make(chan model.Change, 16)
	cancel, err := svc.Subscribe(func(_ context.Context, c model.Change) { ch <- c })
	So(err, ShouldBeNil)
	return func() {
		defer cancel()
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			So("timed out waiting for change", ShouldBeEmpty)
		}
	}
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := service.New(repository.NewMemoryStore())
		ctx := context.Background()

		_, _, err := svc.Submit(ctx, batting("Alex", 5))
		So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		So(errors.Is(err, model.ErrUnavailable), ShouldBeTrue)

		_, err = svc.Subscribe(func(context.Context, model.Change) {})
		So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)

		So(svc.Snapshot(), ShouldNotBeNil)
		So(svc.Players(ctx), ShouldBeEmpty)
		So(svc.Ranges(ctx), ShouldResemble, scoring.ScoreRanges{
			Score:    scoring.DefaultScoreRange,
			Velocity: scoring.DefaultVelocityRange,
		})
		So(svc.Stop(ctx), ShouldBeNil)
	})

	Convey("Given a store with existing evaluations", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		ev, err := model.NewEvaluation("Bea", "Coach", "", model.BattingForm{Mechanics: 6, Contact: 6, Power: 6}, time.Now())
		So(err, ShouldBeNil)
		_, err = store.Insert(ctx, ev)
		So(err, ShouldBeNil)

		svc := service.New(store)
		So(svc.Start(ctx), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)

		Convey("Then the first snapshot is built on start", func() {
			snap := svc.Snapshot()
			So(snap.Evaluations, ShouldHaveLength, 1)
			So(snap.Players, ShouldHaveLength, 1)
			So(snap.Players[0].Name, ShouldEqual, "Bea")
			So(snap.BuiltAt.IsZero(), ShouldBeFalse)
		})
	})
}

func TestServiceSubmit(t *testing.T) {
	Convey("Given a running service", t, func() {
		ctx := context.Background()
		svc := service.New(repository.NewMemoryStore(), service.WithRecentLimit(2))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)

		Convey("When a valid pitching form is submitted", func() {
			wait := waitForChange(svc)
			ev, dup, err := svc.Submit(ctx, pitching(" Alex ", 70, 6, 4))
			So(err, ShouldBeNil)
			So(dup, ShouldBeFalse)
			wait()

			Convey("Then the stored record is returned", func() {
				So(ev.ID, ShouldBeGreaterThan, 0)
				So(ev.PlayerName, ShouldEqual, "Alex")
				So(ev.AverageScore, ShouldEqual, 5.0)
				So(ev.Velocity, ShouldEqual, 70.0)
			})

			Convey("And the snapshot reflects it", func() {
				profile, err := svc.Player(ctx, "Alex")
				So(err, ShouldBeNil)
				So(profile.Summary.Score(model.Pitching), ShouldEqual, 5.0)
				So(profile.Summary.Velocity, ShouldEqual, 70.0)
				So(profile.Row.Name, ShouldEqual, "Alex")

				got, err := svc.Evaluation(ctx, ev.ID)
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, ev.ID)

				history, err := svc.History(ctx, "Alex")
				So(err, ShouldBeNil)
				So(history, ShouldHaveLength, 1)
				So(history[0].ID, ShouldEqual, ev.ID)
			})
		})

		Convey("When a submission ID repeats", func() {
			req := batting("Sam", 5)
			req.SubmissionID = uuid.NewString()

			wait := waitForChange(svc)
			_, dup, err := svc.Submit(ctx, req)
			So(err, ShouldBeNil)
			So(dup, ShouldBeFalse)
			wait()

			_, dup, err = svc.Submit(ctx, req)
			So(err, ShouldBeNil)
			So(dup, ShouldBeTrue)

			Convey("Then only one record is stored", func() {
				all, err := svc.FetchAll(ctx)
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 1)
			})
		})

		Convey("When the submission is invalid", func() {
			req := batting("Sam", 9)
			req.SubmissionID = "retry-me"
			_, _, err := svc.Submit(ctx, req)
			So(errors.Is(err, model.ErrInvalidSubmission), ShouldBeTrue)

			_, _, err = svc.Submit(ctx, service.SubmitRequest{PlayerName: "Sam", EvaluatorName: "C", Type: "bowling"})
			So(errors.Is(err, model.ErrUnknownType), ShouldBeTrue)

			Convey("Then the ID may be retried with a corrected form", func() {
				req.Fields = model.Fields{"mechanics": 5, "contact": 5, "power": 5}
				_, dup, err := svc.Submit(ctx, req)
				So(err, ShouldBeNil)
				So(dup, ShouldBeFalse)
			})
		})

		Convey("When several players are evaluated", func() {
			for _, req := range []service.SubmitRequest{
				batting("Cole", 4), batting("alex", 8), pitching("Bea", 80, 6, 6),
			} {
				wait := waitForChange(svc)
				_, _, err := svc.Submit(ctx, req)
				So(err, ShouldBeNil)
				wait()
			}

			Convey("Then players are listed by name", func() {
				names := []string{}
				for _, p := range svc.Players(ctx) {
					names = append(names, p.Name)
				}
				So(names, ShouldResemble, []string{"alex", "Bea", "Cole"})
			})

			Convey("And the heatmap sorts and colours rows", func() {
				h := svc.Heatmap(ctx, scoring.FieldBatting, scoring.DirDesc)
				So(h.Rows, ShouldHaveLength, 3)
				So(h.Rows[0].Name, ShouldEqual, "alex")
				So(h.Rows[0].Categories[model.Batting].Bucket, ShouldEqual, scoring.Excellent)
				So(h.Rows[1].Name, ShouldEqual, "Cole")
				So(h.Rows[2].Categories[model.Batting].Missing(), ShouldBeTrue)
				So(h.Sort, ShouldEqual, scoring.FieldBatting)
			})

			Convey("And ranges span the population", func() {
				r := svc.Ranges(ctx)
				So(r.Score.Min, ShouldEqual, 4.0)
				So(r.Score.Max, ShouldEqual, 8.0)
				So(r.Velocity.Min, ShouldEqual, 80.0)
				So(r.Velocity.Max, ShouldEqual, 80.0)
			})

			Convey("And the recent feed honours the default limit", func() {
				recent, err := svc.Recent(ctx, 0)
				So(err, ShouldBeNil)
				So(recent, ShouldHaveLength, 2)
				So(recent[0].PlayerName, ShouldEqual, "Bea")
				So(svc.RecentLimit(), ShouldEqual, 2)
			})

			Convey("And stats report the population", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["evaluations"], ShouldEqual, 3)
				So(stats["players"], ShouldEqual, 3)
				So(stats["storedEvaluations"], ShouldEqual, 3)
			})
		})

		Convey("When asking for an unknown player", func() {
			_, err := svc.Player(ctx, "Nobody")
			So(errors.Is(err, service.ErrPlayerNotFound), ShouldBeTrue)
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)

			_, err = svc.History(ctx, "Nobody")
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)

			_, err = svc.Evaluation(ctx, 999)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestServiceSubscribers(t *testing.T) {
	Convey("Given a subscriber that panics", t, func() {
		ctx := context.Background()
		svc := service.New(repository.NewMemoryStore())
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)

		cancel, err := svc.Subscribe(func(context.Context, model.Change) { panic("boom") })
		So(err, ShouldBeNil)
		defer cancel()

		Convey("Then other subscribers still receive the change", func() {
			wait := waitForChange(svc)
			_, _, err := svc.Submit(ctx, batting("Alex", 5))
			So(err, ShouldBeNil)
			wait()
			So(svc.Players(ctx), ShouldHaveLength, 1)
		})
	})
}

// failFirstInsert blocks the first Insert until fail delivers its outcome.
type failFirstInsert struct {
	*repository.MemoryStore
	calls   atomic.Int32
	entered chan struct{}
	fail    chan error
}

func (f *failFirstInsert) Insert(ctx context.Context, ev model.Evaluation) (model.Evaluation, error) {
	if f.calls.Add(1) == 1 {
		close(f.entered)
		if err := <-f.fail; err != nil {
			return model.Evaluation{}, err
		}
	}
	return f.MemoryStore.Insert(ctx, ev)
}

type submitResult struct {
	ev  model.Evaluation
	dup bool
	err error
}

func TestServiceConcurrentRetry(t *testing.T) {
	Convey("Given a store whose first insert fails after a delay", t, func() {
		ctx := context.Background()
		store := &failFirstInsert{
			MemoryStore: repository.NewMemoryStore(),
			entered:     make(chan struct{}),
			fail:        make(chan error, 1),
		}
		svc := service.New(store)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)

		req := batting("Alex", 6)
		req.SubmissionID = uuid.NewString()

		Convey("When a retry with the same ID arrives while the first is in flight", func() {
			first := make(chan error, 1)
			go func() {
				_, _, err := svc.Submit(ctx, req)
				first <- err
			}()
			<-store.entered

			second := make(chan submitResult, 1)
			go func() {
				ev, dup, err := svc.Submit(ctx, req)
				second <- submitResult{ev: ev, dup: dup, err: err}
			}()
			time.Sleep(50 * time.Millisecond)
			store.fail <- errors.New("disk full")

			Convey("Then the retry is stored instead of reported as a duplicate", func() {
				So(<-first, ShouldNotBeNil)

				var got submitResult
				select {
				case got = <-second:
				case <-time.After(2 * time.Second):
					So("timed out waiting for retry", ShouldBeEmpty)
				}
				So(got.err, ShouldBeNil)
				So(got.dup, ShouldBeFalse)
				So(got.ev.ID, ShouldBeGreaterThan, 0)

				all, err := svc.FetchAll(ctx)
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 1)

				_, dup, err := svc.Submit(ctx, req)
				So(err, ShouldBeNil)
				So(dup, ShouldBeTrue)
			})
		})
	})
}

func TestServiceQueueFull(t *testing.T) {
	Convey("Given a one-slot change queue and a stalled subscriber", t, func() {
		ctx := context.Background()
		svc := service.New(repository.NewMemoryStore(), service.WithQueueSize(1))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)

		stalled := make(chan struct{})
		resume := make(chan struct{})
		unstall := sync.OnceFunc(func() { close(resume) })
		defer unstall()

		var once sync.Once
		cancel, err := svc.Subscribe(func(context.Context, model.Change) {
			once.Do(func() {
				close(stalled)
				<-resume
			})
		})
		So(err, ShouldBeNil)
		defer cancel()

		_, _, err = svc.Submit(ctx, batting("Alex", 5))
		So(err, ShouldBeNil)
		select {
		case <-stalled:
		case <-time.After(2 * time.Second):
			So("timed out waiting for dispatch", ShouldBeEmpty)
		}

		Convey("When more submissions arrive than the queue holds", func() {
			_, _, err := svc.Submit(ctx, batting("Bea", 6))
			So(err, ShouldBeNil)
			dropped, dup, err := svc.Submit(ctx, batting("Cole", 7))

			Convey("Then the dropped notification does not fail the submit", func() {
				So(err, ShouldBeNil)
				So(dup, ShouldBeFalse)
				So(dropped.ID, ShouldBeGreaterThan, 0)

				all, err := svc.FetchAll(ctx)
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 3)
				So(svc.Snapshot().Evaluations, ShouldHaveLength, 1)
			})

			Convey("And the next change brings the snapshot up to date", func() {
				unstall()
				deadline := time.Now().Add(2 * time.Second)
				for len(svc.Snapshot().Evaluations) < 3 && time.Now().Before(deadline) {
					time.Sleep(10 * time.Millisecond)
				}
				So(svc.Snapshot().Evaluations, ShouldHaveLength, 3)
				_, err := svc.Player(ctx, "Cole")
				So(err, ShouldBeNil)
			})
		})
	})
}
