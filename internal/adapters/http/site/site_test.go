package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/diamond/internal/domain/model"
	"github.com/okian/diamond/internal/domain/scoring"
	"github.com/okian/diamond/internal/domain/types"
	"github.com/okian/diamond/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeDeps struct {
	evals     []model.Evaluation
	recentErr error
}

func (f *fakeDeps) summaries() ([]scoring.PlayerSummary, scoring.ScoreRanges) {
	s := scoring.Aggregate(f.evals)
	return s, scoring.ComputeRanges(s)
}

func (f *fakeDeps) Heatmap(_ context.Context, field scoring.SortField, dir scoring.Direction) types.Heatmap {
	s, r := f.summaries()
	return types.NewHeatmap(scoring.Sort(s, field, dir), r, field, dir)
}

func (f *fakeDeps) Player(_ context.Context, name string) (types.Profile, error) {
	s, r := f.summaries()
	for i := range s {
		if s[i].Name == name {
			return types.Profile{Summary: s[i], Row: types.NewRow(&s[i], r)}, nil
		}
	}
	return types.Profile{}, fmt.Errorf("player %w", model.ErrNotFound)
}

func (f *fakeDeps) Recent(_ context.Context, limit int) ([]model.Evaluation, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	if len(f.evals) < limit {
		limit = len(f.evals)
	}
	return f.evals[:limit], nil
}

func evaluation(id int64, player string, sub model.Submission, notes string) model.Evaluation {
	ev, err := model.NewEvaluation(player, "Coach Kim", notes, sub, time.Date(2025, 4, 12, 12, 0, 0, 0, time.UTC))
	if err != nil {
		panic(err)
	}
	ev.ID = id
	return ev
}

func fixture() *fakeDeps {
	return &fakeDeps{evals: []model.Evaluation{
		evaluation(3, "Sam <Jr>", model.PitchingForm{MPH: 70, Mechanics: 4, Control: 4}, "needs <work>"),
		evaluation(2, "Alex", model.BattingForm{Mechanics: 6, Contact: 6, Power: 6}, ""),
		evaluation(1, "Alex", model.SpeedForm{SixtyTime: 6.8}, ""),
	}}
}

func get(mux http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", target, http.NoBody))
	return w
}

func TestSitePages(t *testing.T) {
	Convey("Given a site over two players", t, func() {
		mux := http.NewServeMux()
		deps := fixture()
		New(deps, WithTeamName("Tigers"), WithRecentLimit(2)).Register(context.Background(), mux)

		Convey("When rendering the heatmap", func() {
			w := get(mux, "/")
			body := w.Body.String()

			Convey("Then rows are coloured and missing cells show a dash", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(body, ShouldContainSubstring, "Player Heatmap | Tigers")
				So(body, ShouldContainSubstring, "70.0 MPH")
				So(body, ShouldContainSubstring, `>-</td>`)
				So(body, ShouldContainSubstring, scoring.Excellent.Color())
				So(strings.Index(body, ">Alex<"), ShouldBeLessThan, strings.Index(body, "Sam &lt;Jr&gt;"))
			})

			Convey("And names are escaped", func() {
				So(body, ShouldNotContainSubstring, "Sam <Jr>")
			})

			Convey("And the active column links to the next direction", func() {
				So(body, ShouldContainSubstring, `href="/?dir=desc&amp;sort=name"`)
				So(body, ShouldContainSubstring, `href="/?dir=asc&amp;sort=overall"`)
			})
		})

		Convey("When sorting by overall descending", func() {
			body := get(mux, "/?sort=overall&dir=desc").Body.String()
			So(strings.Index(body, ">Alex<"), ShouldBeLessThan, strings.Index(body, "Sam &lt;Jr&gt;"))
			So(body, ShouldContainSubstring, "Overall ▼")
			So(body, ShouldContainSubstring, `href="/?dir=none&amp;sort=overall"`)
		})

		Convey("When sort parameters are garbage", func() {
			So(get(mux, "/?sort=height&dir=up").Code, ShouldEqual, http.StatusOK)
		})

		Convey("When rendering the recent feed", func() {
			body := get(mux, "/recent").Body.String()
			So(body, ShouldContainSubstring, "PITCHING")
			So(body, ShouldContainSubstring, "Score: 4.0/8")
			So(body, ShouldContainSubstring, "needs &lt;work&gt;")
			So(body, ShouldContainSubstring, "Apr 12, 2025")
			So(body, ShouldNotContainSubstring, "SPEED")
		})

		Convey("When rendering a player profile", func() {
			w := get(mux, "/player/Alex")
			body := w.Body.String()
			So(w.Code, ShouldEqual, http.StatusOK)
			So(body, ShouldContainSubstring, "2 evaluations")
			So(body, ShouldContainSubstring, "2 of 6 categories evaluated")
			So(body, ShouldContainSubstring, "60 Time: 6.8s (5.6)")
			So(body, ShouldContainSubstring, "SPEED")
		})

		Convey("When the player is unknown", func() {
			w := get(mux, "/player/alex")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(w.Body.String(), ShouldContainSubstring, "player not found")
		})

		Convey("When the feed fails", func() {
			deps.recentErr = errors.New("db gone")
			w := get(mux, "/recent")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldNotContainSubstring, "db gone")
		})

		Convey("When rendering the chart", func() {
			w := get(mux, "/charts/heatmap")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "echarts")
			So(w.Body.String(), ShouldContainSubstring, "Tigers Player Heatmap")
		})

		Convey("When nothing has been evaluated", func() {
			deps.evals = nil
			So(get(mux, "/").Body.String(), ShouldContainSubstring, "No evaluations yet.")
			So(get(mux, "/recent").Body.String(), ShouldContainSubstring, "No evaluations yet.")
		})
	})

	Convey("Given a nil mux", t, func() {
		So(func() { New(fixture()).Register(context.Background(), nil) }, ShouldPanic)
	})
}

func TestFormatting(t *testing.T) {
	Convey("Given formatted cells", t, func() {
		p := message.NewPrinter(language.English)
		missing := types.NewCell(0, scoring.DefaultScoreRange.Breakpoints)
		cell := types.NewCell(5.55, scoring.DefaultScoreRange.Breakpoints)

		So(formatScore(p, missing), ShouldEqual, "-")
		So(formatScore(p, types.NewCell(5, scoring.DefaultScoreRange.Breakpoints)), ShouldEqual, "5.0")
		So(formatVelocity(p, types.NewCell(72, scoring.DefaultVelocityRange.Breakpoints)), ShouldEqual, "72.0 MPH")
		So(formatVelocity(p, missing), ShouldEqual, "-")
		So(formatAverage(p, 5.5), ShouldEqual, "Score: 5.5/8")
		So(cell.Missing(), ShouldBeFalse)

		Convey("And a German locale uses a decimal comma", func() {
			de := message.NewPrinter(language.German)
			So(formatAverage(de, 5.5), ShouldEqual, "Score: 5,5/8")
		})

		Convey("And player links are path escaped", func() {
			So(playerHref("Sam Lee/2"), ShouldEqual, "/player/Sam%20Lee%2F2")
		})
	})

	Convey("Given an empty heatmap", t, func() {
		var buf bytes.Buffer
		h := types.NewHeatmap(nil, scoring.ScoreRanges{Score: scoring.DefaultScoreRange, Velocity: scoring.DefaultVelocityRange}, scoring.FieldName, scoring.DirAsc)
		So(renderHeatmapChart(&buf, "Diamond", h, message.NewPrinter(language.English)), ShouldBeNil)
		So(buf.String(), ShouldContainSubstring, "colour range 2.0 to 8.0")
	})
}
