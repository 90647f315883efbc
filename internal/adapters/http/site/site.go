// Package site renders the coach-facing HTML pages: the colour-coded
// heatmap, the recent evaluations feed, player profiles and a chart view.
package site

import (
	"context"
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/okian/diamond/internal/domain/model"
	"github.com/okian/diamond/internal/domain/scoring"
	"github.com/okian/diamond/internal/domain/types"
	"github.com/okian/diamond/pkg/logger"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Error constants
var (
	ErrRender = errors.New("page render failed")
)

// Dependencies are the read views the pages are built from.
type Dependencies interface {
	Heatmap(ctx context.Context, field scoring.SortField, dir scoring.Direction) types.Heatmap
	Player(ctx context.Context, name string) (types.Profile, error)
	Recent(ctx context.Context, limit int) ([]model.Evaluation, error)
}

// Site serves the HTML pages.
type Site struct {
	deps        Dependencies
	team        string
	lang        language.Tag
	recentLimit int
	logger      logger.Logger
}

// Option applies a configuration option to the Site.
type Option func(*Site)

// WithTeamName sets the name shown in page titles.
func WithTeamName(name string) Option {
	return func(s *Site) {
		if name != "" {
			s.team = name
		}
	}
}

// WithLanguage sets the locale numbers are formatted for.
func WithLanguage(tag language.Tag) Option {
	return func(s *Site) { s.lang = tag }
}

// WithRecentLimit sets how many evaluations the feed shows.
func WithRecentLimit(n int) Option {
	return func(s *Site) {
		if n > 0 {
			s.recentLimit = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Site) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates the site over deps.
func New(deps Dependencies, opts ...Option) *Site {
	s := &Site{
		deps:        deps,
		team:        "Diamond",
		lang:        language.English,
		recentLimit: 20,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("site")
	}
	return s
}

// Register attaches the page routes to mux.
func (s *Site) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /{$}", s.HandleHeatmap)
	mux.HandleFunc("GET /recent", s.HandleRecent)
	mux.HandleFunc("GET /player/{name}", s.HandlePlayer)
	mux.HandleFunc("GET /charts/heatmap", s.HandleHeatmapChart)
}

func (s *Site) printer() *message.Printer {
	return message.NewPrinter(s.lang)
}

// HandleHeatmap handles GET /?sort=FIELD&dir=DIR. Unknown parameters fall
// back to the default name order rather than failing the page.
func (s *Site) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	field, err := scoring.ParseSortField(q.Get("sort"))
	if err != nil {
		field = scoring.FieldName
	}
	dir, err := scoring.ParseDirection(q.Get("dir"))
	if err != nil {
		dir = scoring.DirAsc
	}
	h := s.deps.Heatmap(r.Context(), field, dir)
	s.render(w, r, http.StatusOK, layout(s.team, "Player Heatmap", heatmapPage(h, s.printer())))
}

// HandleRecent handles GET /recent.
func (s *Site) HandleRecent(w http.ResponseWriter, r *http.Request) {
	evals, err := s.deps.Recent(r.Context(), s.recentLimit)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	s.render(w, r, http.StatusOK, layout(s.team, "Recent Evaluations", recentPage(evals, s.printer())))
}

// HandlePlayer handles GET /player/{name}.
func (s *Site) HandlePlayer(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	profile, err := s.deps.Player(r.Context(), name)
	if errors.Is(err, model.ErrNotFound) {
		s.fail(w, r, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	s.render(w, r, http.StatusOK, layout(s.team, profile.Summary.Name, playerPage(profile, s.printer())))
}

func (s *Site) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "page failed", logger.String("path", r.URL.Path), logger.Error(err))
	}
	s.render(w, r, status, layout(s.team, http.StatusText(status), errorPage(status, err)))
}

func (s *Site) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	templ.Handler(c,
		templ.WithStatus(status),
		templ.WithErrorHandler(func(r *http.Request, err error) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				s.logger.Error(r.Context(), "render failed", logger.Error(err))
				http.Error(w, ErrRender.Error(), http.StatusInternalServerError)
			})
		}),
	).ServeHTTP(w, r)
}
