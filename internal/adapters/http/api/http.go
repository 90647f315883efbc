// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/diamond/internal/domain/model"
	"github.com/okian/diamond/internal/domain/scoring"
	"github.com/okian/diamond/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	EvaluationDependencies
	PlayerDependencies
	HeatmapDependencies
	StreamDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	evaluationHandler *EvaluationHandler
	playerHandler     *PlayerHandler
	heatmapHandler    *HeatmapHandler
	streamHandler     *StreamHandler
}

// NewServer creates a new API server with all handlers. maxLimit caps the
// recent feed; defaultLimit applies when no limit is given.
func NewServer(deps Dependencies, statsProvider StatsProvider, defaultLimit, maxLimit int) *Server {
	log := logger.Get().Named("api")
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		evaluationHandler: NewEvaluationHandler(deps, defaultLimit, maxLimit, log),
		playerHandler:     NewPlayerHandler(deps),
		heatmapHandler:    NewHeatmapHandler(deps),
		streamHandler:     NewStreamHandler(deps, log),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /evaluations", MetricsMiddleware(s.evaluationHandler.HandlePost, "evaluations"))
	mux.HandleFunc("GET /evaluations", MetricsMiddleware(s.evaluationHandler.HandleList, "evaluations"))
	mux.HandleFunc("GET /evaluations/{id}", MetricsMiddleware(s.evaluationHandler.HandleGet, "evaluation"))

	mux.HandleFunc("GET /players", MetricsMiddleware(s.playerHandler.HandleList, "players"))
	mux.HandleFunc("GET /players/{name}", MetricsMiddleware(s.playerHandler.HandleGet, "player"))
	mux.HandleFunc("GET /players/{name}/evaluations", MetricsMiddleware(s.playerHandler.HandleHistory, "player_history"))

	mux.HandleFunc("GET /heatmap", MetricsMiddleware(s.heatmapHandler.HandleHeatmap, "heatmap"))
	mux.HandleFunc("GET /ranges", MetricsMiddleware(s.heatmapHandler.HandleRanges, "ranges"))
	mux.HandleFunc("GET /criteria", MetricsMiddleware(s.heatmapHandler.HandleCriteria, "criteria"))

	// Long-lived; durations would swamp the request histogram.
	mux.HandleFunc("GET /stream", s.streamHandler.HandleStream)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err onto a status and error code.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrInvalidSubmission),
		errors.Is(err, model.ErrUnknownType),
		errors.Is(err, scoring.ErrUnknownSortField),
		errors.Is(err, scoring.ErrUnknownDirection):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrUnavailable), errors.Is(err, model.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// parseLimit reads ?limit=N. Empty means def; values above maxLimit are
// rejected rather than clamped.
func parseLimit(r *http.Request, def, maxLimit int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("limit must be a positive integer")
	}
	if maxLimit > 0 && n > maxLimit {
		return 0, errors.New("limit exceeds maximum of " + strconv.Itoa(maxLimit))
	}
	return n, nil
}
