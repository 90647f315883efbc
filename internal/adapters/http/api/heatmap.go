package api

import (
	"context"
	"net/http"

	"github.com/okian/diamond/internal/domain/scoring"
	"github.com/okian/diamond/internal/domain/types"
)

// HeatmapDependencies defines the interface for the derived views.
type HeatmapDependencies interface {
	Heatmap(ctx context.Context, field scoring.SortField, dir scoring.Direction) types.Heatmap
	Ranges(ctx context.Context) scoring.ScoreRanges
}

// HeatmapHandler serves the heatmap, ranges and criteria.
type HeatmapHandler struct {
	deps HeatmapDependencies
}

// NewHeatmapHandler creates a new heatmap handler.
func NewHeatmapHandler(deps HeatmapDependencies) *HeatmapHandler {
	return &HeatmapHandler{deps: deps}
}

// HandleHeatmap handles GET /heatmap?sort=FIELD&dir=asc|desc|none requests.
func (h *HeatmapHandler) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_heatmap"
	q := r.URL.Query()
	field, err := scoring.ParseSortField(q.Get("sort"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	dir, err := scoring.ParseDirection(q.Get("dir"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Heatmap(r.Context(), field, dir))
}

// HandleRanges handles GET /ranges requests.
func (h *HeatmapHandler) HandleRanges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Ranges(r.Context()))
}

// HandleCriteria handles GET /criteria requests.
func (h *HeatmapHandler) HandleCriteria(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, types.AllCriteria())
}
