package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/diamond/internal/domain/model"
	"github.com/okian/diamond/internal/domain/scoring"
	"github.com/okian/diamond/internal/domain/types"
)

// PlayerDependencies defines the interface for player lookups.
type PlayerDependencies interface {
	Players(ctx context.Context) []scoring.PlayerSummary
	Player(ctx context.Context, name string) (types.Profile, error)
	History(ctx context.Context, name string) ([]model.Evaluation, error)
}

// PlayerHandler handles player requests.
type PlayerHandler struct {
	deps PlayerDependencies
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(deps PlayerDependencies) *PlayerHandler {
	return &PlayerHandler{deps: deps}
}

// HandleList handles GET /players requests.
func (h *PlayerHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	players := h.deps.Players(r.Context())
	if players == nil {
		players = []scoring.PlayerSummary{}
	}
	writeJSON(w, http.StatusOK, players)
}

// HandleGet handles GET /players/{name} requests. The name must match
// exactly; case variants are different players.
func (h *PlayerHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player"
	name := r.PathValue("name")
	if strings.TrimSpace(name) == "" {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	profile, err := h.deps.Player(r.Context(), name)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleHistory handles GET /players/{name}/evaluations requests.
func (h *PlayerHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.player_history"
	name := r.PathValue("name")
	if strings.TrimSpace(name) == "" {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	evals, err := h.deps.History(r.Context(), name)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, evals)
}
