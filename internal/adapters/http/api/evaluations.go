package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/okian/diamond/internal/domain/model"
	"github.com/okian/diamond/internal/domain/types"
	"github.com/okian/diamond/pkg/logger"
)

// EvaluationDependencies defines the interface for evaluation operations.
type EvaluationDependencies interface {
	Submit(ctx context.Context, req types.SubmitRequest) (model.Evaluation, bool, error)
	Recent(ctx context.Context, limit int) ([]model.Evaluation, error)
	Evaluation(ctx context.Context, id int64) (model.Evaluation, error)
}

// EvaluationHandler handles evaluation requests.
type EvaluationHandler struct {
	deps         EvaluationDependencies
	defaultLimit int
	maxLimit     int
	logger       logger.Logger
}

// NewEvaluationHandler creates a new evaluation handler.
func NewEvaluationHandler(deps EvaluationDependencies, defaultLimit, maxLimit int, log logger.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		deps:         deps,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       log,
	}
}

type submitResponse struct {
	Status     string            `json:"status"`
	Duplicate  bool              `json:"duplicate"`
	Evaluation *model.Evaluation `json:"evaluation,omitempty"`
}

// HandlePost handles POST /evaluations requests.
func (h *EvaluationHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_evaluation"
	var req types.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	ev, dup, err := h.deps.Submit(r.Context(), req)
	if err != nil {
		if h.logger != nil {
			h.logger.Debug(r.Context(), "submission rejected",
				logger.String("player", req.PlayerName),
				logger.String("type", req.Type),
				logger.Error(err),
			)
		}
		writeFailure(w, Wrap(op, err))
		return
	}
	if dup {
		writeJSON(w, http.StatusOK, submitResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusCreated, submitResponse{Status: "created", Evaluation: &ev})
}

// HandleList handles GET /evaluations?limit=N requests.
func (h *EvaluationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_evaluations"
	n, err := parseLimit(r, h.defaultLimit, h.maxLimit)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	evals, err := h.deps.Recent(r.Context(), n)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	if evals == nil {
		evals = []model.Evaluation{}
	}
	writeJSON(w, http.StatusOK, evals)
}

// HandleGet handles GET /evaluations/{id} requests.
func (h *EvaluationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_evaluation"
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	ev, err := h.deps.Evaluation(r.Context(), id)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, ev)
}
