package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/diamond/internal/domain/model"
	"github.com/okian/diamond/pkg/logger"
	"github.com/okian/diamond/pkg/metrics"
)

const (
	streamBuffer    = 16
	streamHeartbeat = 15 * time.Second
)

// StreamDependencies defines the interface for change subscriptions.
type StreamDependencies interface {
	Subscribe(fn func(ctx context.Context, c model.Change)) (cancel func(), err error)
}

// StreamHandler pushes change notifications as Server-Sent Events.
type StreamHandler struct {
	deps      StreamDependencies
	heartbeat time.Duration
	logger    logger.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(deps StreamDependencies, log logger.Logger) *StreamHandler {
	return &StreamHandler{deps: deps, heartbeat: streamHeartbeat, logger: log}
}

// HandleStream handles GET /stream requests. Each change becomes one
// "change" event; a slow client loses events rather than stalling dispatch,
// which is harmless since clients refetch on any event.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	const op = "api.stream"
	ctx := r.Context()
	rc := http.NewResponseController(w)

	changes := make(chan model.Change, streamBuffer)
	cancel, err := h.deps.Subscribe(func(_ context.Context, c model.Change) {
		select {
		case changes <- c:
		default:
		}
	})
	if err != nil {
		writeFailure(w, WrapKind(op, ErrUnavailable, err))
		return
	}
	defer cancel()

	// The server's write timeout is meant for ordinary requests.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		h.log(ctx, "stream flush unsupported", err)
		return
	}

	metrics.AddStreamClients(1)
	defer metrics.AddStreamClients(-1)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-changes:
			data, err := json.Marshal(c)
			if err != nil {
				h.log(ctx, "encode change", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: change\nid: %d\ndata: %s\n\n", c.EvaluationID, data); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func (h *StreamHandler) log(ctx context.Context, msg string, err error) {
	if h.logger != nil {
		h.logger.Warn(ctx, msg, logger.Error(err))
	}
}
