// Package bridgetrigger exposes the Bridge worker's "drain once" entry
// point over HTTP, so a plain cron-over-HTTP caller can invoke the same
// drain logic cmd/bridge's Lambda handler runs on a schedule.
package bridgetrigger

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nrhodes/burstqueue/pkg/bridge"
)

// Handler serves the Bridge worker trigger route.
type Handler struct {
	Worker    *bridge.Worker
	WallClock func(context.Context) (context.Context, context.CancelFunc)
	Logger    *slog.Logger
}

func NewHandler(worker *bridge.Worker, wallClock func(context.Context) (context.Context, context.CancelFunc), logger *slog.Logger) *Handler {
	return &Handler{Worker: worker, WallClock: wallClock, Logger: logger}
}

type response struct {
	Status    string `json:"status"`
	Processed int    `json:"processed"`
	DLQ       int    `json:"dlq"`
	Total     int    `json:"total"`
}

// Drain handles POST /internal/bridge/drain.
func (h *Handler) Drain(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.WallClock(r.Context())
	defer cancel()

	summary, err := h.Worker.Run(ctx)
	if err != nil {
		h.Logger.Error("bridge drain failed", "error", err)
		http.Error(w, "drain failed", http.StatusInternalServerError)
		return
	}

	status := "success"
	if summary.Total == 0 {
		status = "idle"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response{
		Status:    status,
		Processed: summary.Processed,
		DLQ:       summary.DLQ,
		Total:     summary.Total,
	})
}
