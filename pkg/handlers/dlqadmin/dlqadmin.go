// Package dlqadmin exposes list/replay/discard over the dead-letter queue.
// Every route here requires the elevated bearer credential, enforced by
// pkg/middleware.RequireBearer before these handlers ever run.
package dlqadmin

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nrhodes/burstqueue/pkg/queueops"
	"github.com/nrhodes/burstqueue/pkg/storage"
)

// Handler serves the DLQ admin routes.
type Handler struct {
	DLQ    storage.DLQ
	Queue  storage.Queue
	Logger *slog.Logger
}

func NewHandler(dlq storage.DLQ, queue storage.Queue, logger *slog.Logger) *Handler {
	return &Handler{DLQ: dlq, Queue: queue, Logger: logger}
}

// List handles GET /internal/dlq?pool_id=...
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	poolID := r.URL.Query().Get("pool_id")

	messages, err := h.DLQ.List(r.Context(), poolID)
	if err != nil {
		h.Logger.Error("list dlq failed", "pool_id", poolID, "error", err)
		http.Error(w, "failed to list dlq", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

type msgIDsRequest struct {
	MsgIds []int64 `json:"msg_ids"`
	PoolId string  `json:"pool_id"`
}

// Replay handles POST /internal/dlq/replay: re-send each message to
// intake_queue and delete it from the DLQ, one logical move per id.
func (h *Handler) Replay(w http.ResponseWriter, r *http.Request) {
	var req msgIDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	replayed := make([]int64, 0, len(req.MsgIds))
	for _, msgID := range req.MsgIds {
		newID, err := queueops.Replay(r.Context(), h.DLQ, h.Queue, msgID, req.PoolId)
		if err != nil {
			h.Logger.Error("replay dlq message failed", "msg_id", msgID, "error", err)
			continue
		}
		replayed = append(replayed, newID)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"replayed": replayed})
}

// Discard handles POST /internal/dlq/discard: permanent delete.
func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	var req msgIDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	discarded := make([]int64, 0, len(req.MsgIds))
	for _, msgID := range req.MsgIds {
		if err := queueops.Discard(r.Context(), h.DLQ, msgID); err != nil {
			h.Logger.Error("discard dlq message failed", "msg_id", msgID, "error", err)
			continue
		}
		discarded = append(discarded, msgID)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"discarded": discarded})
}
