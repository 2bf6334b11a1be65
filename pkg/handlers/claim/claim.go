// Package claim exposes the Claim API over HTTP: POST /pools/{pool_id}/claims.
package claim

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nrhodes/burstqueue/pkg/claim"
)

type request struct {
	UserId string `json:"user_id"`
}

type response struct {
	ResourceId *string `json:"resource_id"`
}

// Handler serves the Claim API.
type Handler struct {
	Service *claim.Service
	Logger  *slog.Logger
}

func NewHandler(service *claim.Service, logger *slog.Logger) *Handler {
	return &Handler{Service: service, Logger: logger}
}

// Claim handles POST /pools/{pool_id}/claims.
func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	poolID := chi.URLParam(r, "pool_id")

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserId == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	result, err := h.Service.ClaimResourceAndQueue(r.Context(), poolID, req.UserId)
	if err != nil {
		if errors.Is(err, claim.ErrSoldOut) {
			writeJSON(w, http.StatusOK, response{ResourceId: nil})
			return
		}
		h.Logger.Error("claim failed", "pool_id", poolID, "user_id", req.UserId, "error", err)
		http.Error(w, "failed to claim a slot", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, response{ResourceId: &result.SlotId})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
