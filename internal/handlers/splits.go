package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/propline/stats-api/internal/models"
)

// GetRollingSplits returns the stored trailing-window averages for a player
// @Router /players/{playerID}/splits [get]
func (h *Handler) GetRollingSplits(w http.ResponseWriter, r *http.Request) {
	playerID, err := playerIDParam(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	splits, source, err := h.analytics.GetRollingSplits(r.Context(), playerID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.sourcedResponse(w, source, map[string]interface{}{
		"player_id": playerID,
		"splits":    splits,
	})
}

// RefreshSplits queues a recompute of a player's rolling splits. An empty
// body refreshes the default windows.
// @Router /players/{playerID}/splits [post]
func (h *Handler) RefreshSplits(w http.ResponseWriter, r *http.Request) {
	playerID, err := playerIDParam(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	var req models.RefreshSplitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate(req); err != nil {
		h.handleError(w, r, err)
		return
	}

	if !h.pool.Enqueue(playerID, req.Windows) {
		h.errorResponse(w, http.StatusServiceUnavailable, "refresh queue is full, retry later")
		return
	}

	h.jsonResponse(w, http.StatusAccepted, map[string]interface{}{
		"player_id": playerID,
		"queued":    true,
	})
}
