package handlers

import (
	"net/http"

	"github.com/propline/stats-api/internal/models"
)

// GetExpectedValue prices a wager from a hit rate and American odds
// @Router /ev [get]
func (h *Handler) GetExpectedValue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var ev models.ExpectedValueQuery

	if firstValue(q, "hitRate") != "" {
		var hitRate float64
		if err := parseFloatParam(q, "hitRate", &hitRate); err != nil {
			h.handleError(w, r, err)
			return
		}
		ev.HitRate = &hitRate
	}
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"odds", &ev.Odds},
		{"wager", &ev.Wager},
	} {
		if err := parseFloatParam(q, p.name, p.dst); err != nil {
			h.handleError(w, r, err)
			return
		}
	}
	if err := h.validate(ev); err != nil {
		h.handleError(w, r, err)
		return
	}

	result, err := h.analytics.CalculateExpectedValue(*ev.HitRate, ev.Odds, ev.Wager)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, result)
}
