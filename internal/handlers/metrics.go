package handlers

import (
	"net/http"
)

// GetAdvancedMetrics returns consistency, streak, momentum and situational
// metrics for one player-season
// @Summary Advanced Metrics
// @Tags Metrics
// @Produce json
// @Param season query int false "Season (defaults to current)"
// @Router /players/{playerID}/metrics/{category} [get]
func (h *Handler) GetAdvancedMetrics(w http.ResponseWriter, r *http.Request) {
	playerID, err := playerIDParam(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	season, err := h.seasonParam(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	metrics, source, err := h.analytics.GetAdvancedMetrics(r.Context(), playerID, categoryParam(r), season)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.sourcedResponse(w, source, metrics)
}

// GetSeasonComparison compares recent form to the season and the league
// @Router /players/{playerID}/comparison/{category} [get]
func (h *Handler) GetSeasonComparison(w http.ResponseWriter, r *http.Request) {
	playerID, err := playerIDParam(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	season, err := h.seasonParam(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	cmp, source, err := h.analytics.GetSeasonComparison(r.Context(), playerID, categoryParam(r), season)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.sourcedResponse(w, source, cmp)
}

// GetOpponentTrends ranks defenses by what they allow in a category
// @Router /opponents/{category} [get]
func (h *Handler) GetOpponentTrends(w http.ResponseWriter, r *http.Request) {
	season, err := h.seasonParam(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	trends, source, err := h.analytics.GetOpponentTrends(r.Context(), categoryParam(r), season)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.sourcedResponse(w, source, map[string]interface{}{
		"category": categoryParam(r),
		"season":   season,
		"teams":    trends,
	})
}
