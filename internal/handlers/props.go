package handlers

import (
	"net/http"

	"github.com/propline/stats-api/internal/models"
)

// AnalyzeProp returns the hit-rate summary of a player against a line
// @Summary Analyze Prop
// @Tags Props
// @Produce json
// @Param playerID path int true "Player ID"
// @Param category path string true "Stat category"
// @Param line query number true "Prop line"
// @Success 200 {object} models.PropAnalysisResult
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /players/{playerID}/props/{category} [get]
func (h *Handler) AnalyzeProp(w http.ResponseWriter, r *http.Request) {
	playerID, line, filter, err := h.propRequest(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	result, source, err := h.analytics.AnalyzeProp(r.Context(), playerID, categoryParam(r), line, filter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.sourcedResponse(w, source, result)
}

// GetGameOutcomes lists every filtered game with its over/under result
// @Summary Prop Game Outcomes
// @Tags Props
// @Produce json
// @Router /players/{playerID}/props/{category}/games [get]
func (h *Handler) GetGameOutcomes(w http.ResponseWriter, r *http.Request) {
	playerID, line, filter, err := h.propRequest(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	outcomes, source, err := h.analytics.GetGameOutcomes(r.Context(), playerID, categoryParam(r), line, filter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.sourcedResponse(w, source, map[string]interface{}{
		"player_id": playerID,
		"line":      line,
		"games":     outcomes,
	})
}

// propRequest parses the path and query of a prop endpoint
func (h *Handler) propRequest(r *http.Request) (int64, float64, models.PropFilter, error) {
	playerID, err := playerIDParam(r)
	if err != nil {
		return 0, 0, models.PropFilter{}, err
	}

	q := r.URL.Query()
	pq := models.PropQuery{
		From:     firstValue(q, "from"),
		To:       firstValue(q, "to"),
		Location: firstValue(q, "location"),
	}

	if raw := firstValue(q, "line"); raw != "" {
		var line float64
		if err := parseFloatParam(q, "line", &line); err != nil {
			return 0, 0, models.PropFilter{}, err
		}
		pq.Line = &line
	}
	if err := parseFloatParam(q, "minMinutes", &pq.MinMinutes); err != nil {
		return 0, 0, models.PropFilter{}, err
	}
	if err := parseIntParam(q, "opponent", &pq.Opponent); err != nil {
		return 0, 0, models.PropFilter{}, err
	}
	var lastN int64
	if err := parseIntParam(q, "lastN", &lastN); err != nil {
		return 0, 0, models.PropFilter{}, err
	}
	pq.LastN = int(lastN)
	if pq.Exclude, err = parseIDList(q, "exclude"); err != nil {
		return 0, 0, models.PropFilter{}, err
	}

	if err := h.validate(pq); err != nil {
		return 0, 0, models.PropFilter{}, err
	}

	filter := models.PropFilter{
		Location:          pq.Location,
		MinMinutes:        pq.MinMinutes,
		OpponentTeamID:    pq.Opponent,
		LastNGames:        pq.LastN,
		ExcludedPlayerIDs: pq.Exclude,
	}
	if filter.From, err = parseDate("from", pq.From); err != nil {
		return 0, 0, models.PropFilter{}, err
	}
	if filter.To, err = parseDate("to", pq.To); err != nil {
		return 0, 0, models.PropFilter{}, err
	}

	return playerID, *pq.Line, filter, nil
}
