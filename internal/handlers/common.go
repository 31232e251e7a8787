package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/propline/stats-api/internal/models"
	"github.com/propline/stats-api/internal/resilience"
)

// DataSourceHeader tells clients whether a body is live, stale or a default
const DataSourceHeader = "X-Data-Source"

// Health check endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Ready check endpoint
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]bool{
		"postgres":   h.pg.Ping(ctx) == nil,
		"clickhouse": h.ch.Ping(ctx) == nil,
	}
	if h.redis != nil {
		checks["redis"] = h.redis.Ping(ctx).Err() == nil
	}

	allHealthy := true
	for _, ok := range checks {
		if !ok {
			allHealthy = false
			break
		}
	}

	status := http.StatusOK
	if !allHealthy {
		status = http.StatusServiceUnavailable
	}
	h.jsonResponse(w, status, map[string]interface{}{
		"ready":      allHealthy,
		"checks":     checks,
		"queueDepth": h.pool.QueueDepth(),
	})
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warnw("Failed to encode response", "error", err)
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}

// sourcedResponse writes a 200 tagged with where the data came from
func (h *Handler) sourcedResponse(w http.ResponseWriter, source resilience.Source, data interface{}) {
	w.Header().Set(DataSourceHeader, string(source))
	h.jsonResponse(w, http.StatusOK, data)
}

// handleError maps validation failures to 400. Anything else is unexpected
// since the read path degrades instead of failing.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, models.ErrValidation) {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Errorw("Request failed", "path", r.URL.Path, "error", err)
	h.errorResponse(w, http.StatusInternalServerError, "internal error")
}

// validate runs struct tags and reports the first failure as a ValidationError
func (h *Handler) validate(v interface{}) error {
	err := h.validator.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return models.NewValidationError(lowerFirst(fe.Field()), "failed %q check", fe.Tag())
	}
	return models.NewValidationError("request", "%v", err)
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func playerIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "playerID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("playerID", "must be a positive integer, got %q", raw)
	}
	return id, nil
}

func categoryParam(r *http.Request) models.StatCategory {
	return models.StatCategory(strings.ToLower(chi.URLParam(r, "category")))
}

func parseFloatParam(q map[string][]string, name string, dst *float64) error {
	raw := firstValue(q, name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return models.NewValidationError(name, "must be a number, got %q", raw)
	}
	*dst = v
	return nil
}

func parseIntParam(q map[string][]string, name string, dst *int64) error {
	raw := firstValue(q, name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return models.NewValidationError(name, "must be an integer, got %q", raw)
	}
	*dst = v
	return nil
}

// parseIDList accepts repeated parameters and comma separated values
func parseIDList(q map[string][]string, name string) ([]int64, error) {
	var ids []int64
	for _, raw := range q[name] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, models.NewValidationError(name, "must be a list of integers, got %q", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func firstValue(q map[string][]string, name string) string {
	if vs := q[name]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

func parseDate(name, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, models.NewValidationError(name, "must be YYYY-MM-DD, got %q", raw)
	}
	return t, nil
}

// seasonParam reads ?season=, where 0 selects the current season
func (h *Handler) seasonParam(r *http.Request) (int, error) {
	var season int64
	if err := parseIntParam(r.URL.Query(), "season", &season); err != nil {
		return 0, err
	}
	q := models.SeasonQuery{Season: int(season)}
	if err := h.validate(q); err != nil {
		return 0, err
	}
	return q.Season, nil
}
