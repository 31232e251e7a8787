// Package resilience keeps read paths answering when the cache or the game
// log source is failing.
package resilience

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/propline/stats-api/internal/cache"
	"github.com/propline/stats-api/internal/models"
)

var fallbackOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "props_fallback_outcomes_total",
	Help: "Read path results by data source (live, stale, default)",
}, []string{"source"})

// Source reports where a returned value came from.
type Source string

const (
	SourceLive    Source = "live"
	SourceStale   Source = "stale"
	SourceDefault Source = "default"
)

type Coordinator struct {
	cache  *cache.Cache
	logger *zap.SugaredLogger
}

// NewCoordinator creates a coordinator that reads stale values from c.
// c may be nil, in which case failures go straight to the default.
func NewCoordinator(c *cache.Cache, logger *zap.Logger) *Coordinator {
	return &Coordinator{cache: c, logger: logger.Sugar()}
}

// WithFallback runs primary. If it fails, the last value cached under key is
// returned even if expired, then def. Only validation errors reach the
// caller; everything else is logged. An empty key skips the stale lookup.
func WithFallback[T any](ctx context.Context, c *Coordinator, key string, primary func(ctx context.Context) (T, error), def T) (T, Source, error) {
	v, err := primary(ctx)
	if err == nil {
		fallbackOutcomes.WithLabelValues(string(SourceLive)).Inc()
		return v, SourceLive, nil
	}
	if errors.Is(err, models.ErrValidation) {
		var zero T
		return zero, SourceLive, err
	}

	if key != "" && c.cache != nil {
		if stale, ok := cache.GetStale[T](context.WithoutCancel(ctx), c.cache, key); ok {
			c.logger.Warnw("Serving stale value", "key", key, "error", err)
			fallbackOutcomes.WithLabelValues(string(SourceStale)).Inc()
			return stale, SourceStale, nil
		}
	}

	c.logger.Errorw("Serving default value", "key", key, "error", err)
	fallbackOutcomes.WithLabelValues(string(SourceDefault)).Inc()
	return def, SourceDefault, nil
}
