package store

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/propline/stats-api/internal/logic"
	"github.com/propline/stats-api/internal/models"
)

var breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "props_breaker_state",
	Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
}, []string{"name"})

// BreakerConfig controls when the game log breaker opens.
type BreakerConfig struct {
	Name         string
	FailureRatio float64
	MinRequests  uint32
	OpenTimeout  time.Duration
}

// BreakingGameLogs fails fast while the wrapped source is unhealthy. An open
// breaker surfaces as gobreaker.ErrOpenState, which callers treat like any
// other upstream failure.
type BreakingGameLogs struct {
	next logic.GameLogSource
	cb   *gobreaker.CircuitBreaker
}

func NewBreakingGameLogs(next logic.GameLogSource, cfg BreakerConfig, logger *zap.Logger) *BreakingGameLogs {
	if cfg.Name == "" {
		cfg.Name = "game_logs"
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = 0.5
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = 10
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	log := logger.Sugar()

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		// callers going away says nothing about the source's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			breakerState.WithLabelValues(name).Set(float64(stateValue(to)))
			log.Warnw("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	breakerState.WithLabelValues(cfg.Name).Set(0)

	return &BreakingGameLogs{next: next, cb: cb}
}

func (b *BreakingGameLogs) PlayerGameLog(ctx context.Context, playerID int64, q models.GameLogQuery) ([]models.GameStatRecord, error) {
	return execute(b.cb, func() ([]models.GameStatRecord, error) {
		return b.next.PlayerGameLog(ctx, playerID, q)
	})
}

func (b *BreakingGameLogs) SeasonGameLogs(ctx context.Context, season int) ([]models.GameStatRecord, error) {
	return execute(b.cb, func() ([]models.GameStatRecord, error) {
		return b.next.SeasonGameLogs(ctx, season)
	})
}

func (b *BreakingGameLogs) ActivePlayers(ctx context.Context, since time.Time) ([]int64, error) {
	return execute(b.cb, func() ([]int64, error) {
		return b.next.ActivePlayers(ctx, since)
	})
}

// State returns the breaker's current state.
func (b *BreakingGameLogs) State() gobreaker.State {
	return b.cb.State()
}

func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	v, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func stateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
