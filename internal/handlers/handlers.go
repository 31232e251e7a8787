package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/propline/stats-api/internal/models"
	"github.com/propline/stats-api/internal/resilience"
)

// MaxBodySize limits the size of request bodies to 64KB
const MaxBodySize = 65536

// Analytics is the read and refresh surface served over HTTP
type Analytics interface {
	AnalyzeProp(ctx context.Context, playerID int64, category models.StatCategory, line float64, filter models.PropFilter) (*models.PropAnalysisResult, resilience.Source, error)
	GetGameOutcomes(ctx context.Context, playerID int64, category models.StatCategory, line float64, filter models.PropFilter) ([]models.GameOutcome, resilience.Source, error)
	GetAdvancedMetrics(ctx context.Context, playerID int64, category models.StatCategory, season int) (*models.AdvancedMetrics, resilience.Source, error)
	GetSeasonComparison(ctx context.Context, playerID int64, category models.StatCategory, season int) (*models.SeasonComparison, resilience.Source, error)
	GetOpponentTrends(ctx context.Context, category models.StatCategory, season int) ([]models.OpponentTrend, resilience.Source, error)
	GetRollingSplits(ctx context.Context, playerID int64) ([]models.RollingSplitSnapshot, resilience.Source, error)
	CalculateExpectedValue(hitRate, americanOdds, wager float64) (models.ExpectedValue, error)
}

// RefreshQueue defines the interface for the async split refresh pool
type RefreshQueue interface {
	Enqueue(playerID int64, windows []int) bool
	QueueDepth() int
}

// Pinger is a dependency checked by the readiness probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// RedisPinger is satisfied by *redis.Client
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type Config struct {
	Analytics    Analytics
	RefreshQueue RefreshQueue
	Postgres     Pinger
	ClickHouse   Pinger
	Redis        RedisPinger // nil when the in-memory cache is used
	Logger       *zap.Logger
}

type Handler struct {
	analytics Analytics
	pool      RefreshQueue
	pg        Pinger
	ch        Pinger
	redis     RedisPinger
	logger    *zap.SugaredLogger
	validator *validator.Validate
}

func New(cfg Config) *Handler {
	return &Handler{
		analytics: cfg.Analytics,
		pool:      cfg.RefreshQueue,
		pg:        cfg.Postgres,
		ch:        cfg.ClickHouse,
		redis:     cfg.Redis,
		logger:    cfg.Logger.Sugar(),
		validator: validator.New(),
	}
}
