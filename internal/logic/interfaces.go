package logic

import (
	"context"
	"time"

	"github.com/propline/stats-api/internal/models"
)

// GameLogSource provides read-only game records. Implementations must order
// results most-recent-first and bound every call with a timeout.
type GameLogSource interface {
	PlayerGameLog(ctx context.Context, playerID int64, q models.GameLogQuery) ([]models.GameStatRecord, error)
	SeasonGameLogs(ctx context.Context, season int) ([]models.GameStatRecord, error)
	ActivePlayers(ctx context.Context, since time.Time) ([]int64, error)
}

// SplitStore persists rolling-split snapshots
type SplitStore interface {
	UpsertSplit(ctx context.Context, s models.RollingSplitSnapshot) error
	ListSplits(ctx context.Context, playerID int64) ([]models.RollingSplitSnapshot, error)
}

type PropAnalyticsService interface {
	AnalyzeProp(ctx context.Context, playerID int64, category models.StatCategory, line float64, filter models.PropFilter) (*models.PropAnalysisResult, error)
	GetGameOutcomes(ctx context.Context, playerID int64, category models.StatCategory, line float64, filter models.PropFilter) ([]models.GameOutcome, error)
}

type AdvancedMetricsService interface {
	GetOpponentTrends(ctx context.Context, category models.StatCategory, season int) ([]models.OpponentTrend, error)
	GetSeasonComparison(ctx context.Context, playerID int64, category models.StatCategory, season int) (*models.SeasonComparison, error)
	GetAdvancedMetrics(ctx context.Context, playerID int64, category models.StatCategory, season int) (*models.AdvancedMetrics, error)
}

type RollingSplitsService interface {
	ComputeRollingSplits(ctx context.Context, playerID int64, windows []int) error
	ProcessAllPlayers(ctx context.Context) models.BatchResult
	GetRollingSplits(ctx context.Context, playerID int64) ([]models.RollingSplitSnapshot, error)
}
