package logic

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/propline/stats-api/internal/cache"
	"github.com/propline/stats-api/internal/models"
	"github.com/propline/stats-api/internal/resilience"
)

// Analytics is the read path used by the HTTP layer and CLI. It validates
// input before any I/O, caches computed results by TTL class and degrades
// to stale or empty results when the game log source fails.
type Analytics struct {
	props         PropAnalyticsService
	metrics       AdvancedMetricsService
	splits        RollingSplitsService
	cache         *cache.Cache
	coordinator   *resilience.Coordinator
	currentSeason int
}

type AnalyticsConfig struct {
	Props         PropAnalyticsService
	Metrics       AdvancedMetricsService
	Splits        RollingSplitsService
	Cache         *cache.Cache
	CurrentSeason int
	Logger        *zap.Logger
}

func NewAnalytics(cfg AnalyticsConfig) *Analytics {
	return &Analytics{
		props:         cfg.Props,
		metrics:       cfg.Metrics,
		splits:        cfg.Splits,
		cache:         cfg.Cache,
		coordinator:   resilience.NewCoordinator(cfg.Cache, cfg.Logger),
		currentSeason: cfg.CurrentSeason,
	}
}

func (a *Analytics) AnalyzeProp(ctx context.Context, playerID int64, category models.StatCategory, line float64, filter models.PropFilter) (*models.PropAnalysisResult, resilience.Source, error) {
	if err := validateProp(playerID, category, line, filter); err != nil {
		return nil, resilience.SourceLive, err
	}

	key := propKey("prop", playerID, category, line, filter)
	def := &models.PropAnalysisResult{
		PlayerID:        playerID,
		StatCategory:    category,
		Line:            line,
		NoDataAvailable: true,
	}
	return resilience.WithFallback(ctx, a.coordinator, key, func(ctx context.Context) (*models.PropAnalysisResult, error) {
		return cache.GetOrSet(ctx, a.cache, key, a.cache.TTL(cache.TTLShort), func(ctx context.Context) (*models.PropAnalysisResult, error) {
			return a.props.AnalyzeProp(ctx, playerID, category, line, filter)
		})
	}, def)
}

// GetGameOutcomes is never cached; a failing source yields an empty list.
func (a *Analytics) GetGameOutcomes(ctx context.Context, playerID int64, category models.StatCategory, line float64, filter models.PropFilter) ([]models.GameOutcome, resilience.Source, error) {
	if err := validateProp(playerID, category, line, filter); err != nil {
		return nil, resilience.SourceLive, err
	}
	return resilience.WithFallback(ctx, a.coordinator, "", func(ctx context.Context) ([]models.GameOutcome, error) {
		return a.props.GetGameOutcomes(ctx, playerID, category, line, filter)
	}, []models.GameOutcome{})
}

func (a *Analytics) GetAdvancedMetrics(ctx context.Context, playerID int64, category models.StatCategory, season int) (*models.AdvancedMetrics, resilience.Source, error) {
	season, err := a.validateSeasonQuery(playerID, category, season)
	if err != nil {
		return nil, resilience.SourceLive, err
	}

	key := cache.NewKey("metrics").Int("player", playerID).Str("category", string(category)).Int("season", int64(season)).String()
	def := &models.AdvancedMetrics{
		PlayerID:        playerID,
		StatCategory:    category,
		Season:          season,
		Streaks:         models.StreakMetrics{Current: models.CurrentStreak{Type: models.StreakNone}},
		Momentum:        models.MomentumMetrics{Direction: models.TrendStable},
		NoDataAvailable: true,
	}
	return resilience.WithFallback(ctx, a.coordinator, key, func(ctx context.Context) (*models.AdvancedMetrics, error) {
		return cache.GetOrSet(ctx, a.cache, key, a.cache.TTL(cache.TTLMedium), func(ctx context.Context) (*models.AdvancedMetrics, error) {
			return a.metrics.GetAdvancedMetrics(ctx, playerID, category, season)
		})
	}, def)
}

func (a *Analytics) GetSeasonComparison(ctx context.Context, playerID int64, category models.StatCategory, season int) (*models.SeasonComparison, resilience.Source, error) {
	season, err := a.validateSeasonQuery(playerID, category, season)
	if err != nil {
		return nil, resilience.SourceLive, err
	}

	key := cache.NewKey("comparison").Int("player", playerID).Str("category", string(category)).Int("season", int64(season)).String()
	def := &models.SeasonComparison{
		PlayerID:        playerID,
		StatCategory:    category,
		Season:          season,
		Trend:           models.TrendStable,
		NoDataAvailable: true,
	}
	return resilience.WithFallback(ctx, a.coordinator, key, func(ctx context.Context) (*models.SeasonComparison, error) {
		return cache.GetOrSet(ctx, a.cache, key, a.cache.TTL(cache.TTLMedium), func(ctx context.Context) (*models.SeasonComparison, error) {
			return a.metrics.GetSeasonComparison(ctx, playerID, category, season)
		})
	}, def)
}

func (a *Analytics) GetOpponentTrends(ctx context.Context, category models.StatCategory, season int) ([]models.OpponentTrend, resilience.Source, error) {
	if !IsKnownCategory(category) {
		return nil, resilience.SourceLive, unknownCategory(category)
	}
	season, err := a.resolveSeason(season)
	if err != nil {
		return nil, resilience.SourceLive, err
	}

	key := cache.NewKey("opponents").Str("category", string(category)).Int("season", int64(season)).String()
	return resilience.WithFallback(ctx, a.coordinator, key, func(ctx context.Context) ([]models.OpponentTrend, error) {
		return cache.GetOrSet(ctx, a.cache, key, a.cache.TTL(cache.TTLLong), func(ctx context.Context) ([]models.OpponentTrend, error) {
			return a.metrics.GetOpponentTrends(ctx, category, season)
		})
	}, []models.OpponentTrend{})
}

// GetRollingSplits reads persisted snapshots. They are not cached.
func (a *Analytics) GetRollingSplits(ctx context.Context, playerID int64) ([]models.RollingSplitSnapshot, resilience.Source, error) {
	if playerID <= 0 {
		return nil, resilience.SourceLive, models.NewValidationError("player", "must be positive")
	}
	return resilience.WithFallback(ctx, a.coordinator, "", func(ctx context.Context) ([]models.RollingSplitSnapshot, error) {
		return a.splits.GetRollingSplits(ctx, playerID)
	}, []models.RollingSplitSnapshot{})
}

// ComputeRollingSplits is a write path and returns failures as-is.
func (a *Analytics) ComputeRollingSplits(ctx context.Context, playerID int64, windows []int) error {
	if playerID <= 0 {
		return models.NewValidationError("player", "must be positive")
	}
	return a.splits.ComputeRollingSplits(ctx, playerID, windows)
}

func (a *Analytics) ProcessAllPlayers(ctx context.Context) models.BatchResult {
	return a.splits.ProcessAllPlayers(ctx)
}

// CalculateExpectedValue validates its inputs and prices the wager.
func (a *Analytics) CalculateExpectedValue(hitRate, americanOdds, wager float64) (models.ExpectedValue, error) {
	switch {
	case math.IsNaN(hitRate) || hitRate < 0 || hitRate > 100:
		return models.ExpectedValue{}, models.NewValidationError("hitRate", "must be between 0 and 100")
	case math.IsNaN(americanOdds) || math.IsInf(americanOdds, 0) || americanOdds == 0:
		return models.ExpectedValue{}, models.NewValidationError("odds", "must be a non-zero number")
	case math.IsNaN(wager) || math.IsInf(wager, 0) || wager <= 0:
		return models.ExpectedValue{}, models.NewValidationError("wager", "must be positive")
	}
	return CalculateExpectedValue(hitRate, americanOdds, wager), nil
}

func (a *Analytics) validateSeasonQuery(playerID int64, category models.StatCategory, season int) (int, error) {
	if playerID <= 0 {
		return 0, models.NewValidationError("player", "must be positive")
	}
	if !IsKnownCategory(category) {
		return 0, unknownCategory(category)
	}
	return a.resolveSeason(season)
}

// resolveSeason maps 0 to the configured current season.
func (a *Analytics) resolveSeason(season int) (int, error) {
	if season == 0 {
		season = a.currentSeason
	}
	if season < 1946 || season > 2100 {
		return 0, models.NewValidationError("season", "%d is out of range", season)
	}
	return season, nil
}

func unknownCategory(category models.StatCategory) error {
	names := make([]string, 0, len(knownCategories))
	for _, c := range Categories() {
		names = append(names, string(c))
	}
	return models.NewValidationError("category", "unknown stat category %q, want one of %s", category, strings.Join(names, ", "))
}

func validateProp(playerID int64, category models.StatCategory, line float64, f models.PropFilter) error {
	if playerID <= 0 {
		return models.NewValidationError("player", "must be positive")
	}
	if !IsKnownCategory(category) {
		return unknownCategory(category)
	}
	if math.IsNaN(line) || math.IsInf(line, 0) || line < 0 {
		return models.NewValidationError("line", "must be a non-negative number")
	}
	if !f.From.IsZero() && !f.To.IsZero() && dateOnly(f.From).After(dateOnly(f.To)) {
		return models.NewValidationError("from", "must not be after to")
	}
	switch f.Location {
	case "", models.LocationHome, models.LocationAway:
	default:
		return models.NewValidationError("location", "must be home or away")
	}
	if f.MinMinutes < 0 {
		return models.NewValidationError("minMinutes", "must be non-negative")
	}
	if f.LastNGames < 0 {
		return models.NewValidationError("lastN", "must be non-negative")
	}
	for _, id := range f.ExcludedPlayerIDs {
		if id <= 0 {
			return models.NewValidationError("exclude", "player ids must be positive")
		}
	}
	return nil
}

func propKey(namespace string, playerID int64, category models.StatCategory, line float64, f models.PropFilter) string {
	return cache.NewKey(namespace).
		Int("player", playerID).
		Str("category", string(category)).
		Float("line", line).
		Date("from", f.From).
		Date("to", f.To).
		Str("location", f.Location).
		Float("minMinutes", f.MinMinutes).
		Int("opponent", f.OpponentTeamID).
		Int("lastN", int64(f.LastNGames)).
		Ints("exclude", f.ExcludedPlayerIDs).
		String()
}
