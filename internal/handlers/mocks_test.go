package handlers

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/propline/stats-api/internal/models"
	"github.com/propline/stats-api/internal/resilience"
)

// Mocks

type propCall struct {
	PlayerID int64
	Category models.StatCategory
	Line     float64
	Filter   models.PropFilter
}

type MockAnalytics struct {
	Source resilience.Source
	Err    error

	LastProp   propCall
	LastSeason int
	EVFunc     func(hitRate, odds, wager float64) (models.ExpectedValue, error)
}

func (m *MockAnalytics) source() resilience.Source {
	if m.Source == "" {
		return resilience.SourceLive
	}
	return m.Source
}

func (m *MockAnalytics) AnalyzeProp(ctx context.Context, playerID int64, category models.StatCategory, line float64, filter models.PropFilter) (*models.PropAnalysisResult, resilience.Source, error) {
	m.LastProp = propCall{playerID, category, line, filter}
	if m.Err != nil {
		return nil, m.source(), m.Err
	}
	return &models.PropAnalysisResult{PlayerID: playerID, StatCategory: category, Line: line, HitRate: 60}, m.source(), nil
}

func (m *MockAnalytics) GetGameOutcomes(ctx context.Context, playerID int64, category models.StatCategory, line float64, filter models.PropFilter) ([]models.GameOutcome, resilience.Source, error) {
	m.LastProp = propCall{playerID, category, line, filter}
	if m.Err != nil {
		return nil, m.source(), m.Err
	}
	return []models.GameOutcome{{GameID: 1, Value: 25, Line: line, Result: models.ResultOver}}, m.source(), nil
}

func (m *MockAnalytics) GetAdvancedMetrics(ctx context.Context, playerID int64, category models.StatCategory, season int) (*models.AdvancedMetrics, resilience.Source, error) {
	m.LastSeason = season
	if m.Err != nil {
		return nil, m.source(), m.Err
	}
	return &models.AdvancedMetrics{PlayerID: playerID, StatCategory: category, Season: season}, m.source(), nil
}

func (m *MockAnalytics) GetSeasonComparison(ctx context.Context, playerID int64, category models.StatCategory, season int) (*models.SeasonComparison, resilience.Source, error) {
	m.LastSeason = season
	if m.Err != nil {
		return nil, m.source(), m.Err
	}
	return &models.SeasonComparison{PlayerID: playerID, StatCategory: category, Season: season}, m.source(), nil
}

func (m *MockAnalytics) GetOpponentTrends(ctx context.Context, category models.StatCategory, season int) ([]models.OpponentTrend, resilience.Source, error) {
	m.LastSeason = season
	if m.Err != nil {
		return nil, m.source(), m.Err
	}
	return []models.OpponentTrend{{Rank: 1, TeamID: 10, AverageAllowed: 21.5, GamesSampled: 4}}, m.source(), nil
}

func (m *MockAnalytics) GetRollingSplits(ctx context.Context, playerID int64) ([]models.RollingSplitSnapshot, resilience.Source, error) {
	if m.Err != nil {
		return nil, m.source(), m.Err
	}
	return []models.RollingSplitSnapshot{}, m.source(), nil
}

func (m *MockAnalytics) CalculateExpectedValue(hitRate, odds, wager float64) (models.ExpectedValue, error) {
	if m.EVFunc != nil {
		return m.EVFunc(hitRate, odds, wager)
	}
	return models.ExpectedValue{HitRate: hitRate, AmericanOdds: odds, Wager: wager}, nil
}

type MockRefreshQueue struct {
	Full     bool
	Enqueued map[int64][]int
}

func (m *MockRefreshQueue) Enqueue(playerID int64, windows []int) bool {
	if m.Full {
		return false
	}
	if m.Enqueued == nil {
		m.Enqueued = make(map[int64][]int)
	}
	m.Enqueued[playerID] = windows
	return true
}

func (m *MockRefreshQueue) QueueDepth() int { return len(m.Enqueued) }

type MockPinger struct {
	Err error
}

func (m *MockPinger) Ping(ctx context.Context) error { return m.Err }

type MockRedis struct {
	Err error
}

func (m *MockRedis) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", m.Err)
}

func newTestHandler(a *MockAnalytics, q *MockRefreshQueue) *Handler {
	return New(Config{
		Analytics:    a,
		RefreshQueue: q,
		Postgres:     &MockPinger{},
		ClickHouse:   &MockPinger{},
		Logger:       zap.NewNop(),
	})
}
