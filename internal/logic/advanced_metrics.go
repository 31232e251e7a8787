package logic

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/propline/stats-api/internal/models"
)

// MetricsConfig tunes season comparison and momentum classification.
type MetricsConfig struct {
	RecentWindow      int
	TrendThresholdPct float64
}

type advancedMetricsEngine struct {
	source GameLogSource
	cfg    MetricsConfig
}

func NewAdvancedMetricsEngine(source GameLogSource, cfg MetricsConfig) AdvancedMetricsService {
	if cfg.RecentWindow <= 0 {
		cfg.RecentWindow = 5
	}
	if cfg.TrendThresholdPct <= 0 {
		cfg.TrendThresholdPct = 10
	}
	return &advancedMetricsEngine{source: source, cfg: cfg}
}

// GetOpponentTrends ranks teams by the average category value they allow per
// player-game. Rank 1 allows the least.
func (e *advancedMetricsEngine) GetOpponentTrends(ctx context.Context, category models.StatCategory, season int) ([]models.OpponentTrend, error) {
	records, err := e.source.SeasonGameLogs(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("fetch season %d game logs: %w", season, err)
	}

	type agg struct {
		sum   float64
		games int
	}
	byTeam := make(map[int64]*agg)
	for _, r := range playedGames(records) {
		a, ok := byTeam[r.OpponentTeamID]
		if !ok {
			a = &agg{}
			byTeam[r.OpponentTeamID] = a
		}
		a.sum += StatValue(r, category)
		a.games++
	}

	type teamAvg struct {
		team  int64
		avg   float64
		games int
	}
	teams := make([]teamAvg, 0, len(byTeam))
	for team, a := range byTeam {
		teams = append(teams, teamAvg{team: team, avg: a.sum / float64(a.games), games: a.games})
	}
	sort.Slice(teams, func(i, j int) bool {
		if teams[i].avg != teams[j].avg {
			return teams[i].avg < teams[j].avg
		}
		return teams[i].team < teams[j].team
	})

	trends := make([]models.OpponentTrend, 0, len(teams))
	for i, t := range teams {
		trends = append(trends, models.OpponentTrend{
			Rank:           i + 1,
			TeamID:         t.team,
			AverageAllowed: roundTo(t.avg, 1),
			GamesSampled:   t.games,
		})
	}
	return trends, nil
}

// GetSeasonComparison compares a player's recent form to the season and
// places the season average in the league distribution.
func (e *advancedMetricsEngine) GetSeasonComparison(ctx context.Context, playerID int64, category models.StatCategory, season int) (*models.SeasonComparison, error) {
	var playerLog, leagueLog []models.GameStatRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log, err := e.source.PlayerGameLog(gctx, playerID, models.GameLogQuery{Season: season})
		if err != nil {
			return fmt.Errorf("fetch game log for player %d: %w", playerID, err)
		}
		playerLog = log
		return nil
	})
	g.Go(func() error {
		log, err := e.source.SeasonGameLogs(gctx, season)
		if err != nil {
			return fmt.Errorf("fetch season %d game logs: %w", season, err)
		}
		leagueLog = log
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &models.SeasonComparison{
		PlayerID:     playerID,
		StatCategory: category,
		Season:       season,
		Trend:        models.TrendStable,
	}

	games := playedGames(playerLog)
	if len(games) == 0 {
		result.NoDataAvailable = true
		return result, nil
	}
	sortMostRecentFirst(games)

	values := statValues(games, category)
	seasonAvg := mean(values)
	recent := firstN(values, e.cfg.RecentWindow)
	recentAvg := mean(recent)
	change := percentChange(recentAvg, seasonAvg)

	result.GamesPlayed = len(games)
	result.SeasonAverage = roundTo(seasonAvg, 1)
	result.RecentAverage = roundTo(recentAvg, 1)
	result.RecentGames = len(recent)
	result.ChangePercent = roundTo(change, 1)
	result.Trend = classifyTrend(change, e.cfg.TrendThresholdPct)

	league := leagueAverages(leagueLog, category)
	result.LeaguePlayers = len(league)
	if len(league) > 0 {
		below := 0
		for _, avg := range league {
			if avg < seasonAvg {
				below++
			}
		}
		result.PercentileRank = roundTo(float64(below)/float64(len(league))*100, 1)
	}
	return result, nil
}

// GetAdvancedMetrics builds the consistency, streak, momentum and
// situational profile for a player's season. Streaks use the season
// average as the line.
func (e *advancedMetricsEngine) GetAdvancedMetrics(ctx context.Context, playerID int64, category models.StatCategory, season int) (*models.AdvancedMetrics, error) {
	log, err := e.source.PlayerGameLog(ctx, playerID, models.GameLogQuery{Season: season})
	if err != nil {
		return nil, fmt.Errorf("fetch game log for player %d: %w", playerID, err)
	}

	result := &models.AdvancedMetrics{
		PlayerID:     playerID,
		StatCategory: category,
		Season:       season,
		Streaks:      models.StreakMetrics{Current: models.CurrentStreak{Type: models.StreakNone}},
		Momentum:     models.MomentumMetrics{Direction: models.TrendStable},
	}

	games := playedGames(log)
	if len(games) == 0 {
		result.NoDataAvailable = true
		return result, nil
	}
	sortMostRecentFirst(games)

	recentFirst := statValues(games, category)
	chronological := make([]float64, len(recentFirst))
	for i, v := range recentFirst {
		chronological[len(recentFirst)-1-i] = v
	}

	result.GamesPlayed = len(games)
	result.Consistency = consistency(recentFirst)
	result.Streaks = streaks(chronological, mean(recentFirst))
	result.Momentum = momentum(recentFirst, e.cfg.TrendThresholdPct)
	result.Situational = situational(chronological)
	return result, nil
}

func consistency(values []float64) models.ConsistencyMetrics {
	avg := mean(values)

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var median float64
	n := len(sorted)
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	var sq float64
	for _, v := range values {
		sq += (v - avg) * (v - avg)
	}
	stddev := math.Sqrt(sq / float64(n))

	var cv float64
	if avg != 0 {
		cv = stddev / avg * 100
	}

	return models.ConsistencyMetrics{
		Mean:                   roundTo(avg, 1),
		Median:                 roundTo(median, 1),
		Min:                    sorted[0],
		Max:                    sorted[n-1],
		StdDev:                 roundTo(stddev, 2),
		CoefficientOfVariation: roundTo(cv, 1),
	}
}

// streaks scans oldest to newest.
func streaks(chronological []float64, threshold float64) models.StreakMetrics {
	m := models.StreakMetrics{
		Threshold: roundTo(threshold, 1),
		Current:   models.CurrentStreak{Type: models.StreakNone},
	}

	for _, v := range chronological {
		kind := models.StreakUnder
		if v >= threshold {
			kind = models.StreakOver
		}
		if kind == m.Current.Type {
			m.Current.Length++
		} else {
			m.Current = models.CurrentStreak{Type: kind, Length: 1}
		}

		switch kind {
		case models.StreakOver:
			m.LongestOverStreak = max(m.LongestOverStreak, m.Current.Length)
		case models.StreakUnder:
			m.LongestUnderStreak = max(m.LongestUnderStreak, m.Current.Length)
		}
	}
	return m
}

func momentum(recentFirst []float64, thresholdPct float64) models.MomentumMetrics {
	last5, prior5 := subWindows(recentFirst, 5)
	last10, prior10 := subWindows(recentFirst, 10)

	m := models.MomentumMetrics{
		Last5Average:   roundTo(mean(last5), 1),
		Prior5Average:  roundTo(mean(prior5), 1),
		Last10Average:  roundTo(mean(last10), 1),
		Prior10Average: roundTo(mean(prior10), 1),
		Direction:      models.TrendStable,
	}
	if len(prior5) > 0 {
		m.Last5Delta = roundTo(mean(last5)-mean(prior5), 1)
		m.Direction = classifyTrend(percentChange(mean(last5), mean(prior5)), thresholdPct)
	}
	if len(prior10) > 0 {
		m.Last10Delta = roundTo(mean(last10)-mean(prior10), 1)
	}
	return m
}

// subWindows returns the newest size values and the size values before them.
func subWindows(recentFirst []float64, size int) (latest, prior []float64) {
	latest = firstN(recentFirst, size)
	if len(recentFirst) > size {
		prior = firstN(recentFirst[size:], size)
	}
	return latest, prior
}

// situational splits by chronological index at n/3 and 2n/3.
func situational(chronological []float64) models.SituationalSplits {
	n := len(chronological)
	a, b := n/3, 2*n/3
	segment := func(values []float64) models.SegmentStats {
		return models.SegmentStats{Games: len(values), Average: roundTo(mean(values), 1)}
	}
	return models.SituationalSplits{
		Early: segment(chronological[:a]),
		Mid:   segment(chronological[a:b]),
		Late:  segment(chronological[b:]),
	}
}

// leagueAverages returns each player's season average over played games.
func leagueAverages(records []models.GameStatRecord, category models.StatCategory) []float64 {
	type agg struct {
		sum   float64
		games int
	}
	byPlayer := make(map[int64]*agg)
	for _, r := range playedGames(records) {
		a, ok := byPlayer[r.PlayerID]
		if !ok {
			a = &agg{}
			byPlayer[r.PlayerID] = a
		}
		a.sum += StatValue(r, category)
		a.games++
	}
	out := make([]float64, 0, len(byPlayer))
	for _, a := range byPlayer {
		out = append(out, a.sum/float64(a.games))
	}
	return out
}

func playedGames(records []models.GameStatRecord) []models.GameStatRecord {
	out := make([]models.GameStatRecord, 0, len(records))
	for _, r := range records {
		if r.Minutes > 0 {
			out = append(out, r)
		}
	}
	return out
}

func statValues(records []models.GameStatRecord, category models.StatCategory) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = StatValue(r, category)
	}
	return out
}

func percentChange(current, base float64) float64 {
	if base == 0 {
		return 0
	}
	return (current - base) / base * 100
}

func classifyTrend(changePct, thresholdPct float64) string {
	switch {
	case changePct > thresholdPct:
		return models.TrendImproving
	case changePct < -thresholdPct:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}
