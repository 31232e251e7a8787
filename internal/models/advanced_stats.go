package models

// =============================================================================
// CONSISTENCY / STREAKS / MOMENTUM
// =============================================================================

// Trend labels used by SeasonComparison and MomentumMetrics
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// Streak types
const (
	StreakOver  = "over"
	StreakUnder = "under"
	StreakNone  = "none"
)

type ConsistencyMetrics struct {
	Mean                   float64 `json:"mean"`
	Median                 float64 `json:"median"`
	Min                    float64 `json:"min"`
	Max                    float64 `json:"max"`
	StdDev                 float64 `json:"std_dev"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"` // stddev/mean*100
}

type CurrentStreak struct {
	Type   string `json:"type"` // "over", "under", "none"
	Length int    `json:"length"`
}

// StreakMetrics are scanned oldest to newest against Threshold.
type StreakMetrics struct {
	Threshold          float64       `json:"threshold"`
	LongestOverStreak  int           `json:"longest_over_streak"`
	LongestUnderStreak int           `json:"longest_under_streak"`
	Current            CurrentStreak `json:"current"`
}

type MomentumMetrics struct {
	Last5Average   float64 `json:"last_5_average"`
	Prior5Average  float64 `json:"prior_5_average"`
	Last5Delta     float64 `json:"last_5_delta"`
	Last10Average  float64 `json:"last_10_average"`
	Prior10Average float64 `json:"prior_10_average"`
	Last10Delta    float64 `json:"last_10_delta"`
	Direction      string  `json:"direction"` // "improving", "declining", "stable"
}

type SegmentStats struct {
	Games   int     `json:"games"`
	Average float64 `json:"average"`
}

// SituationalSplits divides the season into chronological thirds.
type SituationalSplits struct {
	Early SegmentStats `json:"early"`
	Mid   SegmentStats `json:"mid"`
	Late  SegmentStats `json:"late"`
}

// AdvancedMetrics is the full per-player, per-category season profile.
type AdvancedMetrics struct {
	PlayerID        int64              `json:"player_id"`
	StatCategory    StatCategory       `json:"stat_category"`
	Season          int                `json:"season"`
	GamesPlayed     int                `json:"games_played"`
	Consistency     ConsistencyMetrics `json:"consistency"`
	Streaks         StreakMetrics      `json:"streaks"`
	Momentum        MomentumMetrics    `json:"momentum"`
	Situational     SituationalSplits  `json:"situational"`
	NoDataAvailable bool               `json:"no_data_available"`
}

// =============================================================================
// OPPONENTS / SEASON
// =============================================================================

// OpponentTrend ranks a team by what it allows. Rank 1 is the toughest matchup.
type OpponentTrend struct {
	Rank           int     `json:"rank"`
	TeamID         int64   `json:"team_id"`
	AverageAllowed float64 `json:"average_allowed"`
	GamesSampled   int     `json:"games_sampled"`
}

type SeasonComparison struct {
	PlayerID        int64        `json:"player_id"`
	StatCategory    StatCategory `json:"stat_category"`
	Season          int          `json:"season"`
	GamesPlayed     int          `json:"games_played"`
	SeasonAverage   float64      `json:"season_average"`
	RecentAverage   float64      `json:"recent_average"`
	RecentGames     int          `json:"recent_games"`
	ChangePercent   float64      `json:"change_percent"`
	Trend           string       `json:"trend"`
	PercentileRank  float64      `json:"percentile_rank"`
	LeaguePlayers   int          `json:"league_players"`
	NoDataAvailable bool         `json:"no_data_available"`
}
