package models

import "time"

// Location values for PropFilter.Location
const (
	LocationHome = "home"
	LocationAway = "away"
)

// Outcome values for GameOutcome.Result
const (
	ResultOver  = "over"
	ResultUnder = "under"
)

// PropFilter selects which games count toward a prop evaluation.
// Zero values disable the corresponding criterion.
type PropFilter struct {
	From              time.Time `json:"from,omitempty"`
	To                time.Time `json:"to,omitempty"`
	Location          string    `json:"location,omitempty"` // "", "home", "away"
	MinMinutes        float64   `json:"min_minutes,omitempty"`
	OpponentTeamID    int64     `json:"opponent_team_id,omitempty"`
	LastNGames        int       `json:"last_n_games,omitempty"`
	ExcludedPlayerIDs []int64   `json:"excluded_player_ids,omitempty"`
}

// GameOutcome is a single game evaluated against a line.
type GameOutcome struct {
	GameID         int64     `json:"game_id"`
	GameDate       time.Time `json:"game_date"`
	Value          float64   `json:"value"`
	Line           float64   `json:"line"`
	Result         string    `json:"result"` // "over" or "under"
	OpponentTeamID int64     `json:"opponent_team_id"`
	IsHome         bool      `json:"is_home"`
	Minutes        float64   `json:"minutes"`
}

// WindowForm summarizes the first N games of a filtered set.
type WindowForm struct {
	Games   int     `json:"games"`
	HitRate int     `json:"hit_rate"`
	Average float64 `json:"average"`
}

// RecentForm holds the nested 5/10/20 game sub-windows.
type RecentForm struct {
	Last5  WindowForm `json:"last_5"`
	Last10 WindowForm `json:"last_10"`
	Last20 WindowForm `json:"last_20"`
}

// HomeAwayStats partitions a filtered set by venue.
type HomeAwayStats struct {
	Home WindowForm `json:"home"`
	Away WindowForm `json:"away"`
}

// PropAnalysisResult is the hit-rate summary of a player against a line.
type PropAnalysisResult struct {
	PlayerID        int64         `json:"player_id"`
	StatCategory    StatCategory  `json:"stat_category"`
	Line            float64       `json:"line"`
	HitRate         int           `json:"hit_rate"`
	Average         float64       `json:"average"`
	OverCount       int           `json:"over_count"`
	UnderCount      int           `json:"under_count"`
	TotalGames      int           `json:"total_games"`
	RecentForm      RecentForm    `json:"recent_form"`
	HomeAwayStats   HomeAwayStats `json:"home_away_stats"`
	NoDataAvailable bool          `json:"no_data_available"`
}

// ExpectedValue is the probability-weighted return of a wager.
type ExpectedValue struct {
	HitRate            float64 `json:"hit_rate"`
	AmericanOdds       float64 `json:"american_odds"`
	Wager              float64 `json:"wager"`
	Payout             float64 `json:"payout"`
	ExpectedValue      float64 `json:"expected_value"`
	ROIPercent         float64 `json:"roi_percent"`
	ImpliedProbability float64 `json:"implied_probability"`
}
