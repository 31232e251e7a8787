package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RollingSplitSnapshot is a persisted trailing-window average, keyed by
// (PlayerID, StatCategory, WindowSize).
type RollingSplitSnapshot struct {
	PlayerID     int64           `json:"player_id"`
	StatCategory string          `json:"stat_category"`
	WindowSize   int             `json:"window_size"`
	Average      decimal.Decimal `json:"average"`
	GamesSampled int             `json:"games_sampled"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// BatchResult summarizes a ProcessAllPlayers run.
type BatchResult struct {
	RunID     string        `json:"run_id"`
	Processed int           `json:"processed"`
	Errors    int           `json:"errors"`
	Total     int           `json:"total"`
	Duration  time.Duration `json:"duration"`
}

// Shooting percentage split categories. These are aggregate makes over
// aggregate attempts, stored with three decimal places.
const (
	SplitFGPct  = "fg_pct"
	SplitFG3Pct = "fg3_pct"
	SplitFTPct  = "ft_pct"
)

// SplitPrecision is the number of decimal places stored for a split category.
func SplitPrecision(category string) int32 {
	switch category {
	case SplitFGPct, SplitFG3Pct, SplitFTPct:
		return 3
	default:
		return 1
	}
}
