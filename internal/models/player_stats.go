package models

import "time"

// StatCategory names a per-game scalar: a raw box-score field or a composite.
type StatCategory string

const (
	StatPoints    StatCategory = "points"
	StatRebounds  StatCategory = "rebounds"
	StatAssists   StatCategory = "assists"
	StatSteals    StatCategory = "steals"
	StatBlocks    StatCategory = "blocks"
	StatTurnovers StatCategory = "turnovers"
	StatFGM       StatCategory = "fgm"
	StatFG3M      StatCategory = "fg3m"
	StatFTM       StatCategory = "ftm"

	// Composites
	StatPRA StatCategory = "pra"
	StatPR  StatCategory = "pr"
	StatPA  StatCategory = "pa"
	StatRA  StatCategory = "ra"
)

// GameStatRecord is one player's box score for one game.
type GameStatRecord struct {
	GameID         int64     `json:"game_id"`
	PlayerID       int64     `json:"player_id"`
	Season         int       `json:"season"`
	GameDate       time.Time `json:"game_date"`
	TeamID         int64     `json:"team_id"`
	OpponentTeamID int64     `json:"opponent_team_id"`
	IsHome         bool      `json:"is_home"`
	Minutes        float64   `json:"minutes"`

	Points    int `json:"points"`
	Rebounds  int `json:"rebounds"`
	Assists   int `json:"assists"`
	Steals    int `json:"steals"`
	Blocks    int `json:"blocks"`
	Turnovers int `json:"turnovers"`

	FGM  int `json:"fgm"`
	FGA  int `json:"fga"`
	FG3M int `json:"fg3m"`
	FG3A int `json:"fg3a"`
	FTM  int `json:"ftm"`
	FTA  int `json:"fta"`
}

// GameLogQuery bounds a game log fetch. Zero values mean "unbounded".
type GameLogQuery struct {
	Season int
	From   time.Time
	To     time.Time
	Limit  int
}
