package store

import (
	"fmt"
	"time"
)

const gameLogTable = "player_game_stats"

// gameLogColumns is the scan order used by scanGameRows
const gameLogColumns = `game_id, player_id, season, game_date, team_id, opponent_team_id, is_home, minutes,
	points, rebounds, assists, steals, blocks, turnovers, fgm, fga, fg3m, fg3a, ftm, fta`

// GameLogRequest holds parameters for constructing a game log query
type GameLogRequest struct {
	PlayerID int64     // WHERE player_id = ?
	Season   int       // WHERE season = ?
	From     time.Time // WHERE game_date >= ?
	To       time.Time // WHERE game_date <= ?
	Limit    int
}

// BuildGameLogQuery constructs a ClickHouse query over player_game_stats,
// most recent game first. A request must be scoped to a player or a season.
func BuildGameLogQuery(req GameLogRequest) (string, []interface{}, error) {
	if req.PlayerID == 0 && req.Season == 0 {
		return "", nil, fmt.Errorf("game log query needs a player or a season")
	}
	if !req.From.IsZero() && !req.To.IsZero() && req.From.After(req.To) {
		return "", nil, fmt.Errorf("invalid date range: %s after %s", req.From.Format(time.DateOnly), req.To.Format(time.DateOnly))
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1", gameLogColumns, gameLogTable)
	var args []interface{}

	if req.PlayerID != 0 {
		query += " AND player_id = ?"
		args = append(args, req.PlayerID)
	}
	if req.Season != 0 {
		query += " AND season = ?"
		args = append(args, int32(req.Season))
	}
	// Dates compare at day granularity
	if !req.From.IsZero() {
		query += " AND game_date >= toDate(?)"
		args = append(args, req.From.UTC().Format(time.DateOnly))
	}
	if !req.To.IsZero() {
		query += " AND game_date <= toDate(?)"
		args = append(args, req.To.UTC().Format(time.DateOnly))
	}

	query += " ORDER BY game_date DESC, game_id DESC"

	if req.Limit > 0 {
		limit := req.Limit
		if limit > 5000 {
			limit = 5000
		}
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	return query, args, nil
}

// BuildActivePlayersQuery selects players who logged minutes on or after since.
func BuildActivePlayersQuery(since time.Time) (string, []interface{}) {
	query := fmt.Sprintf(
		"SELECT DISTINCT player_id FROM %s WHERE minutes > 0 AND game_date >= toDate(?) ORDER BY player_id",
		gameLogTable,
	)
	return query, []interface{}{since.UTC().Format(time.DateOnly)}
}
