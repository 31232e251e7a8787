package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/propline/stats-api/internal/models"
)

// ClickHouseGameLogs reads player game records from player_game_stats.
type ClickHouseGameLogs struct {
	ch      driver.Conn
	timeout time.Duration
	logger  *zap.SugaredLogger
}

func NewClickHouseGameLogs(ch driver.Conn, timeout time.Duration, logger *zap.Logger) *ClickHouseGameLogs {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ClickHouseGameLogs{ch: ch, timeout: timeout, logger: logger.Sugar()}
}

// OpenClickHouse connects using a clickhouse:// DSN and verifies the connection.
func OpenClickHouse(ctx context.Context, dsn string) (driver.Conn, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}
	return conn, nil
}

func (s *ClickHouseGameLogs) PlayerGameLog(ctx context.Context, playerID int64, q models.GameLogQuery) ([]models.GameStatRecord, error) {
	return s.queryGames(ctx, GameLogRequest{
		PlayerID: playerID,
		Season:   q.Season,
		From:     q.From,
		To:       q.To,
		Limit:    q.Limit,
	})
}

func (s *ClickHouseGameLogs) SeasonGameLogs(ctx context.Context, season int) ([]models.GameStatRecord, error) {
	return s.queryGames(ctx, GameLogRequest{Season: season})
}

func (s *ClickHouseGameLogs) ActivePlayers(ctx context.Context, since time.Time) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query, args := BuildActivePlayersQuery(since)
	rows, err := s.ch.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query active players: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan active player: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active players: %w", err)
	}
	return ids, nil
}

// Ping reports whether ClickHouse is reachable.
func (s *ClickHouseGameLogs) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.ch.Ping(ctx)
}

func (s *ClickHouseGameLogs) queryGames(ctx context.Context, req GameLogRequest) ([]models.GameStatRecord, error) {
	query, args, err := BuildGameLogQuery(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	rows, err := s.ch.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query game logs: %w", err)
	}
	defer rows.Close()

	records, err := scanGameRows(rows)
	if err != nil {
		return nil, err
	}

	if elapsed := time.Since(start); elapsed > s.timeout/2 {
		s.logger.Warnw("Slow game log query",
			"player", req.PlayerID,
			"season", req.Season,
			"rows", len(records),
			"elapsed", elapsed,
		)
	}
	return records, nil
}

// gameRow mirrors the ClickHouse column types of player_game_stats
type gameRow struct {
	GameID         int64
	PlayerID       int64
	Season         int32
	GameDate       time.Time
	TeamID         int64
	OpponentTeamID int64
	IsHome         bool
	Minutes        float64
	Points         int32
	Rebounds       int32
	Assists        int32
	Steals         int32
	Blocks         int32
	Turnovers      int32
	FGM            int32
	FGA            int32
	FG3M           int32
	FG3A           int32
	FTM            int32
	FTA            int32
}

func scanGameRows(rows driver.Rows) ([]models.GameStatRecord, error) {
	var out []models.GameStatRecord
	for rows.Next() {
		var r gameRow
		if err := rows.Scan(
			&r.GameID, &r.PlayerID, &r.Season, &r.GameDate, &r.TeamID, &r.OpponentTeamID, &r.IsHome, &r.Minutes,
			&r.Points, &r.Rebounds, &r.Assists, &r.Steals, &r.Blocks, &r.Turnovers,
			&r.FGM, &r.FGA, &r.FG3M, &r.FG3A, &r.FTM, &r.FTA,
		); err != nil {
			return nil, fmt.Errorf("scan game row: %w", err)
		}
		out = append(out, models.GameStatRecord{
			GameID:         r.GameID,
			PlayerID:       r.PlayerID,
			Season:         int(r.Season),
			GameDate:       r.GameDate.UTC(),
			TeamID:         r.TeamID,
			OpponentTeamID: r.OpponentTeamID,
			IsHome:         r.IsHome,
			Minutes:        r.Minutes,
			Points:         int(r.Points),
			Rebounds:       int(r.Rebounds),
			Assists:        int(r.Assists),
			Steals:         int(r.Steals),
			Blocks:         int(r.Blocks),
			Turnovers:      int(r.Turnovers),
			FGM:            int(r.FGM),
			FGA:            int(r.FGA),
			FG3M:           int(r.FG3M),
			FG3A:           int(r.FG3A),
			FTM:            int(r.FTM),
			FTA:            int(r.FTA),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game rows: %w", err)
	}
	return out, nil
}
