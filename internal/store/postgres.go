package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/propline/stats-api/internal/models"
)

// PgPool defines the interface for PostgreSQL connection pool
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// PgSplitStore persists rolling split snapshots in rolling_splits.
type PgSplitStore struct {
	pg      PgPool
	timeout time.Duration
}

func NewPgSplitStore(pg PgPool, timeout time.Duration) *PgSplitStore {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &PgSplitStore{pg: pg, timeout: timeout}
}

// OpenPostgres creates a pool and verifies the connection.
func OpenPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// UpsertSplit writes one (player, stat, window) row. The average is sent as
// its fixed-scale string so NUMERIC stores exactly what was computed.
func (s *PgSplitStore) UpsertSplit(ctx context.Context, snap models.RollingSplitSnapshot) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.pg.Exec(ctx, `
		INSERT INTO rolling_splits (player_id, stat_category, window_size, average, games_sampled, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6)
		ON CONFLICT (player_id, stat_category, window_size) DO UPDATE SET
			average = EXCLUDED.average,
			games_sampled = EXCLUDED.games_sampled,
			updated_at = EXCLUDED.updated_at
	`, snap.PlayerID, snap.StatCategory, snap.WindowSize,
		snap.Average.StringFixed(models.SplitPrecision(snap.StatCategory)),
		snap.GamesSampled, snap.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert rolling split: %w", err)
	}
	return nil
}

// ListSplits returns a player's snapshots ordered by stat then window.
func (s *PgSplitStore) ListSplits(ctx context.Context, playerID int64) ([]models.RollingSplitSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.pg.Query(ctx, `
		SELECT player_id, stat_category, window_size, average::text, games_sampled, updated_at
		FROM rolling_splits
		WHERE player_id = $1
		ORDER BY stat_category, window_size
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("query rolling splits: %w", err)
	}
	defer rows.Close()

	splits := []models.RollingSplitSnapshot{}
	for rows.Next() {
		var (
			snap    models.RollingSplitSnapshot
			average string
		)
		if err := rows.Scan(&snap.PlayerID, &snap.StatCategory, &snap.WindowSize, &average, &snap.GamesSampled, &snap.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan rolling split: %w", err)
		}
		if snap.Average, err = decimal.NewFromString(average); err != nil {
			return nil, fmt.Errorf("parse average %q: %w", average, err)
		}
		splits = append(splits, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rolling splits: %w", err)
	}
	return splits, nil
}

// Ping reports whether Postgres is reachable.
func (s *PgSplitStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.pg.Ping(ctx)
}
