package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/propline/stats-api/internal/models"
)

func TestUpsertSplit(t *testing.T) {
	var gotSQL string
	var gotArgs []any
	pg := &MockPgPool{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			gotSQL, gotArgs = sql, args
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}
	store := NewPgSplitStore(pg, time.Second)

	updated := time.Date(2024, 3, 11, 6, 0, 0, 0, time.UTC)
	tests := []struct {
		stat    string
		average decimal.Decimal
		want    string
	}{
		{"points", decimal.RequireFromString("25"), "25.0"},
		{models.SplitFGPct, decimal.RequireFromString("0.41"), "0.410"},
	}
	for _, tt := range tests {
		err := store.UpsertSplit(context.Background(), models.RollingSplitSnapshot{
			PlayerID: 237, StatCategory: tt.stat, WindowSize: 10, Average: tt.average, GamesSampled: 10, UpdatedAt: updated,
		})
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(gotSQL, "ON CONFLICT (player_id, stat_category, window_size) DO UPDATE") {
			t.Errorf("upsert missing conflict clause: %s", gotSQL)
		}
		if gotArgs[3] != tt.want {
			t.Errorf("%s average arg = %v, want %s", tt.stat, gotArgs[3], tt.want)
		}
	}
}

func TestUpsertSplitError(t *testing.T) {
	boom := errors.New("connection reset")
	pg := &MockPgPool{ExecFunc: func(context.Context, string, ...any) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, boom
	}}

	err := NewPgSplitStore(pg, time.Second).UpsertSplit(context.Background(), models.RollingSplitSnapshot{StatCategory: "points"})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped exec error", err)
	}
}

func TestListSplits(t *testing.T) {
	updated := time.Date(2024, 3, 11, 6, 0, 0, 0, time.UTC)
	pg := &MockPgPool{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return &MockPgRows{data: [][]any{
				{int64(237), "assists", 5, "6.4", 5, updated},
				{int64(237), "fg_pct", 5, "0.452", 5, updated},
			}}, nil
		},
	}

	splits, err := NewPgSplitStore(pg, time.Second).ListSplits(context.Background(), 237)
	if err != nil {
		t.Fatal(err)
	}
	if len(splits) != 2 {
		t.Fatalf("got %d splits, want 2", len(splits))
	}
	if splits[1].StatCategory != "fg_pct" || splits[1].Average.String() != "0.452" {
		t.Errorf("second split = %+v", splits[1])
	}
}

func TestListSplitsEmpty(t *testing.T) {
	splits, err := NewPgSplitStore(&MockPgPool{}, time.Second).ListSplits(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if splits == nil || len(splits) != 0 {
		t.Errorf("got %v, want empty non-nil slice", splits)
	}
}
