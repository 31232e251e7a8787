package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/propline/stats-api/internal/models"
)

type flakySource struct {
	err   error
	calls int
}

func (f *flakySource) PlayerGameLog(ctx context.Context, playerID int64, q models.GameLogQuery) ([]models.GameStatRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []models.GameStatRecord{{GameID: 1, PlayerID: playerID}}, nil
}

func (f *flakySource) SeasonGameLogs(ctx context.Context, season int) ([]models.GameStatRecord, error) {
	f.calls++
	return nil, f.err
}

func (f *flakySource) ActivePlayers(ctx context.Context, since time.Time) ([]int64, error) {
	f.calls++
	return []int64{1}, f.err
}

func TestBreakerOpensOnFailures(t *testing.T) {
	src := &flakySource{err: errors.New("dial tcp: connection refused")}
	b := NewBreakingGameLogs(src, BreakerConfig{Name: "test_open", FailureRatio: 0.5, MinRequests: 3, OpenTimeout: time.Minute}, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := b.PlayerGameLog(ctx, 7, models.GameLogQuery{}); err == nil {
			t.Fatal("expected source error")
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state = %s, want open", b.State())
	}

	_, err := b.SeasonGameLogs(ctx, 2024)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("err = %v, want ErrOpenState", err)
	}
	if src.calls != 3 {
		t.Errorf("source called %d times, want 3", src.calls)
	}
}

func TestBreakerPassesThrough(t *testing.T) {
	src := &flakySource{}
	b := NewBreakingGameLogs(src, BreakerConfig{Name: "test_pass"}, zap.NewNop())

	got, err := b.PlayerGameLog(context.Background(), 7, models.GameLogQuery{})
	if err != nil || len(got) != 1 || got[0].PlayerID != 7 {
		t.Errorf("got %v, %v", got, err)
	}
	ids, err := b.ActivePlayers(context.Background(), time.Now())
	if err != nil || len(ids) != 1 {
		t.Errorf("ids = %v, err = %v", ids, err)
	}
}

func TestBreakerIgnoresCanceledCallers(t *testing.T) {
	src := &flakySource{err: context.Canceled}
	b := NewBreakingGameLogs(src, BreakerConfig{Name: "test_cancel", MinRequests: 2}, zap.NewNop())

	for i := 0; i < 5; i++ {
		_, _ = b.PlayerGameLog(context.Background(), 7, models.GameLogQuery{})
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("state = %s, want closed", b.State())
	}
}
