package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/propline/stats-api/internal/cache"
	"github.com/propline/stats-api/internal/models"
)

type result struct {
	HitRate int `json:"hit_rate"`
}

func TestWithFallback(t *testing.T) {
	ctx := context.Background()
	upstreamDown := errors.New("clickhouse: connection refused")

	tests := []struct {
		name       string
		seed       bool
		primaryErr error
		wantRate   int
		wantSource Source
		wantErr    bool
	}{
		{name: "live", wantRate: 55, wantSource: SourceLive},
		{name: "stale after failure", seed: true, primaryErr: upstreamDown, wantRate: 40, wantSource: SourceStale},
		{name: "default after failure", primaryErr: upstreamDown, wantRate: 0, wantSource: SourceDefault},
		{name: "validation passes through", seed: true, primaryErr: models.NewValidationError("line", "must be non-negative"), wantErr: true},
		{name: "deadline is absorbed", primaryErr: context.DeadlineExceeded, wantSource: SourceDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cache.New(cache.NewMemoryStore(), cache.DefaultTTLs, time.Hour, zap.NewNop())
			coord := NewCoordinator(c, zap.NewNop())

			if tt.seed {
				// expires immediately but is retained for the stale path
				_, _ = cache.GetOrSet(ctx, c, "k", 0, func(context.Context) (result, error) {
					return result{HitRate: 40}, nil
				})
			}

			got, source, err := WithFallback(ctx, coord, "k", func(context.Context) (result, error) {
				if tt.primaryErr != nil {
					return result{}, tt.primaryErr
				}
				return result{HitRate: 55}, nil
			}, result{})

			if tt.wantErr {
				if !errors.Is(err, models.ErrValidation) {
					t.Fatalf("err = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.HitRate != tt.wantRate || source != tt.wantSource {
				t.Errorf("got %d from %s, want %d from %s", got.HitRate, source, tt.wantRate, tt.wantSource)
			}
		})
	}
}

func TestWithFallbackEmptyKeySkipsStale(t *testing.T) {
	c := cache.New(cache.NewMemoryStore(), cache.DefaultTTLs, time.Hour, zap.NewNop())
	coord := NewCoordinator(c, zap.NewNop())

	got, source, err := WithFallback(context.Background(), coord, "", func(context.Context) ([]int, error) {
		return nil, errors.New("down")
	}, []int{})
	if err != nil || source != SourceDefault || len(got) != 0 || got == nil {
		t.Errorf("got %v from %s (err %v), want empty default", got, source, err)
	}
}

func TestWithFallbackNilCache(t *testing.T) {
	coord := NewCoordinator(nil, zap.NewNop())
	_, source, err := WithFallback(context.Background(), coord, "k", func(context.Context) (int, error) {
		return 0, errors.New("down")
	}, -1)
	if err != nil || source != SourceDefault {
		t.Errorf("source = %s, err = %v", source, err)
	}
}
