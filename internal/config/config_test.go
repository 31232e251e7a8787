package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://localhost/props")
	t.Setenv("CLICKHOUSE_URL", "clickhouse://localhost:9000/props")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CacheBackend != "memory" || cfg.TTLShort != 5*time.Minute || cfg.TTLLong != 24*time.Hour {
		t.Errorf("cache defaults = %s %v %v", cfg.CacheBackend, cfg.TTLShort, cfg.TTLLong)
	}
	if cfg.BatchConcurrency != 1 || cfg.ActivityWindowDays != 60 || cfg.RecentWindow != 5 {
		t.Errorf("analytics defaults = %d %d %d", cfg.BatchConcurrency, cfg.ActivityWindowDays, cfg.RecentWindow)
	}
	if cfg.TrendThresholdPct != 10 {
		t.Errorf("TrendThresholdPct = %v, want 10", cfg.TrendThresholdPct)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://localhost/props")
	t.Setenv("CLICKHOUSE_URL", "clickhouse://localhost:9000/props")
	t.Setenv("CACHE_BACKEND", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("TTL_SHORT", "90s")
	t.Setenv("TREND_THRESHOLD_PCT", "7.5")
	t.Setenv("BATCH_CONCURRENCY", "4")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CacheBackend != "redis" || cfg.TTLShort != 90*time.Second {
		t.Errorf("cache = %s %v", cfg.CacheBackend, cfg.TTLShort)
	}
	if cfg.TrendThresholdPct != 7.5 || cfg.BatchConcurrency != 4 {
		t.Errorf("analytics = %v %d", cfg.TrendThresholdPct, cfg.BatchConcurrency)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://localhost/props")
	t.Setenv("CLICKHOUSE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("expected error for missing CLICKHOUSE_URL")
	}

	t.Setenv("CLICKHOUSE_URL", "clickhouse://localhost:9000/props")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "")
	if _, err := Load(); err == nil {
		t.Error("expected error for redis backend without REDIS_URL")
	}

	t.Setenv("CACHE_BACKEND", "memcached")
	if _, err := Load(); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestDefaultSeason(t *testing.T) {
	tests := []struct {
		now  time.Time
		want int
	}{
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 2024},
		{time.Date(2024, 10, 22, 0, 0, 0, 0, time.UTC), 2025},
		{time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), 2024},
	}
	for _, tt := range tests {
		if got := defaultSeason(tt.now); got != tt.want {
			t.Errorf("defaultSeason(%s) = %d, want %d", tt.now.Format(time.DateOnly), got, tt.want)
		}
	}
}
