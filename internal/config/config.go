package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port int
	Env  string

	// CORS
	AllowedOrigins []string

	// Database URLs
	PostgresURL   string
	ClickHouseURL string
	RedisURL      string

	// Cache
	CacheBackend   string // "memory" or "redis"
	TTLShort       time.Duration
	TTLMedium      time.Duration
	TTLLong        time.Duration
	StaleRetention time.Duration

	// Analytics
	CurrentSeason      int
	ActivityWindowDays int
	TrendThresholdPct  float64
	RecentWindow       int

	// Timeouts
	UpstreamTimeout time.Duration
	StoreTimeout    time.Duration

	// Circuit breaker
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration

	// Rolling split batches
	BatchConcurrency int
	SplitsSchedule   string
	RefreshWorkers   int
	RefreshQueueSize int
}

// Load loads configuration from environment variables.
// It returns an error if critical configuration is missing.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnvInt("PORT", 8080),
		Env:  getEnv("ENV", "development"),

		CacheBackend:   strings.ToLower(getEnv("CACHE_BACKEND", "memory")),
		TTLShort:       getEnvDuration("TTL_SHORT", 5*time.Minute),
		TTLMedium:      getEnvDuration("TTL_MEDIUM", time.Hour),
		TTLLong:        getEnvDuration("TTL_LONG", 24*time.Hour),
		StaleRetention: getEnvDuration("STALE_RETENTION", 24*time.Hour),

		CurrentSeason:      getEnvInt("CURRENT_SEASON", defaultSeason(time.Now())),
		ActivityWindowDays: getEnvInt("ACTIVITY_WINDOW_DAYS", 60),
		TrendThresholdPct:  getEnvFloat("TREND_THRESHOLD_PCT", 10),
		RecentWindow:       getEnvInt("RECENT_WINDOW", 5),

		UpstreamTimeout: getEnvDuration("UPSTREAM_TIMEOUT", 5*time.Second),
		StoreTimeout:    getEnvDuration("STORE_TIMEOUT", 3*time.Second),

		BreakerFailureRatio: getEnvFloat("BREAKER_FAILURE_RATIO", 0.5),
		BreakerOpenTimeout:  getEnvDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),

		BatchConcurrency: getEnvInt("BATCH_CONCURRENCY", 1),
		SplitsSchedule:   getEnv("SPLITS_SCHEDULE", "0 6 * * *"),
		RefreshWorkers:   getEnvInt("REFRESH_WORKERS", 2),
		RefreshQueueSize: getEnvInt("REFRESH_QUEUE_SIZE", 256),
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	rawOrigins := strings.Split(origins, ",")
	for _, o := range rawOrigins {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	if cfg.CacheBackend != "memory" && cfg.CacheBackend != "redis" {
		return nil, fmt.Errorf("invalid CACHE_BACKEND %q: want memory or redis", cfg.CacheBackend)
	}

	// Critical configuration - fail if missing
	var err error
	if cfg.PostgresURL, err = getEnvRequired("POSTGRES_URL"); err != nil {
		return nil, err
	}
	if cfg.ClickHouseURL, err = getEnvRequired("CLICKHOUSE_URL"); err != nil {
		return nil, err
	}
	if cfg.CacheBackend == "redis" {
		if cfg.RedisURL, err = getEnvRequired("REDIS_URL"); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// defaultSeason names a season by the year it ends in. October onward
// belongs to the next year's season.
func defaultSeason(now time.Time) int {
	if now.Month() >= time.October {
		return now.Year() + 1
	}
	return now.Year()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
