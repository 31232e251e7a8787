// Package app assembles the stores, cache and analytics engines shared by
// the HTTP server and the propctl CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/propline/stats-api/internal/cache"
	"github.com/propline/stats-api/internal/config"
	"github.com/propline/stats-api/internal/logic"
	"github.com/propline/stats-api/internal/store"
)

const sweepInterval = time.Minute

type App struct {
	Analytics  *logic.Analytics
	GameLogs   *store.ClickHouseGameLogs
	Splits     *store.PgSplitStore
	Redis      *redis.Client // nil with the memory backend
	ClickHouse driver.Conn
	Postgres   *pgxpool.Pool
}

// Build connects to every backend named in cfg. The returned App must be
// closed by the caller.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	log := logger.Sugar()
	a := &App{}

	ch, err := store.OpenClickHouse(ctx, cfg.ClickHouseURL)
	if err != nil {
		return nil, err
	}
	a.ClickHouse = ch
	log.Infow("Connected to ClickHouse")

	pg, err := store.OpenPostgres(ctx, cfg.PostgresURL)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Postgres = pg
	log.Infow("Connected to Postgres")

	var backend cache.Store
	switch cfg.CacheBackend {
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		a.Redis = redis.NewClient(opts)
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			// the cache treats backend errors as misses, keep serving
			log.Warnw("Redis unreachable at startup", "error", err)
		}
		backend = cache.NewRedisStore(a.Redis, "props:")
	default:
		mem := cache.NewMemoryStore()
		mem.StartSweeper(ctx, sweepInterval)
		backend = mem
	}
	log.Infow("Cache ready", "backend", cfg.CacheBackend)

	c := cache.New(backend, cache.TTLs{
		Short:  cfg.TTLShort,
		Medium: cfg.TTLMedium,
		Long:   cfg.TTLLong,
	}, cfg.StaleRetention, logger)

	a.GameLogs = store.NewClickHouseGameLogs(ch, cfg.UpstreamTimeout, logger)
	source := store.NewBreakingGameLogs(a.GameLogs, store.BreakerConfig{
		Name:         "clickhouse_game_logs",
		FailureRatio: cfg.BreakerFailureRatio,
		OpenTimeout:  cfg.BreakerOpenTimeout,
	}, logger)
	a.Splits = store.NewPgSplitStore(pg, cfg.StoreTimeout)

	a.Analytics = logic.NewAnalytics(logic.AnalyticsConfig{
		Props: logic.NewPropAnalyticsEngine(source),
		Metrics: logic.NewAdvancedMetricsEngine(source, logic.MetricsConfig{
			RecentWindow:      cfg.RecentWindow,
			TrendThresholdPct: cfg.TrendThresholdPct,
		}),
		Splits: logic.NewRollingSplitsComputer(source, a.Splits, logic.SplitsConfig{
			ActivityWindowDays: cfg.ActivityWindowDays,
			Concurrency:        cfg.BatchConcurrency,
		}, logger),
		Cache:         c,
		CurrentSeason: cfg.CurrentSeason,
		Logger:        logger,
	})

	return a, nil
}

// Close releases every connection opened by Build
func (a *App) Close() {
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.Postgres != nil {
		a.Postgres.Close()
	}
	if a.ClickHouse != nil {
		a.ClickHouse.Close()
	}
}

// NewLogger builds a production logger unless env is "development"
func NewLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
