// Command api serves player prop analytics over HTTP and refreshes rolling
// splits on a schedule.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/propline/stats-api/internal/app"
	"github.com/propline/stats-api/internal/config"
	"github.com/propline/stats-api/internal/handlers"
	"github.com/propline/stats-api/internal/worker"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := app.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		sugar.Fatalw("Failed to initialize backends", "error", err)
	}
	defer a.Close()

	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount: cfg.RefreshWorkers,
		QueueSize:   cfg.RefreshQueueSize,
		Refresher:   a.Analytics,
		Logger:      logger,
	})
	// queued refreshes drain on shutdown, bounded by the job timeout
	pool.Start(context.Background())

	scheduler := worker.NewScheduler(cfg.SplitsSchedule, a.Analytics, logger)
	if err := scheduler.Start(ctx); err != nil {
		sugar.Fatalw("Failed to start split scheduler", "error", err)
	}

	hcfg := handlers.Config{
		Analytics:    a.Analytics,
		RefreshQueue: pool,
		Postgres:     a.Splits,
		ClickHouse:   a.GameLogs,
		Logger:       logger,
	}
	if a.Redis != nil {
		hcfg.Redis = a.Redis
	}
	router := handlers.NewRouter(handlers.New(hcfg), cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sugar.Infow("Starting props API",
			"addr", srv.Addr,
			"env", cfg.Env,
			"season", cfg.CurrentSeason,
			"cache", cfg.CacheBackend,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Errorw("Server failed", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	sugar.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Shutdown error", "error", err)
	}
	scheduler.Stop()
	pool.Stop()
	sugar.Info("Server stopped")
}
