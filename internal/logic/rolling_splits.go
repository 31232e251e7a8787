package logic

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/propline/stats-api/internal/models"
)

// DefaultSplitWindows are the trailing game windows computed when none are given.
var DefaultSplitWindows = []int{5, 10, 15, 20, 30}

var (
	splitsUpserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "props_rolling_splits_upserted_total",
		Help: "Total number of rolling split snapshots written",
	})

	splitsPlayers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "props_rolling_splits_players_total",
		Help: "Players processed by rolling split batches, by result",
	}, []string{"result"})

	splitsBatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "props_rolling_splits_batch_duration_seconds",
		Help:    "Duration of full rolling split batch runs",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	})
)

// averagedStats are the per-game fields averaged over each window.
var averagedStats = []struct {
	name  string
	value func(models.GameStatRecord) decimal.Decimal
}{
	{"points", func(r models.GameStatRecord) decimal.Decimal { return decimal.NewFromInt(int64(r.Points)) }},
	{"rebounds", func(r models.GameStatRecord) decimal.Decimal { return decimal.NewFromInt(int64(r.Rebounds)) }},
	{"assists", func(r models.GameStatRecord) decimal.Decimal { return decimal.NewFromInt(int64(r.Assists)) }},
	{"steals", func(r models.GameStatRecord) decimal.Decimal { return decimal.NewFromInt(int64(r.Steals)) }},
	{"blocks", func(r models.GameStatRecord) decimal.Decimal { return decimal.NewFromInt(int64(r.Blocks)) }},
	{"turnovers", func(r models.GameStatRecord) decimal.Decimal { return decimal.NewFromInt(int64(r.Turnovers)) }},
	{"fgm", func(r models.GameStatRecord) decimal.Decimal { return decimal.NewFromInt(int64(r.FGM)) }},
	{"fga", func(r models.GameStatRecord) decimal.Decimal { return decimal.NewFromInt(int64(r.FGA)) }},
	{"fg3m", func(r models.GameStatRecord) decimal.Decimal { return decimal.NewFromInt(int64(r.FG3M)) }},
	{"fg3a", func(r models.GameStatRecord) decimal.Decimal { return decimal.NewFromInt(int64(r.FG3A)) }},
	{"ftm", func(r models.GameStatRecord) decimal.Decimal { return decimal.NewFromInt(int64(r.FTM)) }},
	{"fta", func(r models.GameStatRecord) decimal.Decimal { return decimal.NewFromInt(int64(r.FTA)) }},
	{"minutes", func(r models.GameStatRecord) decimal.Decimal { return decimal.NewFromFloat(r.Minutes) }},
}

// shootingStats are aggregate makes over aggregate attempts.
var shootingStats = []struct {
	name     string
	makes    func(models.GameStatRecord) int
	attempts func(models.GameStatRecord) int
}{
	{models.SplitFGPct, func(r models.GameStatRecord) int { return r.FGM }, func(r models.GameStatRecord) int { return r.FGA }},
	{models.SplitFG3Pct, func(r models.GameStatRecord) int { return r.FG3M }, func(r models.GameStatRecord) int { return r.FG3A }},
	{models.SplitFTPct, func(r models.GameStatRecord) int { return r.FTM }, func(r models.GameStatRecord) int { return r.FTA }},
}

// SplitsConfig tunes rolling split batches
type SplitsConfig struct {
	ActivityWindowDays int
	Concurrency        int
}

type rollingSplitsComputer struct {
	source GameLogSource
	store  SplitStore
	cfg    SplitsConfig
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewRollingSplitsComputer(source GameLogSource, store SplitStore, cfg SplitsConfig, logger *zap.Logger) RollingSplitsService {
	if cfg.ActivityWindowDays <= 0 {
		cfg.ActivityWindowDays = 60
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &rollingSplitsComputer{
		source: source,
		store:  store,
		cfg:    cfg,
		logger: logger.Sugar(),
		now:    time.Now,
	}
}

// ComputeRollingSplits recomputes and upserts every (stat, window) snapshot
// for a player. The fetch is bounded by a calendar cutoff of max(windows)
// days, so a player with a schedule gap can get under-filled windows.
func (c *rollingSplitsComputer) ComputeRollingSplits(ctx context.Context, playerID int64, windows []int) error {
	windows, err := normalizeWindows(windows)
	if err != nil {
		return err
	}

	now := c.now()
	cutoff := dateOnly(now).AddDate(0, 0, -windows[len(windows)-1])

	records, err := c.source.PlayerGameLog(ctx, playerID, models.GameLogQuery{From: cutoff})
	if err != nil {
		return fmt.Errorf("fetch game log for player %d: %w", playerID, err)
	}
	if len(records) == 0 {
		c.logger.Debugw("No games in split window", "player", playerID, "cutoff", cutoff)
		return nil
	}
	sortMostRecentFirst(records)

	updatedAt := now.UTC()
	for _, w := range windows {
		for _, snap := range buildSnapshots(playerID, w, firstN(records, w), updatedAt) {
			if err := c.store.UpsertSplit(ctx, snap); err != nil {
				return fmt.Errorf("upsert split %s/%d for player %d: %w", snap.StatCategory, w, playerID, err)
			}
			splitsUpserted.Inc()
		}
	}
	return nil
}

// ProcessAllPlayers refreshes splits for every recently active player.
// A failing player is counted and logged; the batch always runs to the end.
func (c *rollingSplitsComputer) ProcessAllPlayers(ctx context.Context) (result models.BatchResult) {
	start := time.Now()
	result = models.BatchResult{RunID: uuid.NewString()}
	defer func() {
		result.Duration = time.Since(start)
		splitsBatchDuration.Observe(result.Duration.Seconds())
	}()

	since := dateOnly(c.now()).AddDate(0, 0, -c.cfg.ActivityWindowDays)
	players, err := c.source.ActivePlayers(ctx, since)
	if err != nil {
		c.logger.Errorw("Failed to list active players", "run", result.RunID, "since", since, "error", err)
		result.Errors = 1
		return result
	}
	result.Total = len(players)

	c.logger.Infow("Rolling split batch started",
		"run", result.RunID,
		"players", result.Total,
		"concurrency", c.cfg.Concurrency,
	)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(c.cfg.Concurrency)

	for _, id := range players {
		if ctx.Err() != nil {
			c.logger.Warnw("Rolling split batch canceled", "run", result.RunID, "error", ctx.Err())
			break
		}
		g.Go(func() error {
			err := c.ComputeRollingSplits(ctx, id, nil)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors++
				splitsPlayers.WithLabelValues("error").Inc()
				c.logger.Errorw("Rolling split computation failed", "run", result.RunID, "player", id, "error", err)
				return nil
			}
			result.Processed++
			splitsPlayers.WithLabelValues("ok").Inc()
			return nil
		})
	}
	_ = g.Wait()

	c.logger.Infow("Rolling split batch finished",
		"run", result.RunID,
		"processed", result.Processed,
		"errors", result.Errors,
		"total", result.Total,
		"duration", time.Since(start),
	)
	return result
}

func (c *rollingSplitsComputer) GetRollingSplits(ctx context.Context, playerID int64) ([]models.RollingSplitSnapshot, error) {
	splits, err := c.store.ListSplits(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("list splits for player %d: %w", playerID, err)
	}
	return splits, nil
}

// buildSnapshots averages one window. Values go through decimal arithmetic
// so identical inputs always produce identical stored strings.
func buildSnapshots(playerID int64, window int, games []models.GameStatRecord, updatedAt time.Time) []models.RollingSplitSnapshot {
	n := decimal.NewFromInt(int64(len(games)))
	snaps := make([]models.RollingSplitSnapshot, 0, len(averagedStats)+len(shootingStats))

	for _, stat := range averagedStats {
		sum := decimal.Zero
		for _, g := range games {
			sum = sum.Add(stat.value(g))
		}
		snaps = append(snaps, models.RollingSplitSnapshot{
			PlayerID:     playerID,
			StatCategory: stat.name,
			WindowSize:   window,
			Average:      sum.DivRound(n, 8).Round(models.SplitPrecision(stat.name)),
			GamesSampled: len(games),
			UpdatedAt:    updatedAt,
		})
	}

	for _, stat := range shootingStats {
		var makes, attempts int
		for _, g := range games {
			makes += stat.makes(g)
			attempts += stat.attempts(g)
		}
		pct := decimal.Zero
		if attempts > 0 {
			pct = decimal.NewFromInt(int64(makes)).DivRound(decimal.NewFromInt(int64(attempts)), 8)
		}
		snaps = append(snaps, models.RollingSplitSnapshot{
			PlayerID:     playerID,
			StatCategory: stat.name,
			WindowSize:   window,
			Average:      pct.Round(models.SplitPrecision(stat.name)),
			GamesSampled: len(games),
			UpdatedAt:    updatedAt,
		})
	}
	return snaps
}

func normalizeWindows(windows []int) ([]int, error) {
	if len(windows) == 0 {
		windows = DefaultSplitWindows
	}
	seen := make(map[int]bool, len(windows))
	out := make([]int, 0, len(windows))
	for _, w := range windows {
		if w <= 0 {
			return nil, models.NewValidationError("windows", "window size must be positive, got %d", w)
		}
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	sort.Ints(out)
	return out, nil
}
