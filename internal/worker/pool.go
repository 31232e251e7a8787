// Package worker runs rolling split refreshes off the request path:
// - Asynchronous per-player refreshes with load shedding
// - Deduplication of players already waiting in the queue
// - A cron schedule for the full batch
package worker

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Prometheus metrics
var (
	refreshesQueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "props_split_refreshes_queued_total",
		Help: "Total number of split refreshes accepted into the queue",
	})

	refreshesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "props_split_refreshes_processed_total",
		Help: "Total number of split refreshes completed",
	})

	refreshesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "props_split_refreshes_failed_total",
		Help: "Total number of split refreshes that failed",
	})

	refreshesShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "props_split_refreshes_load_shed_total",
		Help: "Total number of split refreshes dropped because the queue was full",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "props_refresh_queue_depth",
		Help: "Current depth of the split refresh queue",
	})

	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "props_split_refresh_duration_seconds",
		Help:    "Duration of a single player split refresh",
		Buckets: prometheus.DefBuckets,
	})
)

// SplitsRefresher recomputes one player's rolling splits
type SplitsRefresher interface {
	ComputeRollingSplits(ctx context.Context, playerID int64, windows []int) error
}

// Job represents a unit of work for the worker pool
type Job struct {
	PlayerID  int64
	Windows   []int
	Timestamp time.Time

	key string
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount int
	QueueSize   int
	JobTimeout  time.Duration
	Refresher   SplitsRefresher
	Logger      *zap.Logger
}

// Pool manages a pool of workers for async split refreshes
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger

	mu      sync.Mutex
	pending map[string]bool
	stopped bool
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = time.Minute
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
		pending:  make(map[string]bool),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	// Start queue depth reporter
	go p.reportQueueDepth()

	p.logger.Infow("Refresh pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
	)
}

// Stop drains queued jobs and waits for the workers to exit
func (p *Pool) Stop() {
	p.logger.Info("Stopping refresh pool...")

	p.mu.Lock()
	p.stopped = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
	p.logger.Info("Refresh pool stopped")
}

// Enqueue schedules a refresh for playerID. It never blocks: a full queue
// or a stopped pool sheds the job and returns false. A job already waiting
// for the same player and window set is not queued twice and returns true.
// Jobs for the same player with different windows are queued separately.
func (p *Pool) Enqueue(playerID int64, windows []int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		p.logger.Warnw("Refresh pool stopped, dropping job", "player", playerID)
		refreshesShed.Inc()
		return false
	}
	key := jobKey(playerID, windows)
	if p.pending[key] {
		return true
	}

	job := Job{
		PlayerID:  playerID,
		Windows:   windows,
		Timestamp: time.Now(),
		key:       key,
	}

	select {
	case p.jobQueue <- job:
		p.pending[key] = true
		refreshesQueued.Inc()
		return true
	default:
		p.logger.Warnw("Refresh queue full, dropping job", "player", playerID, "queueSize", p.config.QueueSize)
		refreshesShed.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// worker processes jobs until the queue is closed
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debugw("Worker started", "worker", id)

	for job := range p.jobQueue {
		p.mu.Lock()
		delete(p.pending, job.key)
		p.mu.Unlock()

		p.process(id, job)
	}
}

func (p *Pool) process(id int, job Job) {
	ctx, cancel := context.WithTimeout(p.ctx, p.config.JobTimeout)
	defer cancel()

	start := time.Now()
	err := p.config.Refresher.ComputeRollingSplits(ctx, job.PlayerID, job.Windows)
	refreshDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		p.logger.Errorw("Split refresh failed",
			"worker", id,
			"player", job.PlayerID,
			"queued", time.Since(job.Timestamp),
			"error", err,
		)
		refreshesFailed.Inc()
		return
	}
	p.logger.Debugw("Split refresh done", "worker", id, "player", job.PlayerID, "duration", time.Since(start))
	refreshesProcessed.Inc()
}

// jobKey identifies a refresh by player and sorted, deduplicated windows.
// An empty window list means the default windows.
func jobKey(playerID int64, windows []int) string {
	ws := slices.Compact(slices.Sorted(slices.Values(windows)))
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = strconv.Itoa(w)
	}
	return strconv.FormatInt(playerID, 10) + "|" + strings.Join(parts, ",")
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		}
	}
}
