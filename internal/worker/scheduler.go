package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/propline/stats-api/internal/models"
)

// BatchRunner refreshes splits for every active player
type BatchRunner interface {
	ProcessAllPlayers(ctx context.Context) models.BatchResult
}

// Scheduler runs the full rolling split batch on a cron schedule. A run
// that is still going when the next one fires is skipped.
type Scheduler struct {
	cron     *cron.Cron
	runner   BatchRunner
	schedule string
	logger   *zap.SugaredLogger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	lastRun *models.BatchResult
}

func NewScheduler(schedule string, runner BatchRunner, logger *zap.Logger) *Scheduler {
	sugar := logger.Sugar()
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{sugar}))),
		runner:   runner,
		schedule: schedule,
		logger:   sugar,
	}
}

// Start registers the batch job and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if _, err := s.cron.AddFunc(s.schedule, s.runOnce); err != nil {
		s.cancel()
		return fmt.Errorf("schedule rolling split batch %q: %w", s.schedule, err)
	}
	s.cron.Start()

	s.logger.Infow("Split scheduler started", "schedule", s.schedule, "next", s.Next())
	return nil
}

// Stop cancels a running batch and waits for it to return.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	s.logger.Info("Split scheduler stopped")
}

// Next returns when the batch fires next, or the zero time if not scheduled.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// LastRun returns the result of the most recent batch, if any.
func (s *Scheduler) LastRun() (models.BatchResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun == nil {
		return models.BatchResult{}, false
	}
	return *s.lastRun, true
}

func (s *Scheduler) runOnce() {
	result := s.runner.ProcessAllPlayers(s.ctx)

	s.mu.Lock()
	s.lastRun = &result
	s.mu.Unlock()

	s.logger.Infow("Scheduled split batch complete",
		"run", result.RunID,
		"processed", result.Processed,
		"errors", result.Errors,
		"total", result.Total,
		"duration", result.Duration,
	)
}

// cronLogger routes cron's internal logging through zap
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
