// Package scheduler runs the region refresh on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/tourism-dashboard-service/internal/observability"
	"github.com/go-co-op/gocron"
)

// Refresher performs one refresh pass.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler periodically refreshes the forecast and concentration series.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a Scheduler that runs refresher every interval, first run
// immediately on Start.
func New(refresher Refresher, interval time.Duration, loc *time.Location, logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		refresher: refresher,
		interval:  interval,
		logger:    logger,
		metrics:   metrics,
	}
}

// Start schedules the refresh job and starts the underlying scheduler. Runs
// never overlap; a run still in progress when the next is due is skipped.
// Each run is bounded by the interval and canceled when ctx ends or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return errors.New("scheduler: interval must be positive")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
		s.run(ctx)
	})
	if err != nil {
		cancel()
		return err
	}

	s.scheduler.StartAsync()
	s.metrics.RefreshRunning.Set(1)
	s.logger.Info("refresh scheduler started", "interval", s.interval)
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	s.logger.Debug("refresh job running")
	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.Warn("refresh job failed", "error", err)
		return
	}
	s.logger.Debug("refresh job completed")
}

// Stop stops the scheduler, cancels any in-flight run and drops future jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.scheduler.Stop()
	s.metrics.RefreshRunning.Set(0)
	s.logger.Info("refresh scheduler stopped")
}
