// ABOUTME: Interval scheduler driving periodic pipeline runs.
// ABOUTME: Each run gets its own bounded context; failures are logged, not fatal.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// runTimeout bounds a single scheduled pipeline run.
const runTimeout = 5 * time.Minute

// Scheduler runs the pipeline on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	pipeline  *Pipeline
	minutes   int
	logger    *slog.Logger
}

// NewScheduler creates a scheduler running pipeline every intervalMinutes.
func NewScheduler(pipeline *Pipeline, intervalMinutes int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if intervalMinutes <= 0 {
		intervalMinutes = 60
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		pipeline:  pipeline,
		minutes:   intervalMinutes,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// It returns immediately; runs happen on the scheduler's goroutine.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		if _, err := s.pipeline.Run(ctx); err != nil {
			s.logger.Error("scheduled run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule pipeline: %w", err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "interval_minutes", s.minutes)
	return nil
}

// Stop halts the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
