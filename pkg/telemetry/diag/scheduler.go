package diag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler emits recorder summaries on a schedule. Long-running processes
// use it to get periodic one-line-per-endpoint reports without waiting for
// process exit.
type Scheduler struct {
	recorder *Recorder
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a scheduler that logs the recorder's summary on the
// given cron schedule. An empty schedule disables periodic reporting.
//
// Common cron expressions:
//   - "*/15 * * * *" - Every 15 minutes
//   - "0 * * * *"    - Hourly
func NewScheduler(recorder *Recorder, schedule string) *Scheduler {
	return &Scheduler{
		recorder: recorder,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "diag.scheduler"),
	}
}

// Start begins scheduled reporting. If no schedule is configured, Start does
// nothing and returns nil.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("report schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.recorder.LogSummary(s.logger)
	}); err != nil {
		return fmt.Errorf("failed to schedule diagnostics report: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("diagnostics scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for any running report to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("diagnostics scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled report time, nil if not scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
