package alerting

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler runs the sweeper once per day at a fixed UTC hour. It is a
// process-lifecycle component: construct it with its dependencies, then
// Start it once and Stop it on shutdown. Start is idempotent.
type Scheduler struct {
	sweeper *Sweeper
	hour    int
	logger  *slog.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewScheduler creates a scheduler that triggers the sweeper daily at
// the given hour (0-23, UTC).
func NewScheduler(sweeper *Sweeper, hour int, logger *slog.Logger) *Scheduler {
	return &Scheduler{sweeper: sweeper, hour: hour, logger: logger}
}

// Start launches the daily job. Starting an already running scheduler
// is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		s.logger.Info("scheduler already running")
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stop, s.done)
	s.logger.Info("scheduler started", "daily_hour_utc", s.hour)
}

// Stop halts the scheduler. It is safe to call on a stopped scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop, s.done = nil, nil
	s.logger.Info("scheduler stopped")
}

// Running reports whether the daily job is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

func (s *Scheduler) loop(stop, done chan struct{}) {
	defer close(done)
	for {
		next := NextRun(time.Now().UTC(), s.hour)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
			if _, err := s.sweeper.Run(context.Background()); err != nil {
				s.logger.Error("scheduled sweep failed", "error", err)
			}
		}
	}
}

// NextRun returns the next instant strictly after now at which the
// daily check fires for the given UTC hour.
func NextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
