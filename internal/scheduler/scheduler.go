// Package scheduler drives the recurring trading-session runs: one report
// after the morning close and one after the afternoon close, weekdays only.
package scheduler

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/common"
	"github.com/ternarybob/marketbrief/internal/models"
)

// Service schedules the session runs over a cron instance
type Service struct {
	cron    *cron.Cron
	logger  arbor.ILogger
	runner  func(session models.Session)
	mu      sync.Mutex
	running bool
}

// NewService creates the scheduler. The runner is invoked once per firing
// with the session that triggered it; overlapping runs are the runner's
// concern (the default report run finishes well inside a session gap).
func NewService(runner func(session models.Session), logger arbor.ILogger) *Service {
	return &Service{
		cron:   cron.New(),
		logger: logger,
		runner: runner,
	}
}

// Start registers the morning and afternoon entries and starts the cron loop
func (s *Service) Start(schedule common.ScheduleConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	entries := []struct {
		spec    string
		session models.Session
	}{
		{schedule.Morning, models.SessionMorning},
		{schedule.Afternoon, models.SessionAfternoon},
	}
	for _, entry := range entries {
		session := entry.session
		if _, err := s.cron.AddFunc(entry.spec, func() { s.fire(session) }); err != nil {
			return fmt.Errorf("failed to add %s schedule %q: %w", session, entry.spec, err)
		}
		if s.logger != nil {
			s.logger.Info().Str("session", string(session)).Str("cron", entry.spec).Msg("Session run scheduled")
		}
	}

	s.cron.Start()
	s.running = true
	if s.logger != nil {
		s.logger.Info().Msg("Scheduler started")
	}
	return nil
}

// Stop halts the cron loop and waits for an in-flight run to finish
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	if s.logger != nil {
		s.logger.Info().Msg("Scheduler stopped")
	}
}

func (s *Service) fire(session models.Session) {
	if s.logger != nil {
		s.logger.Info().Str("session", string(session)).Msg("Scheduled run firing")
	}
	s.runner(session)
}
