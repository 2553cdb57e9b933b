package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// SweepFunc is one maintenance task: it returns how many records or
// directories it removed
type SweepFunc func(ctx context.Context) (int, error)

type sweepEntry struct {
	name      string
	schedule  string
	fn        SweepFunc
	isRunning bool
	lastRun   *time.Time
	lastError string
}

// Service runs the periodic maintenance sweeps: expired cache entries,
// stale workspaces and old terminal jobs
type Service struct {
	cron    *cron.Cron
	logger  arbor.ILogger
	mu      sync.Mutex
	sweeps  map[string]*sweepEntry
	running bool
}

// NewService creates the maintenance scheduler
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		cron:   cron.New(),
		logger: logger,
		sweeps: make(map[string]*sweepEntry),
	}
}

// Register adds a named sweep on a cron schedule. Must be called
// before Start.
func (s *Service) Register(name, schedule string, fn SweepFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sweeps[name]; exists {
		return fmt.Errorf("sweep %s already registered", name)
	}

	entry := &sweepEntry{name: name, schedule: schedule, fn: fn}
	if _, err := s.cron.AddFunc(schedule, func() { s.execute(name) }); err != nil {
		return fmt.Errorf("failed to schedule sweep %s: %w", name, err)
	}
	s.sweeps[name] = entry

	s.logger.Info().
		Str("sweep", name).
		Str("schedule", schedule).
		Msg("Maintenance sweep registered")

	return nil
}

// Start begins executing registered sweeps
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	s.logger.Info().Int("sweeps", len(s.sweeps)).Msg("Maintenance scheduler started")
}

// Stop halts the scheduler and waits for a running sweep to finish
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Maintenance scheduler stopped")
}

// Trigger runs a sweep immediately, outside its schedule
func (s *Service) Trigger(name string) error {
	s.mu.Lock()
	_, exists := s.sweeps[name]
	s.mu.Unlock()
	if !exists {
		return fmt.Errorf("sweep %s not found", name)
	}
	go s.execute(name)
	return nil
}

// execute wraps one sweep run with panic recovery and status tracking
func (s *Service) execute(name string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("sweep", name).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Panic recovered in maintenance sweep")
			s.mu.Lock()
			if entry, ok := s.sweeps[name]; ok {
				entry.isRunning = false
				entry.lastError = fmt.Sprintf("panic: %v", r)
			}
			s.mu.Unlock()
		}
	}()

	s.mu.Lock()
	entry, ok := s.sweeps[name]
	if !ok || entry.isRunning {
		s.mu.Unlock()
		return
	}
	entry.isRunning = true
	fn := entry.fn
	s.mu.Unlock()

	start := time.Now()
	removed, err := fn(context.Background())

	s.mu.Lock()
	entry.isRunning = false
	now := time.Now()
	entry.lastRun = &now
	if err != nil {
		entry.lastError = err.Error()
	} else {
		entry.lastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().
			Err(err).
			Str("sweep", name).
			Dur("duration", time.Since(start)).
			Msg("Maintenance sweep failed")
		return
	}

	s.logger.Info().
		Str("sweep", name).
		Int("removed", removed).
		Dur("duration", time.Since(start)).
		Msg("Maintenance sweep completed")
}
