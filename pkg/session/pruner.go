package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// PrunerConfig configures idle-session pruning.
type PrunerConfig struct {
	// IdleTTL is how long a session may stay idle. Zero disables pruning.
	IdleTTL time.Duration

	// Schedule is a cron expression, e.g. "0 4 * * *" (daily at 4 AM).
	// Empty disables the scheduler.
	Schedule string
}

// Pruner removes idle sessions from a store.
type Pruner struct {
	store   Store
	config  PrunerConfig
	logger  *slog.Logger
	now     func() time.Time
	onPrune func(n int64)
}

// NewPruner creates a pruner for store. onPrune, if non-nil, is called with
// the number of sessions removed by each run.
func NewPruner(store Store, config PrunerConfig, logger *slog.Logger, onPrune func(n int64)) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		store:   store,
		config:  config,
		logger:  logger.With("component", "session.pruner"),
		now:     time.Now,
		onPrune: onPrune,
	}
}

// Prune deletes sessions idle longer than the TTL and returns how many
// were removed.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.IdleTTL <= 0 {
		return 0, nil
	}

	cutoff := p.now().Add(-p.config.IdleTTL)
	n, err := p.store.PruneIdle(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune idle sessions: %w", err)
	}

	if p.onPrune != nil {
		p.onPrune(n)
	}
	if n > 0 {
		p.logger.Info("pruned idle sessions",
			"deleted_count", n,
			"idle_ttl", p.config.IdleTTL,
		)
	} else {
		p.logger.Debug("no idle sessions to prune", "idle_ttl", p.config.IdleTTL)
	}
	return n, nil
}

// Scheduler runs a Pruner on a cron schedule.
type Scheduler struct {
	pruner  *Pruner
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewScheduler creates a scheduler for pruner.
func NewScheduler(pruner *Pruner) *Scheduler {
	return &Scheduler{
		pruner: pruner,
		cron:   cron.New(),
		logger: pruner.logger.With("component", "session.scheduler"),
	}
}

// Start schedules pruning and stops it when ctx is cancelled. An empty
// schedule or a zero TTL leaves the scheduler idle.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule := s.pruner.config.Schedule
	if schedule == "" || s.pruner.config.IdleTTL <= 0 {
		s.logger.Info("session pruning not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("session scheduler started",
		"schedule", schedule,
		"idle_ttl", s.pruner.config.IdleTTL,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	if _, err := s.pruner.Prune(ctx); err != nil {
		s.logger.Error("scheduled pruning failed", "error", err)
	}
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("session scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled pruning time, or nil.
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
