package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/hostelhunt/internal/database"
	"github.com/go-co-op/gocron"
)

// DefaultRefreshInterval is used when no positive interval is configured
const DefaultRefreshInterval = 5 * time.Minute

// Refresher reloads a cache from its source
type Refresher interface {
	Refresh(ctx context.Context) error
}

// StatsSource reports how far the hunt has progressed
type StatsSource interface {
	Stats(ctx context.Context) (database.TokenStats, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	catalog   Refresher
	stats     StatsSource
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a new scheduler instance
func New(catalog Refresher, stats StatsSource, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		catalog:   catalog,
		stats:     stats,
		interval:  interval,
		timeout:   30 * time.Second,
		logger:    logger,
	}
}

// Start begins running all scheduled tasks. The first refresh runs right away.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.refreshCatalog); err != nil {
		return fmt.Errorf("failed to schedule catalog refresh: %w", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "refresh_interval", s.interval)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// refreshCatalog reloads the known token codes and logs hunt progress
func (s *Scheduler) refreshCatalog() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.catalog.Refresh(ctx); err != nil {
		s.logger.Error("token catalog refresh failed", "error", err)
		return
	}

	stats, err := s.stats.Stats(ctx)
	if err != nil {
		s.logger.Warn("failed to read token stats", "error", err)
		return
	}
	s.logger.Info("token catalog refreshed", "tokens", stats.Total, "claimed", stats.Claimed)
}
