package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mrlokans/wordbook/internal/logging"
)

// Purger deletes activity older than the retention window.
type Purger interface {
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}

// ActivityCleanupScheduler trims the local activity log on a cron schedule.
type ActivityCleanupScheduler struct {
	purger    Purger
	schedule  string
	retention time.Duration
	logger    *zap.Logger

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

func NewActivityCleanupScheduler(purger Purger, schedule string, retentionDays int, logger *zap.Logger) *ActivityCleanupScheduler {
	return &ActivityCleanupScheduler{
		purger:    purger,
		schedule:  schedule,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logging.OrNop(logger).Named("activity-cleanup"),
		cron:      cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

func (s *ActivityCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.retention <= 0 || s.schedule == "" {
		s.logger.Info("disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}
	s.cron.Start()
	s.isRunning = true
	s.logger.Info("started", zap.String("schedule", s.schedule), zap.Duration("retention", s.retention))
	return nil
}

func (s *ActivityCleanupScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	stopped := s.cron.Stop()
	s.mu.Unlock()

	<-stopped.Done()
}

// RunOnce purges immediately and returns the number of removed events.
func (s *ActivityCleanupScheduler) RunOnce(ctx context.Context) int64 {
	deleted, err := s.purger.Purge(ctx, s.retention)
	if err != nil {
		s.logger.Warn("purge failed", zap.Error(err))
		return 0
	}
	if deleted > 0 {
		s.logger.Info("purged old activity", zap.Int64("deleted", deleted))
	}
	return deleted
}
