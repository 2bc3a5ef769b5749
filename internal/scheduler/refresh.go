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

// Refresher is anything that can reload itself from the backend.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshScheduler polls the notebook list on a fixed interval. Failures are
// logged and otherwise ignored; the next tick tries again.
type RefreshScheduler struct {
	target   Refresher
	interval time.Duration
	logger   *zap.Logger

	cron         *cron.Cron
	entryID      cron.EntryID
	mu           sync.RWMutex
	isRunning    bool
	isRefreshing bool
	baseCtx      context.Context
	cancelFunc   context.CancelFunc
}

func NewRefreshScheduler(target Refresher, interval time.Duration, logger *zap.Logger) *RefreshScheduler {
	return &RefreshScheduler{
		target:   target,
		interval: interval,
		logger:   logging.OrNop(logger).Named("refresh-scheduler"),
		cron:     cron.New(),
	}
}

// Start schedules the poll. The scheduler stops when ctx is cancelled.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.interval <= 0 {
		s.logger.Info("disabled (no interval)")
		return nil
	}

	spec := fmt.Sprintf("@every %s", s.interval)
	entryID, err := s.cron.AddFunc(spec, s.runRefresh)
	if err != nil {
		return fmt.Errorf("failed to schedule refresh job %q: %w", spec, err)
	}
	s.entryID = entryID

	s.baseCtx, s.cancelFunc = context.WithCancel(ctx)
	s.cron.Start()
	s.isRunning = true
	s.logger.Info("started", zap.Duration("interval", s.interval))

	go func(ctx context.Context) {
		<-ctx.Done()
		s.Stop()
	}(s.baseCtx)

	return nil
}

// Stop stops the schedule, cancels a running refresh and waits for it.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancelFunc
	s.cancelFunc = nil
	s.cron.Remove(s.entryID)
	stopped := s.cron.Stop()
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-stopped.Done()
	s.logger.Info("stopped")
}

// RunNow triggers an immediate refresh in the background.
func (s *RefreshScheduler) RunNow() {
	go s.runRefresh()
}

func (s *RefreshScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *RefreshScheduler) IsRefreshing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRefreshing
}

// NextRunTime returns when the next poll fires, or nil when stopped.
func (s *RefreshScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *RefreshScheduler) runRefresh() {
	s.mu.Lock()
	if s.isRefreshing {
		s.mu.Unlock()
		s.logger.Debug("skipped (previous poll still running)")
		return
	}
	s.isRefreshing = true
	ctx := s.baseCtx
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isRefreshing = false
		s.mu.Unlock()
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	if err := s.target.Refresh(ctx); err != nil {
		s.logger.Warn("poll failed", zap.Error(err))
		return
	}
	s.logger.Debug("poll finished", zap.Duration("time-cost", time.Since(start)))
}
