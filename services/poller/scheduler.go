package poller

import (
	"context"
	"sync"
	"time"

	"servisync/utils"

	"go.uber.org/zap"
)

// RefreshFunc performs one full-list refresh.
type RefreshFunc func(ctx context.Context) error

// Scheduler triggers a full booking refresh on a fixed period while the
// session lives. It is a correctness backstop, not the primary update path:
// it runs regardless of the realtime channel's health and bounds how stale
// the view can get when push delivery degrades silently.
type Scheduler struct {
	interval time.Duration
	refresh  RefreshFunc
	logger   *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

func NewScheduler(interval time.Duration, refresh RefreshFunc) *Scheduler {
	return &Scheduler{
		interval: interval,
		refresh:  refresh,
		logger:   utils.GetLogger(),
	}
}

// Start begins polling. A second Start on a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx)
}

// Stop halts the timer and waits for an in-flight tick to finish, so no
// refresh can leak into the next session.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.cancel()
	done := s.done
	s.mu.Unlock()
	<-done
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tickCtx, cancel := context.WithTimeout(ctx, s.interval)
			if err := s.refresh(tickCtx); err != nil {
				// Read errors are recovered by the next tick, never surfaced.
				s.logger.Debug("scheduled refresh failed", zap.Error(err))
			}
			cancel()
		}
	}
}
