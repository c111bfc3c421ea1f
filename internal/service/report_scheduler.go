package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ReportScheduler triggers the weekly report run on a fixed interval.
// There is no persisted schedule; restarting the process restarts the
// countdown, which is acceptable for a weekly cadence.
type ReportScheduler struct {
	reports  *ReportService
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewReportScheduler constructs a scheduler around the report service.
func NewReportScheduler(reports *ReportService, interval time.Duration, logger *zap.Logger) *ReportScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 7 * 24 * time.Hour
	}
	return &ReportScheduler{reports: reports, interval: interval, logger: logger}
}

// Start launches the background loop. Safe to call once.
func (s *ReportScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.started = true

	go s.loop(ctx)
	s.logger.Info("report scheduler started", zap.Duration("interval", s.interval))
}

// Stop terminates the loop and waits for it to exit.
func (s *ReportScheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("report scheduler stopped")
}

func (s *ReportScheduler) loop(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.reports.RunWeekly(ctx); err != nil {
				s.logger.Error("scheduled report run failed", zap.Error(err))
			}
		}
	}
}
