package core

// scheduler.go runs background maintenance for the dataset store.
//
// The sweeper drops datasets nobody has touched for SESSION_TTL. It runs
// until its context is cancelled and never fails the application.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is used when no interval is configured.
const DefaultSweepInterval = time.Minute

// StartSessionSweeper blocks, sweeping expired datasets every interval until
// ctx is cancelled. Call it in its own goroutine.
func (s *Service) StartSessionSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("session sweeper started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

func (s *Service) sweep(now time.Time) {
	start := time.Now()
	removed := s.store.Sweep(now)
	if removed > 0 {
		slog.Info("expired datasets removed",
			"removed", removed,
			"remaining", s.store.Len(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	slog.Debug("session sweep found nothing to remove", "remaining", s.store.Len())
}
