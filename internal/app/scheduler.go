package app

import (
	"context"
	"time"
)

// MidnightScheduler runs Job once at start, then at every UTC midnight
// until ctx ends.
type MidnightScheduler struct {
	Job func(ctx context.Context)
	Now func() time.Time
	// Every is the period after the first midnight. Zero means 24h.
	Every time.Duration
}

func (s *MidnightScheduler) Start(ctx context.Context) {
	now := s.Now
	if now == nil {
		now = time.Now
	}
	every := s.Every
	if every <= 0 {
		every = 24 * time.Hour
	}

	go func() {
		// Run immediately once at startup
		s.Job(ctx)

		// Wait until next UTC midnight
		t := now().UTC()
		next := t.Truncate(24 * time.Hour).Add(24 * time.Hour)
		timer := time.NewTimer(next.Sub(t))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			s.Job(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}
