package holds

import (
	"context"
	"log/slog"
	"time"

	"boxoffice/pkg/logger"
)

// Sweeper periodically expires overdue holds so abandoned checkouts cannot
// strand inventory. Lazy expiry on access covers the window between ticks.
type Sweeper struct {
	manager  *Manager
	interval time.Duration
}

func NewSweeper(manager *Manager, interval time.Duration) *Sweeper {
	return &Sweeper{
		manager:  manager,
		interval: interval,
	}
}

// Start runs the sweep loop until the context is cancelled
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if released := s.manager.ReleaseExpired(ctx); released > 0 {
					logger.GetDefault().Info("expired holds released",
						slog.Int("count", released),
					)
				}
			}
		}
	}()
}
