package bookings

import (
	"context"
	"log/slog"
	"time"

	"boxoffice/pkg/logger"
)

// Reconciler periodically closes payment orders whose hold was abandoned,
// keeping the open-order index from accumulating dead entries.
type Reconciler struct {
	service  *Service
	interval time.Duration
}

func NewReconciler(service *Service, interval time.Duration) *Reconciler {
	return &Reconciler{
		service:  service,
		interval: interval,
	}
}

// Start runs the reconcile loop until the context is cancelled
func (r *Reconciler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if closed := r.service.ReconcileAbandoned(ctx); closed > 0 {
					logger.GetDefault().Info("abandoned payment orders closed",
						slog.Int("count", closed),
					)
				}
			}
		}
	}()
}
