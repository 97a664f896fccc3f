package worker

import (
	"context"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/sirupsen/logrus"
)

type Reaper interface {
	ReapExpired(ctx context.Context, userID *int64) ([]domain.Booking, error)
}

// ExpirationSweeper periodically cancels unpaid bookings for all users.
type ExpirationSweeper struct {
	reaper   Reaper
	interval time.Duration
}

func NewExpirationSweeper(reaper Reaper, interval time.Duration) *ExpirationSweeper {
	return &ExpirationSweeper{reaper: reaper, interval: interval}
}

func (w *ExpirationSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.WithField("interval", w.interval).Info("expiration sweeper started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("expiration sweeper stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one pass and returns the number of bookings it canceled.
func (w *ExpirationSweeper) Sweep(ctx context.Context) int {
	expired, err := w.reaper.ReapExpired(ctx, nil)
	if err != nil {
		logrus.WithError(err).Error("failed to expire unpaid bookings")
		return 0
	}
	if len(expired) > 0 {
		logrus.WithField("count", len(expired)).Info("expired unpaid bookings")
	}
	return len(expired)
}
