package bootstrap

import (
	"context"
	"fmt"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

// Expirer cancels bookings whose unpaid hold has lapsed.
type Expirer interface {
	ExpireUnpaidBookings(ctx context.Context) ([]domain.Booking, error)
}

// StartExpirySweep runs the expiry sweep on schedule until the returned stop is called.
// Runs triggered after ctx is done are skipped.
func StartExpirySweep(ctx context.Context, schedule string, svc Expirer, log logrus.FieldLogger) (stop func(), err error) {
	scheduler := cron.New()
	if err := scheduler.AddFunc(schedule, func() { sweepExpired(ctx, svc, log) }); err != nil {
		return nil, fmt.Errorf("schedule expiry sweep %q: %w", schedule, err)
	}
	scheduler.Start()
	log.WithField("schedule", schedule).Info("expiry sweep scheduled")
	return scheduler.Stop, nil
}

func sweepExpired(ctx context.Context, svc Expirer, log logrus.FieldLogger) {
	if ctx.Err() != nil {
		return
	}
	expired, err := svc.ExpireUnpaidBookings(ctx)
	if err != nil {
		log.WithError(err).Error("expire bookings")
		return
	}
	if len(expired) > 0 {
		log.WithField("count", len(expired)).Info("expired unpaid bookings")
	}
}
