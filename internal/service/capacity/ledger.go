// Package capacity guards the seat pool of each departure.
package capacity

import (
	"context"
	"errors"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/metrics"
	"github.com/Domenick1991/tourbooking/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Ledger struct {
	pools repository.CapacityRepository
	log   logrus.FieldLogger
}

func NewLedger(pools repository.CapacityRepository, log logrus.FieldLogger) *Ledger {
	return &Ledger{pools: pools, log: log}
}

// Reserve takes pax seats from the departure. The repository performs the check and the
// decrement as one conditional update, so concurrent reservations never oversell.
func (l *Ledger) Reserve(ctx context.Context, scheduleID uuid.UUID, pax int) (*domain.CapacityPool, error) {
	if pax <= 0 {
		return nil, domain.InvalidInputf("pax must be positive, got %d", pax)
	}

	pool, err := l.pools.Reserve(ctx, scheduleID, pax)
	if err != nil {
		var capErr *domain.CapacityError
		if errors.As(err, &capErr) {
			metrics.CapacityRejections.Inc()
			l.log.WithFields(logrus.Fields{
				"schedule_id": scheduleID,
				"requested":   capErr.Requested,
				"available":   capErr.Available,
			}).Info("seat reservation rejected")
		}
		return nil, err
	}

	l.log.WithFields(logrus.Fields{
		"schedule_id": scheduleID,
		"pax":         pax,
		"available":   pool.Available,
		"status":      pool.Status,
	}).Debug("seats reserved")
	return pool, nil
}

// Release gives pax seats back to the departure, capped at its total.
func (l *Ledger) Release(ctx context.Context, scheduleID uuid.UUID, pax int) (*domain.CapacityPool, error) {
	if pax <= 0 {
		return nil, domain.InvalidInputf("pax must be positive, got %d", pax)
	}

	pool, err := l.pools.Release(ctx, scheduleID, pax)
	if err != nil {
		return nil, err
	}
	metrics.SeatsReleased.Add(float64(pax))

	l.log.WithFields(logrus.Fields{
		"schedule_id": scheduleID,
		"pax":         pax,
		"available":   pool.Available,
		"status":      pool.Status,
	}).Debug("seats released")
	return pool, nil
}
