// Package roster keeps the traveller manifest of each departure and its room plan.
package roster

import (
	"context"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Assigner struct {
	bookings repository.BookingRepository
	rosters  repository.RosterRepository
	log      logrus.FieldLogger
}

func NewAssigner(bookings repository.BookingRepository, rosters repository.RosterRepository, log logrus.FieldLogger) *Assigner {
	return &Assigner{bookings: bookings, rosters: rosters, log: log}
}

// AddToRoster puts the booking's customer on the roster of its departure, creating the
// roster on first use. A customer already listed keeps the original entry.
func (a *Assigner) AddToRoster(ctx context.Context, bookingID uuid.UUID) (*domain.RosterEntry, error) {
	b, err := a.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	ros, err := a.rosters.GetOrCreate(ctx, b.ScheduleID)
	if err != nil {
		return nil, err
	}

	entry, created, err := a.rosters.AddEntry(ctx, ros.ID, b.ID, b.CustomerID)
	if err != nil {
		return nil, err
	}
	if created {
		a.log.WithFields(logrus.Fields{
			"roster_id":   ros.ID,
			"booking_id":  b.ID,
			"customer_id": b.CustomerID,
			"order_no":    entry.OrderNo,
		}).Info("customer added to roster")
	}
	return entry, nil
}

// GetRoster returns the roster of a schedule with its entries in order.
func (a *Assigner) GetRoster(ctx context.Context, scheduleID uuid.UUID) (*domain.Roster, error) {
	ros, err := a.rosters.GetBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	ros.Entries, err = a.rosters.ListEntries(ctx, ros.ID)
	if err != nil {
		return nil, err
	}
	return ros, nil
}
