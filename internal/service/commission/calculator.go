// Package commission records the payout owed to whoever sold a completed booking.
package commission

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var hundred = decimal.NewFromInt(100)

type Calculator struct {
	bookings    repository.BookingRepository
	catalog     repository.CatalogRepository
	commissions repository.CommissionRepository
	log         logrus.FieldLogger
}

func NewCalculator(bookings repository.BookingRepository, catalog repository.CatalogRepository,
	commissions repository.CommissionRepository, log logrus.FieldLogger) *Calculator {
	return &Calculator{bookings: bookings, catalog: catalog, commissions: commissions, log: log}
}

// Amount is rate percent of total, rounded to whole units.
func Amount(total, rate decimal.Decimal) decimal.Decimal {
	return total.Mul(rate).Div(hundred).Round(0)
}

// EnsureCommission returns the booking's commission record, creating it on first call.
// An agent takes precedence over a salesperson. Bookings sold by neither earn no
// commission and yield nil.
func (c *Calculator) EnsureCommission(ctx context.Context, bookingID uuid.UUID) (*domain.CommissionRecord, error) {
	existing, err := c.commissions.GetByBooking(ctx, bookingID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	b, err := c.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	rec := &domain.CommissionRecord{BookingID: b.ID, Status: domain.CommissionStatusPending}
	switch {
	case b.AgentID != nil:
		agent, err := c.catalog.GetAgent(ctx, *b.AgentID)
		if err != nil {
			return nil, sellerErr(err, b.ID, "agent", *b.AgentID)
		}
		rec.RecipientKind, rec.RecipientID, rec.Rate = domain.RecipientAgent, agent.ID, agent.CommissionRate
	case b.SalespersonID != nil:
		sp, err := c.catalog.GetSalesperson(ctx, *b.SalespersonID)
		if err != nil {
			return nil, sellerErr(err, b.ID, "salesperson", *b.SalespersonID)
		}
		rec.RecipientKind, rec.RecipientID, rec.Rate = domain.RecipientSalesperson, sp.ID, sp.CommissionRate
	default:
		return nil, nil
	}
	rec.Amount = Amount(b.Price.Total, rec.Rate)

	stored, created, err := c.commissions.CreateIfAbsent(ctx, rec)
	if err != nil {
		return nil, err
	}
	if created {
		c.log.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"recipient":  stored.RecipientKind,
			"amount":     stored.Amount.String(),
		}).Info("commission recorded")
	}
	return stored, nil
}

// sellerErr reports a seller the booking points to but the catalog no longer has as an
// integrity failure.
func sellerErr(err error, bookingID uuid.UUID, kind string, sellerID uuid.UUID) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Integrityf(err, "booking %s references missing %s %s", bookingID, kind, sellerID)
	}
	return fmt.Errorf("load %s: %w", kind, err)
}
