// Package loyalty credits points to customers for completed bookings.
package loyalty

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const DefaultValidityMonths = 12

type Awarder struct {
	bookings       repository.BookingRepository
	awards         repository.LoyaltyRepository
	now            func() time.Time
	validityMonths int
	log            logrus.FieldLogger
}

type Option func(*Awarder)

func WithClock(now func() time.Time) Option {
	return func(a *Awarder) {
		a.now = now
	}
}

// WithValidityMonths sets how long awarded points stay redeemable.
func WithValidityMonths(months int) Option {
	return func(a *Awarder) {
		if months > 0 {
			a.validityMonths = months
		}
	}
}

func NewAwarder(bookings repository.BookingRepository, awards repository.LoyaltyRepository, log logrus.FieldLogger, opts ...Option) *Awarder {
	a := &Awarder{
		bookings:       bookings,
		awards:         awards,
		now:            time.Now,
		validityMonths: DefaultValidityMonths,
		log:            log,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// EnsureLoyaltyAward returns the booking's award, creating it on first call. Bookings too
// small to earn a point yield nil.
func (a *Awarder) EnsureLoyaltyAward(ctx context.Context, bookingID uuid.UUID) (*domain.LoyaltyAward, error) {
	existing, err := a.awards.GetByBooking(ctx, bookingID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	b, err := a.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	points := domain.PointsFor(b.Price.Total)
	if points <= 0 {
		return nil, nil
	}

	stored, created, err := a.awards.CreateIfAbsent(ctx, &domain.LoyaltyAward{
		BookingID:  b.ID,
		CustomerID: b.CustomerID,
		Kind:       domain.LoyaltyKindEarn,
		Points:     points,
		ExpiresAt:  a.now().AddDate(0, a.validityMonths, 0),
	})
	if err != nil {
		return nil, err
	}
	if created {
		a.log.WithFields(logrus.Fields{
			"booking_id":  bookingID,
			"customer_id": b.CustomerID,
			"points":      points,
		}).Info("loyalty points awarded")
	}
	return stored, nil
}
