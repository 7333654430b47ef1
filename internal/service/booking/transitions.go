package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/kafka"
	"github.com/Domenick1991/tourbooking/internal/metrics"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// OrchestrationResult describes a committed transition and the records its side effects
// produced. Fields for effects that did not run are nil or zero.
type OrchestrationResult struct {
	Booking       *domain.Booking
	From          domain.BookingStatus
	To            domain.BookingStatus
	Entered       []domain.BookingStatus
	Invoice       *domain.Invoice
	RosterEntry   *domain.RosterEntry
	Commission    *domain.CommissionRecord
	Loyalty       *domain.LoyaltyAward
	ReleasedSeats int
	Tier          domain.CustomerTier
}

// TransitionBooking moves a booking to target. Forward jumps run the side effects of every
// status entered on the way, in order; all of it commits or none of it does.
func (s *BookingService) TransitionBooking(ctx context.Context, id uuid.UUID, target domain.BookingStatus) (_ *OrchestrationResult, err error) {
	defer observe("transition_booking", time.Now(), &err)

	if !target.Valid() {
		return nil, domain.InvalidInputf("unknown booking status %q", target)
	}

	var result *OrchestrationResult
	err = s.store.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.store.Bookings().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		result, err = s.transition(ctx, b, target)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, result, kafka.EventBookingStatus)
	return result, nil
}

// ExpireUnpaidBookings cancels PENDING bookings that received no payment before their
// hold lapsed, returning their seats to the departures.
func (s *BookingService) ExpireUnpaidBookings(ctx context.Context) ([]domain.Booking, error) {
	candidates, err := s.store.Bookings().ListExpiredUnpaid(ctx, s.now())
	if err != nil {
		return nil, err
	}

	expired := make([]domain.Booking, 0, len(candidates))
	for _, c := range candidates {
		result, err := s.expire(ctx, c.ID)
		if err != nil {
			s.log.WithError(err).WithField("booking_id", c.ID).Error("expire booking")
			continue
		}
		if result == nil {
			continue
		}
		s.afterTransition(ctx, result, kafka.EventBookingExpired)
		expired = append(expired, *result.Booking)
	}
	return expired, nil
}

// expire cancels the booking if it is still unpaid and past its hold once locked. A nil
// result means the booking moved on in the meantime.
func (s *BookingService) expire(ctx context.Context, id uuid.UUID) (_ *OrchestrationResult, err error) {
	defer observe("expire_booking", time.Now(), &err)

	var result *OrchestrationResult
	err = s.store.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.store.Bookings().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingStatusPending || b.PaymentStatus != domain.PaymentStatusUnpaid ||
			b.ExpiresAt == nil || b.ExpiresAt.After(s.now()) {
			return nil
		}
		result, err = s.transition(ctx, b, domain.BookingStatusCancelled)
		return err
	})
	return result, err
}

// transition runs inside the caller's transaction with the booking row locked.
func (s *BookingService) transition(ctx context.Context, b *domain.Booking, target domain.BookingStatus) (*OrchestrationResult, error) {
	path, ok := b.Status.Path(target)
	if !ok {
		return nil, &domain.TransitionError{From: b.Status, To: target}
	}

	updated, err := s.store.Bookings().UpdateStatus(ctx, b.ID, target)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	result := &OrchestrationResult{Booking: updated, From: b.Status, To: target, Entered: path}
	for _, status := range path {
		if err := s.enter(ctx, result, status); err != nil {
			return nil, fmt.Errorf("enter %s: %w", status, err)
		}
	}
	return result, nil
}

// enter runs the side effects owed when the booking enters status.
func (s *BookingService) enter(ctx context.Context, result *OrchestrationResult, status domain.BookingStatus) error {
	b := result.Booking

	switch status {
	case domain.BookingStatusConfirmed:
		inv, err := s.invoices.EnsureInvoice(ctx, b.ID)
		if err != nil {
			return err
		}
		synced, err := s.payments.SyncInvoice(ctx, b)
		if err != nil {
			return err
		}
		if synced != nil {
			inv = synced
		}
		result.Invoice = inv
		result.Tier, err = s.recomputeTier(ctx, b.CustomerID)
		return err

	case domain.BookingStatusReady:
		entry, err := s.roster.AddToRoster(ctx, b.ID)
		if err != nil {
			return err
		}
		result.RosterEntry = entry
		return nil

	case domain.BookingStatusCompleted:
		rec, err := s.commissions.EnsureCommission(ctx, b.ID)
		if err != nil {
			return err
		}
		award, err := s.loyalty.EnsureLoyaltyAward(ctx, b.ID)
		if err != nil {
			return err
		}
		result.Commission, result.Loyalty = rec, award
		result.Tier, err = s.recomputeTier(ctx, b.CustomerID)
		return err

	case domain.BookingStatusCancelled:
		if _, err := s.capacity.Release(ctx, b.ScheduleID, b.Pax); err != nil {
			return err
		}
		result.ReleasedSeats = b.Pax
		return nil

	case domain.BookingStatusPending, domain.BookingStatusProcessing, domain.BookingStatusDeparted:
		return nil
	}
	return fmt.Errorf("no effects defined for status %q", status)
}

// recomputeTier derives the customer's tier from their completed bookings.
func (s *BookingService) recomputeTier(ctx context.Context, customerID uuid.UUID) (domain.CustomerTier, error) {
	completed, err := s.store.Customers().CountCompletedBookings(ctx, customerID)
	if err != nil {
		return "", err
	}
	tier := domain.TierFor(completed)

	c, err := s.store.Customers().Get(ctx, customerID)
	if err != nil {
		return "", err
	}
	if c.Tier == tier {
		return tier, nil
	}
	if err := s.store.Customers().UpdateTier(ctx, customerID, tier); err != nil {
		return "", err
	}
	s.log.WithFields(logrus.Fields{
		"customer_id": customerID,
		"from":        c.Tier,
		"to":          tier,
	}).Info("customer tier changed")
	return tier, nil
}

func (s *BookingService) afterTransition(ctx context.Context, result *OrchestrationResult, eventType string) {
	metrics.Transitions.WithLabelValues(string(result.To)).Inc()
	if result.ReleasedSeats > 0 {
		s.invalidateDepartures(ctx)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": result.Booking.ID,
		"from":       result.From,
		"to":         result.To,
		"entered":    result.Entered,
	}).Info("booking transitioned")

	if result.To == domain.BookingStatusCancelled && eventType == kafka.EventBookingStatus {
		eventType = kafka.EventBookingCancelled
	}
	s.publish(ctx, eventType, result.Booking, result.From)
}
