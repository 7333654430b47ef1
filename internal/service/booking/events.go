package booking

import (
	"context"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/kafka"
	"github.com/sirupsen/logrus"
)

func eventFor(eventType string, b *domain.Booking, previous domain.BookingStatus, at time.Time) kafka.BookingEvent {
	return kafka.BookingEvent{
		Type:          eventType,
		BookingID:     b.ID.String(),
		Code:          b.Code,
		CustomerID:    b.CustomerID.String(),
		ScheduleID:    b.ScheduleID.String(),
		Status:        string(b.Status),
		PreviousState: string(previous),
		PaymentStatus: string(b.PaymentStatus),
		Total:         b.Price.Total.String(),
		PaidAmount:    b.PaidAmount.String(),
		OccurredAt:    at.UTC(),
	}
}

// publish sends a committed change to the lifecycle and notification topics. Delivery
// failures are logged; the change itself already stands.
func (s *BookingService) publish(ctx context.Context, eventType string, b *domain.Booking, previous domain.BookingStatus) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := eventFor(eventType, b, previous, s.now())
	log := s.log.WithFields(logrus.Fields{"booking_id": b.ID, "event": eventType})

	if err := s.producer.Publish(ctx, s.bookingTopic, event.BookingID, event); err != nil {
		log.WithError(err).Warn("failed to publish booking event")
	}
	if s.notificationsTopic == "" {
		return
	}
	if c, err := s.store.Customers().Get(ctx, b.CustomerID); err == nil {
		event.Email = c.Email
	}
	if err := s.producer.Publish(ctx, s.notificationsTopic, event.BookingID, event); err != nil {
		log.WithError(err).Warn("failed to publish notification")
	}
}
