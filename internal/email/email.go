// Package email turns booking events into customer notifications.
package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/tourbooking/internal/kafka"
	"github.com/sirupsen/logrus"
)

type Sender struct {
	log logrus.FieldLogger
}

func NewSender(log logrus.FieldLogger) *Sender {
	return &Sender{log: log}
}

// Send delivers the notification for event. Events without an address are skipped.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if event.Email == "" {
		s.log.WithField("booking_id", event.BookingID).Debug("no recipient, notification skipped")
		return nil
	}
	s.log.WithFields(logrus.Fields{
		"to":         event.Email,
		"booking_id": event.BookingID,
		"event":      event.Type,
	}).Info(Subject(event))
	return nil
}

// Subject is the notification subject line for event.
func Subject(event kafka.BookingEvent) string {
	switch event.Type {
	case kafka.EventBookingCreated:
		return fmt.Sprintf("Booking %s received", event.Code)
	case kafka.EventBookingCancelled:
		return fmt.Sprintf("Booking %s cancelled", event.Code)
	case kafka.EventBookingExpired:
		return fmt.Sprintf("Booking %s expired unpaid", event.Code)
	case kafka.EventPaymentSettled:
		return fmt.Sprintf("Payment update for booking %s: %s", event.Code, event.PaymentStatus)
	default:
		return fmt.Sprintf("Booking %s is now %s", event.Code, event.Status)
	}
}
