// Package payment derives a booking's payment status from its successful payments.
package payment

import (
	"context"
	"errors"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Summary is the outcome of a recompute. Transition is set when the new payment status
// asks the orchestrator to move the booking; the aggregator never changes booking status.
type Summary struct {
	Booking    *domain.Booking
	Status     domain.PaymentStatus
	TotalPaid  decimal.Decimal
	Transition *domain.BookingStatus
}

// Derive maps the amount paid against a booking total to a payment status. A booking
// with nothing to pay is PAID.
func Derive(total, paid decimal.Decimal) domain.PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return domain.PaymentStatusPaid
	case paid.IsPositive():
		return domain.PaymentStatusPartial
	default:
		return domain.PaymentStatusUnpaid
	}
}

type Aggregator struct {
	bookings repository.BookingRepository
	payments repository.PaymentRepository
	invoices repository.InvoiceRepository
	log      logrus.FieldLogger
}

func NewAggregator(bookings repository.BookingRepository, payments repository.PaymentRepository,
	invoices repository.InvoiceRepository, log logrus.FieldLogger) *Aggregator {
	return &Aggregator{bookings: bookings, payments: payments, invoices: invoices, log: log}
}

// Recompute sums the successful payments of the booking and stores the derived status
// and paid amount. A REFUNDED booking keeps its status.
func (a *Aggregator) Recompute(ctx context.Context, bookingID uuid.UUID) (*Summary, error) {
	b, err := a.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	paid, err := a.payments.SumSuccessful(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	status := Derive(b.Price.Total, paid)
	if b.PaymentStatus == domain.PaymentStatusRefunded {
		status = domain.PaymentStatusRefunded
	}

	if status != b.PaymentStatus || !paid.Equal(b.PaidAmount) {
		b, err = a.bookings.UpdatePayment(ctx, bookingID, status, paid)
		if err != nil {
			return nil, err
		}
		a.log.WithFields(logrus.Fields{
			"booking_id":     bookingID,
			"payment_status": status,
			"paid":           paid.String(),
		}).Debug("payment status recomputed")
	}

	summary := &Summary{Booking: b, Status: status, TotalPaid: paid}
	if status == domain.PaymentStatusPaid && b.Status == domain.BookingStatusPending {
		next := domain.BookingStatusConfirmed
		summary.Transition = &next
	}
	return summary, nil
}

// SyncInvoice copies the booking's paid amount onto its invoice. It returns nil when the
// booking has no invoice yet.
func (a *Aggregator) SyncInvoice(ctx context.Context, b *domain.Booking) (*domain.Invoice, error) {
	inv, err := a.invoices.GetByBooking(ctx, b.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	balance := decimal.Max(inv.Total.Sub(b.PaidAmount), decimal.Zero)
	if inv.PaidAmount.Equal(b.PaidAmount) && inv.Balance.Equal(balance) {
		return inv, nil
	}
	return a.invoices.UpdatePaid(ctx, b.ID, b.PaidAmount, balance)
}
