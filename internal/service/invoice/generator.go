// Package invoice issues the single invoice of a confirmed booking.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const DefaultDueDays = 7

type Generator struct {
	bookings repository.BookingRepository
	catalog  repository.CatalogRepository
	invoices repository.InvoiceRepository
	now      func() time.Time
	dueDays  int
	log      logrus.FieldLogger
}

type Option func(*Generator)

func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithDueDays sets how many days after issue an invoice falls due.
func WithDueDays(days int) Option {
	return func(g *Generator) {
		if days > 0 {
			g.dueDays = days
		}
	}
}

func NewGenerator(bookings repository.BookingRepository, catalog repository.CatalogRepository,
	invoices repository.InvoiceRepository, log logrus.FieldLogger, opts ...Option) *Generator {
	g := &Generator{
		bookings: bookings,
		catalog:  catalog,
		invoices: invoices,
		now:      time.Now,
		dueDays:  DefaultDueDays,
		log:      log,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// EnsureInvoice returns the booking's invoice, issuing it on first call. Concurrent calls
// for one booking all receive the same invoice.
func (g *Generator) EnsureInvoice(ctx context.Context, bookingID uuid.UUID) (*domain.Invoice, error) {
	existing, err := g.invoices.GetByBooking(ctx, bookingID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	b, err := g.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	pkg, err := g.catalog.GetPackage(ctx, b.PackageID)
	if err != nil {
		return nil, fmt.Errorf("load package: %w", err)
	}

	inv := Build(b, pkg, g.now(), g.dueDays)
	stored, created, err := g.invoices.CreateIfAbsent(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("store invoice: %w", err)
	}
	if created {
		g.log.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"invoice":    stored.Number,
			"total":      stored.Total.String(),
		}).Info("invoice issued")
	}
	return stored, nil
}

// Build drafts the invoice of a booking. Prices are tax inclusive, so tax is zero and the
// total equals the booking total.
func Build(b *domain.Booking, pkg *domain.Package, now time.Time, dueDays int) *domain.Invoice {
	subtotal := b.Price.Base.Add(b.Price.AddOns).Add(b.Price.Fees)
	item := domain.InvoiceItem{
		Description: fmt.Sprintf("%s - %s room - %d pax", pkg.Name, b.RoomType, b.Pax),
		Quantity:    b.Pax,
		UnitPrice:   subtotal.Div(decimal.NewFromInt(int64(b.Pax))).Round(2),
		Amount:      subtotal,
	}
	total := subtotal.Sub(b.Price.Discount)
	paid := b.PaidAmount

	return &domain.Invoice{
		Number:     Number(b.Code, now),
		BookingID:  b.ID,
		Items:      []domain.InvoiceItem{item},
		Subtotal:   subtotal,
		Discount:   b.Price.Discount,
		Tax:        decimal.Zero,
		Total:      total,
		PaidAmount: paid,
		Balance:    decimal.Max(total.Sub(paid), decimal.Zero),
		DueDate:    now.AddDate(0, 0, dueDays),
	}
}

func Number(bookingCode string, issued time.Time) string {
	return fmt.Sprintf("INV-%s-%s", issued.UTC().Format("20060102"), bookingCode)
}
