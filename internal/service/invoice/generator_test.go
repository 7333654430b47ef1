package invoice

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issued = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Generator, *memory.Store, *domain.Booking) {
	t.Helper()
	store := memory.NewStore()
	pkg := domain.Package{ID: uuid.New(), Name: "Umrah Reguler", Active: true}
	store.AddPackage(pkg)

	b := &domain.Booking{
		Code:       "TB12AB34CD",
		CustomerID: uuid.New(),
		ScheduleID: uuid.New(),
		PackageID:  pkg.ID,
		RoomType:   domain.RoomTypeQuad,
		Pax:        2,
		Price: domain.PriceBreakdown{
			Base:     decimal.NewFromInt(2_000_000),
			AddOns:   decimal.NewFromInt(300_000),
			Fees:     decimal.NewFromInt(50_000),
			Discount: decimal.NewFromInt(100_000),
			Total:    decimal.NewFromInt(2_250_000),
		},
		Status:        domain.BookingStatusConfirmed,
		PaymentStatus: domain.PaymentStatusUnpaid,
	}
	require.NoError(t, store.Bookings().Create(context.Background(), b))

	logger, _ := logtest.NewNullLogger()
	g := NewGenerator(store.Bookings(), store.Catalog(), store.Invoices(), logger,
		WithClock(func() time.Time { return issued }))
	return g, store, b
}

func TestGenerator_EnsureInvoice(t *testing.T) {
	g, _, b := setup(t)

	inv, err := g.EnsureInvoice(context.Background(), b.ID)
	require.NoError(t, err)

	assert.Equal(t, "INV-20260402-TB12AB34CD", inv.Number)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Umrah Reguler - QUAD room - 2 pax", inv.Items[0].Description)
	assert.Equal(t, 2, inv.Items[0].Quantity)
	assert.True(t, inv.Items[0].UnitPrice.Equal(decimal.NewFromInt(1_175_000)))
	assert.True(t, inv.Subtotal.Equal(decimal.NewFromInt(2_350_000)))
	assert.True(t, inv.Tax.IsZero())
	assert.True(t, inv.Total.Equal(b.Price.Total))
	assert.True(t, inv.Balance.Equal(b.Price.Total))
	assert.Equal(t, issued.AddDate(0, 0, DefaultDueDays), inv.DueDate)
}

func TestGenerator_EnsureInvoice_Idempotent(t *testing.T) {
	g, _, b := setup(t)
	ctx := context.Background()

	first, err := g.EnsureInvoice(ctx, b.ID)
	require.NoError(t, err)
	second, err := g.EnsureInvoice(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestGenerator_EnsureInvoice_Concurrent(t *testing.T) {
	g, _, b := setup(t)
	ctx := context.Background()

	const callers = 8
	ids := make([]uuid.UUID, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			inv, err := g.EnsureInvoice(ctx, b.ID)
			if assert.NoError(t, err) {
				ids[i] = inv.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestGenerator_EnsureInvoice_UnknownBooking(t *testing.T) {
	g, _, _ := setup(t)
	_, err := g.EnsureInvoice(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
