package payment

import (
	"context"
	"testing"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func setup(t *testing.T, total int64) (*Aggregator, *memory.Store, *domain.Booking) {
	t.Helper()
	store := memory.NewStore()
	b := &domain.Booking{
		CustomerID:    uuid.New(),
		ScheduleID:    uuid.New(),
		Pax:           1,
		Price:         domain.PriceBreakdown{Base: d(total), Total: d(total)},
		Status:        domain.BookingStatusPending,
		PaymentStatus: domain.PaymentStatusUnpaid,
	}
	require.NoError(t, store.Bookings().Create(context.Background(), b))
	logger, _ := logtest.NewNullLogger()
	return NewAggregator(store.Bookings(), store.Payments(), store.Invoices(), logger), store, b
}

func addPayment(t *testing.T, store *memory.Store, bookingID uuid.UUID, amount int64, status domain.PaymentRecordStatus) {
	t.Helper()
	ctx := context.Background()
	p := &domain.Payment{BookingID: bookingID, Amount: d(amount), Method: "TRANSFER", Status: domain.PaymentRecordPending}
	require.NoError(t, store.Payments().Create(ctx, p))
	if status != domain.PaymentRecordPending {
		_, err := store.Payments().SetStatus(ctx, p.ID, status, p.CreatedAt)
		require.NoError(t, err)
	}
}

func TestDerive(t *testing.T) {
	assert.Equal(t, domain.PaymentStatusUnpaid, Derive(d(1_000), d(0)))
	assert.Equal(t, domain.PaymentStatusPartial, Derive(d(1_000), d(1)))
	assert.Equal(t, domain.PaymentStatusPaid, Derive(d(1_000), d(1_000)))
	assert.Equal(t, domain.PaymentStatusPaid, Derive(d(1_000), d(1_500)))
	assert.Equal(t, domain.PaymentStatusPaid, Derive(d(0), d(0)))
}

func TestAggregator_Recompute(t *testing.T) {
	agg, store, b := setup(t, 1_000_000)
	ctx := context.Background()

	addPayment(t, store, b.ID, 300_000, domain.PaymentRecordSuccess)
	addPayment(t, store, b.ID, 500_000, domain.PaymentRecordFailed)
	addPayment(t, store, b.ID, 200_000, domain.PaymentRecordPending)

	s, err := agg.Recompute(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPartial, s.Status)
	assert.True(t, s.TotalPaid.Equal(d(300_000)))
	assert.Nil(t, s.Transition)
	assert.Equal(t, domain.BookingStatusPending, s.Booking.Status)

	addPayment(t, store, b.ID, 700_000, domain.PaymentRecordSuccess)
	s, err = agg.Recompute(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, s.Status)
	require.NotNil(t, s.Transition)
	assert.Equal(t, domain.BookingStatusConfirmed, *s.Transition)

	stored, err := store.Bookings().Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, stored.PaymentStatus)
	assert.Equal(t, domain.BookingStatusPending, stored.Status, "the aggregator never moves booking status")
}

func TestAggregator_NoTransitionOutsidePending(t *testing.T) {
	agg, store, b := setup(t, 500_000)
	ctx := context.Background()
	_, err := store.Bookings().UpdateStatus(ctx, b.ID, domain.BookingStatusProcessing)
	require.NoError(t, err)

	addPayment(t, store, b.ID, 500_000, domain.PaymentRecordSuccess)
	s, err := agg.Recompute(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, s.Status)
	assert.Nil(t, s.Transition)
}

func TestAggregator_SyncInvoice(t *testing.T) {
	agg, store, b := setup(t, 1_000_000)
	ctx := context.Background()

	inv, err := agg.SyncInvoice(ctx, b)
	require.NoError(t, err)
	assert.Nil(t, inv, "no invoice issued yet")

	_, _, err = store.Invoices().CreateIfAbsent(ctx, &domain.Invoice{
		Number: "INV-1", BookingID: b.ID, Total: d(1_000_000), Balance: d(1_000_000),
	})
	require.NoError(t, err)

	addPayment(t, store, b.ID, 1_200_000, domain.PaymentRecordSuccess)
	s, err := agg.Recompute(ctx, b.ID)
	require.NoError(t, err)

	inv, err = agg.SyncInvoice(ctx, s.Booking)
	require.NoError(t, err)
	assert.True(t, inv.PaidAmount.Equal(d(1_200_000)))
	assert.True(t, inv.Balance.IsZero(), "balance never goes negative")
}
