package loyalty

import (
	"context"
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

var now = time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)

func setup(t *testing.T, total int64, opts ...Option) (*Awarder, uuid.UUID) {
	t.Helper()
	store := memory.NewStore()
	b := &domain.Booking{
		CustomerID: uuid.New(),
		ScheduleID: uuid.New(),
		Pax:        1,
		Price:      domain.PriceBreakdown{Total: decimal.NewFromInt(total)},
		Status:     domain.BookingStatusCompleted,
	}
	require.NoError(t, store.Bookings().Create(context.Background(), b))

	logger, _ := logtest.NewNullLogger()
	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)
	return NewAwarder(store.Bookings(), store.Loyalty(), logger, opts...), b.ID
}

func TestAwarder_EnsureLoyaltyAward(t *testing.T) {
	a, id := setup(t, 3_550_000)
	ctx := context.Background()

	award, err := a.EnsureLoyaltyAward(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(35), award.Points)
	assert.Equal(t, domain.LoyaltyKindEarn, award.Kind)
	assert.Equal(t, now.AddDate(1, 0, 0), award.ExpiresAt)

	again, err := a.EnsureLoyaltyAward(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, award.ID, again.ID)
}

func TestAwarder_TooSmall(t *testing.T) {
	a, id := setup(t, 99_999)
	award, err := a.EnsureLoyaltyAward(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, award)
}

func TestAwarder_ValidityMonths(t *testing.T) {
	a, id := setup(t, 200_000, WithValidityMonths(6))
	award, err := a.EnsureLoyaltyAward(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 6, 0), award.ExpiresAt)
}
