package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBookingStatus_Path(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		want     []BookingStatus
		ok       bool
	}{
		{BookingStatusPending, BookingStatusConfirmed, []BookingStatus{BookingStatusConfirmed}, true},
		{BookingStatusPending, BookingStatusReady, []BookingStatus{BookingStatusConfirmed, BookingStatusProcessing, BookingStatusReady}, true},
		{BookingStatusProcessing, BookingStatusCompleted, []BookingStatus{BookingStatusReady, BookingStatusDeparted, BookingStatusCompleted}, true},
		{BookingStatusReady, BookingStatusCancelled, []BookingStatus{BookingStatusCancelled}, true},
		{BookingStatusPending, BookingStatusCancelled, []BookingStatus{BookingStatusCancelled}, true},
		{BookingStatusDeparted, BookingStatusCancelled, nil, false},
		{BookingStatusConfirmed, BookingStatusConfirmed, nil, false},
		{BookingStatusReady, BookingStatusConfirmed, nil, false},
		{BookingStatusCompleted, BookingStatusCancelled, nil, false},
		{BookingStatusCancelled, BookingStatusPending, nil, false},
		{BookingStatusPending, "UNKNOWN", nil, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.from, tt.to), func(t *testing.T) {
			got, ok := tt.from.Path(tt.to)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBookingStatus_Terminal(t *testing.T) {
	assert.True(t, BookingStatusCompleted.Terminal())
	assert.True(t, BookingStatusCancelled.Terminal())
	assert.False(t, BookingStatusDeparted.Terminal())
	assert.Equal(t, -1, BookingStatusCancelled.Rank())
	assert.Equal(t, 0, BookingStatusPending.Rank())
}

func TestPoolStatusFor(t *testing.T) {
	assert.Equal(t, PoolStatusFull, PoolStatusFor(0, 40))
	assert.Equal(t, PoolStatusAlmostFull, PoolStatusFor(1, 40))
	assert.Equal(t, PoolStatusAlmostFull, PoolStatusFor(AlmostFullThreshold, 40))
	assert.Equal(t, PoolStatusOpen, PoolStatusFor(AlmostFullThreshold+1, 40))
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, CustomerTierBronze, TierFor(0))
	assert.Equal(t, CustomerTierBronze, TierFor(1))
	assert.Equal(t, CustomerTierSilver, TierFor(2))
	assert.Equal(t, CustomerTierGold, TierFor(5))
	assert.Equal(t, CustomerTierPlatinum, TierFor(12))
}

func TestPointsFor(t *testing.T) {
	assert.Equal(t, int64(0), PointsFor(decimal.NewFromInt(99_999)))
	assert.Equal(t, int64(1), PointsFor(decimal.NewFromInt(100_000)))
	assert.Equal(t, int64(35), PointsFor(decimal.NewFromInt(3_550_000)))
	assert.Equal(t, int64(0), PointsFor(decimal.NewFromInt(-500_000)))
}

func TestErrors(t *testing.T) {
	capErr := &CapacityError{ScheduleID: uuid.New(), Requested: 4, Available: 2}
	wrapped := fmt.Errorf("create booking: %w", capErr)

	assert.ErrorIs(t, wrapped, ErrInsufficientCapacity)
	assert.True(t, IsRejection(wrapped))
	assert.True(t, IsRejection(&TransitionError{From: BookingStatusCompleted, To: BookingStatusCancelled}))
	assert.True(t, IsRejection(InvalidInputf("pax %d", 0)))
	assert.False(t, IsRejection(errors.New("connection reset")))
	assert.Contains(t, capErr.Error(), "requested 4, available 2")
}
