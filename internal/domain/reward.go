package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RecipientKind string

const (
	RecipientAgent       RecipientKind = "AGENT"
	RecipientSalesperson RecipientKind = "SALESPERSON"
)

type CommissionStatus string

const (
	CommissionStatusPending CommissionStatus = "PENDING"
	CommissionStatusPaid    CommissionStatus = "PAID"
)

// CommissionRecord is the payout owed for a completed booking. At most one per booking.
type CommissionRecord struct {
	ID            uuid.UUID
	BookingID     uuid.UUID
	RecipientKind RecipientKind
	RecipientID   uuid.UUID
	Rate          decimal.Decimal
	Amount        decimal.Decimal
	Status        CommissionStatus
	CreatedAt     time.Time
}

type LoyaltyKind string

const LoyaltyKindEarn LoyaltyKind = "EARN"

// PointsUnit is the booking value that earns one loyalty point.
var PointsUnit = decimal.NewFromInt(100_000)

// PointsFor returns the loyalty points earned by a booking total.
func PointsFor(total decimal.Decimal) int64 {
	if !total.IsPositive() {
		return 0
	}
	return total.Div(PointsUnit).Floor().IntPart()
}

// LoyaltyAward is the point credit for a completed booking. At most one per booking.
type LoyaltyAward struct {
	ID         uuid.UUID
	BookingID  uuid.UUID
	CustomerID uuid.UUID
	Kind       LoyaltyKind
	Points     int64
	ExpiresAt  time.Time
	CreatedAt  time.Time
}
