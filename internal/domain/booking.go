package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "PENDING"
	BookingStatusConfirmed  BookingStatus = "CONFIRMED"
	BookingStatusProcessing BookingStatus = "PROCESSING"
	BookingStatusReady      BookingStatus = "READY"
	BookingStatusDeparted   BookingStatus = "DEPARTED"
	BookingStatusCompleted  BookingStatus = "COMPLETED"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
)

// lifecycle is the forward order of the non-cancelled statuses.
var lifecycle = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusProcessing,
	BookingStatusReady,
	BookingStatusDeparted,
	BookingStatusCompleted,
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusProcessing,
		BookingStatusReady, BookingStatusDeparted, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition can leave s.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// Rank is the position of s in the forward lifecycle, or -1 for CANCELLED and unknown values.
func (s BookingStatus) Rank() int {
	for i, st := range lifecycle {
		if st == s {
			return i
		}
	}
	return -1
}

// Cancellable reports whether a booking in status s may still be cancelled.
func (s BookingStatus) Cancellable() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusProcessing, BookingStatusReady:
		return true
	case BookingStatusDeparted, BookingStatusCompleted, BookingStatusCancelled:
		return false
	}
	return false
}

// Path returns the statuses entered when moving from s to target, in order.
// For a forward move every skipped status is included; cancellation enters only CANCELLED.
// ok is false when the move is not a legal transition.
func (s BookingStatus) Path(target BookingStatus) (path []BookingStatus, ok bool) {
	if !s.Valid() || !target.Valid() || s.Terminal() || s == target {
		return nil, false
	}
	if target == BookingStatusCancelled {
		if !s.Cancellable() {
			return nil, false
		}
		return []BookingStatus{BookingStatusCancelled}, true
	}
	from, to := s.Rank(), target.Rank()
	if to <= from {
		return nil, false
	}
	return append([]BookingStatus(nil), lifecycle[from+1:to+1]...), true
}

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"
	PaymentStatusPartial  PaymentStatus = "PARTIAL"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartial, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

// PriceBreakdown is the price snapshot taken when a booking is created.
type PriceBreakdown struct {
	Base     decimal.Decimal `json:"base"`
	AddOns   decimal.Decimal `json:"add_ons"`
	Discount decimal.Decimal `json:"discount"`
	Fees     decimal.Decimal `json:"fees"`
	Total    decimal.Decimal `json:"total"`
}

type Booking struct {
	ID            uuid.UUID
	Code          string
	CustomerID    uuid.UUID
	ScheduleID    uuid.UUID
	PackageID     uuid.UUID
	RoomType      RoomType
	Pax           int
	AddOnIDs      []uuid.UUID
	VoucherID     *uuid.UUID
	AgentID       *uuid.UUID
	SalespersonID *uuid.UUID
	Price         PriceBreakdown
	Status        BookingStatus
	PaymentStatus PaymentStatus
	PaidAmount    decimal.Decimal
	ExpiresAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
