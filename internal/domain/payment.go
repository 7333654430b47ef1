package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentRecordStatus string

const (
	PaymentRecordPending PaymentRecordStatus = "PENDING"
	PaymentRecordSuccess PaymentRecordStatus = "SUCCESS"
	PaymentRecordFailed  PaymentRecordStatus = "FAILED"
)

// Payment is a single payment attempt against a booking.
type Payment struct {
	ID         uuid.UUID
	BookingID  uuid.UUID
	Amount     decimal.Decimal
	Method     string
	Reference  string
	Status     PaymentRecordStatus
	VerifiedAt *time.Time
	CreatedAt  time.Time
}
