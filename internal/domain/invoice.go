package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceItem struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// Invoice is the billing document of a booking. There is at most one per booking.
type Invoice struct {
	ID         uuid.UUID
	Number     string
	BookingID  uuid.UUID
	Items      []InvoiceItem
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	PaidAmount decimal.Decimal
	Balance    decimal.Decimal
	DueDate    time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
