package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RoomType string

const (
	RoomTypeQuad   RoomType = "QUAD"
	RoomTypeTriple RoomType = "TRIPLE"
	RoomTypeDouble RoomType = "DOUBLE"
	RoomTypeSingle RoomType = "SINGLE"
)

func (r RoomType) Valid() bool {
	return r.Occupancy() > 0
}

// Occupancy is the number of travellers sharing one room of this type.
func (r RoomType) Occupancy() int {
	switch r {
	case RoomTypeQuad:
		return 4
	case RoomTypeTriple:
		return 3
	case RoomTypeDouble:
		return 2
	case RoomTypeSingle:
		return 1
	}
	return 0
}

// Package is a sellable travel package with a per-person price for each room type.
type Package struct {
	ID     uuid.UUID
	Name   string
	Prices map[RoomType]decimal.Decimal
	Active bool
}

type AddOn struct {
	ID    uuid.UUID
	Name  string
	Price decimal.Decimal
}

type VoucherKind string

const (
	VoucherKindPercent VoucherKind = "PERCENT"
	VoucherKindFixed   VoucherKind = "FIXED"
)

type Voucher struct {
	ID          uuid.UUID
	Code        string
	Kind        VoucherKind
	Value       decimal.Decimal
	MaxDiscount decimal.Decimal
	Quota       int
	Used        int
	ValidUntil  *time.Time
}

// Usable reports whether the voucher still has quota and has not lapsed at now.
func (v Voucher) Usable(now time.Time) bool {
	if v.Used >= v.Quota {
		return false
	}
	return v.ValidUntil == nil || now.Before(*v.ValidUntil)
}

// Agent is an external travel agent earning a commission on referred bookings.
type Agent struct {
	ID             uuid.UUID
	Name           string
	CommissionRate decimal.Decimal
}

// Salesperson is an in-house seller earning a commission on their bookings.
type Salesperson struct {
	ID             uuid.UUID
	Name           string
	CommissionRate decimal.Decimal
}
