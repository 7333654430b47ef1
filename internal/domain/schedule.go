package domain

import (
	"time"

	"github.com/google/uuid"
)

// AlmostFullThreshold is the largest number of free seats for which a pool is ALMOST_FULL.
const AlmostFullThreshold = 5

type PoolStatus string

const (
	PoolStatusOpen       PoolStatus = "OPEN"
	PoolStatusAlmostFull PoolStatus = "ALMOST_FULL"
	PoolStatusFull       PoolStatus = "FULL"
)

// PoolStatusFor derives the status band of a pool from its free seats.
func PoolStatusFor(available, total int) PoolStatus {
	switch {
	case available <= 0:
		return PoolStatusFull
	case available <= AlmostFullThreshold:
		return PoolStatusAlmostFull
	default:
		return PoolStatusOpen
	}
}

// CapacityPool is the seat inventory of one scheduled departure.
type CapacityPool struct {
	ScheduleID uuid.UUID
	Total      int
	Available  int
	Status     PoolStatus
	UpdatedAt  time.Time
}

// Schedule is one dated departure of a package together with its seat pool.
type Schedule struct {
	ID            uuid.UUID
	PackageID     uuid.UUID
	DepartureDate time.Time
	ReturnDate    time.Time
	Pool          CapacityPool
	CreatedAt     time.Time
}
