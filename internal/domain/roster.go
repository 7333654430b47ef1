package domain

import (
	"time"

	"github.com/google/uuid"
)

// Roster is the manifest of travellers on one departure.
type Roster struct {
	ID         uuid.UUID
	ScheduleID uuid.UUID
	Entries    []RosterEntry
	CreatedAt  time.Time
}

type RosterEntry struct {
	ID         uuid.UUID
	RosterID   uuid.UUID
	BookingID  uuid.UUID
	CustomerID uuid.UUID
	OrderNo    int
	CreatedAt  time.Time
}

type RoomAssignment struct {
	ID         uuid.UUID
	RosterID   uuid.UUID
	HotelID    uuid.UUID
	CustomerID uuid.UUID
	RoomNumber string
	RoomType   RoomType
	CreatedAt  time.Time
}
