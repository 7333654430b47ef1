package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PGRosterRepository struct {
	pgConn
}

func (r *PGRosterRepository) GetOrCreate(ctx context.Context, scheduleID uuid.UUID) (*domain.Roster, error) {
	if _, err := r.q(ctx).Exec(ctx, `INSERT INTO rosters (id, schedule_id) VALUES ($1, $2) ON CONFLICT (schedule_id) DO NOTHING`,
		uuid.New(), scheduleID); err != nil {
		return nil, err
	}
	return r.GetBySchedule(ctx, scheduleID)
}

func (r *PGRosterRepository) Get(ctx context.Context, rosterID uuid.UUID) (*domain.Roster, error) {
	var ros domain.Roster
	err := r.q(ctx).QueryRow(ctx, `SELECT id, schedule_id, created_at FROM rosters WHERE id=$1`, rosterID).
		Scan(&ros.ID, &ros.ScheduleID, &ros.CreatedAt)
	if err != nil {
		return nil, notFound(err, "roster", rosterID)
	}
	return &ros, nil
}

func (r *PGRosterRepository) GetBySchedule(ctx context.Context, scheduleID uuid.UUID) (*domain.Roster, error) {
	var ros domain.Roster
	err := r.q(ctx).QueryRow(ctx, `SELECT id, schedule_id, created_at FROM rosters WHERE schedule_id=$1`, scheduleID).
		Scan(&ros.ID, &ros.ScheduleID, &ros.CreatedAt)
	if err != nil {
		return nil, notFound(err, "roster for schedule", scheduleID)
	}
	return &ros, nil
}

// AddEntry locks the roster row so that concurrent additions take order numbers one at a time.
func (r *PGRosterRepository) AddEntry(ctx context.Context, rosterID, bookingID, customerID uuid.UUID) (*domain.RosterEntry, bool, error) {
	var (
		entry   *domain.RosterEntry
		created bool
	)
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var locked uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT id FROM rosters WHERE id=$1 FOR UPDATE`, rosterID).Scan(&locked); err != nil {
			return notFound(err, "roster", rosterID)
		}

		existing, err := scanEntry(tx.QueryRow(ctx, `SELECT id, roster_id, booking_id, customer_id, order_no, created_at
			FROM roster_entries WHERE roster_id=$1 AND customer_id=$2`, rosterID, customerID))
		if err == nil {
			entry = existing
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		entry, err = scanEntry(tx.QueryRow(ctx, `INSERT INTO roster_entries (id, roster_id, booking_id, customer_id, order_no)
			SELECT $1, $2, $3, $4, COALESCE(MAX(order_no), 0) + 1 FROM roster_entries WHERE roster_id=$2
			RETURNING id, roster_id, booking_id, customer_id, order_no, created_at`, uuid.New(), rosterID, bookingID, customerID))
		if err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return entry, created, nil
}

func (r *PGRosterRepository) ListEntries(ctx context.Context, rosterID uuid.UUID) ([]domain.RosterEntry, error) {
	rows, err := r.q(ctx).Query(ctx, `SELECT id, roster_id, booking_id, customer_id, order_no, created_at
		FROM roster_entries WHERE roster_id=$1 ORDER BY order_no`, rosterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.RosterEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*domain.RosterEntry, error) {
	var e domain.RosterEntry
	if err := row.Scan(&e.ID, &e.RosterID, &e.BookingID, &e.CustomerID, &e.OrderNo, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

var _ RosterRepository = (*PGRosterRepository)(nil)

type PGRoomRepository struct {
	pgConn
}

func (r *PGRoomRepository) Assign(ctx context.Context, a *domain.RoomAssignment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	err := r.q(ctx).QueryRow(ctx, `INSERT INTO room_assignments (id, roster_id, hotel_id, customer_id, room_number, room_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (roster_id, customer_id) DO NOTHING
		RETURNING created_at`, a.ID, a.RosterID, a.HotelID, a.CustomerID, a.RoomNumber, a.RoomType).Scan(&a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrAlreadyAssigned
	}
	return err
}

func (r *PGRoomRepository) ListByRoster(ctx context.Context, rosterID uuid.UUID) ([]domain.RoomAssignment, error) {
	rows, err := r.q(ctx).Query(ctx, `SELECT id, roster_id, hotel_id, customer_id, room_number, room_type, created_at
		FROM room_assignments WHERE roster_id=$1 ORDER BY created_at, room_number`, rosterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]domain.RoomAssignment, 0)
	for rows.Next() {
		var a domain.RoomAssignment
		if err := rows.Scan(&a.ID, &a.RosterID, &a.HotelID, &a.CustomerID, &a.RoomNumber, &a.RoomType, &a.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

var _ RoomRepository = (*PGRoomRepository)(nil)
