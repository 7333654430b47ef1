package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PGCapacityRepository struct {
	pgConn
}

const scheduleColumns = `id, package_id, departure_date, return_date, total_seats, available_seats, seat_status, created_at, updated_at`

// seatStatusCase mirrors domain.PoolStatusFor for the seat count produced by expr.
// Parameters $3..$6 carry the threshold and the three band names.
const seatStatusCase = `CASE WHEN %[1]s <= 0 THEN $4 WHEN %[1]s <= $3 THEN $5 ELSE $6 END`

var (
	reserveSQL = `UPDATE schedules
		SET available_seats = available_seats - $2,
		    seat_status = ` + sprintfStatus("available_seats - $2") + `,
		    updated_at = now()
		WHERE id = $1 AND available_seats >= $2
		RETURNING id, total_seats, available_seats, seat_status, updated_at`

	releaseSQL = `UPDATE schedules
		SET available_seats = LEAST(total_seats, available_seats + $2),
		    seat_status = ` + sprintfStatus("LEAST(total_seats, available_seats + $2)") + `,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, total_seats, available_seats, seat_status, updated_at`
)

func statusArgs() []any {
	return []any{domain.AlmostFullThreshold, domain.PoolStatusFull, domain.PoolStatusAlmostFull, domain.PoolStatusOpen}
}

func sprintfStatus(expr string) string {
	return fmt.Sprintf(seatStatusCase, expr)
}

func (r *PGCapacityRepository) CreateSchedule(ctx context.Context, s *domain.Schedule) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.Pool.ScheduleID = s.ID
	s.Pool.Status = domain.PoolStatusFor(s.Pool.Available, s.Pool.Total)
	return r.q(ctx).QueryRow(ctx, `INSERT INTO schedules (id, package_id, departure_date, return_date, total_seats, available_seats, seat_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		s.ID, s.PackageID, s.DepartureDate, s.ReturnDate, s.Pool.Total, s.Pool.Available, s.Pool.Status).
		Scan(&s.CreatedAt, &s.Pool.UpdatedAt)
}

func (r *PGCapacityRepository) GetSchedule(ctx context.Context, scheduleID uuid.UUID) (*domain.Schedule, error) {
	row := r.q(ctx).QueryRow(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id=$1`, scheduleID)
	s, err := scanSchedule(row)
	if err != nil {
		return nil, notFound(err, "schedule", scheduleID)
	}
	return s, nil
}

func (r *PGCapacityRepository) ListSchedules(ctx context.Context) ([]domain.Schedule, error) {
	rows, err := r.q(ctx).Query(ctx, `SELECT `+scheduleColumns+` FROM schedules ORDER BY departure_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]domain.Schedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *s)
	}
	return schedules, rows.Err()
}

func (r *PGCapacityRepository) Reserve(ctx context.Context, scheduleID uuid.UUID, pax int) (*domain.CapacityPool, error) {
	args := append([]any{scheduleID, pax}, statusArgs()...)
	pool, err := scanPool(r.q(ctx).QueryRow(ctx, reserveSQL, args...))
	if err == nil {
		return pool, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var available int
	if err := r.q(ctx).QueryRow(ctx, `SELECT available_seats FROM schedules WHERE id=$1`, scheduleID).Scan(&available); err != nil {
		return nil, notFound(err, "schedule", scheduleID)
	}
	return nil, &domain.CapacityError{ScheduleID: scheduleID, Requested: pax, Available: available}
}

func (r *PGCapacityRepository) Release(ctx context.Context, scheduleID uuid.UUID, pax int) (*domain.CapacityPool, error) {
	args := append([]any{scheduleID, pax}, statusArgs()...)
	pool, err := scanPool(r.q(ctx).QueryRow(ctx, releaseSQL, args...))
	if err != nil {
		return nil, notFound(err, "schedule", scheduleID)
	}
	return pool, nil
}

func scanSchedule(row pgx.Row) (*domain.Schedule, error) {
	var s domain.Schedule
	if err := row.Scan(&s.ID, &s.PackageID, &s.DepartureDate, &s.ReturnDate, &s.Pool.Total, &s.Pool.Available, &s.Pool.Status, &s.CreatedAt, &s.Pool.UpdatedAt); err != nil {
		return nil, err
	}
	s.Pool.ScheduleID = s.ID
	return &s, nil
}

func scanPool(row pgx.Row) (*domain.CapacityPool, error) {
	var p domain.CapacityPool
	if err := row.Scan(&p.ScheduleID, &p.Total, &p.Available, &p.Status, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

var _ CapacityRepository = (*PGCapacityRepository)(nil)
