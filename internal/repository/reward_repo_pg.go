package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PGCommissionRepository struct {
	pgConn
}

const commissionColumns = `id, booking_id, recipient_kind, recipient_id, rate, amount, status, created_at`

func (r *PGCommissionRepository) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*domain.CommissionRecord, error) {
	c, err := scanCommission(r.q(ctx).QueryRow(ctx, `SELECT `+commissionColumns+` FROM commissions WHERE booking_id=$1`, bookingID))
	if err != nil {
		return nil, notFound(err, "commission for booking", bookingID)
	}
	return c, nil
}

func (r *PGCommissionRepository) CreateIfAbsent(ctx context.Context, c *domain.CommissionRecord) (*domain.CommissionRecord, bool, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	stored, err := scanCommission(r.q(ctx).QueryRow(ctx, `INSERT INTO commissions (id, booking_id, recipient_kind, recipient_id, rate, amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (booking_id) DO NOTHING
		RETURNING `+commissionColumns, c.ID, c.BookingID, c.RecipientKind, c.RecipientID, c.Rate, c.Amount, c.Status))
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	existing, err := r.GetByBooking(ctx, c.BookingID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func scanCommission(row pgx.Row) (*domain.CommissionRecord, error) {
	var c domain.CommissionRecord
	if err := row.Scan(&c.ID, &c.BookingID, &c.RecipientKind, &c.RecipientID, &c.Rate, &c.Amount, &c.Status, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

var _ CommissionRepository = (*PGCommissionRepository)(nil)

type PGLoyaltyRepository struct {
	pgConn
}

const loyaltyColumns = `id, booking_id, customer_id, kind, points, expires_at, created_at`

func (r *PGLoyaltyRepository) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*domain.LoyaltyAward, error) {
	a, err := scanAward(r.q(ctx).QueryRow(ctx, `SELECT `+loyaltyColumns+` FROM loyalty_awards WHERE booking_id=$1`, bookingID))
	if err != nil {
		return nil, notFound(err, "loyalty award for booking", bookingID)
	}
	return a, nil
}

func (r *PGLoyaltyRepository) CreateIfAbsent(ctx context.Context, a *domain.LoyaltyAward) (*domain.LoyaltyAward, bool, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	stored, err := scanAward(r.q(ctx).QueryRow(ctx, `INSERT INTO loyalty_awards (id, booking_id, customer_id, kind, points, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (booking_id) DO NOTHING
		RETURNING `+loyaltyColumns, a.ID, a.BookingID, a.CustomerID, a.Kind, a.Points, a.ExpiresAt))
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	existing, err := r.GetByBooking(ctx, a.BookingID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func scanAward(row pgx.Row) (*domain.LoyaltyAward, error) {
	var a domain.LoyaltyAward
	if err := row.Scan(&a.ID, &a.BookingID, &a.CustomerID, &a.Kind, &a.Points, &a.ExpiresAt, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

var _ LoyaltyRepository = (*PGLoyaltyRepository)(nil)
