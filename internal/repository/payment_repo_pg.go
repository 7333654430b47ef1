package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PGPaymentRepository struct {
	pgConn
}

const paymentColumns = `id, booking_id, amount, method, reference, status, verified_at, created_at`

func (r *PGPaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return r.q(ctx).QueryRow(ctx, `INSERT INTO payments (id, booking_id, amount, method, reference, status)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`,
		p.ID, p.BookingID, p.Amount, p.Method, p.Reference, p.Status).Scan(&p.CreatedAt)
}

func (r *PGPaymentRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	p, err := scanPayment(r.q(ctx).QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err, "payment", id)
	}
	return p, nil
}

func (r *PGPaymentRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.PaymentRecordStatus, at time.Time) (*domain.Payment, error) {
	var verifiedAt *time.Time
	if status == domain.PaymentRecordSuccess {
		verifiedAt = &at
	}
	p, err := scanPayment(r.q(ctx).QueryRow(ctx, `UPDATE payments SET status=$1, verified_at=$2
		WHERE id=$3 AND status=$4 RETURNING `+paymentColumns, status, verifiedAt, id, domain.PaymentRecordPending))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if _, err := r.Get(ctx, id); err != nil {
		return nil, err
	}
	return nil, domain.ErrPaymentNotPending
}

func (r *PGPaymentRepository) SumSuccessful(ctx context.Context, bookingID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q(ctx).QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE booking_id=$1 AND status=$2`,
		bookingID, domain.PaymentRecordSuccess).Scan(&total)
	return total, err
}

func (r *PGPaymentRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Payment, error) {
	rows, err := r.q(ctx).Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE booking_id=$1 ORDER BY created_at`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	if err := row.Scan(&p.ID, &p.BookingID, &p.Amount, &p.Method, &p.Reference, &p.Status, &p.VerifiedAt, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
