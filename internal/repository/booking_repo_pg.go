package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PGBookingRepository struct {
	pgConn
}

const bookingColumns = `id, code, customer_id, schedule_id, package_id, room_type, pax, add_on_ids, voucher_id, agent_id, salesperson_id,
	price_base, price_add_ons, price_discount, price_fees, price_total, status, payment_status, paid_amount, expires_at, created_at, updated_at`

func (r *PGBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.AddOnIDs == nil {
		b.AddOnIDs = []uuid.UUID{}
	}
	return r.q(ctx).QueryRow(ctx, `INSERT INTO bookings (id, code, customer_id, schedule_id, package_id, room_type, pax, add_on_ids, voucher_id, agent_id, salesperson_id,
		price_base, price_add_ons, price_discount, price_fees, price_total, status, payment_status, paid_amount, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING created_at, updated_at`,
		b.ID, b.Code, b.CustomerID, b.ScheduleID, b.PackageID, b.RoomType, b.Pax, b.AddOnIDs, b.VoucherID, b.AgentID, b.SalespersonID,
		b.Price.Base, b.Price.AddOns, b.Price.Discount, b.Price.Fees, b.Price.Total, b.Status, b.PaymentStatus, b.PaidAmount, b.ExpiresAt).
		Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *PGBookingRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	b, err := scanBooking(r.q(ctx).QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err, "booking", id)
	}
	return b, nil
}

func (r *PGBookingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	b, err := scanBooking(r.q(ctx).QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "booking", id)
	}
	return b, nil
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	b, err := scanBooking(r.q(ctx).QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+bookingColumns, status, id))
	if err != nil {
		return nil, notFound(err, "booking", id)
	}
	return b, nil
}

func (r *PGBookingRepository) UpdatePayment(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, paid decimal.Decimal) (*domain.Booking, error) {
	b, err := scanBooking(r.q(ctx).QueryRow(ctx, `UPDATE bookings SET payment_status=$1, paid_amount=$2, updated_at=now() WHERE id=$3 RETURNING `+bookingColumns, status, paid, id))
	if err != nil {
		return nil, notFound(err, "booking", id)
	}
	return b, nil
}

func (r *PGBookingRepository) ListExpiredUnpaid(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.q(ctx).Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE status=$1 AND payment_status=$2 AND expires_at IS NOT NULL AND expires_at <= $3
		ORDER BY expires_at`, domain.BookingStatusPending, domain.PaymentStatusUnpaid, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		expired = append(expired, *b)
	}
	return expired, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.Code, &b.CustomerID, &b.ScheduleID, &b.PackageID, &b.RoomType, &b.Pax, &b.AddOnIDs, &b.VoucherID, &b.AgentID, &b.SalespersonID,
		&b.Price.Base, &b.Price.AddOns, &b.Price.Discount, &b.Price.Fees, &b.Price.Total, &b.Status, &b.PaymentStatus, &b.PaidAmount, &b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
