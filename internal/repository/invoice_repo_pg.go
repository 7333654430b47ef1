package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PGInvoiceRepository struct {
	pgConn
}

const invoiceColumns = `id, number, booking_id, items, subtotal, discount, tax, total, paid_amount, balance, due_date, created_at, updated_at`

func (r *PGInvoiceRepository) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Invoice, error) {
	inv, err := scanInvoice(r.q(ctx).QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE booking_id=$1`, bookingID))
	if err != nil {
		return nil, notFound(err, "invoice for booking", bookingID)
	}
	return inv, nil
}

// CreateIfAbsent relies on the unique booking_id: a concurrent insert for the same
// booking makes this one a no-op and the winner's row is returned.
func (r *PGInvoiceRepository) CreateIfAbsent(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, bool, error) {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	stored, err := scanInvoice(r.q(ctx).QueryRow(ctx, `INSERT INTO invoices (id, number, booking_id, items, subtotal, discount, tax, total, paid_amount, balance, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (booking_id) DO NOTHING
		RETURNING `+invoiceColumns,
		inv.ID, inv.Number, inv.BookingID, inv.Items, inv.Subtotal, inv.Discount, inv.Tax, inv.Total, inv.PaidAmount, inv.Balance, inv.DueDate))
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	existing, err := r.GetByBooking(ctx, inv.BookingID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *PGInvoiceRepository) UpdatePaid(ctx context.Context, bookingID uuid.UUID, paid, balance decimal.Decimal) (*domain.Invoice, error) {
	inv, err := scanInvoice(r.q(ctx).QueryRow(ctx, `UPDATE invoices SET paid_amount=$1, balance=$2, updated_at=now()
		WHERE booking_id=$3 RETURNING `+invoiceColumns, paid, balance, bookingID))
	if err != nil {
		return nil, notFound(err, "invoice for booking", bookingID)
	}
	return inv, nil
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var inv domain.Invoice
	if err := row.Scan(&inv.ID, &inv.Number, &inv.BookingID, &inv.Items, &inv.Subtotal, &inv.Discount, &inv.Tax, &inv.Total,
		&inv.PaidAmount, &inv.Balance, &inv.DueDate, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return nil, err
	}
	return &inv, nil
}

var _ InvoiceRepository = (*PGInvoiceRepository)(nil)
