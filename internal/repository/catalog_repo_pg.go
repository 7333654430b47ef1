package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PGCatalogRepository struct {
	pgConn
}

func (r *PGCatalogRepository) GetPackage(ctx context.Context, id uuid.UUID) (*domain.Package, error) {
	var p domain.Package
	err := r.q(ctx).QueryRow(ctx, `SELECT id, name, prices, active FROM packages WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Prices, &p.Active)
	if err != nil {
		return nil, notFound(err, "package", id)
	}
	return &p, nil
}

func (r *PGCatalogRepository) GetAddOns(ctx context.Context, ids []uuid.UUID) ([]domain.AddOn, error) {
	addOns := make([]domain.AddOn, 0, len(ids))
	if len(ids) == 0 {
		return addOns, nil
	}
	rows, err := r.q(ctx).Query(ctx, `SELECT id, name, price FROM add_ons WHERE id = ANY($1) ORDER BY name`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.AddOn
		if err := rows.Scan(&a.ID, &a.Name, &a.Price); err != nil {
			return nil, err
		}
		addOns = append(addOns, a)
	}
	return addOns, rows.Err()
}

const voucherColumns = `id, code, kind, value, max_discount, quota, used, valid_until`

func (r *PGCatalogRepository) GetVoucher(ctx context.Context, id uuid.UUID) (*domain.Voucher, error) {
	v, err := scanVoucher(r.q(ctx).QueryRow(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err, "voucher", id)
	}
	return v, nil
}

func (r *PGCatalogRepository) ClaimVoucher(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Voucher, error) {
	v, err := scanVoucher(r.q(ctx).QueryRow(ctx, `UPDATE vouchers SET used = used + 1
		WHERE id=$1 AND used < quota AND (valid_until IS NULL OR valid_until > $2)
		RETURNING `+voucherColumns, id, now))
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if _, err := r.GetVoucher(ctx, id); err != nil {
		return nil, err
	}
	return nil, domain.ErrVoucherUnavailable
}

func (r *PGCatalogRepository) GetAgent(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	var a domain.Agent
	err := r.q(ctx).QueryRow(ctx, `SELECT id, name, commission_rate FROM agents WHERE id=$1`, id).
		Scan(&a.ID, &a.Name, &a.CommissionRate)
	if err != nil {
		return nil, notFound(err, "agent", id)
	}
	return &a, nil
}

func (r *PGCatalogRepository) GetSalesperson(ctx context.Context, id uuid.UUID) (*domain.Salesperson, error) {
	var s domain.Salesperson
	err := r.q(ctx).QueryRow(ctx, `SELECT id, name, commission_rate FROM salespeople WHERE id=$1`, id).
		Scan(&s.ID, &s.Name, &s.CommissionRate)
	if err != nil {
		return nil, notFound(err, "salesperson", id)
	}
	return &s, nil
}

func scanVoucher(row pgx.Row) (*domain.Voucher, error) {
	var v domain.Voucher
	if err := row.Scan(&v.ID, &v.Code, &v.Kind, &v.Value, &v.MaxDiscount, &v.Quota, &v.Used, &v.ValidUntil); err != nil {
		return nil, err
	}
	return &v, nil
}

var _ CatalogRepository = (*PGCatalogRepository)(nil)

type PGCustomerRepository struct {
	pgConn
}

func (r *PGCustomerRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var c domain.Customer
	err := r.q(ctx).QueryRow(ctx, `SELECT id, name, email, tier FROM customers WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Tier)
	if err != nil {
		return nil, notFound(err, "customer", id)
	}
	return &c, nil
}

func (r *PGCustomerRepository) CountCompletedBookings(ctx context.Context, customerID uuid.UUID) (int, error) {
	var n int
	err := r.q(ctx).QueryRow(ctx, `SELECT count(*) FROM bookings WHERE customer_id=$1 AND status=$2`,
		customerID, domain.BookingStatusCompleted).Scan(&n)
	return n, err
}

func (r *PGCustomerRepository) UpdateTier(ctx context.Context, customerID uuid.UUID, tier domain.CustomerTier) error {
	cmd, err := r.q(ctx).Exec(ctx, `UPDATE customers SET tier=$1 WHERE id=$2`, tier, customerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("customer %s", customerID)
	}
	return nil
}

var _ CustomerRepository = (*PGCustomerRepository)(nil)
