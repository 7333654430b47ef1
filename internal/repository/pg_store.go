package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgTxKey struct{}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgConn resolves the connection a repository call runs on: the transaction carried by
// the context when there is one, the pool otherwise.
type pgConn struct {
	db *pgxpool.Pool
}

func (c pgConn) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(pgTxKey{}).(pgx.Tx); ok {
		return tx
	}
	return c.db
}

// inTx runs fn on the context transaction, or on a private one committed on success.
func (c pgConn) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if tx, ok := ctx.Value(pgTxKey{}).(pgx.Tx); ok {
		return fn(tx)
	}
	tx, err := c.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type PGStore struct {
	pgConn
	capacity    *PGCapacityRepository
	catalog     *PGCatalogRepository
	customers   *PGCustomerRepository
	bookings    *PGBookingRepository
	payments    *PGPaymentRepository
	invoices    *PGInvoiceRepository
	rosters     *PGRosterRepository
	rooms       *PGRoomRepository
	commissions *PGCommissionRepository
	loyalty     *PGLoyaltyRepository
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	conn := pgConn{db: db}
	return &PGStore{
		pgConn:      conn,
		capacity:    &PGCapacityRepository{conn},
		catalog:     &PGCatalogRepository{conn},
		customers:   &PGCustomerRepository{conn},
		bookings:    &PGBookingRepository{conn},
		payments:    &PGPaymentRepository{conn},
		invoices:    &PGInvoiceRepository{conn},
		rosters:     &PGRosterRepository{conn},
		rooms:       &PGRoomRepository{conn},
		commissions: &PGCommissionRepository{conn},
		loyalty:     &PGLoyaltyRepository{conn},
	}
}

// WithinTx joins the transaction already carried by ctx, if any.
func (s *PGStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(pgTxKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, pgTxKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping checks that the database answers.
func (s *PGStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PGStore) Capacity() CapacityRepository      { return s.capacity }
func (s *PGStore) Catalog() CatalogRepository        { return s.catalog }
func (s *PGStore) Customers() CustomerRepository     { return s.customers }
func (s *PGStore) Bookings() BookingRepository       { return s.bookings }
func (s *PGStore) Payments() PaymentRepository       { return s.payments }
func (s *PGStore) Invoices() InvoiceRepository       { return s.invoices }
func (s *PGStore) Rosters() RosterRepository         { return s.rosters }
func (s *PGStore) Rooms() RoomRepository             { return s.rooms }
func (s *PGStore) Commissions() CommissionRepository { return s.commissions }
func (s *PGStore) Loyalty() LoyaltyRepository        { return s.loyalty }

func notFound(err error, what string, id any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFoundf("%s %v", what, id)
	}
	return err
}

var _ Store = (*PGStore)(nil)
