package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transactor runs fn inside one storage transaction. The transaction travels in the context
// passed to fn; repository calls made with that context join it. An error from fn rolls
// everything back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type CapacityRepository interface {
	// CreateSchedule stores a departure together with its seat pool.
	CreateSchedule(ctx context.Context, schedule *domain.Schedule) error
	GetSchedule(ctx context.Context, scheduleID uuid.UUID) (*domain.Schedule, error)
	ListSchedules(ctx context.Context) ([]domain.Schedule, error)
	// Reserve takes pax seats in a single conditional update. It fails with a
	// *domain.CapacityError and leaves the pool untouched when fewer seats are free.
	Reserve(ctx context.Context, scheduleID uuid.UUID, pax int) (*domain.CapacityPool, error)
	// Release returns pax seats, never raising available above total.
	Release(ctx context.Context, scheduleID uuid.UUID, pax int) (*domain.CapacityPool, error)
}

type CatalogRepository interface {
	GetPackage(ctx context.Context, id uuid.UUID) (*domain.Package, error)
	GetAddOns(ctx context.Context, ids []uuid.UUID) ([]domain.AddOn, error)
	GetVoucher(ctx context.Context, id uuid.UUID) (*domain.Voucher, error)
	// ClaimVoucher consumes one use of the voucher if quota remains.
	ClaimVoucher(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Voucher, error)
	GetAgent(ctx context.Context, id uuid.UUID) (*domain.Agent, error)
	GetSalesperson(ctx context.Context, id uuid.UUID) (*domain.Salesperson, error)
}

type CustomerRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	CountCompletedBookings(ctx context.Context, customerID uuid.UUID) (int, error)
	UpdateTier(ctx context.Context, customerID uuid.UUID, tier domain.CustomerTier) error
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	// GetForUpdate loads the booking and, inside a transaction, locks it until commit.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, paid decimal.Decimal) (*domain.Booking, error)
	// ListExpiredUnpaid returns PENDING, UNPAID bookings whose hold lapsed at or before deadline.
	ListExpiredUnpaid(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	// SetStatus moves a payment out of PENDING. It returns domain.ErrPaymentNotPending
	// when the payment was already settled.
	SetStatus(ctx context.Context, id uuid.UUID, status domain.PaymentRecordStatus, at time.Time) (*domain.Payment, error)
	// SumSuccessful totals the SUCCESS payments of a booking.
	SumSuccessful(ctx context.Context, bookingID uuid.UUID) (decimal.Decimal, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Payment, error)
}

type InvoiceRepository interface {
	GetByBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Invoice, error)
	// CreateIfAbsent inserts invoice unless the booking already has one, and returns the
	// stored invoice. created is false when an existing invoice was returned.
	CreateIfAbsent(ctx context.Context, invoice *domain.Invoice) (stored *domain.Invoice, created bool, err error)
	UpdatePaid(ctx context.Context, bookingID uuid.UUID, paid, balance decimal.Decimal) (*domain.Invoice, error)
}

type RosterRepository interface {
	// GetOrCreate returns the roster of a schedule, creating it on first use.
	GetOrCreate(ctx context.Context, scheduleID uuid.UUID) (*domain.Roster, error)
	Get(ctx context.Context, rosterID uuid.UUID) (*domain.Roster, error)
	GetBySchedule(ctx context.Context, scheduleID uuid.UUID) (*domain.Roster, error)
	// AddEntry appends the customer with the next order number, or returns the
	// customer's existing entry unchanged.
	AddEntry(ctx context.Context, rosterID, bookingID, customerID uuid.UUID) (entry *domain.RosterEntry, created bool, err error)
	ListEntries(ctx context.Context, rosterID uuid.UUID) ([]domain.RosterEntry, error)
}

type RoomRepository interface {
	// Assign stores the assignment or fails with domain.ErrAlreadyAssigned.
	Assign(ctx context.Context, assignment *domain.RoomAssignment) error
	ListByRoster(ctx context.Context, rosterID uuid.UUID) ([]domain.RoomAssignment, error)
}

type CommissionRepository interface {
	GetByBooking(ctx context.Context, bookingID uuid.UUID) (*domain.CommissionRecord, error)
	CreateIfAbsent(ctx context.Context, record *domain.CommissionRecord) (stored *domain.CommissionRecord, created bool, err error)
}

type LoyaltyRepository interface {
	GetByBooking(ctx context.Context, bookingID uuid.UUID) (*domain.LoyaltyAward, error)
	CreateIfAbsent(ctx context.Context, award *domain.LoyaltyAward) (stored *domain.LoyaltyAward, created bool, err error)
}

// Store bundles every repository behind one transaction boundary.
type Store interface {
	Transactor
	Capacity() CapacityRepository
	Catalog() CatalogRepository
	Customers() CustomerRepository
	Bookings() BookingRepository
	Payments() PaymentRepository
	Invoices() InvoiceRepository
	Rosters() RosterRepository
	Rooms() RoomRepository
	Commissions() CommissionRepository
	Loyalty() LoyaltyRepository
}
