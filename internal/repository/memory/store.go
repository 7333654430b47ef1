// Package memory is an in-process implementation of the repository contracts.
// A single mutex serializes access; a transaction holds it for its whole duration
// and restores a snapshot when it fails.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/repository"
	"github.com/google/uuid"
)

type txKey struct{}

type state struct {
	schedules   map[uuid.UUID]domain.Schedule
	packages    map[uuid.UUID]domain.Package
	addOns      map[uuid.UUID]domain.AddOn
	vouchers    map[uuid.UUID]domain.Voucher
	agents      map[uuid.UUID]domain.Agent
	salespeople map[uuid.UUID]domain.Salesperson
	customers   map[uuid.UUID]domain.Customer
	bookings    map[uuid.UUID]domain.Booking
	payments    map[uuid.UUID]domain.Payment
	invoices    map[uuid.UUID]domain.Invoice // by booking
	rosters     map[uuid.UUID]domain.Roster
	entries     map[uuid.UUID][]domain.RosterEntry    // by roster
	rooms       map[uuid.UUID][]domain.RoomAssignment // by roster
	commissions map[uuid.UUID]domain.CommissionRecord // by booking
	loyalty     map[uuid.UUID]domain.LoyaltyAward     // by booking
}

func newState() state {
	return state{
		schedules:   map[uuid.UUID]domain.Schedule{},
		packages:    map[uuid.UUID]domain.Package{},
		addOns:      map[uuid.UUID]domain.AddOn{},
		vouchers:    map[uuid.UUID]domain.Voucher{},
		agents:      map[uuid.UUID]domain.Agent{},
		salespeople: map[uuid.UUID]domain.Salesperson{},
		customers:   map[uuid.UUID]domain.Customer{},
		bookings:    map[uuid.UUID]domain.Booking{},
		payments:    map[uuid.UUID]domain.Payment{},
		invoices:    map[uuid.UUID]domain.Invoice{},
		rosters:     map[uuid.UUID]domain.Roster{},
		entries:     map[uuid.UUID][]domain.RosterEntry{},
		rooms:       map[uuid.UUID][]domain.RoomAssignment{},
		commissions: map[uuid.UUID]domain.CommissionRecord{},
		loyalty:     map[uuid.UUID]domain.LoyaltyAward{},
	}
}

func (s state) clone() state {
	c := state{
		schedules:   maps.Clone(s.schedules),
		packages:    maps.Clone(s.packages),
		addOns:      maps.Clone(s.addOns),
		vouchers:    maps.Clone(s.vouchers),
		agents:      maps.Clone(s.agents),
		salespeople: maps.Clone(s.salespeople),
		customers:   maps.Clone(s.customers),
		bookings:    maps.Clone(s.bookings),
		payments:    maps.Clone(s.payments),
		invoices:    maps.Clone(s.invoices),
		rosters:     maps.Clone(s.rosters),
		entries:     make(map[uuid.UUID][]domain.RosterEntry, len(s.entries)),
		rooms:       make(map[uuid.UUID][]domain.RoomAssignment, len(s.rooms)),
		commissions: maps.Clone(s.commissions),
		loyalty:     maps.Clone(s.loyalty),
	}
	for k, v := range s.entries {
		c.entries[k] = slices.Clone(v)
	}
	for k, v := range s.rooms {
		c.rooms[k] = slices.Clone(v)
	}
	return c
}

type Store struct {
	mu  sync.Mutex
	st  state
	now func() time.Time
}

type Option func(*Store)

// WithClock overrides the time source used for stored timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{st: newState(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// do runs fn against the state, taking the lock unless ctx already holds it.
func (s *Store) do(ctx context.Context, fn func(st *state) error) error {
	if s.inTx(ctx) {
		return fn(&s.st)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.st)
}

func (s *Store) Capacity() repository.CapacityRepository      { return capacityRepo{s} }
func (s *Store) Catalog() repository.CatalogRepository        { return catalogRepo{s} }
func (s *Store) Customers() repository.CustomerRepository     { return customerRepo{s} }
func (s *Store) Bookings() repository.BookingRepository       { return bookingRepo{s} }
func (s *Store) Payments() repository.PaymentRepository       { return paymentRepo{s} }
func (s *Store) Invoices() repository.InvoiceRepository       { return invoiceRepo{s} }
func (s *Store) Rosters() repository.RosterRepository         { return rosterRepo{s} }
func (s *Store) Rooms() repository.RoomRepository             { return roomRepo{s} }
func (s *Store) Commissions() repository.CommissionRepository { return commissionRepo{s} }
func (s *Store) Loyalty() repository.LoyaltyRepository        { return loyaltyRepo{s} }

// Seeding helpers for reference data the service only reads.

func (s *Store) AddPackage(p domain.Package) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.packages[p.ID] = p
}

func (s *Store) AddAddOn(a domain.AddOn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.addOns[a.ID] = a
}

func (s *Store) AddVoucher(v domain.Voucher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.vouchers[v.ID] = v
}

func (s *Store) AddAgent(a domain.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.agents[a.ID] = a
}

func (s *Store) AddSalesperson(p domain.Salesperson) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.salespeople[p.ID] = p
}

func (s *Store) AddCustomer(c domain.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.customers[c.ID] = c
}

var _ repository.Store = (*Store)(nil)
