package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type capacityRepo struct{ s *Store }

func (r capacityRepo) CreateSchedule(ctx context.Context, sch *domain.Schedule) error {
	return r.s.do(ctx, func(st *state) error {
		if sch.ID == uuid.Nil {
			sch.ID = uuid.New()
		}
		now := r.s.now()
		sch.Pool.ScheduleID = sch.ID
		sch.Pool.Status = domain.PoolStatusFor(sch.Pool.Available, sch.Pool.Total)
		sch.Pool.UpdatedAt = now
		sch.CreatedAt = now
		st.schedules[sch.ID] = *sch
		return nil
	})
}

func (r capacityRepo) GetSchedule(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	var out *domain.Schedule
	err := r.s.do(ctx, func(st *state) error {
		sch, ok := st.schedules[id]
		if !ok {
			return domain.NotFoundf("schedule %s", id)
		}
		out = &sch
		return nil
	})
	return out, err
}

func (r capacityRepo) ListSchedules(ctx context.Context) ([]domain.Schedule, error) {
	var out []domain.Schedule
	err := r.s.do(ctx, func(st *state) error {
		out = make([]domain.Schedule, 0, len(st.schedules))
		for _, sch := range st.schedules {
			out = append(out, sch)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b domain.Schedule) int { return a.DepartureDate.Compare(b.DepartureDate) })
	return out, err
}

func (r capacityRepo) Reserve(ctx context.Context, id uuid.UUID, pax int) (*domain.CapacityPool, error) {
	var out *domain.CapacityPool
	err := r.s.do(ctx, func(st *state) error {
		sch, ok := st.schedules[id]
		if !ok {
			return domain.NotFoundf("schedule %s", id)
		}
		if sch.Pool.Available < pax {
			return &domain.CapacityError{ScheduleID: id, Requested: pax, Available: sch.Pool.Available}
		}
		sch.Pool.Available -= pax
		sch.Pool.Status = domain.PoolStatusFor(sch.Pool.Available, sch.Pool.Total)
		sch.Pool.UpdatedAt = r.s.now()
		st.schedules[id] = sch
		pool := sch.Pool
		out = &pool
		return nil
	})
	return out, err
}

func (r capacityRepo) Release(ctx context.Context, id uuid.UUID, pax int) (*domain.CapacityPool, error) {
	var out *domain.CapacityPool
	err := r.s.do(ctx, func(st *state) error {
		sch, ok := st.schedules[id]
		if !ok {
			return domain.NotFoundf("schedule %s", id)
		}
		sch.Pool.Available = min(sch.Pool.Total, sch.Pool.Available+pax)
		sch.Pool.Status = domain.PoolStatusFor(sch.Pool.Available, sch.Pool.Total)
		sch.Pool.UpdatedAt = r.s.now()
		st.schedules[id] = sch
		pool := sch.Pool
		out = &pool
		return nil
	})
	return out, err
}

type catalogRepo struct{ s *Store }

func (r catalogRepo) GetPackage(ctx context.Context, id uuid.UUID) (*domain.Package, error) {
	return get(r.s, ctx, func(st *state) map[uuid.UUID]domain.Package { return st.packages }, id, "package")
}

func (r catalogRepo) GetAddOns(ctx context.Context, ids []uuid.UUID) ([]domain.AddOn, error) {
	out := make([]domain.AddOn, 0, len(ids))
	err := r.s.do(ctx, func(st *state) error {
		for _, id := range ids {
			if a, ok := st.addOns[id]; ok {
				out = append(out, a)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b domain.AddOn) int { return cmp.Compare(a.Name, b.Name) })
	return out, err
}

func (r catalogRepo) GetVoucher(ctx context.Context, id uuid.UUID) (*domain.Voucher, error) {
	return get(r.s, ctx, func(st *state) map[uuid.UUID]domain.Voucher { return st.vouchers }, id, "voucher")
}

func (r catalogRepo) ClaimVoucher(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Voucher, error) {
	var out *domain.Voucher
	err := r.s.do(ctx, func(st *state) error {
		v, ok := st.vouchers[id]
		if !ok {
			return domain.NotFoundf("voucher %s", id)
		}
		if !v.Usable(now) {
			return domain.ErrVoucherUnavailable
		}
		v.Used++
		st.vouchers[id] = v
		out = &v
		return nil
	})
	return out, err
}

func (r catalogRepo) GetAgent(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	return get(r.s, ctx, func(st *state) map[uuid.UUID]domain.Agent { return st.agents }, id, "agent")
}

func (r catalogRepo) GetSalesperson(ctx context.Context, id uuid.UUID) (*domain.Salesperson, error) {
	return get(r.s, ctx, func(st *state) map[uuid.UUID]domain.Salesperson { return st.salespeople }, id, "salesperson")
}

type customerRepo struct{ s *Store }

func (r customerRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return get(r.s, ctx, func(st *state) map[uuid.UUID]domain.Customer { return st.customers }, id, "customer")
}

func (r customerRepo) CountCompletedBookings(ctx context.Context, customerID uuid.UUID) (int, error) {
	var n int
	err := r.s.do(ctx, func(st *state) error {
		for _, b := range st.bookings {
			if b.CustomerID == customerID && b.Status == domain.BookingStatusCompleted {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r customerRepo) UpdateTier(ctx context.Context, customerID uuid.UUID, tier domain.CustomerTier) error {
	return r.s.do(ctx, func(st *state) error {
		c, ok := st.customers[customerID]
		if !ok {
			return domain.NotFoundf("customer %s", customerID)
		}
		c.Tier = tier
		st.customers[customerID] = c
		return nil
	})
}

type bookingRepo struct{ s *Store }

func (r bookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	return r.s.do(ctx, func(st *state) error {
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		b.AddOnIDs = slices.Clone(b.AddOnIDs)
		b.CreatedAt = r.s.now()
		b.UpdatedAt = b.CreatedAt
		st.bookings[b.ID] = *b
		return nil
	})
}

func (r bookingRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return get(r.s, ctx, func(st *state) map[uuid.UUID]domain.Booking { return st.bookings }, id, "booking")
}

// GetForUpdate needs no row lock: a transaction already holds the store mutex.
func (r bookingRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return r.Get(ctx, id)
}

func (r bookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	return r.update(ctx, id, func(b *domain.Booking) { b.Status = status })
}

func (r bookingRepo) UpdatePayment(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, paid decimal.Decimal) (*domain.Booking, error) {
	return r.update(ctx, id, func(b *domain.Booking) {
		b.PaymentStatus = status
		b.PaidAmount = paid
	})
}

func (r bookingRepo) update(ctx context.Context, id uuid.UUID, mutate func(b *domain.Booking)) (*domain.Booking, error) {
	var out *domain.Booking
	err := r.s.do(ctx, func(st *state) error {
		b, ok := st.bookings[id]
		if !ok {
			return domain.NotFoundf("booking %s", id)
		}
		mutate(&b)
		b.UpdatedAt = r.s.now()
		st.bookings[id] = b
		out = &b
		return nil
	})
	return out, err
}

func (r bookingRepo) ListExpiredUnpaid(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.s.do(ctx, func(st *state) error {
		for _, b := range st.bookings {
			if b.Status == domain.BookingStatusPending && b.PaymentStatus == domain.PaymentStatusUnpaid &&
				b.ExpiresAt != nil && !b.ExpiresAt.After(deadline) {
				out = append(out, b)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b domain.Booking) int { return a.ExpiresAt.Compare(*b.ExpiresAt) })
	return out, err
}

type paymentRepo struct{ s *Store }

func (r paymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.bookings[p.BookingID]; !ok {
			return domain.NotFoundf("booking %s", p.BookingID)
		}
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		p.CreatedAt = r.s.now()
		st.payments[p.ID] = *p
		return nil
	})
}

func (r paymentRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return get(r.s, ctx, func(st *state) map[uuid.UUID]domain.Payment { return st.payments }, id, "payment")
}

func (r paymentRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.PaymentRecordStatus, at time.Time) (*domain.Payment, error) {
	var out *domain.Payment
	err := r.s.do(ctx, func(st *state) error {
		p, ok := st.payments[id]
		if !ok {
			return domain.NotFoundf("payment %s", id)
		}
		if p.Status != domain.PaymentRecordPending {
			return domain.ErrPaymentNotPending
		}
		p.Status = status
		if status == domain.PaymentRecordSuccess {
			p.VerifiedAt = &at
		}
		st.payments[id] = p
		out = &p
		return nil
	})
	return out, err
}

func (r paymentRepo) SumSuccessful(ctx context.Context, bookingID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.s.do(ctx, func(st *state) error {
		for _, p := range st.payments {
			if p.BookingID == bookingID && p.Status == domain.PaymentRecordSuccess {
				total = total.Add(p.Amount)
			}
		}
		return nil
	})
	return total, err
}

func (r paymentRepo) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Payment, error) {
	out := make([]domain.Payment, 0)
	err := r.s.do(ctx, func(st *state) error {
		for _, p := range st.payments {
			if p.BookingID == bookingID {
				out = append(out, p)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b domain.Payment) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, err
}

type invoiceRepo struct{ s *Store }

func (r invoiceRepo) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Invoice, error) {
	return get(r.s, ctx, func(st *state) map[uuid.UUID]domain.Invoice { return st.invoices }, bookingID, "invoice for booking")
}

func (r invoiceRepo) CreateIfAbsent(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, bool, error) {
	var (
		out     domain.Invoice
		created bool
	)
	err := r.s.do(ctx, func(st *state) error {
		if existing, ok := st.invoices[inv.BookingID]; ok {
			out = existing
			return nil
		}
		if inv.ID == uuid.Nil {
			inv.ID = uuid.New()
		}
		inv.Items = slices.Clone(inv.Items)
		inv.CreatedAt = r.s.now()
		inv.UpdatedAt = inv.CreatedAt
		st.invoices[inv.BookingID] = *inv
		out, created = *inv, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &out, created, nil
}

func (r invoiceRepo) UpdatePaid(ctx context.Context, bookingID uuid.UUID, paid, balance decimal.Decimal) (*domain.Invoice, error) {
	var out *domain.Invoice
	err := r.s.do(ctx, func(st *state) error {
		inv, ok := st.invoices[bookingID]
		if !ok {
			return domain.NotFoundf("invoice for booking %s", bookingID)
		}
		inv.PaidAmount = paid
		inv.Balance = balance
		inv.UpdatedAt = r.s.now()
		st.invoices[bookingID] = inv
		out = &inv
		return nil
	})
	return out, err
}

type rosterRepo struct{ s *Store }

func (r rosterRepo) GetOrCreate(ctx context.Context, scheduleID uuid.UUID) (*domain.Roster, error) {
	var out domain.Roster
	err := r.s.do(ctx, func(st *state) error {
		for _, ros := range st.rosters {
			if ros.ScheduleID == scheduleID {
				out = ros
				return nil
			}
		}
		out = domain.Roster{ID: uuid.New(), ScheduleID: scheduleID, CreatedAt: r.s.now()}
		st.rosters[out.ID] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r rosterRepo) Get(ctx context.Context, rosterID uuid.UUID) (*domain.Roster, error) {
	return get(r.s, ctx, func(st *state) map[uuid.UUID]domain.Roster { return st.rosters }, rosterID, "roster")
}

func (r rosterRepo) GetBySchedule(ctx context.Context, scheduleID uuid.UUID) (*domain.Roster, error) {
	var out *domain.Roster
	err := r.s.do(ctx, func(st *state) error {
		for _, ros := range st.rosters {
			if ros.ScheduleID == scheduleID {
				out = &ros
				return nil
			}
		}
		return domain.NotFoundf("roster for schedule %s", scheduleID)
	})
	return out, err
}

func (r rosterRepo) AddEntry(ctx context.Context, rosterID, bookingID, customerID uuid.UUID) (*domain.RosterEntry, bool, error) {
	var (
		out     domain.RosterEntry
		created bool
	)
	err := r.s.do(ctx, func(st *state) error {
		if _, ok := st.rosters[rosterID]; !ok {
			return domain.NotFoundf("roster %s", rosterID)
		}
		next := 1
		for _, e := range st.entries[rosterID] {
			if e.CustomerID == customerID {
				out = e
				return nil
			}
			next = max(next, e.OrderNo+1)
		}
		out = domain.RosterEntry{
			ID:         uuid.New(),
			RosterID:   rosterID,
			BookingID:  bookingID,
			CustomerID: customerID,
			OrderNo:    next,
			CreatedAt:  r.s.now(),
		}
		st.entries[rosterID] = append(st.entries[rosterID], out)
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &out, created, nil
}

func (r rosterRepo) ListEntries(ctx context.Context, rosterID uuid.UUID) ([]domain.RosterEntry, error) {
	var out []domain.RosterEntry
	err := r.s.do(ctx, func(st *state) error {
		out = slices.Clone(st.entries[rosterID])
		return nil
	})
	if out == nil {
		out = make([]domain.RosterEntry, 0)
	}
	slices.SortFunc(out, func(a, b domain.RosterEntry) int { return cmp.Compare(a.OrderNo, b.OrderNo) })
	return out, err
}

type roomRepo struct{ s *Store }

func (r roomRepo) Assign(ctx context.Context, a *domain.RoomAssignment) error {
	return r.s.do(ctx, func(st *state) error {
		for _, existing := range st.rooms[a.RosterID] {
			if existing.CustomerID == a.CustomerID {
				return domain.ErrAlreadyAssigned
			}
		}
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		a.CreatedAt = r.s.now()
		st.rooms[a.RosterID] = append(st.rooms[a.RosterID], *a)
		return nil
	})
}

func (r roomRepo) ListByRoster(ctx context.Context, rosterID uuid.UUID) ([]domain.RoomAssignment, error) {
	var out []domain.RoomAssignment
	err := r.s.do(ctx, func(st *state) error {
		out = slices.Clone(st.rooms[rosterID])
		return nil
	})
	if out == nil {
		out = make([]domain.RoomAssignment, 0)
	}
	return out, err
}

type commissionRepo struct{ s *Store }

func (r commissionRepo) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*domain.CommissionRecord, error) {
	return get(r.s, ctx, func(st *state) map[uuid.UUID]domain.CommissionRecord { return st.commissions }, bookingID, "commission for booking")
}

func (r commissionRepo) CreateIfAbsent(ctx context.Context, c *domain.CommissionRecord) (*domain.CommissionRecord, bool, error) {
	return createIfAbsent(r.s, ctx, func(st *state) map[uuid.UUID]domain.CommissionRecord { return st.commissions }, c.BookingID, func() domain.CommissionRecord {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		c.CreatedAt = r.s.now()
		return *c
	})
}

type loyaltyRepo struct{ s *Store }

func (r loyaltyRepo) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*domain.LoyaltyAward, error) {
	return get(r.s, ctx, func(st *state) map[uuid.UUID]domain.LoyaltyAward { return st.loyalty }, bookingID, "loyalty award for booking")
}

func (r loyaltyRepo) CreateIfAbsent(ctx context.Context, a *domain.LoyaltyAward) (*domain.LoyaltyAward, bool, error) {
	return createIfAbsent(r.s, ctx, func(st *state) map[uuid.UUID]domain.LoyaltyAward { return st.loyalty }, a.BookingID, func() domain.LoyaltyAward {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		a.CreatedAt = r.s.now()
		return *a
	})
}

func get[T any](s *Store, ctx context.Context, table func(st *state) map[uuid.UUID]T, id uuid.UUID, what string) (*T, error) {
	var out T
	err := s.do(ctx, func(st *state) error {
		v, ok := table(st)[id]
		if !ok {
			return domain.NotFoundf("%s %s", what, id)
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func createIfAbsent[T any](s *Store, ctx context.Context, table func(st *state) map[uuid.UUID]T, key uuid.UUID, build func() T) (*T, bool, error) {
	var (
		out     T
		created bool
	)
	err := s.do(ctx, func(st *state) error {
		if existing, ok := table(st)[key]; ok {
			out = existing
			return nil
		}
		out = build()
		table(st)[key] = out
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &out, created, nil
}
