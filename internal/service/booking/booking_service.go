package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/kafka"
	"github.com/Domenick1991/tourbooking/internal/metrics"
	"github.com/Domenick1991/tourbooking/internal/repository"
	"github.com/Domenick1991/tourbooking/internal/service/capacity"
	"github.com/Domenick1991/tourbooking/internal/service/commission"
	"github.com/Domenick1991/tourbooking/internal/service/invoice"
	"github.com/Domenick1991/tourbooking/internal/service/loyalty"
	"github.com/Domenick1991/tourbooking/internal/service/payment"
	"github.com/Domenick1991/tourbooking/internal/service/pricing"
	"github.com/Domenick1991/tourbooking/internal/service/roster"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*BookingDetails, error)
	TransitionBooking(ctx context.Context, id uuid.UUID, target domain.BookingStatus) (*OrchestrationResult, error)
	RecordPayment(ctx context.Context, input RecordPaymentInput) (*domain.Payment, error)
	RecordPaymentVerified(ctx context.Context, paymentID uuid.UUID) (*domain.Booking, error)
	RecordPaymentFailed(ctx context.Context, paymentID uuid.UUID) (*domain.Booking, error)
	GetRoster(ctx context.Context, scheduleID uuid.UUID) (*domain.Roster, error)
	AddRoomAssignment(ctx context.Context, input roster.AssignRoomInput) (*domain.RoomAssignment, error)
	AutoAssignRooms(ctx context.Context, input roster.AutoAssignInput) ([]domain.RoomAssignment, error)
	ExpireUnpaidBookings(ctx context.Context) ([]domain.Booking, error)
}

// Cache is the part of the departures cache the orchestrator invalidates when seats move.
type Cache interface {
	InvalidateDepartures(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

type BookingService struct {
	store              repository.Store
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	holdTTL            time.Duration
	adminFeePerPax     decimal.Decimal
	now                func() time.Time
	log                logrus.FieldLogger

	invoiceDueDays  int
	loyaltyMonths   int
	defaultRoomType domain.RoomType
	locker          roster.Locker
	lockTTL         time.Duration

	capacity    *capacity.Ledger
	payments    *payment.Aggregator
	invoices    *invoice.Generator
	roster      *roster.Assigner
	rooms       *roster.RoomAllocator
	commissions *commission.Calculator
	loyalty     *loyalty.Awarder
}

type CreateBookingInput struct {
	CustomerID    uuid.UUID       `json:"customer_id"`
	ScheduleID    uuid.UUID       `json:"schedule_id"`
	PackageID     uuid.UUID       `json:"package_id"`
	RoomType      domain.RoomType `json:"room_type"`
	Pax           int             `json:"pax"`
	AddOnIDs      []uuid.UUID     `json:"add_on_ids"`
	VoucherID     *uuid.UUID      `json:"voucher_id"`
	AgentID       *uuid.UUID      `json:"agent_id"`
	SalespersonID *uuid.UUID      `json:"salesperson_id"`
}

type RecordPaymentInput struct {
	BookingID uuid.UUID       `json:"booking_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
}

// BookingDetails is a booking together with its payments and invoice, if issued.
type BookingDetails struct {
	Booking  *domain.Booking
	Payments []domain.Payment
	Invoice  *domain.Invoice
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithLogger(log logrus.FieldLogger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

// WithHoldTTL sets how long an unpaid booking keeps its seats. Zero disables expiry.
func WithHoldTTL(ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.holdTTL = ttl
	}
}

func WithAdminFeePerPax(fee decimal.Decimal) BookingServiceOption {
	return func(s *BookingService) {
		s.adminFeePerPax = fee
	}
}

func WithInvoiceDueDays(days int) BookingServiceOption {
	return func(s *BookingService) {
		s.invoiceDueDays = days
	}
}

func WithLoyaltyValidityMonths(months int) BookingServiceOption {
	return func(s *BookingService) {
		s.loyaltyMonths = months
	}
}

func WithDefaultRoomType(t domain.RoomType) BookingServiceOption {
	return func(s *BookingService) {
		s.defaultRoomType = t
	}
}

// WithRosterLocker serializes automatic room assignment per roster.
func WithRosterLocker(locker roster.Locker, ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

func NewBookingService(
	store repository.Store,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	s := &BookingService{
		store:          store,
		producer:       producer,
		bookingTopic:   bookingTopic,
		adminFeePerPax: decimal.Zero,
		now:            time.Now,
		log:            logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.capacity = capacity.NewLedger(store.Capacity(), s.log)
	s.payments = payment.NewAggregator(store.Bookings(), store.Payments(), store.Invoices(), s.log)
	s.invoices = invoice.NewGenerator(store.Bookings(), store.Catalog(), store.Invoices(), s.log,
		invoice.WithClock(s.now), invoice.WithDueDays(s.invoiceDueDays))
	s.roster = roster.NewAssigner(store.Bookings(), store.Rosters(), s.log)
	roomOpts := []roster.AllocatorOption{roster.WithDefaultRoomType(s.defaultRoomType)}
	if s.locker != nil {
		roomOpts = append(roomOpts, roster.WithLocker(s.locker, s.lockTTL))
	}
	s.rooms = roster.NewRoomAllocator(store, store.Rosters(), store.Rooms(), s.log, roomOpts...)
	s.commissions = commission.NewCalculator(store.Bookings(), store.Catalog(), store.Commissions(), s.log)
	s.loyalty = loyalty.NewAwarder(store.Bookings(), store.Loyalty(), s.log,
		loyalty.WithClock(s.now), loyalty.WithValidityMonths(s.loyaltyMonths))
	return s
}

// CreateBooking prices the request, claims the voucher, reserves seats and stores a
// PENDING, UNPAID booking in one transaction. A booking with nothing to pay is stored
// PAID and confirmed in the same transaction.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (_ *domain.Booking, err error) {
	defer observe("create_booking", time.Now(), &err)

	if err := validateCreate(&input); err != nil {
		return nil, err
	}

	var (
		booking   *domain.Booking
		confirmed *OrchestrationResult
	)
	err = s.store.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.Customers().Get(ctx, input.CustomerID); err != nil {
			return err
		}
		schedule, err := s.store.Capacity().GetSchedule(ctx, input.ScheduleID)
		if err != nil {
			return err
		}
		if input.PackageID == uuid.Nil {
			input.PackageID = schedule.PackageID
		}
		if input.PackageID != schedule.PackageID {
			return domain.InvalidInputf("schedule %s does not depart for package %s", schedule.ID, input.PackageID)
		}

		pkg, err := s.store.Catalog().GetPackage(ctx, input.PackageID)
		if err != nil {
			return err
		}
		if !pkg.Active {
			return domain.InvalidInputf("package %s is not on sale", pkg.Name)
		}

		addOns, err := s.store.Catalog().GetAddOns(ctx, input.AddOnIDs)
		if err != nil {
			return err
		}
		if len(addOns) != len(input.AddOnIDs) {
			known := lo.Map(addOns, func(a domain.AddOn, _ int) uuid.UUID { return a.ID })
			missing, _ := lo.Difference(input.AddOnIDs, known)
			return domain.NotFoundf("add-ons %v", missing)
		}

		if err := s.checkSellers(ctx, input); err != nil {
			return err
		}

		var voucher *domain.Voucher
		if input.VoucherID != nil {
			if voucher, err = s.store.Catalog().ClaimVoucher(ctx, *input.VoucherID, s.now()); err != nil {
				return err
			}
		}

		price, err := pricing.Quote(pricing.QuoteInput{
			Package:        *pkg,
			RoomType:       input.RoomType,
			Pax:            input.Pax,
			AddOns:         addOns,
			Voucher:        voucher,
			AdminFeePerPax: s.adminFeePerPax,
		})
		if err != nil {
			return err
		}

		if _, err := s.capacity.Reserve(ctx, input.ScheduleID, input.Pax); err != nil {
			return err
		}

		id := uuid.New()
		b := &domain.Booking{
			ID:            id,
			Code:          bookingCode(id),
			CustomerID:    input.CustomerID,
			ScheduleID:    input.ScheduleID,
			PackageID:     input.PackageID,
			RoomType:      input.RoomType,
			Pax:           input.Pax,
			AddOnIDs:      input.AddOnIDs,
			VoucherID:     input.VoucherID,
			AgentID:       input.AgentID,
			SalespersonID: input.SalespersonID,
			Price:         price,
			Status:        domain.BookingStatusPending,
			PaymentStatus: payment.Derive(price.Total, decimal.Zero),
			PaidAmount:    decimal.Zero,
		}
		if s.holdTTL > 0 && b.PaymentStatus == domain.PaymentStatusUnpaid {
			expires := s.now().Add(s.holdTTL)
			b.ExpiresAt = &expires
		}
		if err := s.store.Bookings().Create(ctx, b); err != nil {
			return fmt.Errorf("store booking: %w", err)
		}
		booking = b

		if b.PaymentStatus == domain.PaymentStatusPaid {
			if confirmed, err = s.transition(ctx, b, domain.BookingStatusConfirmed); err != nil {
				return err
			}
			booking = confirmed.Booking
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingsCreated.Inc()
	s.invalidateDepartures(ctx)
	s.log.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"code":        booking.Code,
		"schedule_id": booking.ScheduleID,
		"pax":         booking.Pax,
		"total":       booking.Price.Total.String(),
	}).Info("booking created")
	s.publish(ctx, kafka.EventBookingCreated, booking, "")
	if confirmed != nil {
		s.afterTransition(ctx, confirmed, kafka.EventBookingStatus)
	}
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*BookingDetails, error) {
	b, err := s.store.Bookings().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.Payments().ListByBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	details := &BookingDetails{Booking: b, Payments: payments}

	inv, err := s.store.Invoices().GetByBooking(ctx, id)
	switch {
	case err == nil:
		details.Invoice = inv
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	return details, nil
}

// RecordPayment registers a payment attempt awaiting verification.
func (s *BookingService) RecordPayment(ctx context.Context, input RecordPaymentInput) (_ *domain.Payment, err error) {
	defer observe("record_payment", time.Now(), &err)

	if !input.Amount.IsPositive() {
		return nil, domain.InvalidInputf("payment amount must be positive")
	}
	if input.Method == "" {
		input.Method = "TRANSFER"
	}

	var p *domain.Payment
	err = s.store.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.store.Bookings().GetForUpdate(ctx, input.BookingID)
		if err != nil {
			return err
		}
		if b.Status == domain.BookingStatusCancelled {
			return domain.InvalidInputf("booking %s is cancelled", b.Code)
		}

		p = &domain.Payment{
			BookingID: b.ID,
			Amount:    input.Amount,
			Method:    input.Method,
			Reference: input.Reference,
			Status:    domain.PaymentRecordPending,
		}
		return s.store.Payments().Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": p.BookingID,
		"payment_id": p.ID,
		"amount":     p.Amount.String(),
	}).Info("payment recorded")
	return p, nil
}

// RecordPaymentVerified marks a payment successful, recomputes the booking's payment
// status and confirms the booking once it is fully paid. Verifying a payment twice is a
// no-op.
func (s *BookingService) RecordPaymentVerified(ctx context.Context, paymentID uuid.UUID) (_ *domain.Booking, err error) {
	defer observe("verify_payment", time.Now(), &err)
	return s.settlePayment(ctx, paymentID, domain.PaymentRecordSuccess)
}

// RecordPaymentFailed marks a pending payment failed. Failed payments never count toward
// the amount paid.
func (s *BookingService) RecordPaymentFailed(ctx context.Context, paymentID uuid.UUID) (_ *domain.Booking, err error) {
	defer observe("fail_payment", time.Now(), &err)
	return s.settlePayment(ctx, paymentID, domain.PaymentRecordFailed)
}

func (s *BookingService) settlePayment(ctx context.Context, paymentID uuid.UUID, outcome domain.PaymentRecordStatus) (*domain.Booking, error) {
	var (
		booking    *domain.Booking
		transition *OrchestrationResult
		settled    bool
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.store.Payments().Get(ctx, paymentID)
		if err != nil {
			return err
		}
		b, err := s.store.Bookings().GetForUpdate(ctx, p.BookingID)
		if err != nil {
			return err
		}

		if _, err := s.store.Payments().SetStatus(ctx, paymentID, outcome, s.now()); err != nil {
			if !errors.Is(err, domain.ErrPaymentNotPending) {
				return err
			}
			current, getErr := s.store.Payments().Get(ctx, paymentID)
			if getErr != nil {
				return getErr
			}
			if current.Status != outcome {
				return fmt.Errorf("payment %s is %s: %w", paymentID, current.Status, err)
			}
			booking = b
			return nil
		}
		settled = true

		summary, err := s.payments.Recompute(ctx, b.ID)
		if err != nil {
			return fmt.Errorf("recompute payments: %w", err)
		}
		booking = summary.Booking

		if summary.Transition != nil {
			transition, err = s.transition(ctx, booking, *summary.Transition)
			if err != nil {
				return err
			}
			booking = transition.Booking
		}

		if _, err := s.payments.SyncInvoice(ctx, booking); err != nil {
			return fmt.Errorf("sync invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !settled {
		return booking, nil
	}

	metrics.PaymentsVerified.WithLabelValues(string(outcome)).Inc()
	s.log.WithFields(logrus.Fields{
		"booking_id":     booking.ID,
		"payment_id":     paymentID,
		"outcome":        outcome,
		"payment_status": booking.PaymentStatus,
		"paid":           booking.PaidAmount.String(),
	}).Info("payment settled")
	s.publish(ctx, kafka.EventPaymentSettled, booking, "")
	if transition != nil {
		s.afterTransition(ctx, transition, kafka.EventBookingStatus)
	}
	return booking, nil
}

func (s *BookingService) GetRoster(ctx context.Context, scheduleID uuid.UUID) (*domain.Roster, error) {
	return s.roster.GetRoster(ctx, scheduleID)
}

func (s *BookingService) AddRoomAssignment(ctx context.Context, input roster.AssignRoomInput) (*domain.RoomAssignment, error) {
	return s.rooms.AssignRoom(ctx, input)
}

func (s *BookingService) AutoAssignRooms(ctx context.Context, input roster.AutoAssignInput) ([]domain.RoomAssignment, error) {
	return s.rooms.AutoAssign(ctx, input)
}

func validateCreate(in *CreateBookingInput) error {
	if in.CustomerID == uuid.Nil {
		return domain.InvalidInputf("customer_id is required")
	}
	if in.ScheduleID == uuid.Nil {
		return domain.InvalidInputf("schedule_id is required")
	}
	if in.Pax <= 0 {
		return domain.InvalidInputf("pax must be positive")
	}
	if !in.RoomType.Valid() {
		return domain.InvalidInputf("unknown room type %q", in.RoomType)
	}
	if in.AgentID != nil && in.SalespersonID != nil {
		return domain.InvalidInputf("a booking is sold by an agent or a salesperson, not both")
	}
	in.AddOnIDs = lo.Uniq(in.AddOnIDs)
	return nil
}

func (s *BookingService) checkSellers(ctx context.Context, in CreateBookingInput) error {
	if in.AgentID != nil {
		if _, err := s.store.Catalog().GetAgent(ctx, *in.AgentID); err != nil {
			return err
		}
	}
	if in.SalespersonID != nil {
		if _, err := s.store.Catalog().GetSalesperson(ctx, *in.SalespersonID); err != nil {
			return err
		}
	}
	return nil
}

// bookingCode is the short reference printed on invoices and shown to customers.
func bookingCode(id uuid.UUID) string {
	return "TB" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:10])
}

func (s *BookingService) invalidateDepartures(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateDepartures(ctx); err != nil {
		s.log.WithError(err).Warn("invalidate departures cache")
	}
}

func observe(command string, start time.Time, errp *error) {
	outcome := "ok"
	if err := *errp; err != nil {
		outcome = "error"
		if domain.IsRejection(err) {
			outcome = "rejected"
		}
	}
	metrics.OrchestrationDuration.WithLabelValues(command, outcome).Observe(time.Since(start).Seconds())
}

var _ BookingUseCase = (*BookingService)(nil)
