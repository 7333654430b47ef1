package api

import (
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type bookingResponse struct {
	ID            uuid.UUID             `json:"id"`
	Code          string                `json:"code"`
	CustomerID    uuid.UUID             `json:"customer_id"`
	ScheduleID    uuid.UUID             `json:"schedule_id"`
	PackageID     uuid.UUID             `json:"package_id"`
	RoomType      domain.RoomType       `json:"room_type"`
	Pax           int                   `json:"pax"`
	AddOnIDs      []uuid.UUID           `json:"add_on_ids"`
	VoucherID     *uuid.UUID            `json:"voucher_id,omitempty"`
	AgentID       *uuid.UUID            `json:"agent_id,omitempty"`
	SalespersonID *uuid.UUID            `json:"salesperson_id,omitempty"`
	Price         domain.PriceBreakdown `json:"price"`
	Status        domain.BookingStatus  `json:"status"`
	PaymentStatus domain.PaymentStatus  `json:"payment_status"`
	PaidAmount    decimal.Decimal       `json:"paid_amount"`
	ExpiresAt     *time.Time            `json:"expires_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	addOns := b.AddOnIDs
	if addOns == nil {
		addOns = []uuid.UUID{}
	}
	return bookingResponse{
		ID:            b.ID,
		Code:          b.Code,
		CustomerID:    b.CustomerID,
		ScheduleID:    b.ScheduleID,
		PackageID:     b.PackageID,
		RoomType:      b.RoomType,
		Pax:           b.Pax,
		AddOnIDs:      addOns,
		VoucherID:     b.VoucherID,
		AgentID:       b.AgentID,
		SalespersonID: b.SalespersonID,
		Price:         b.Price,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		PaidAmount:    b.PaidAmount,
		ExpiresAt:     b.ExpiresAt,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

type paymentResponse struct {
	ID         uuid.UUID                  `json:"id"`
	BookingID  uuid.UUID                  `json:"booking_id"`
	Amount     decimal.Decimal            `json:"amount"`
	Method     string                     `json:"method"`
	Reference  string                     `json:"reference,omitempty"`
	Status     domain.PaymentRecordStatus `json:"status"`
	VerifiedAt *time.Time                 `json:"verified_at,omitempty"`
	CreatedAt  time.Time                  `json:"created_at"`
}

func toPaymentResponse(p domain.Payment) paymentResponse {
	return paymentResponse{
		ID:         p.ID,
		BookingID:  p.BookingID,
		Amount:     p.Amount,
		Method:     p.Method,
		Reference:  p.Reference,
		Status:     p.Status,
		VerifiedAt: p.VerifiedAt,
		CreatedAt:  p.CreatedAt,
	}
}

type invoiceResponse struct {
	ID         uuid.UUID            `json:"id"`
	Number     string               `json:"number"`
	Items      []domain.InvoiceItem `json:"items"`
	Subtotal   decimal.Decimal      `json:"subtotal"`
	Discount   decimal.Decimal      `json:"discount"`
	Tax        decimal.Decimal      `json:"tax"`
	Total      decimal.Decimal      `json:"total"`
	PaidAmount decimal.Decimal      `json:"paid_amount"`
	Balance    decimal.Decimal      `json:"balance"`
	DueDate    time.Time            `json:"due_date"`
}

func toInvoiceResponse(inv *domain.Invoice) *invoiceResponse {
	if inv == nil {
		return nil
	}
	return &invoiceResponse{
		ID:         inv.ID,
		Number:     inv.Number,
		Items:      inv.Items,
		Subtotal:   inv.Subtotal,
		Discount:   inv.Discount,
		Tax:        inv.Tax,
		Total:      inv.Total,
		PaidAmount: inv.PaidAmount,
		Balance:    inv.Balance,
		DueDate:    inv.DueDate,
	}
}

type bookingDetailsResponse struct {
	bookingResponse
	Payments []paymentResponse `json:"payments"`
	Invoice  *invoiceResponse  `json:"invoice,omitempty"`
}

func toBookingDetailsResponse(d *booking.BookingDetails) bookingDetailsResponse {
	payments := make([]paymentResponse, 0, len(d.Payments))
	for _, p := range d.Payments {
		payments = append(payments, toPaymentResponse(p))
	}
	return bookingDetailsResponse{
		bookingResponse: toBookingResponse(d.Booking),
		Payments:        payments,
		Invoice:         toInvoiceResponse(d.Invoice),
	}
}

type rosterEntryResponse struct {
	BookingID  uuid.UUID `json:"booking_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	OrderNo    int       `json:"order_no"`
}

type transitionResponse struct {
	Booking       bookingResponse        `json:"booking"`
	From          domain.BookingStatus   `json:"from"`
	To            domain.BookingStatus   `json:"to"`
	Entered       []domain.BookingStatus `json:"entered"`
	Invoice       *invoiceResponse       `json:"invoice,omitempty"`
	RosterEntry   *rosterEntryResponse   `json:"roster_entry,omitempty"`
	Commission    *commissionResponse    `json:"commission,omitempty"`
	LoyaltyPoints int64                  `json:"loyalty_points,omitempty"`
	ReleasedSeats int                    `json:"released_seats,omitempty"`
	Tier          domain.CustomerTier    `json:"tier,omitempty"`
}

type commissionResponse struct {
	RecipientKind domain.RecipientKind `json:"recipient_kind"`
	RecipientID   uuid.UUID            `json:"recipient_id"`
	Rate          decimal.Decimal      `json:"rate"`
	Amount        decimal.Decimal      `json:"amount"`
}

func toTransitionResponse(r *booking.OrchestrationResult) transitionResponse {
	resp := transitionResponse{
		Booking:       toBookingResponse(r.Booking),
		From:          r.From,
		To:            r.To,
		Entered:       r.Entered,
		Invoice:       toInvoiceResponse(r.Invoice),
		ReleasedSeats: r.ReleasedSeats,
		Tier:          r.Tier,
	}
	if r.RosterEntry != nil {
		resp.RosterEntry = &rosterEntryResponse{
			BookingID:  r.RosterEntry.BookingID,
			CustomerID: r.RosterEntry.CustomerID,
			OrderNo:    r.RosterEntry.OrderNo,
		}
	}
	if r.Commission != nil {
		resp.Commission = &commissionResponse{
			RecipientKind: r.Commission.RecipientKind,
			RecipientID:   r.Commission.RecipientID,
			Rate:          r.Commission.Rate,
			Amount:        r.Commission.Amount,
		}
	}
	if r.Loyalty != nil {
		resp.LoyaltyPoints = r.Loyalty.Points
	}
	return resp
}

type departureResponse struct {
	ID            uuid.UUID         `json:"id"`
	PackageID     uuid.UUID         `json:"package_id"`
	DepartureDate time.Time         `json:"departure_date"`
	ReturnDate    time.Time         `json:"return_date"`
	TotalSeats    int               `json:"total_seats"`
	Available     int               `json:"available_seats"`
	SeatStatus    domain.PoolStatus `json:"seat_status"`
}

func toDepartureResponse(s domain.Schedule) departureResponse {
	return departureResponse{
		ID:            s.ID,
		PackageID:     s.PackageID,
		DepartureDate: s.DepartureDate,
		ReturnDate:    s.ReturnDate,
		TotalSeats:    s.Pool.Total,
		Available:     s.Pool.Available,
		SeatStatus:    s.Pool.Status,
	}
}

type rosterResponse struct {
	ID         uuid.UUID             `json:"id"`
	ScheduleID uuid.UUID             `json:"schedule_id"`
	Entries    []rosterEntryResponse `json:"entries"`
}

func toRosterResponse(r *domain.Roster) rosterResponse {
	entries := make([]rosterEntryResponse, 0, len(r.Entries))
	for _, e := range r.Entries {
		entries = append(entries, rosterEntryResponse{BookingID: e.BookingID, CustomerID: e.CustomerID, OrderNo: e.OrderNo})
	}
	return rosterResponse{ID: r.ID, ScheduleID: r.ScheduleID, Entries: entries}
}

type roomAssignmentResponse struct {
	ID         uuid.UUID       `json:"id"`
	HotelID    uuid.UUID       `json:"hotel_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	RoomNumber string          `json:"room_number"`
	RoomType   domain.RoomType `json:"room_type"`
}

func toRoomAssignmentResponse(a domain.RoomAssignment) roomAssignmentResponse {
	return roomAssignmentResponse{
		ID:         a.ID,
		HotelID:    a.HotelID,
		CustomerID: a.CustomerID,
		RoomNumber: a.RoomNumber,
		RoomType:   a.RoomType,
	}
}
