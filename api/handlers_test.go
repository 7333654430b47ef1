package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	"github.com/Domenick1991/tourbooking/internal/service/roster"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRouter(bookings *MockBookingUseCase, deps *MockDepartureUseCase) (*gin.Engine, *logtest.Hook) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger, hook := logtest.NewNullLogger()
	RegisterRoutes(router, bookings, deps, logger)
	return router, hook
}

func do(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func sampleBooking() *domain.Booking {
	return &domain.Booking{
		ID:            uuid.New(),
		Code:          "TB0A1B2C3D4",
		CustomerID:    uuid.New(),
		ScheduleID:    uuid.New(),
		PackageID:     uuid.New(),
		RoomType:      domain.RoomTypeQuad,
		Pax:           2,
		Price:         domain.PriceBreakdown{Base: decimal.NewFromInt(2_000_000), Total: decimal.NewFromInt(2_000_000)},
		Status:        domain.BookingStatusPending,
		PaymentStatus: domain.PaymentStatusUnpaid,
	}
}

func TestBookingHandler_create(t *testing.T) {
	bookings := &MockBookingUseCase{}
	router, _ := newTestRouter(bookings, &MockDepartureUseCase{})
	b := sampleBooking()

	input := booking.CreateBookingInput{
		CustomerID: b.CustomerID,
		ScheduleID: b.ScheduleID,
		RoomType:   domain.RoomTypeQuad,
		Pax:        2,
	}
	bookings.On("CreateBooking", mock.Anything, input).Return(b, nil).Once()

	w := do(router, http.MethodPost, "/bookings", map[string]any{
		"customer_id": b.CustomerID,
		"schedule_id": b.ScheduleID,
		"room_type":   "QUAD",
		"pax":         2,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, b.Code, body["code"])
	assert.Equal(t, "PENDING", body["status"])
	assert.Equal(t, "UNPAID", body["payment_status"])
	assert.Equal(t, "2000000", body["price"].(map[string]any)["total"])
	bookings.AssertExpectations(t)
}

func TestBookingHandler_create_BadRequest(t *testing.T) {
	bookings := &MockBookingUseCase{}
	router, _ := newTestRouter(bookings, &MockDepartureUseCase{})

	w := do(router, http.MethodPost, "/bookings", map[string]any{"room_type": "QUAD"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	bookings.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestBookingHandler_create_InsufficientCapacity(t *testing.T) {
	bookings := &MockBookingUseCase{}
	router, _ := newTestRouter(bookings, &MockDepartureUseCase{})
	scheduleID := uuid.New()

	bookings.On("CreateBooking", mock.Anything, mock.Anything).
		Return(nil, &domain.CapacityError{ScheduleID: scheduleID, Requested: 5, Available: 0}).Once()

	w := do(router, http.MethodPost, "/bookings", map[string]any{
		"customer_id": uuid.New(),
		"schedule_id": scheduleID,
		"room_type":   "QUAD",
		"pax":         5,
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, "INSUFFICIENT_CAPACITY", body["code"])
	assert.Equal(t, float64(5), body["requested"])
	assert.Equal(t, float64(0), body["available"])
}

func TestBookingHandler_get(t *testing.T) {
	bookings := &MockBookingUseCase{}
	router, _ := newTestRouter(bookings, &MockDepartureUseCase{})
	b := sampleBooking()

	bookings.On("GetBooking", mock.Anything, b.ID).Return(&booking.BookingDetails{
		Booking:  b,
		Payments: []domain.Payment{{ID: uuid.New(), BookingID: b.ID, Amount: decimal.NewFromInt(500_000), Status: domain.PaymentRecordSuccess}},
	}, nil).Once()
	missing := uuid.New()
	bookings.On("GetBooking", mock.Anything, missing).Return(nil, domain.NotFoundf("booking %s", missing)).Once()

	w := do(router, http.MethodGet, "/bookings/"+b.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["payments"], 1)
	assert.NotContains(t, body, "invoice")

	w = do(router, http.MethodGet, "/bookings/"+missing.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodGet, "/bookings/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_transition(t *testing.T) {
	bookings := &MockBookingUseCase{}
	router, _ := newTestRouter(bookings, &MockDepartureUseCase{})
	b := sampleBooking()
	b.Status = domain.BookingStatusCancelled

	bookings.On("TransitionBooking", mock.Anything, b.ID, domain.BookingStatusCancelled).Return(&booking.OrchestrationResult{
		Booking:       b,
		From:          domain.BookingStatusPending,
		To:            domain.BookingStatusCancelled,
		Entered:       []domain.BookingStatus{domain.BookingStatusCancelled},
		ReleasedSeats: 2,
	}, nil).Once()
	bookings.On("TransitionBooking", mock.Anything, b.ID, domain.BookingStatusCancelled).
		Return(nil, &domain.TransitionError{From: domain.BookingStatusCancelled, To: domain.BookingStatusCancelled}).Once()

	w := do(router, http.MethodPost, "/bookings/"+b.ID.String()+"/transitions", map[string]string{"status": "CANCELLED"})
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(2), body["released_seats"])
	assert.Equal(t, "PENDING", body["from"])

	w = do(router, http.MethodPost, "/bookings/"+b.ID.String()+"/transitions", map[string]string{"status": "CANCELLED"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", decode(t, w)["code"])
}

func TestBookingHandler_recordPayment(t *testing.T) {
	bookings := &MockBookingUseCase{}
	router, _ := newTestRouter(bookings, &MockDepartureUseCase{})
	bookingID := uuid.New()

	bookings.On("RecordPayment", mock.Anything, mock.MatchedBy(func(in booking.RecordPaymentInput) bool {
		return in.BookingID == bookingID && in.Amount.Equal(decimal.NewFromInt(300_000)) && in.Method == "VA"
	})).Return(&domain.Payment{ID: uuid.New(), BookingID: bookingID, Amount: decimal.NewFromInt(300_000), Method: "VA", Status: domain.PaymentRecordPending}, nil).Once()

	w := do(router, http.MethodPost, "/bookings/"+bookingID.String()+"/payments", map[string]any{"amount": "300000", "method": "VA"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "PENDING", decode(t, w)["status"])
	bookings.AssertExpectations(t)
}

func TestPaymentHandler_verifyAndFail(t *testing.T) {
	bookings := &MockBookingUseCase{}
	router, _ := newTestRouter(bookings, &MockDepartureUseCase{})
	b := sampleBooking()
	b.Status, b.PaymentStatus = domain.BookingStatusConfirmed, domain.PaymentStatusPaid
	paymentID := uuid.New()

	bookings.On("RecordPaymentVerified", mock.Anything, paymentID).Return(b, nil).Once()
	bookings.On("RecordPaymentFailed", mock.Anything, paymentID).Return(nil, domain.ErrPaymentNotPending).Once()

	w := do(router, http.MethodPost, "/payments/"+paymentID.String()+"/verify", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CONFIRMED", decode(t, w)["status"])

	w = do(router, http.MethodPost, "/payments/"+paymentID.String()+"/fail", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_InternalErrorHidesDetails(t *testing.T) {
	bookings := &MockBookingUseCase{}
	router, hook := newTestRouter(bookings, &MockDepartureUseCase{})
	id := uuid.New()

	bookings.On("GetBooking", mock.Anything, id).Return(nil, errors.New("pq: connection refused")).Once()

	w := do(router, http.MethodGet, "/bookings/"+id.String(), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", decode(t, w)["error"])
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "request failed", hook.LastEntry().Message)
}

func TestHandler_IntegrityFailureIsInternal(t *testing.T) {
	bookings := &MockBookingUseCase{}
	router, hook := newTestRouter(bookings, &MockDepartureUseCase{})
	id := uuid.New()

	integrity := domain.Integrityf(domain.NotFoundf("agent %s", uuid.New()), "booking %s references missing agent", id)
	bookings.On("TransitionBooking", mock.Anything, id, domain.BookingStatusCompleted).Return(nil, integrity).Once()

	w := do(router, http.MethodPost, "/bookings/"+id.String()+"/transitions", map[string]any{"status": "COMPLETED"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "request failed", hook.LastEntry().Message)
}

func TestDepartureHandler(t *testing.T) {
	deps := &MockDepartureUseCase{}
	bookings := &MockBookingUseCase{}
	router, _ := newTestRouter(bookings, deps)
	sch := domain.Schedule{ID: uuid.New(), PackageID: uuid.New(), Pool: domain.CapacityPool{Total: 45, Available: 4, Status: domain.PoolStatusAlmostFull}}

	deps.On("List", mock.Anything).Return([]domain.Schedule{sch}, nil).Once()
	deps.On("GetByID", mock.Anything, sch.ID).Return(&sch, nil).Once()
	bookings.On("GetRoster", mock.Anything, sch.ID).Return(&domain.Roster{
		ID:         uuid.New(),
		ScheduleID: sch.ID,
		Entries:    []domain.RosterEntry{{CustomerID: uuid.New(), OrderNo: 1}},
	}, nil).Once()

	w := do(router, http.MethodGet, "/departures", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "ALMOST_FULL", list[0]["seat_status"])

	w = do(router, http.MethodGet, "/departures/"+sch.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), decode(t, w)["available_seats"])

	w = do(router, http.MethodGet, "/departures/"+sch.ID.String()+"/roster", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["entries"], 1)
}

func TestRosterHandler(t *testing.T) {
	bookings := &MockBookingUseCase{}
	router, _ := newTestRouter(bookings, &MockDepartureUseCase{})
	rosterID, hotelID, customerID := uuid.New(), uuid.New(), uuid.New()

	bookings.On("AddRoomAssignment", mock.Anything, roster.AssignRoomInput{
		RosterID: rosterID, HotelID: hotelID, CustomerID: customerID, RoomNumber: "101",
	}).Return(nil, domain.ErrAlreadyAssigned).Once()
	bookings.On("AutoAssignRooms", mock.Anything, roster.AutoAssignInput{
		RosterID: rosterID, HotelID: hotelID, RoomType: domain.RoomTypeDouble, StartRoomNumber: 201,
	}).Return([]domain.RoomAssignment{
		{ID: uuid.New(), HotelID: hotelID, CustomerID: customerID, RoomNumber: "201", RoomType: domain.RoomTypeDouble},
	}, nil).Once()

	w := do(router, http.MethodPost, "/rosters/"+rosterID.String()+"/rooms", map[string]any{
		"hotel_id": hotelID, "customer_id": customerID, "room_number": "101",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_ASSIGNED", decode(t, w)["code"])

	w = do(router, http.MethodPost, "/rosters/"+rosterID.String()+"/rooms/auto", map[string]any{
		"hotel_id": hotelID, "room_type": "DOUBLE", "start_room_number": 201,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "201", out[0]["room_number"])
	bookings.AssertExpectations(t)
}
