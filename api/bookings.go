package api

import (
	"net/http"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type BookingHandler struct {
	service booking.BookingUseCase
	log     logrus.FieldLogger
}

type createBookingRequest struct {
	CustomerID    uuid.UUID   `json:"customer_id" binding:"required"`
	ScheduleID    uuid.UUID   `json:"schedule_id" binding:"required"`
	PackageID     uuid.UUID   `json:"package_id"`
	RoomType      string      `json:"room_type" binding:"required"`
	Pax           int         `json:"pax" binding:"required"`
	AddOnIDs      []uuid.UUID `json:"add_on_ids"`
	VoucherID     *uuid.UUID  `json:"voucher_id"`
	AgentID       *uuid.UUID  `json:"agent_id"`
	SalespersonID *uuid.UUID  `json:"salesperson_id"`
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
}

type recordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
}

func NewBookingHandler(service booking.BookingUseCase, log logrus.FieldLogger) *BookingHandler {
	return &BookingHandler{service: service, log: log}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:id", h.get)
	router.POST("/:id/transitions", h.transition)
	router.POST("/:id/payments", h.recordPayment)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		CustomerID:    req.CustomerID,
		ScheduleID:    req.ScheduleID,
		PackageID:     req.PackageID,
		RoomType:      domain.RoomType(req.RoomType),
		Pax:           req.Pax,
		AddOnIDs:      req.AddOnIDs,
		VoucherID:     req.VoucherID,
		AgentID:       req.AgentID,
		SalespersonID: req.SalespersonID,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(b))
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	details, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toBookingDetailsResponse(details))
}

func (h *BookingHandler) transition(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.service.TransitionBooking(c.Request.Context(), id, domain.BookingStatus(req.Status))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toTransitionResponse(result))
}

func (h *BookingHandler) recordPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p, err := h.service.RecordPayment(c.Request.Context(), booking.RecordPaymentInput{
		BookingID: id,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toPaymentResponse(*p))
}
