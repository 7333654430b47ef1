package api

import (
	"context"
	"net/http"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PaymentHandler settles payments reported by the payment provider or back office.
type PaymentHandler struct {
	service booking.BookingUseCase
	log     logrus.FieldLogger
}

func NewPaymentHandler(service booking.BookingUseCase, log logrus.FieldLogger) *PaymentHandler {
	return &PaymentHandler{service: service, log: log}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/:id/verify", h.verify)
	router.POST("/:id/fail", h.fail)
}

func (h *PaymentHandler) verify(c *gin.Context) {
	h.settle(c, h.service.RecordPaymentVerified)
}

func (h *PaymentHandler) fail(c *gin.Context) {
	h.settle(c, h.service.RecordPaymentFailed)
}

func (h *PaymentHandler) settle(c *gin.Context, fn func(context.Context, uuid.UUID) (*domain.Booking, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := fn(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}
