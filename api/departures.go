package api

import (
	"net/http"

	"github.com/Domenick1991/tourbooking/internal/service/booking"
	"github.com/Domenick1991/tourbooking/internal/service/departures"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type DepartureHandler struct {
	service  departures.DepartureUseCase
	bookings booking.BookingUseCase
	log      logrus.FieldLogger
}

func NewDepartureHandler(service departures.DepartureUseCase, bookings booking.BookingUseCase, log logrus.FieldLogger) *DepartureHandler {
	return &DepartureHandler{service: service, bookings: bookings, log: log}
}

func (h *DepartureHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.GET("/:id/roster", h.roster)
}

func (h *DepartureHandler) list(c *gin.Context) {
	schedules, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	out := make([]departureResponse, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, toDepartureResponse(s))
	}
	c.JSON(http.StatusOK, out)
}

func (h *DepartureHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	schedule, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toDepartureResponse(*schedule))
}

func (h *DepartureHandler) roster(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ros, err := h.bookings.GetRoster(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toRosterResponse(ros))
}
