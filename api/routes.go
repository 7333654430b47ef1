package api

import (
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	"github.com/Domenick1991/tourbooking/internal/service/departures"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RegisterRoutes mounts every REST handler on router.
func RegisterRoutes(router gin.IRouter, bookings booking.BookingUseCase, deps departures.DepartureUseCase, log logrus.FieldLogger) {
	NewBookingHandler(bookings, log).Register(router.Group("/bookings"))
	NewPaymentHandler(bookings, log).Register(router.Group("/payments"))
	NewDepartureHandler(deps, bookings, log).Register(router.Group("/departures"))
	NewRosterHandler(bookings, log).Register(router.Group("/rosters"))
}
