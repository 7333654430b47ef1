package api

import (
	"net/http"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	"github.com/Domenick1991/tourbooking/internal/service/roster"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type RosterHandler struct {
	service booking.BookingUseCase
	log     logrus.FieldLogger
}

type assignRoomRequest struct {
	HotelID    uuid.UUID `json:"hotel_id" binding:"required"`
	CustomerID uuid.UUID `json:"customer_id" binding:"required"`
	RoomNumber string    `json:"room_number" binding:"required"`
	RoomType   string    `json:"room_type"`
}

type autoAssignRequest struct {
	HotelID         uuid.UUID `json:"hotel_id" binding:"required"`
	RoomType        string    `json:"room_type"`
	StartRoomNumber int       `json:"start_room_number" binding:"required"`
}

func NewRosterHandler(service booking.BookingUseCase, log logrus.FieldLogger) *RosterHandler {
	return &RosterHandler{service: service, log: log}
}

func (h *RosterHandler) Register(router *gin.RouterGroup) {
	router.POST("/:id/rooms", h.assign)
	router.POST("/:id/rooms/auto", h.autoAssign)
}

func (h *RosterHandler) assign(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req assignRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	a, err := h.service.AddRoomAssignment(c.Request.Context(), roster.AssignRoomInput{
		RosterID:   id,
		HotelID:    req.HotelID,
		CustomerID: req.CustomerID,
		RoomNumber: req.RoomNumber,
		RoomType:   domain.RoomType(req.RoomType),
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toRoomAssignmentResponse(*a))
}

func (h *RosterHandler) autoAssign(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req autoAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.service.AutoAssignRooms(c.Request.Context(), roster.AutoAssignInput{
		RosterID:        id,
		HotelID:         req.HotelID,
		RoomType:        domain.RoomType(req.RoomType),
		StartRoomNumber: req.StartRoomNumber,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	out := make([]roomAssignmentResponse, 0, len(created))
	for _, a := range created {
		out = append(out, toRoomAssignmentResponse(a))
	}
	c.JSON(http.StatusCreated, out)
}
