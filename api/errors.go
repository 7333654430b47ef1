package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Requested int    `json:"requested,omitempty"`
	Available *int   `json:"available,omitempty"`
}

var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
	{domain.ErrInsufficientCapacity, http.StatusConflict, "INSUFFICIENT_CAPACITY"},
	{domain.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrAlreadyAssigned, http.StatusConflict, "ALREADY_ASSIGNED"},
	{domain.ErrVoucherUnavailable, http.StatusConflict, "VOUCHER_UNAVAILABLE"},
	{domain.ErrPaymentNotPending, http.StatusConflict, "PAYMENT_NOT_PENDING"},
	{domain.ErrRosterBusy, http.StatusConflict, "ROSTER_BUSY"},
}

// writeError maps service errors to HTTP responses. Anything that is not a business
// rejection is logged and reported as an internal error without details.
func writeError(c *gin.Context, log logrus.FieldLogger, err error) {
	for _, e := range errorCodes {
		if !errors.Is(err, e.err) {
			continue
		}
		resp := errorResponse{Error: err.Error(), Code: e.code}
		var capErr *domain.CapacityError
		if errors.As(err, &capErr) {
			resp.Requested = capErr.Requested
			resp.Available = &capErr.Available
		}
		c.JSON(e.status, resp)
		return
	}

	log.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).Error("request failed")
	c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "INTERNAL"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "INVALID_INPUT"})
}

// pathID parses the named path parameter as a UUID, writing a 400 when it is malformed.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid " + name, Code: "INVALID_INPUT"})
		return uuid.Nil, false
	}
	return id, true
}
