package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Rejections: the request is wrong for the current state and the caller should be told so.
var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrAlreadyAssigned      = errors.New("customer already has a room in this roster")
	ErrVoucherUnavailable   = errors.New("voucher is not available")
	ErrPaymentNotPending    = errors.New("payment is not pending")
	ErrRosterBusy           = errors.New("roster is being assigned by another request")
)

var rejections = []error{
	ErrNotFound,
	ErrInvalidInput,
	ErrInsufficientCapacity,
	ErrInvalidTransition,
	ErrAlreadyAssigned,
	ErrVoucherUnavailable,
	ErrPaymentNotPending,
	ErrRosterBusy,
}

// ErrIntegrity marks stored data that contradicts itself, such as a booking that references
// a seller who no longer exists. It is a failure to alert on, not a rejection.
var ErrIntegrity = errors.New("data integrity violation")

// IsRejection reports whether err is a business rejection rather than an infrastructure failure.
func IsRejection(err error) bool {
	for _, target := range rejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// CapacityError is returned when a departure has fewer free seats than requested.
type CapacityError struct {
	ScheduleID uuid.UUID
	Requested  int
	Available  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity on schedule %s: requested %d, available %d", e.ScheduleID, e.Requested, e.Available)
}

func (e *CapacityError) Unwrap() error { return ErrInsufficientCapacity }

// TransitionError is returned when a booking cannot move from one status to another.
type TransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// InvalidInputf builds an ErrInvalidInput with a message.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Integrityf builds an ErrIntegrity. cause appears in the message but is not wrapped, so a
// missing record behind it is not reported as a rejection.
func Integrityf(cause error, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %v", ErrIntegrity, fmt.Sprintf(format, args...), cause)
}

// NotFoundf builds an ErrNotFound with a message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
