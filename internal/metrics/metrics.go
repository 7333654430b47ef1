package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingsCreated counts bookings that reserved seats successfully.
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tourbooking",
		Name:      "bookings_created_total",
		Help:      "Bookings created",
	})

	// Transitions counts committed status transitions by target status.
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tourbooking",
		Name:      "booking_transitions_total",
		Help:      "Committed booking status transitions",
	}, []string{"to"})

	// CapacityRejections counts reservations refused for lack of seats.
	CapacityRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tourbooking",
		Name:      "capacity_rejections_total",
		Help:      "Seat reservations rejected for insufficient capacity",
	})

	SeatsReleased = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tourbooking",
		Name:      "seats_released_total",
		Help:      "Seats returned to departure pools",
	})

	PaymentsVerified = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tourbooking",
		Name:      "payments_settled_total",
		Help:      "Payments settled, by outcome",
	}, []string{"status"})

	// OrchestrationDuration observes how long each orchestrated command takes.
	OrchestrationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tourbooking",
		Name:      "orchestration_duration_seconds",
		Help:      "Duration of orchestrated booking commands",
		Buckets:   prometheus.DefBuckets,
	}, []string{"command", "outcome"})
)
