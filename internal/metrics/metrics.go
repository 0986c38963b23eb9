// Package metrics exposes Prometheus collectors for room status computation and HTTP traffic
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/navikt/roomboard/internal/models"
)

var (
	StatusComputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomboard_status_computations_total",
			Help: "Room status computations by result",
		},
		[]string{"result"},
	)

	ClassifiedSlots = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomboard_classified_slots_total",
			Help: "Slots classified by the availability engine, by state",
		},
		[]string{"state"},
	)

	OccupiedRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roomboard_occupied_rooms",
			Help: "Rooms occupied at the last full status refresh",
		},
	)

	AppointmentWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomboard_appointment_writes_total",
			Help: "Appointment bookings and cancellations",
		},
		[]string{"operation", "status"},
	)

	DoubleBookings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roomboard_double_bookings_total",
			Help: "Bookings accepted for a slot that already had an appointment",
		},
	)

	SSESubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roomboard_sse_subscribers",
			Help: "Clients currently subscribed to room update events",
		},
	)

	SSEEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomboard_sse_events_total",
			Help: "Server-sent events published, by event type",
		},
		[]string{"event"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomboard_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roomboard_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordStatus records one engine run and the states of the slots it produced
func RecordStatus(status *models.RoomStatus, err error) {
	if err != nil {
		StatusComputations.WithLabelValues("error").Inc()
		return
	}
	StatusComputations.WithLabelValues("ok").Inc()
	RecordSlots(status.DaySchedule)
}

// RecordSlots counts a computed schedule by slot state
func RecordSlots(schedule []models.Slot) {
	for _, slot := range schedule {
		ClassifiedSlots.WithLabelValues(slot.State.String()).Inc()
	}
}

// RecordAppointmentWrite records a booking or cancellation outcome
func RecordAppointmentWrite(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	AppointmentWrites.WithLabelValues(operation, status).Inc()
}

// SetOccupiedRooms sets the number of rooms in a meeting right now
func SetOccupiedRooms(statuses []models.RoomStatus) {
	occupied := 0
	for _, s := range statuses {
		if s.IsOccupied {
			occupied++
		}
	}
	OccupiedRooms.Set(float64(occupied))
}
