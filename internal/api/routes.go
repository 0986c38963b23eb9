package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/navikt/roomboard/internal/metrics"
	"github.com/navikt/roomboard/internal/web"
)

// writeRequestsPerMinute limits room and appointment writes per client IP
const writeRequestsPerMinute = 120

// SetupRoutes configures the HTTP routes for the API. events, when not nil,
// is mounted at /events.
func SetupRoutes(svc RoomServicer, events http.Handler, logger *zap.Logger) *chi.Mux {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(web.ProtocolHeaders("/events"))
	router.Use(metrics.Middleware)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check endpoints for Kubernetes
	router.Get("/health/live", HealthLiveHandler)
	router.Get("/health/ready", HealthReadyHandler(svc, logger))

	router.Handle("/metrics", promhttp.Handler())

	if events != nil {
		router.Handle("/events", events)
	}

	rooms := NewRoomHandler(svc, logger)
	writeLimit := httprate.LimitByIP(writeRequestsPerMinute, time.Minute)

	router.Route("/api", func(r chi.Router) {
		r.Get("/status", rooms.allStatuses)

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", rooms.listRooms)
			r.With(writeLimit).Post("/", rooms.createRoom)

			r.Route("/{roomID}", func(r chi.Router) {
				r.Get("/", rooms.getRoom)
				r.With(writeLimit).Put("/", rooms.updateRoom)
				r.With(writeLimit).Delete("/", rooms.deleteRoom)
				r.Get("/status", rooms.roomStatus)
				r.Get("/schedule", rooms.schedule)
				r.Get("/appointments", rooms.listAppointments)
			})
		})

		r.Route("/appointments", func(r chi.Router) {
			r.With(writeLimit).Post("/", rooms.bookAppointment)
			r.With(writeLimit).Delete("/{appointmentID}", rooms.cancelAppointment)
		})
	})

	return router
}
