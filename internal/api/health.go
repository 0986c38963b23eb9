// Package api provides the HTTP handlers for the roomboard API
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const readinessTimeout = 2 * time.Second

// HealthResponse represents the response for health check endpoints
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ReadinessChecker reports whether dependencies such as storage are reachable
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// HealthLiveHandler handles Kubernetes liveness probe requests
func HealthLiveHandler(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, HealthResponse{Status: "UP"})
}

// HealthReadyHandler handles Kubernetes readiness probe requests
func HealthReadyHandler(checker ReadinessChecker, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if err := checker.Ready(ctx); err != nil {
			logger.Warn("readiness check failed", zap.Error(err))
			writeHealth(w, http.StatusServiceUnavailable, HealthResponse{Status: "DOWN", Error: err.Error()})
			return
		}
		writeHealth(w, http.StatusOK, HealthResponse{Status: "UP"})
	}
}

func writeHealth(w http.ResponseWriter, status int, response HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
