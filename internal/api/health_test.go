package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/navikt/roomboard/internal/api"
)

func TestHealthLive(t *testing.T) {
	// Create a new request
	req, err := http.NewRequest("GET", "/health/live", nil)
	assert.NoError(t, err)

	// Create a response recorder
	rr := httptest.NewRecorder()

	// Create the handler
	handler := http.HandlerFunc(api.HealthLiveHandler)

	// Serve the request
	handler.ServeHTTP(rr, req)

	// Check the status code
	assert.Equal(t, http.StatusOK, rr.Code)

	// Check the content type
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	// Check the response body
	var response map[string]string
	err = json.Unmarshal(rr.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "UP", response["status"])
}

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name           string
		readyErr       error
		expectedStatus int
		expectedBody   string
	}{
		{"StorageReachable", nil, http.StatusOK, "UP"},
		{"StorageDown", errors.New("connection refused"), http.StatusServiceUnavailable, "DOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockRoomService)
			mockService.On("Ready", mock.Anything).Return(tt.readyErr)

			req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
			rr := httptest.NewRecorder()

			api.HealthReadyHandler(mockService, zap.NewNop()).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var response api.HealthResponse
			assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedBody, response.Status)
			mockService.AssertExpectations(t)
		})
	}
}
