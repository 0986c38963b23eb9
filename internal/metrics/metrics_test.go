package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/navikt/roomboard/internal/models"
)

func TestRecordStatus(t *testing.T) {
	okBefore := testutil.ToFloat64(StatusComputations.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(StatusComputations.WithLabelValues("error"))
	bookedBefore := testutil.ToFloat64(ClassifiedSlots.WithLabelValues("booked"))

	status := &models.RoomStatus{
		DaySchedule: []models.Slot{
			{Time: "08:00", State: models.SlotPast},
			{Time: "08:30", State: models.SlotBooked},
			{Time: "09:00", State: models.SlotBooked},
		},
	}
	RecordStatus(status, nil)
	RecordStatus(nil, errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(StatusComputations.WithLabelValues("ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(StatusComputations.WithLabelValues("error")))
	assert.Equal(t, bookedBefore+2, testutil.ToFloat64(ClassifiedSlots.WithLabelValues("booked")))
}

func TestSetOccupiedRooms(t *testing.T) {
	SetOccupiedRooms([]models.RoomStatus{
		{RoomID: "a", IsOccupied: true},
		{RoomID: "b"},
		{RoomID: "c", IsOccupied: true},
	})
	assert.Equal(t, float64(2), testutil.ToFloat64(OccupiedRooms))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/rooms/{roomID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/rooms/{roomID}", "418"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/rooms/room-42", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/rooms/{roomID}", "418")))
}
