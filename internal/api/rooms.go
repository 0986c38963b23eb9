package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/navikt/roomboard/internal/models"
	"github.com/navikt/roomboard/internal/service"
	"github.com/navikt/roomboard/internal/utils"
)

// maxBodyBytes caps request bodies for room and appointment writes
const maxBodyBytes = 64 << 10

// ErrorResponse is the JSON body of every non-2xx API response
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomHandler handles HTTP requests for rooms, their status and their appointments
type RoomHandler struct {
	svc    RoomServicer
	logger *zap.Logger
}

// NewRoomHandler creates a new room handler backed by the given service
func NewRoomHandler(svc RoomServicer, logger *zap.Logger) *RoomHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomHandler{
		svc:    svc,
		logger: logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP status codes
func (h *RoomHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, service.ErrRoomNotFound), errors.Is(err, service.ErrAppointmentNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrRoomExists):
		status = http.StatusConflict
		message = err.Error()
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			utils.SafeString("path", r.URL.Path),
			zap.Error(err),
		)
	}

	writeJSON(w, status, ErrorResponse{Error: message})
}

func (h *RoomHandler) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		h.logger.Debug("invalid request body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// allStatuses handles GET /api/status
func (h *RoomHandler) allStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.svc.AllRoomStatuses(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

// roomStatus handles GET /api/rooms/{roomID}/status
func (h *RoomHandler) roomStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.RoomStatus(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// schedule handles GET /api/rooms/{roomID}/schedule?date=YYYY-MM-DD
func (h *RoomHandler) schedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.svc.DaySchedule(r.Context(), chi.URLParam(r, "roomID"), r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

// listRooms handles GET /api/rooms
func (h *RoomHandler) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.svc.ListRooms(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if rooms == nil {
		rooms = []*models.Room{}
	}
	writeJSON(w, http.StatusOK, rooms)
}

// createRoom handles POST /api/rooms
func (h *RoomHandler) createRoom(w http.ResponseWriter, r *http.Request) {
	var room models.Room
	if !h.decode(w, r, &room) {
		return
	}

	if err := h.svc.CreateRoom(r.Context(), &room); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

// getRoom handles GET /api/rooms/{roomID}
func (h *RoomHandler) getRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.svc.GetRoom(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// updateRoom handles PUT /api/rooms/{roomID}
func (h *RoomHandler) updateRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	var room models.Room
	if !h.decode(w, r, &room) {
		return
	}
	if room.ID != "" && room.ID != roomID {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "room ID in body does not match path"})
		return
	}
	room.ID = roomID

	if err := h.svc.UpdateRoom(r.Context(), &room); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// deleteRoom handles DELETE /api/rooms/{roomID}
func (h *RoomHandler) deleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteRoom(r.Context(), chi.URLParam(r, "roomID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listAppointments handles GET /api/rooms/{roomID}/appointments?date=YYYY-MM-DD
func (h *RoomHandler) listAppointments(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.svc.ListAppointments(r.Context(), chi.URLParam(r, "roomID"), r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if appointments == nil {
		appointments = []*models.Appointment{}
	}
	writeJSON(w, http.StatusOK, appointments)
}

// bookAppointment handles POST /api/appointments
func (h *RoomHandler) bookAppointment(w http.ResponseWriter, r *http.Request) {
	var appointment models.Appointment
	if !h.decode(w, r, &appointment) {
		return
	}

	booked, err := h.svc.BookAppointment(r.Context(), &appointment)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booked)
}

// cancelAppointment handles DELETE /api/appointments/{appointmentID}
func (h *RoomHandler) cancelAppointment(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CancelAppointment(r.Context(), chi.URLParam(r, "appointmentID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
