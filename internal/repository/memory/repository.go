// Package memory provides an in-memory implementation of the repository interface
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/navikt/roomboard/internal/models"
)

// Repository implements the repository interface with in-memory storage
type Repository struct {
	rooms        map[string]models.Room
	appointments map[string]models.Appointment
	// schedules indexes appointment IDs by room and date
	schedules map[string]map[string]struct{}
	mu        sync.RWMutex
}

// NewRepository creates a new in-memory repository
func NewRepository() *Repository {
	return &Repository{
		rooms:        make(map[string]models.Room),
		appointments: make(map[string]models.Appointment),
		schedules:    make(map[string]map[string]struct{}),
	}
}

func scheduleKey(roomID, date string) string {
	return roomID + "|" + date
}

func copyAppointment(a models.Appointment) *models.Appointment {
	a.Participants = slices.Clone(a.Participants)
	return &a
}

// SaveRoom creates or replaces a room
func (r *Repository) SaveRoom(ctx context.Context, room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rooms[room.ID] = *room
	return nil
}

// GetRoom retrieves a room by ID
func (r *Repository) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", id, models.ErrNotFound)
	}
	return &room, nil
}

// ListRooms returns all rooms ordered by ID
func (r *Repository) ListRooms(ctx context.Context) ([]*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]*models.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		room := room
		rooms = append(rooms, &room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })

	return rooms, nil
}

// DeleteRoom removes a room and every appointment booked in it
func (r *Repository) DeleteRoom(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[id]; !ok {
		return fmt.Errorf("room %s: %w", id, models.ErrNotFound)
	}
	delete(r.rooms, id)

	for apptID, appt := range r.appointments {
		if appt.RoomID == id {
			delete(r.appointments, apptID)
			delete(r.schedules, scheduleKey(appt.RoomID, appt.Date))
		}
	}

	return nil
}

// SaveAppointment creates or replaces an appointment
func (r *Repository) SaveAppointment(ctx context.Context, appointment *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Moving an appointment to another room or date must drop the old index entry
	if previous, ok := r.appointments[appointment.ID]; ok {
		r.unindex(previous)
	}

	r.appointments[appointment.ID] = *copyAppointment(*appointment)

	key := scheduleKey(appointment.RoomID, appointment.Date)
	if r.schedules[key] == nil {
		r.schedules[key] = make(map[string]struct{})
	}
	r.schedules[key][appointment.ID] = struct{}{}

	return nil
}

func (r *Repository) unindex(a models.Appointment) {
	key := scheduleKey(a.RoomID, a.Date)
	delete(r.schedules[key], a.ID)
	if len(r.schedules[key]) == 0 {
		delete(r.schedules, key)
	}
}

// GetAppointment retrieves an appointment by ID
func (r *Repository) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appt, ok := r.appointments[id]
	if !ok {
		return nil, fmt.Errorf("appointment %s: %w", id, models.ErrNotFound)
	}
	return copyAppointment(appt), nil
}

// ListAppointments returns the appointments of a room on a date
func (r *Repository) ListAppointments(ctx context.Context, roomID, date string) ([]*models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.schedules[scheduleKey(roomID, date)]
	appointments := make([]*models.Appointment, 0, len(ids))
	for id := range ids {
		appointments = append(appointments, copyAppointment(r.appointments[id]))
	}
	models.SortAppointments(appointments)

	return appointments, nil
}

// DeleteAppointment removes an appointment by ID
func (r *Repository) DeleteAppointment(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return fmt.Errorf("appointment %s: %w", id, models.ErrNotFound)
	}
	delete(r.appointments, id)
	r.unindex(appt)

	return nil
}
