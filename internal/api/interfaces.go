package api

import (
	"context"

	"github.com/navikt/roomboard/internal/models"
)

// RoomServicer defines the room service operations needed by API handlers
type RoomServicer interface {
	// Status and schedules
	RoomStatus(ctx context.Context, roomID string) (*models.RoomStatus, error)
	AllRoomStatuses(ctx context.Context) ([]models.RoomStatus, error)
	DaySchedule(ctx context.Context, roomID, date string) (*models.Schedule, error)

	// Room management
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)
	ListRooms(ctx context.Context) ([]*models.Room, error)
	CreateRoom(ctx context.Context, room *models.Room) error
	UpdateRoom(ctx context.Context, room *models.Room) error
	DeleteRoom(ctx context.Context, roomID string) error

	// Bookings
	ListAppointments(ctx context.Context, roomID, date string) ([]*models.Appointment, error)
	BookAppointment(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error)
	CancelAppointment(ctx context.Context, appointmentID string) error

	Ready(ctx context.Context) error
}
