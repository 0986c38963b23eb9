// Package repository defines interfaces for data storage
package repository

import (
	"context"

	"github.com/navikt/roomboard/internal/models"
)

// Repository stores rooms and their appointments.
// Missing records are reported with an error wrapping models.ErrNotFound.
type Repository interface {
	// Room operations
	SaveRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ListRooms(ctx context.Context) ([]*models.Room, error)
	DeleteRoom(ctx context.Context, id string) error

	// Appointment operations. ListAppointments returns the appointments of one room on
	// one "YYYY-MM-DD" date, ordered by models.SortAppointments.
	SaveAppointment(ctx context.Context, appointment *models.Appointment) error
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	ListAppointments(ctx context.Context, roomID, date string) ([]*models.Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
}
