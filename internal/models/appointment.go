package models

import (
	"sort"
	"time"
)

// SlotMinutes is the fixed length of every slot and therefore of every appointment
const SlotMinutes = 30

// Appointment is a booking of one slot in one room on one calendar day
type Appointment struct {
	ID              string    `json:"id"`
	RoomID          string    `json:"room_id" validate:"required"`
	Date            string    `json:"date" validate:"required,date"`  // "YYYY-MM-DD"
	Time            string    `json:"time" validate:"required,clock"` // slot start, "HH:MM"
	DurationMinutes int       `json:"duration_minutes"`
	Subject         string    `json:"subject" validate:"max=200"`
	UserName        string    `json:"user_name" validate:"max=200"`
	Participants    []string  `json:"participants"`
	CreatedAt       time.Time `json:"created_at"`
}

// SortAppointments orders appointments by slot time, then creation time, then ID.
// Repositories return this order so that first-match rules see the same input on
// every backend.
func SortAppointments(appointments []*Appointment) {
	sort.SliceStable(appointments, func(i, j int) bool {
		a, b := appointments[i], appointments[j]
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
