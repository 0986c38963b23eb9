package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by every repository backend when a record does not exist
var ErrNotFound = errors.New("entity not found")

// SlotState classifies a single slot of a room's day
type SlotState int

const (
	SlotFree SlotState = iota
	SlotBooked
	SlotPast
	SlotClosed
)

var slotStateNames = [...]string{"free", "booked", "past", "closed"}

// String returns the string representation of a slot state
func (s SlotState) String() string {
	if s < 0 || int(s) >= len(slotStateNames) {
		return fmt.Sprintf("SlotState(%d)", int(s))
	}
	return slotStateNames[s]
}

// MarshalText encodes the state by name so JSON payloads stay readable
func (s SlotState) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(slotStateNames) {
		return nil, fmt.Errorf("unknown slot state %d", int(s))
	}
	return []byte(slotStateNames[s]), nil
}

// UnmarshalText decodes a state name produced by MarshalText
func (s *SlotState) UnmarshalText(text []byte) error {
	for i, name := range slotStateNames {
		if name == string(text) {
			*s = SlotState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown slot state %q", string(text))
}

// Slot is one derived entry of a room's day schedule
type Slot struct {
	Time        string       `json:"time"`
	State       SlotState    `json:"state"`
	Appointment *Appointment `json:"appointment,omitempty"`
}

// RoomStatus is the occupancy verdict and day schedule of a room
type RoomStatus struct {
	RoomID             string       `json:"room_id"`
	RoomName           string       `json:"room_name"`
	Date               string       `json:"date"`
	IsOccupied         bool         `json:"is_occupied"`
	IsClosed           bool         `json:"is_closed"`
	CurrentAppointment *Appointment `json:"current_appointment,omitempty"`
	DaySchedule        []Slot       `json:"day_schedule"`
}

// Available returns true if the room is open and nobody is in it right now
func (s *RoomStatus) Available() bool {
	return !s.IsClosed && !s.IsOccupied
}

// Schedule is the classified day of a room on an arbitrary date
type Schedule struct {
	RoomID   string `json:"room_id"`
	RoomName string `json:"room_name"`
	Date     string `json:"date"`
	Slots    []Slot `json:"slots"`
}
