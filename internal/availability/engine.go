package availability

import (
	"errors"
	"slices"
	"time"

	"github.com/navikt/roomboard/internal/models"
)

// Caller misuse. The engine never guesses a room identity or the current time.
var (
	ErrMissingRoom = errors.New("room identity is required")
	ErrMissingNow  = errors.New("current time is required")
)

// pastNone and pastAll are cutoffs for days after and before today
const (
	pastNone Clock = -1
	pastAll  Clock = 24 * 60
)

type operatingWindow struct {
	start Clock
	end   Clock
}

// contains reports whether c lies in the half-open window [start, end)
func (w operatingWindow) contains(c Clock) bool {
	return c >= w.start && c < w.end
}

// windowOf resolves a room's operating window. Missing or malformed hours fall back
// to the defaults instead of failing the computation.
func windowOf(room models.Room) operatingWindow {
	start, err := ParseClock(room.OperatingStart)
	if err != nil {
		start, _ = ParseClock(models.DefaultOperatingStart)
	}
	end, err := ParseClock(room.OperatingEnd)
	if err != nil {
		end, _ = ParseClock(models.DefaultOperatingEnd)
	}
	return operatingWindow{start: start, end: end}
}

// closedForWeekend applies the per-room weekend exception to a weekday
func closedForWeekend(room models.Room, day time.Weekday) bool {
	switch day {
	case time.Saturday:
		return !room.WorksSaturday
	case time.Sunday:
		return !room.WorksSunday
	}
	return false
}

// indexByTime maps slot starts to appointments. Records with a malformed time are
// skipped. When two appointments claim the same slot the first in input order wins.
func indexByTime(appointments []*models.Appointment) map[Clock]*models.Appointment {
	index := make(map[Clock]*models.Appointment, len(appointments))
	for _, a := range appointments {
		if a == nil {
			continue
		}
		c, err := ParseClock(a.Time)
		if err != nil {
			continue
		}
		if _, taken := index[c]; !taken {
			index[c] = a
		}
	}
	return index
}

// currentAppointment returns the first appointment, in input order, whose slot
// [time, time+30min) contains now. Overlapping bookings are the write path's concern;
// here they resolve to the earliest record rather than an error.
func currentAppointment(appointments []*models.Appointment, now Clock) *models.Appointment {
	for _, a := range appointments {
		if a == nil {
			continue
		}
		start, err := ParseClock(a.Time)
		if err != nil {
			continue
		}
		if now >= start && now < start.Add(models.SlotMinutes) {
			return a
		}
	}
	return nil
}

func cloneAppointment(a *models.Appointment) *models.Appointment {
	c := *a
	c.Participants = slices.Clone(a.Participants)
	return &c
}

// ComputeDaySchedule classifies every grid slot of date for the given room.
// Slots outside the room's operating window, or on a weekend day the room does not
// work, are closed even when a booking exists for them. A booked slot keeps its
// appointment. Open, unbooked slots that ended at or before now are past; on days
// before now's date all of them are, on later days none are.
func ComputeDaySchedule(room models.Room, appointments []*models.Appointment, date, now time.Time) ([]models.Slot, error) {
	if room.ID == "" {
		return nil, ErrMissingRoom
	}
	if now.IsZero() {
		return nil, ErrMissingNow
	}

	window := windowOf(room)
	weekendClosed := closedForWeekend(room, date.Weekday())
	index := indexByTime(appointments)

	cutoff := pastNone
	switch day, today := dayNumber(date), dayNumber(now); {
	case day < today:
		cutoff = pastAll
	case day == today:
		cutoff = ClockOf(now)
	}

	schedule := make([]models.Slot, 0, int(GridEnd-GridStart)/models.SlotMinutes)
	for label := range SlotGrid() {
		c, _ := ParseClock(label)
		slot := models.Slot{Time: label, State: models.SlotFree}

		if appt, ok := index[c]; ok {
			slot.Appointment = cloneAppointment(appt)
		}

		switch {
		case weekendClosed || !window.contains(c):
			slot.State = models.SlotClosed
			slot.Appointment = nil
		case slot.Appointment != nil:
			slot.State = models.SlotBooked
		case c.Add(models.SlotMinutes) <= cutoff:
			slot.State = models.SlotPast
		}

		schedule = append(schedule, slot)
	}

	return schedule, nil
}

// ComputeRoomStatus derives the occupancy verdict and today's schedule for a room.
//
// appointments must already be filtered to the room and to now's calendar date.
// A room is closed right now when today is a weekend day it does not work, or when
// now's wall-clock time is outside its operating window. It is occupied when an
// appointment's slot contains now and the room is not closed. If the input holds
// more than one appointment for the current slot, the first one in input order is
// reported as the current appointment; no error is raised.
func ComputeRoomStatus(room models.Room, appointments []*models.Appointment, now time.Time) (models.RoomStatus, error) {
	schedule, err := ComputeDaySchedule(room, appointments, now, now)
	if err != nil {
		return models.RoomStatus{}, err
	}

	nowClock := ClockOf(now)
	closed := closedForWeekend(room, now.Weekday()) || !windowOf(room).contains(nowClock)

	var current *models.Appointment
	if a := currentAppointment(appointments, nowClock); a != nil {
		current = cloneAppointment(a)
	}

	return models.RoomStatus{
		RoomID:             room.ID,
		RoomName:           room.Name,
		Date:               now.Format(DateLayout),
		IsOccupied:         current != nil && !closed,
		IsClosed:           closed,
		CurrentAppointment: current,
		DaySchedule:        schedule,
	}, nil
}
