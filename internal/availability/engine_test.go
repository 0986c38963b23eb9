package availability_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/navikt/roomboard/internal/availability"
	"github.com/navikt/roomboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-05-07 is a Wednesday, 2025-05-10 a Saturday, 2025-05-11 a Sunday
func at(day, hour, minute int) time.Time {
	return time.Date(2025, 5, day, hour, minute, 0, 0, time.UTC)
}

func standardRoom() models.Room {
	return models.Room{
		ID:             "room1",
		Name:           "Fjord",
		OperatingStart: "08:00",
		OperatingEnd:   "18:00",
	}
}

func appointmentAt(id, slot string) *models.Appointment {
	return &models.Appointment{
		ID:              id,
		RoomID:          "room1",
		Date:            "2025-05-07",
		Time:            slot,
		DurationMinutes: 30,
		Subject:         "Standup " + id,
		UserName:        "Kari Nordmann",
		Participants:    []string{"Ola", "Per"},
	}
}

func slotByTime(t *testing.T, schedule []models.Slot, label string) models.Slot {
	t.Helper()
	for _, s := range schedule {
		if s.Time == label {
			return s
		}
	}
	t.Fatalf("slot %s not in schedule", label)
	return models.Slot{}
}

func TestComputeRoomStatus_WeekdayMeeting(t *testing.T) {
	appt := appointmentAt("a1", "09:00")

	status, err := availability.ComputeRoomStatus(standardRoom(), []*models.Appointment{appt}, at(7, 9, 10))
	require.NoError(t, err)

	assert.Equal(t, "room1", status.RoomID)
	assert.Equal(t, "Fjord", status.RoomName)
	assert.Equal(t, "2025-05-07", status.Date)
	assert.True(t, status.IsOccupied)
	assert.False(t, status.IsClosed)
	require.NotNil(t, status.CurrentAppointment)
	assert.Equal(t, "a1", status.CurrentAppointment.ID)

	booked := slotByTime(t, status.DaySchedule, "09:00")
	assert.Equal(t, models.SlotBooked, booked.State)
	require.NotNil(t, booked.Appointment)
	assert.Equal(t, "a1", booked.Appointment.ID)

	assert.Equal(t, models.SlotPast, slotByTime(t, status.DaySchedule, "08:30").State)
	assert.Equal(t, models.SlotPast, slotByTime(t, status.DaySchedule, "08:00").State)
	assert.Equal(t, models.SlotFree, slotByTime(t, status.DaySchedule, "09:30").State)
	assert.Nil(t, slotByTime(t, status.DaySchedule, "09:30").Appointment)
}

func TestComputeRoomStatus_SaturdayClosed(t *testing.T) {
	appt := appointmentAt("a1", "09:00")
	appt.Date = "2025-05-10"

	status, err := availability.ComputeRoomStatus(standardRoom(), []*models.Appointment{appt}, at(10, 9, 10))
	require.NoError(t, err)

	assert.True(t, status.IsClosed)
	assert.False(t, status.IsOccupied)
	for _, slot := range status.DaySchedule {
		assert.Equal(t, models.SlotClosed, slot.State, "slot %s", slot.Time)
		assert.Nil(t, slot.Appointment)
	}
}

func TestComputeRoomStatus_SundayClosedUnlessRoomWorks(t *testing.T) {
	room := standardRoom()

	status, err := availability.ComputeRoomStatus(room, nil, at(11, 10, 0))
	require.NoError(t, err)
	assert.True(t, status.IsClosed)

	room.WorksSunday = true
	status, err = availability.ComputeRoomStatus(room, nil, at(11, 10, 0))
	require.NoError(t, err)
	assert.False(t, status.IsClosed)
	assert.Equal(t, models.SlotFree, slotByTime(t, status.DaySchedule, "10:00").State)
	assert.Equal(t, models.SlotPast, slotByTime(t, status.DaySchedule, "09:30").State)
}

func TestComputeRoomStatus_SaturdayExceptionKeepsOwnHours(t *testing.T) {
	room := standardRoom()
	room.WorksSaturday = true
	room.OperatingStart = "10:00"
	room.OperatingEnd = "14:00"

	status, err := availability.ComputeRoomStatus(room, nil, at(10, 7, 0))
	require.NoError(t, err)

	assert.True(t, status.IsClosed, "before opening the room is closed right now")
	assert.Equal(t, models.SlotClosed, slotByTime(t, status.DaySchedule, "09:30").State)
	assert.Equal(t, models.SlotFree, slotByTime(t, status.DaySchedule, "10:00").State)
	assert.Equal(t, models.SlotFree, slotByTime(t, status.DaySchedule, "13:30").State)
	assert.Equal(t, models.SlotClosed, slotByTime(t, status.DaySchedule, "14:00").State)
}

func TestComputeRoomStatus_ShortOperatingHours(t *testing.T) {
	room := standardRoom()
	room.OperatingEnd = "12:00"
	appt := appointmentAt("a1", "14:00")

	status, err := availability.ComputeRoomStatus(room, []*models.Appointment{appt}, at(7, 8, 0))
	require.NoError(t, err)

	afternoon := slotByTime(t, status.DaySchedule, "14:00")
	assert.Equal(t, models.SlotClosed, afternoon.State)
	assert.Nil(t, afternoon.Appointment)

	assert.Equal(t, models.SlotFree, slotByTime(t, status.DaySchedule, "11:30").State)
	assert.Equal(t, models.SlotClosed, slotByTime(t, status.DaySchedule, "12:00").State)
}

func TestComputeRoomStatus_ClosedOutsideHoursNow(t *testing.T) {
	appt := appointmentAt("a1", "17:30")

	status, err := availability.ComputeRoomStatus(standardRoom(), []*models.Appointment{appt}, at(7, 18, 5))
	require.NoError(t, err)

	assert.True(t, status.IsClosed)
	assert.False(t, status.IsOccupied)
	assert.Nil(t, status.CurrentAppointment)
	assert.Equal(t, models.SlotBooked, slotByTime(t, status.DaySchedule, "17:30").State)
	assert.Equal(t, models.SlotPast, slotByTime(t, status.DaySchedule, "17:00").State)
}

func TestComputeRoomStatus_CurrentMeetingOutsideWindow(t *testing.T) {
	room := standardRoom()
	room.OperatingEnd = "12:00"
	appt := appointmentAt("a1", "14:00")

	status, err := availability.ComputeRoomStatus(room, []*models.Appointment{appt}, at(7, 14, 15))
	require.NoError(t, err)

	assert.True(t, status.IsClosed)
	require.NotNil(t, status.CurrentAppointment, "the meeting is reported even though the room is closed")
	assert.False(t, status.IsOccupied)
}

func TestComputeRoomStatus_SlotBoundaries(t *testing.T) {
	appt := appointmentAt("a1", "09:00")
	appts := []*models.Appointment{appt}

	status, err := availability.ComputeRoomStatus(standardRoom(), appts, at(7, 9, 0))
	require.NoError(t, err)
	assert.True(t, status.IsOccupied, "slot start is inclusive")

	status, err = availability.ComputeRoomStatus(standardRoom(), appts, at(7, 9, 30))
	require.NoError(t, err)
	assert.False(t, status.IsOccupied, "slot end is exclusive")
	assert.Nil(t, status.CurrentAppointment)
	assert.Equal(t, models.SlotFree, slotByTime(t, status.DaySchedule, "09:30").State)
	assert.Equal(t, models.SlotPast, slotByTime(t, status.DaySchedule, "08:30").State)
}

func TestComputeRoomStatus_OperatingEndBoundary(t *testing.T) {
	room := standardRoom()
	room.OperatingEnd = "16:00"

	status, err := availability.ComputeRoomStatus(room, nil, at(7, 8, 0))
	require.NoError(t, err)

	assert.Equal(t, models.SlotFree, slotByTime(t, status.DaySchedule, "15:30").State)
	assert.Equal(t, models.SlotClosed, slotByTime(t, status.DaySchedule, "16:00").State)
}

func TestComputeRoomStatus_DoubleBookingFirstMatchWins(t *testing.T) {
	first := appointmentAt("first", "10:00")
	second := appointmentAt("second", "10:00")

	status, err := availability.ComputeRoomStatus(standardRoom(), []*models.Appointment{first, second}, at(7, 10, 10))
	require.NoError(t, err)

	require.NotNil(t, status.CurrentAppointment)
	assert.Equal(t, "first", status.CurrentAppointment.ID)
	assert.Equal(t, "first", slotByTime(t, status.DaySchedule, "10:00").Appointment.ID)
	assert.True(t, status.IsOccupied)
}

func TestComputeRoomStatus_MalformedAppointmentSkipped(t *testing.T) {
	good := appointmentAt("good", "11:00")
	badHour := appointmentAt("bad-hour", "25:00")
	badFormat := appointmentAt("bad-format", "11")

	status, err := availability.ComputeRoomStatus(
		standardRoom(),
		[]*models.Appointment{badHour, nil, badFormat, good},
		at(7, 11, 5),
	)
	require.NoError(t, err)

	require.Len(t, status.DaySchedule, 20)
	assert.Equal(t, models.SlotBooked, slotByTime(t, status.DaySchedule, "11:00").State)
	require.NotNil(t, status.CurrentAppointment)
	assert.Equal(t, "good", status.CurrentAppointment.ID)

	booked := 0
	for _, slot := range status.DaySchedule {
		if slot.State == models.SlotBooked {
			booked++
		}
	}
	assert.Equal(t, 1, booked)
}

func TestComputeRoomStatus_OffGridAppointment(t *testing.T) {
	appt := appointmentAt("a1", "09:15")

	status, err := availability.ComputeRoomStatus(standardRoom(), []*models.Appointment{appt}, at(7, 9, 20))
	require.NoError(t, err)

	assert.True(t, status.IsOccupied)
	for _, slot := range status.DaySchedule {
		assert.NotEqual(t, models.SlotBooked, slot.State)
	}
}

func TestComputeRoomStatus_DefaultsForMissingConfiguration(t *testing.T) {
	room := models.Room{ID: "bare"}

	status, err := availability.ComputeRoomStatus(room, nil, at(7, 7, 0))
	require.NoError(t, err)
	assert.True(t, status.IsClosed, "07:00 is before the default opening")
	assert.Equal(t, models.SlotFree, slotByTime(t, status.DaySchedule, "08:00").State)
	assert.Equal(t, models.SlotFree, slotByTime(t, status.DaySchedule, "17:30").State)

	room.OperatingStart = "late"
	room.OperatingEnd = "99:99"
	status, err = availability.ComputeRoomStatus(room, nil, at(7, 9, 0))
	require.NoError(t, err)
	assert.False(t, status.IsClosed)
	assert.Equal(t, models.SlotFree, slotByTime(t, status.DaySchedule, "17:30").State)
}

func TestComputeRoomStatus_CallerMisuse(t *testing.T) {
	_, err := availability.ComputeRoomStatus(models.Room{}, nil, at(7, 9, 0))
	assert.ErrorIs(t, err, availability.ErrMissingRoom)

	_, err = availability.ComputeRoomStatus(standardRoom(), nil, time.Time{})
	assert.ErrorIs(t, err, availability.ErrMissingNow)
}

func TestComputeRoomStatus_Idempotent(t *testing.T) {
	appts := []*models.Appointment{appointmentAt("a1", "09:00"), appointmentAt("a2", "13:30")}
	now := at(7, 12, 45)

	first, err := availability.ComputeRoomStatus(standardRoom(), appts, now)
	require.NoError(t, err)
	second, err := availability.ComputeRoomStatus(standardRoom(), appts, now)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestComputeRoomStatus_ResultDoesNotAliasInput(t *testing.T) {
	appt := appointmentAt("a1", "09:00")

	status, err := availability.ComputeRoomStatus(standardRoom(), []*models.Appointment{appt}, at(7, 9, 10))
	require.NoError(t, err)

	status.CurrentAppointment.Subject = "changed"
	assert.Equal(t, "Standup a1", appt.Subject)
}

func TestComputeRoomStatus_PastIsMonotonic(t *testing.T) {
	appts := []*models.Appointment{appointmentAt("a1", "10:00")}
	room := standardRoom()
	room.OperatingEnd = "16:00"

	previous, err := availability.ComputeRoomStatus(room, appts, at(7, 8, 0))
	require.NoError(t, err)

	for minute := 8*60 + 1; minute < 24*60; minute += 7 {
		current, err := availability.ComputeRoomStatus(room, appts, at(7, minute/60, minute%60))
		require.NoError(t, err)

		for i, slot := range previous.DaySchedule {
			if slot.State == models.SlotPast {
				state := current.DaySchedule[i].State
				assert.Contains(t, []models.SlotState{models.SlotPast, models.SlotClosed}, state,
					"slot %s regressed at minute %d", slot.Time, minute)
			}
		}
		previous = current
	}
}

func TestComputeRoomStatus_EveryValidAppointmentIsBookedOnce(t *testing.T) {
	var appts []*models.Appointment
	for _, label := range []string{"08:00", "09:30", "12:00", "17:30"} {
		appts = append(appts, appointmentAt("a-"+label, label))
	}

	status, err := availability.ComputeRoomStatus(standardRoom(), appts, at(7, 6, 0))
	require.NoError(t, err)

	for _, a := range appts {
		matches := 0
		for _, slot := range status.DaySchedule {
			if slot.Time == a.Time && slot.State == models.SlotBooked && slot.Appointment.ID == a.ID {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "appointment %s", a.ID)
	}
}

func TestComputeDaySchedule_OtherDays(t *testing.T) {
	room := standardRoom()
	appts := []*models.Appointment{appointmentAt("a1", "09:00")}
	now := at(7, 12, 0)

	t.Run("PastDay", func(t *testing.T) {
		schedule, err := availability.ComputeDaySchedule(room, appts, at(6, 0, 0), now)
		require.NoError(t, err)
		assert.Equal(t, models.SlotBooked, slotByTime(t, schedule, "09:00").State)
		assert.Equal(t, models.SlotPast, slotByTime(t, schedule, "17:30").State)
	})

	t.Run("FutureDay", func(t *testing.T) {
		schedule, err := availability.ComputeDaySchedule(room, appts, at(8, 0, 0), now)
		require.NoError(t, err)
		assert.Equal(t, models.SlotFree, slotByTime(t, schedule, "08:00").State)
		assert.Equal(t, models.SlotBooked, slotByTime(t, schedule, "09:00").State)
	})

	t.Run("FutureWeekend", func(t *testing.T) {
		schedule, err := availability.ComputeDaySchedule(room, appts, at(10, 0, 0), now)
		require.NoError(t, err)
		for _, slot := range schedule {
			assert.Equal(t, models.SlotClosed, slot.State)
		}
	})
}
