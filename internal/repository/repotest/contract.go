// Package repotest holds behaviour every repository backend must share
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navikt/roomboard/internal/models"
	"github.com/navikt/roomboard/internal/repository"
)

// RunContract exercises a repository created fresh by newRepo for every subtest
func RunContract(t *testing.T, newRepo func(t *testing.T) repository.Repository) {
	t.Run("SaveAndGetRoom", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		room := &models.Room{
			ID:             "fjord",
			Name:           "Fjord",
			Capacity:       8,
			Location:       "3rd floor",
			OperatingStart: "09:00",
			OperatingEnd:   "16:00",
			WorksSaturday:  true,
		}
		require.NoError(t, repo.SaveRoom(ctx, room))

		saved, err := repo.GetRoom(ctx, "fjord")
		require.NoError(t, err)
		assert.Equal(t, *room, *saved)

		room.Name = "Fjorden"
		require.NoError(t, repo.SaveRoom(ctx, room))
		saved, err = repo.GetRoom(ctx, "fjord")
		require.NoError(t, err)
		assert.Equal(t, "Fjorden", saved.Name)
	})

	t.Run("GetMissingRoom", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.GetRoom(context.Background(), "nowhere")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("ListRooms", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		require.NoError(t, repo.SaveRoom(ctx, &models.Room{ID: "b", Name: "Bre"}))
		require.NoError(t, repo.SaveRoom(ctx, &models.Room{ID: "a", Name: "Ask"}))

		rooms, err := repo.ListRooms(ctx)
		require.NoError(t, err)
		require.Len(t, rooms, 2)
		assert.Equal(t, "a", rooms[0].ID)
		assert.Equal(t, "b", rooms[1].ID)
	})

	t.Run("DeleteRoomRemovesAppointments", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		require.NoError(t, repo.SaveRoom(ctx, &models.Room{ID: "fjord"}))
		require.NoError(t, repo.SaveAppointment(ctx, appointment("a1", "fjord", "2025-05-07", "09:00", 0)))

		require.NoError(t, repo.DeleteRoom(ctx, "fjord"))

		_, err := repo.GetRoom(ctx, "fjord")
		assert.ErrorIs(t, err, models.ErrNotFound)
		_, err = repo.GetAppointment(ctx, "a1")
		assert.ErrorIs(t, err, models.ErrNotFound)

		assert.ErrorIs(t, repo.DeleteRoom(ctx, "fjord"), models.ErrNotFound)
	})

	t.Run("SaveAndGetAppointment", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		appt := appointment("a1", "fjord", "2025-05-07", "09:00", 0)
		require.NoError(t, repo.SaveAppointment(ctx, appt))

		saved, err := repo.GetAppointment(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, appt.ID, saved.ID)
		assert.Equal(t, appt.RoomID, saved.RoomID)
		assert.Equal(t, appt.Date, saved.Date)
		assert.Equal(t, appt.Time, saved.Time)
		assert.Equal(t, appt.DurationMinutes, saved.DurationMinutes)
		assert.Equal(t, appt.Subject, saved.Subject)
		assert.Equal(t, appt.UserName, saved.UserName)
		assert.Equal(t, appt.Participants, saved.Participants)
		assert.True(t, appt.CreatedAt.Equal(saved.CreatedAt))

		_, err = repo.GetAppointment(ctx, "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("ListAppointmentsFiltersAndOrders", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		require.NoError(t, repo.SaveAppointment(ctx, appointment("late", "fjord", "2025-05-07", "14:00", 0)))
		require.NoError(t, repo.SaveAppointment(ctx, appointment("second", "fjord", "2025-05-07", "09:00", 2)))
		require.NoError(t, repo.SaveAppointment(ctx, appointment("first", "fjord", "2025-05-07", "09:00", 1)))
		require.NoError(t, repo.SaveAppointment(ctx, appointment("other-day", "fjord", "2025-05-08", "09:00", 0)))
		require.NoError(t, repo.SaveAppointment(ctx, appointment("other-room", "bre", "2025-05-07", "09:00", 0)))

		appts, err := repo.ListAppointments(ctx, "fjord", "2025-05-07")
		require.NoError(t, err)

		var ids []string
		for _, a := range appts {
			ids = append(ids, a.ID)
		}
		assert.Equal(t, []string{"first", "second", "late"}, ids)

		empty, err := repo.ListAppointments(ctx, "fjord", "2025-06-01")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("MovingAppointmentReindexes", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		appt := appointment("a1", "fjord", "2025-05-07", "09:00", 0)
		require.NoError(t, repo.SaveAppointment(ctx, appt))

		appt.Date = "2025-05-08"
		require.NoError(t, repo.SaveAppointment(ctx, appt))

		before, err := repo.ListAppointments(ctx, "fjord", "2025-05-07")
		require.NoError(t, err)
		assert.Empty(t, before)

		after, err := repo.ListAppointments(ctx, "fjord", "2025-05-08")
		require.NoError(t, err)
		assert.Len(t, after, 1)
	})

	t.Run("DeleteAppointment", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		require.NoError(t, repo.SaveAppointment(ctx, appointment("a1", "fjord", "2025-05-07", "09:00", 0)))
		require.NoError(t, repo.DeleteAppointment(ctx, "a1"))

		appts, err := repo.ListAppointments(ctx, "fjord", "2025-05-07")
		require.NoError(t, err)
		assert.Empty(t, appts)

		assert.ErrorIs(t, repo.DeleteAppointment(ctx, "a1"), models.ErrNotFound)
	})
}

func appointment(id, roomID, date, slot string, createdOffset int) *models.Appointment {
	return &models.Appointment{
		ID:              id,
		RoomID:          roomID,
		Date:            date,
		Time:            slot,
		DurationMinutes: models.SlotMinutes,
		Subject:         "Meeting " + id,
		UserName:        "Kari Nordmann",
		Participants:    []string{"Ola", "Per"},
		CreatedAt:       time.Date(2025, 5, 1, 12, 0, createdOffset, 0, time.UTC),
	}
}
