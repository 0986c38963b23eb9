// Package sqlite provides a SQLite implementation of the repository interface
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/navikt/roomboard/internal/models"
)

// Repository implements the repository interface on a SQLite database file
type Repository struct {
	db *sql.DB
}

// NewRepository opens (or creates) the database at path and applies the schema
func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	if _, err := r.db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return fmt.Errorf("failed to set WAL mode: %w", err)
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			capacity INTEGER NOT NULL DEFAULT 0,
			location TEXT NOT NULL DEFAULT '',
			operating_start TEXT NOT NULL DEFAULT '',
			operating_end TEXT NOT NULL DEFAULT '',
			works_saturday INTEGER NOT NULL DEFAULT 0,
			works_sunday INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS appointments (
			id TEXT PRIMARY KEY,
			room_id TEXT NOT NULL,
			date TEXT NOT NULL,
			time TEXT NOT NULL,
			duration_minutes INTEGER NOT NULL,
			subject TEXT NOT NULL DEFAULT '',
			user_name TEXT NOT NULL DEFAULT '',
			participants TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_room_date ON appointments(room_id, date)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// Close closes the database
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping checks that the database is reachable, for readiness probes
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SaveRoom creates or replaces a room
func (r *Repository) SaveRoom(ctx context.Context, room *models.Room) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rooms (id, name, capacity, location, operating_start, operating_end, works_saturday, works_sunday)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			capacity = excluded.capacity,
			location = excluded.location,
			operating_start = excluded.operating_start,
			operating_end = excluded.operating_end,
			works_saturday = excluded.works_saturday,
			works_sunday = excluded.works_sunday`,
		room.ID, room.Name, room.Capacity, room.Location,
		room.OperatingStart, room.OperatingEnd, room.WorksSaturday, room.WorksSunday,
	)
	if err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

const roomColumns = `id, name, capacity, location, operating_start, operating_end, works_saturday, works_sunday`

type scanner interface {
	Scan(dest ...any) error
}

func scanRoom(row scanner) (*models.Room, error) {
	var room models.Room
	err := row.Scan(&room.ID, &room.Name, &room.Capacity, &room.Location,
		&room.OperatingStart, &room.OperatingEnd, &room.WorksSaturday, &room.WorksSunday)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetRoom retrieves a room by ID
func (r *Repository) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)

	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("room %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

// ListRooms returns all rooms ordered by ID
func (r *Repository) ListRooms(ctx context.Context) ([]*models.Room, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	rooms := []*models.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

// DeleteRoom removes a room and every appointment booked in it
func (r *Repository) DeleteRoom(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("room %s: %w", id, models.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM appointments WHERE room_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete appointments: %w", err)
	}

	return tx.Commit()
}

// SaveAppointment creates or replaces an appointment
func (r *Repository) SaveAppointment(ctx context.Context, appointment *models.Appointment) error {
	participants := appointment.Participants
	if participants == nil {
		participants = []string{}
	}
	encoded, err := json.Marshal(participants)
	if err != nil {
		return fmt.Errorf("failed to marshal participants: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO appointments (id, room_id, date, time, duration_minutes, subject, user_name, participants, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			room_id = excluded.room_id,
			date = excluded.date,
			time = excluded.time,
			duration_minutes = excluded.duration_minutes,
			subject = excluded.subject,
			user_name = excluded.user_name,
			participants = excluded.participants,
			created_at = excluded.created_at`,
		appointment.ID, appointment.RoomID, appointment.Date, appointment.Time,
		appointment.DurationMinutes, appointment.Subject, appointment.UserName,
		string(encoded), appointment.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save appointment: %w", err)
	}
	return nil
}

const appointmentColumns = `id, room_id, date, time, duration_minutes, subject, user_name, participants, created_at`

func scanAppointment(row scanner) (*models.Appointment, error) {
	var (
		appointment  models.Appointment
		participants string
		createdAt    string
	)
	err := row.Scan(&appointment.ID, &appointment.RoomID, &appointment.Date, &appointment.Time,
		&appointment.DurationMinutes, &appointment.Subject, &appointment.UserName, &participants, &createdAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(participants), &appointment.Participants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal participants: %w", err)
	}
	appointment.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return &appointment, nil
}

// GetAppointment retrieves an appointment by ID
func (r *Repository) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = ?`, id)

	appointment, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("appointment %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return appointment, nil
}

// ListAppointments returns the appointments of a room on a date
func (r *Repository) ListAppointments(ctx context.Context, roomID, date string) ([]*models.Appointment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE room_id = ? AND date = ?`, roomID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	appointments := []*models.Appointment{}
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	models.SortAppointments(appointments)
	return appointments, nil
}

// DeleteAppointment removes an appointment by ID
func (r *Repository) DeleteAppointment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("appointment %s: %w", id, models.ErrNotFound)
	}
	return nil
}
