// Package redis provides a Redis/Valkey implementation of the repository interface
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/navikt/roomboard/internal/availability"
	"github.com/navikt/roomboard/internal/config"
	"github.com/navikt/roomboard/internal/models"
)

// Repository implements the repository interface with Redis storage
type Repository struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	location  *time.Location
}

// NewRepository creates a new Redis repository
func NewRepository(cfg config.RedisConfig) (*Repository, error) {
	var client *redis.Client

	// Use URI if provided, otherwise build connection from individual parameters
	if cfg.URI != "" {
		opt, err := redis.ParseURL(cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URI: %w", err)
		}

		// Use DB from config if not specified in the URI
		if opt.DB == 0 {
			opt.DB = cfg.DB
		}

		// Use password from config if not in URI or if empty in URI
		if opt.Password == "" && cfg.Password != "" {
			opt.Password = cfg.Password
		}

		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Repository{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		ttl:       cfg.AppointmentTTL,
		location:  cfg.Location,
	}, nil
}

// Close closes the Redis connection
func (r *Repository) Close() error {
	return r.client.Close()
}

// Ping checks that Redis answers, for readiness probes
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Repository) roomKey(id string) string {
	return fmt.Sprintf("%sroom:%s", r.keyPrefix, id)
}

func (r *Repository) roomSetKey() string {
	return r.keyPrefix + "rooms"
}

func (r *Repository) appointmentKey(id string) string {
	return fmt.Sprintf("%sappointment:%s", r.keyPrefix, id)
}

// scheduleKey returns the key of the set of appointment IDs for a room on a date
func (r *Repository) scheduleKey(roomID, date string) string {
	return fmt.Sprintf("%sschedule:%s:%s", r.keyPrefix, roomID, date)
}

// roomSchedulesKey returns the key of the set of schedule keys a room has appointments in
func (r *Repository) roomSchedulesKey(roomID string) string {
	return fmt.Sprintf("%sroomschedules:%s", r.keyPrefix, roomID)
}

// appointmentTTL keeps an appointment until ttl after the end of its day,
// and never for less than ttl from now
func (r *Repository) appointmentTTL(date string, now time.Time) time.Duration {
	day, err := availability.ParseDate(date, r.location)
	if err != nil {
		return r.ttl
	}
	untilDayEnd := day.AddDate(0, 0, 1).Sub(now)
	return max(untilDayEnd+r.ttl, r.ttl)
}

// SaveRoom creates or replaces a room
func (r *Repository) SaveRoom(ctx context.Context, room *models.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.roomKey(room.ID), data, 0)
	pipe.SAdd(ctx, r.roomSetKey(), room.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}

	return nil
}

// GetRoom retrieves a room by ID
func (r *Repository) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	data, err := r.client.Get(ctx, r.roomKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("room %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	var room models.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &room, nil
}

// ListRooms returns all rooms ordered by ID
func (r *Repository) ListRooms(ctx context.Context) ([]*models.Room, error) {
	ids, err := r.client.SMembers(ctx, r.roomSetKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	if len(ids) == 0 {
		return []*models.Room{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.roomKey(id)
	}

	// Use MGET to retrieve all room data in a single roundtrip
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get room data: %w", err)
	}

	rooms := make([]*models.Room, 0, len(values))
	for _, v := range values {
		strData, ok := v.(string)
		if !ok {
			continue
		}

		var room models.Room
		if err := json.Unmarshal([]byte(strData), &room); err != nil {
			continue
		}
		rooms = append(rooms, &room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })

	return rooms, nil
}

// DeleteRoom removes a room and every appointment booked in it
func (r *Repository) DeleteRoom(ctx context.Context, id string) error {
	exists, err := r.client.Exists(ctx, r.roomKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to check if room exists: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("room %s: %w", id, models.ErrNotFound)
	}

	scheduleKeys, err := r.client.SMembers(ctx, r.roomSchedulesKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to list schedules: %w", err)
	}

	toDelete := []string{r.roomKey(id), r.roomSchedulesKey(id)}
	for _, key := range scheduleKeys {
		apptIDs, err := r.client.SMembers(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("failed to read schedule: %w", err)
		}
		for _, apptID := range apptIDs {
			toDelete = append(toDelete, r.appointmentKey(apptID))
		}
		toDelete = append(toDelete, key)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, toDelete...)
	pipe.SRem(ctx, r.roomSetKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	return nil
}

// SaveAppointment creates or replaces an appointment
func (r *Repository) SaveAppointment(ctx context.Context, appointment *models.Appointment) error {
	previous, err := r.GetAppointment(ctx, appointment.ID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return err
	}

	data, err := json.Marshal(appointment)
	if err != nil {
		return fmt.Errorf("failed to marshal appointment: %w", err)
	}

	schedule := r.scheduleKey(appointment.RoomID, appointment.Date)

	pipe := r.client.TxPipeline()
	if previous != nil {
		pipe.SRem(ctx, r.scheduleKey(previous.RoomID, previous.Date), previous.ID)
	}
	var ttl time.Duration
	if r.ttl > 0 {
		ttl = r.appointmentTTL(appointment.Date, time.Now())
	}
	pipe.Set(ctx, r.appointmentKey(appointment.ID), data, ttl)
	pipe.SAdd(ctx, schedule, appointment.ID)
	pipe.SAdd(ctx, r.roomSchedulesKey(appointment.RoomID), schedule)
	if ttl > 0 {
		// Every appointment in a schedule shares its date, so the set expires with them
		pipe.Expire(ctx, schedule, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save appointment: %w", err)
	}

	return nil
}

// GetAppointment retrieves an appointment by ID
func (r *Repository) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	data, err := r.client.Get(ctx, r.appointmentKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("appointment %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	var appointment models.Appointment
	if err := json.Unmarshal(data, &appointment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal appointment: %w", err)
	}

	return &appointment, nil
}

// ListAppointments returns the appointments of a room on a date.
// IDs whose appointment has expired are pruned from the schedule set.
func (r *Repository) ListAppointments(ctx context.Context, roomID, date string) ([]*models.Appointment, error) {
	schedule := r.scheduleKey(roomID, date)

	ids, err := r.client.SMembers(ctx, schedule).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	if len(ids) == 0 {
		return []*models.Appointment{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.appointmentKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment data: %w", err)
	}

	appointments := make([]*models.Appointment, 0, len(values))
	var stale []interface{}
	for i, v := range values {
		strData, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}

		var appointment models.Appointment
		if err := json.Unmarshal([]byte(strData), &appointment); err != nil {
			continue
		}
		appointments = append(appointments, &appointment)
	}

	if len(stale) > 0 {
		// Best effort; a failed prune is retried on the next read
		r.client.SRem(ctx, schedule, stale...)
	}

	models.SortAppointments(appointments)
	return appointments, nil
}

// DeleteAppointment removes an appointment by ID
func (r *Repository) DeleteAppointment(ctx context.Context, id string) error {
	appointment, err := r.GetAppointment(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.appointmentKey(id))
	pipe.SRem(ctx, r.scheduleKey(appointment.RoomID, appointment.Date), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	return nil
}
