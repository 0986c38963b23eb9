// Package service connects storage to the availability engine
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/navikt/roomboard/internal/availability"
	"github.com/navikt/roomboard/internal/metrics"
	"github.com/navikt/roomboard/internal/models"
	"github.com/navikt/roomboard/internal/repository"
	"github.com/navikt/roomboard/internal/utils"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrRoomExists          = errors.New("room already exists")
	ErrInvalidInput        = errors.New("invalid input")
)

// UpdateCallback is called with the ID of a room whose rooms or appointments changed
type UpdateCallback func(roomID string)

// RoomService provides room status and booking operations
type RoomService struct {
	repo     repository.Repository
	logger   *zap.Logger
	clock    func() time.Time
	location *time.Location

	callbacksMu     sync.RWMutex
	updateCallbacks []UpdateCallback
}

// Option configures a RoomService
type Option func(*RoomService)

// WithClock replaces time.Now, mainly for tests
func WithClock(clock func() time.Time) Option {
	return func(s *RoomService) { s.clock = clock }
}

// WithLocation sets the wall clock rooms are evaluated in
func WithLocation(loc *time.Location) Option {
	return func(s *RoomService) { s.location = loc }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *RoomService) { s.logger = logger }
}

// NewRoomService creates a new RoomService with the given repository
func NewRoomService(repo repository.Repository, opts ...Option) *RoomService {
	s := &RoomService{
		repo:     repo,
		logger:   zap.NewNop(),
		clock:    time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterUpdateCallback registers a callback function to be called when room data changes
func (s *RoomService) RegisterUpdateCallback(callback UpdateCallback) {
	s.callbacksMu.Lock()
	defer s.callbacksMu.Unlock()
	s.updateCallbacks = append(s.updateCallbacks, callback)
}

func (s *RoomService) notifyUpdate(roomID string) {
	s.callbacksMu.RLock()
	callbacks := append([]UpdateCallback(nil), s.updateCallbacks...)
	s.callbacksMu.RUnlock()

	for _, callback := range callbacks {
		callback(roomID)
	}
}

// Now returns the current time in the service's location
func (s *RoomService) Now() time.Time {
	return s.clock().In(s.location)
}

// Ready reports whether the storage backend is reachable
func (s *RoomService) Ready(ctx context.Context) error {
	if p, ok := s.repo.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *RoomService) getRoom(ctx context.Context, roomID string) (*models.Room, error) {
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
		}
		return nil, err
	}
	return room, nil
}

// RoomStatus returns the occupancy verdict and today's schedule for a room
func (s *RoomService) RoomStatus(ctx context.Context, roomID string) (*models.RoomStatus, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	status, err := s.computeStatus(ctx, room, s.Now())
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (s *RoomService) computeStatus(ctx context.Context, room *models.Room, now time.Time) (models.RoomStatus, error) {
	appointments, err := s.repo.ListAppointments(ctx, room.ID, now.Format(availability.DateLayout))
	if err != nil {
		return models.RoomStatus{}, fmt.Errorf("failed to load appointments for room %s: %w", room.ID, err)
	}

	status, err := availability.ComputeRoomStatus(*room, appointments, now)
	metrics.RecordStatus(&status, err)
	if err != nil {
		return models.RoomStatus{}, err
	}
	return status, nil
}

// AllRoomStatuses returns the status of every room ordered by name, then ID
func (s *RoomService) AllRoomStatuses(ctx context.Context) ([]models.RoomStatus, error) {
	rooms, err := s.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	statuses := make([]models.RoomStatus, 0, len(rooms))
	for _, room := range rooms {
		status, err := s.computeStatus(ctx, room, now)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}

	sort.SliceStable(statuses, func(i, j int) bool {
		if statuses[i].RoomName != statuses[j].RoomName {
			return statuses[i].RoomName < statuses[j].RoomName
		}
		return statuses[i].RoomID < statuses[j].RoomID
	})
	metrics.SetOccupiedRooms(statuses)

	return statuses, nil
}

// DaySchedule classifies a room's slots on date ("YYYY-MM-DD"); an empty date means today
func (s *RoomService) DaySchedule(ctx context.Context, roomID, date string) (*models.Schedule, error) {
	now := s.Now()
	day := now
	if date != "" {
		var err error
		day, err = availability.ParseDate(date, s.location)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	dateLabel := day.Format(availability.DateLayout)
	appointments, err := s.repo.ListAppointments(ctx, roomID, dateLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments for room %s: %w", roomID, err)
	}

	slots, err := availability.ComputeDaySchedule(*room, appointments, day, now)
	if err != nil {
		return nil, err
	}
	metrics.RecordSlots(slots)

	return &models.Schedule{
		RoomID:   room.ID,
		RoomName: room.Name,
		Date:     dateLabel,
		Slots:    slots,
	}, nil
}

// validateRoom checks field formats and that the operating window is not empty
func validateRoom(room *models.Room) error {
	if err := utils.ValidateStruct(room); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, utils.FormatValidationError(err))
	}
	withDefaults := room.WithDefaults()
	start, _ := availability.ParseClock(withDefaults.OperatingStart)
	end, _ := availability.ParseClock(withDefaults.OperatingEnd)
	if start >= end {
		return fmt.Errorf("%w: operating_start must be before operating_end", ErrInvalidInput)
	}
	return nil
}

// GetRoom returns a room by ID
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	return s.getRoom(ctx, roomID)
}

// ListRooms returns every room
func (s *RoomService) ListRooms(ctx context.Context) ([]*models.Room, error) {
	return s.repo.ListRooms(ctx)
}

// CreateRoom stores a new room
func (s *RoomService) CreateRoom(ctx context.Context, room *models.Room) error {
	if err := validateRoom(room); err != nil {
		return err
	}
	if _, err := s.getRoom(ctx, room.ID); err == nil {
		return fmt.Errorf("%w: %s", ErrRoomExists, room.ID)
	} else if !errors.Is(err, ErrRoomNotFound) {
		return err
	}

	if err := s.repo.SaveRoom(ctx, room); err != nil {
		return err
	}
	s.logger.Info("room created", utils.SafeString("room_id", room.ID))
	s.notifyUpdate(room.ID)
	return nil
}

// UpdateRoom replaces an existing room's configuration
func (s *RoomService) UpdateRoom(ctx context.Context, room *models.Room) error {
	if err := validateRoom(room); err != nil {
		return err
	}
	if _, err := s.getRoom(ctx, room.ID); err != nil {
		return err
	}

	if err := s.repo.SaveRoom(ctx, room); err != nil {
		return err
	}
	s.logger.Info("room updated", utils.SafeString("room_id", room.ID))
	s.notifyUpdate(room.ID)
	return nil
}

// DeleteRoom removes a room together with its appointments
func (s *RoomService) DeleteRoom(ctx context.Context, roomID string) error {
	if err := s.repo.DeleteRoom(ctx, roomID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
		}
		return err
	}
	s.logger.Info("room deleted", utils.SafeString("room_id", roomID))
	s.notifyUpdate(roomID)
	return nil
}

// ListAppointments returns the appointments of a room on a date; an empty date means today
func (s *RoomService) ListAppointments(ctx context.Context, roomID, date string) ([]*models.Appointment, error) {
	if date == "" {
		date = s.Now().Format(availability.DateLayout)
	} else if _, err := availability.ParseDate(date, s.location); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := s.getRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return s.repo.ListAppointments(ctx, roomID, date)
}

// BookAppointment stores a booking of one slot. Same-slot double bookings are
// accepted and logged; status reads resolve them to the earliest booking.
func (s *RoomService) BookAppointment(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error) {
	booked, err := s.bookAppointment(ctx, appointment)
	metrics.RecordAppointmentWrite("book", err)
	return booked, err
}

func (s *RoomService) bookAppointment(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error) {
	if err := utils.ValidateStruct(appointment); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, utils.FormatValidationError(err))
	}
	if !availability.OnGrid(appointment.Time) {
		return nil, fmt.Errorf("%w: time %q is not a bookable slot", ErrInvalidInput, appointment.Time)
	}
	if _, err := s.getRoom(ctx, appointment.RoomID); err != nil {
		return nil, err
	}

	booked := *appointment
	if booked.ID == "" {
		booked.ID = uuid.Must(uuid.NewV7()).String()
	}
	booked.DurationMinutes = models.SlotMinutes
	booked.CreatedAt = s.clock().UTC()
	if booked.Participants == nil {
		booked.Participants = []string{}
	}

	existing, err := s.repo.ListAppointments(ctx, booked.RoomID, booked.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments for room %s: %w", booked.RoomID, err)
	}
	for _, other := range existing {
		if other.Time == booked.Time && other.ID != booked.ID {
			metrics.DoubleBookings.Inc()
			s.logger.Warn("slot already booked, keeping both appointments",
				utils.SafeString("room_id", booked.RoomID),
				zap.String("date", booked.Date),
				zap.String("time", booked.Time),
				utils.SafeString("existing_appointment_id", other.ID),
				utils.SafeString("appointment_id", booked.ID),
			)
			break
		}
	}

	if err := s.repo.SaveAppointment(ctx, &booked); err != nil {
		return nil, err
	}

	s.logger.Info("appointment booked",
		utils.SafeString("appointment_id", booked.ID),
		utils.SafeString("room_id", booked.RoomID),
		zap.String("date", booked.Date),
		zap.String("time", booked.Time),
	)
	s.notifyUpdate(booked.RoomID)
	return &booked, nil
}

// CancelAppointment removes a booking
func (s *RoomService) CancelAppointment(ctx context.Context, appointmentID string) error {
	err := s.cancelAppointment(ctx, appointmentID)
	metrics.RecordAppointmentWrite("cancel", err)
	return err
}

func (s *RoomService) cancelAppointment(ctx context.Context, appointmentID string) error {
	appointment, err := s.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrAppointmentNotFound, appointmentID)
		}
		return err
	}

	if err := s.repo.DeleteAppointment(ctx, appointmentID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrAppointmentNotFound, appointmentID)
		}
		return err
	}

	s.logger.Info("appointment cancelled",
		utils.SafeString("appointment_id", appointmentID),
		utils.SafeString("room_id", appointment.RoomID),
	)
	s.notifyUpdate(appointment.RoomID)
	return nil
}
