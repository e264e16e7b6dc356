package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
	appErrors "github.com/noah-isme/clinic-scheduling-api/pkg/errors"
)

type bookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	ListByTherapistRange(ctx context.Context, therapistID string, from, to time.Time) ([]models.Booking, error)
	UpdateSchedule(ctx context.Context, id string, sessionStart time.Time, status models.BookingStatus) error
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error
}

// BookingNotifier receives booking lifecycle events after they are stored.
type BookingNotifier interface {
	BookingChanged(ctx context.Context, event BookingEvent, booking models.Booking) error
}

// BookingEvent names a booking lifecycle transition.
type BookingEvent string

const (
	BookingEventCreated     BookingEvent = "created"
	BookingEventRescheduled BookingEvent = "rescheduled"
	BookingEventCancelled   BookingEvent = "cancelled"
)

// CreateBookingRequest is the payload for a new booking.
type CreateBookingRequest struct {
	ClientID     string    `json:"client_id" validate:"required"`
	ClientName   string    `json:"client_name" validate:"required"`
	ClientEmail  string    `json:"client_email" validate:"required,email"`
	TherapistID  string    `json:"therapist_id" validate:"required"`
	SessionStart time.Time `json:"session_start" validate:"required"`
	Amount       float64   `json:"amount" validate:"min=0"`
	Notes        *string   `json:"notes"`
}

// RescheduleBookingRequest moves a booking to a new start time. TherapistID, when set, must
// match the booking's therapist.
type RescheduleBookingRequest struct {
	TherapistID  string    `json:"therapist_id"`
	SessionStart time.Time `json:"session_start" validate:"required"`
}

// BookingConfig tunes the booking service.
type BookingConfig struct {
	SessionLength time.Duration
	Location      *time.Location
}

// BookingService guards booking writes against double-booking.
//
// Conflicts are detected by exact session start equality against the therapist's other
// non-cancelled bookings on the same calendar day. This is only sound while every booking
// starts on the shared session grid and lasts one session; bookings of other durations or
// off-grid starts can overlap without being detected.
//
// The check and the write are not atomic. Two concurrent creates for the same slot can both
// pass unless the storage layer rejects the second insert.
type BookingService struct {
	bookings   bookingRepository
	therapists therapistRepository
	notifier   BookingNotifier
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        BookingConfig
}

// NewBookingService builds the service. notifier and metrics are optional.
func NewBookingService(bookings bookingRepository, therapists therapistRepository, notifier BookingNotifier, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg BookingConfig) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionLength <= 0 {
		cfg.SessionLength = time.Hour
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &BookingService{
		bookings:   bookings,
		therapists: therapists,
		notifier:   notifier,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
	}
}

// Create stores a confirmed, paid booking when the requested start is still free.
func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	booking, err := s.create(ctx, req)
	s.metrics.RecordBookingOperation("create", bookingOutcome(err))
	if err != nil {
		return nil, err
	}
	s.notify(ctx, BookingEventCreated, *booking)
	return booking, nil
}

func (s *BookingService) create(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	req.ClientEmail = strings.TrimSpace(req.ClientEmail)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid booking payload")
	}

	therapist, err := s.therapists.FindByID(ctx, req.TherapistID)
	if err != nil {
		return nil, lookupError(err, "therapist not found", "failed to load therapist")
	}

	if err := s.ensureFree(ctx, req.TherapistID, req.SessionStart, ""); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ClientID:        req.ClientID,
		ClientName:      req.ClientName,
		ClientEmail:     req.ClientEmail,
		TherapistID:     therapist.ID,
		TherapistName:   therapist.Name,
		SessionStart:    req.SessionStart,
		DurationMinutes: int(s.cfg.SessionLength / time.Minute),
		Status:          models.BookingStatusConfirmed,
		PaymentStatus:   models.PaymentStatusPaid,
		Amount:          req.Amount,
		Notes:           req.Notes,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, storageUnavailable(err, "failed to create booking")
	}
	return booking, nil
}

// Reschedule moves a booking to a new start and marks it confirmed.
func (s *BookingService) Reschedule(ctx context.Context, id string, req RescheduleBookingRequest) (*models.Booking, error) {
	booking, err := s.reschedule(ctx, id, req)
	s.metrics.RecordBookingOperation("reschedule", bookingOutcome(err))
	if err != nil {
		return nil, err
	}
	s.notify(ctx, BookingEventRescheduled, *booking)
	return booking, nil
}

func (s *BookingService) reschedule(ctx context.Context, id string, req RescheduleBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid reschedule payload")
	}

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "booking not found", "failed to load booking")
	}

	if req.TherapistID != "" && req.TherapistID != booking.TherapistID {
		return nil, validationError(nil, "therapist of a booking cannot be changed")
	}
	if err := s.ensureFree(ctx, booking.TherapistID, req.SessionStart, booking.ID); err != nil {
		return nil, err
	}

	if err := s.bookings.UpdateSchedule(ctx, booking.ID, req.SessionStart, models.BookingStatusConfirmed); err != nil {
		return nil, storageUnavailable(err, "failed to reschedule booking")
	}
	booking.SessionStart = req.SessionStart
	booking.Status = models.BookingStatusConfirmed
	return booking, nil
}

// Cancel marks a booking cancelled. Cancelling an already cancelled booking succeeds.
func (s *BookingService) Cancel(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		appErr := lookupError(err, "booking not found", "failed to load booking")
		s.metrics.RecordBookingOperation("cancel", bookingOutcome(appErr))
		return nil, appErr
	}
	wasCancelled := booking.IsCancelled()

	if err := s.bookings.UpdateStatus(ctx, booking.ID, models.BookingStatusCancelled); err != nil {
		appErr := storageUnavailable(err, "failed to cancel booking")
		s.metrics.RecordBookingOperation("cancel", bookingOutcome(appErr))
		return nil, appErr
	}
	booking.Status = models.BookingStatusCancelled
	s.metrics.RecordBookingOperation("cancel", bookingOutcome(nil))

	if !wasCancelled {
		s.notify(ctx, BookingEventCancelled, *booking)
	}
	return booking, nil
}

// Get returns a booking by id.
func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "booking not found", "failed to load booking")
	}
	return booking, nil
}

// List returns bookings matching filter with pagination metadata.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	items, total, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, nil, storageUnavailable(err, "failed to list bookings")
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// ensureFree rejects start when another non-cancelled booking of the therapist starts at the
// same instant. excludeID skips the booking being moved.
func (s *BookingService) ensureFree(ctx context.Context, therapistID string, start time.Time, excludeID string) error {
	day := startOfDay(start.In(s.cfg.Location))
	existing, err := s.bookings.ListByTherapistRange(ctx, therapistID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return storageUnavailable(err, "failed to check booking conflicts")
	}
	for _, b := range existing {
		if b.ID == excludeID || b.IsCancelled() {
			continue
		}
		if b.SessionStart.Equal(start) {
			return appErrors.Clone(appErrors.ErrConflict, "time slot is already booked")
		}
	}
	return nil
}

func (s *BookingService) notify(ctx context.Context, event BookingEvent, booking models.Booking) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BookingChanged(ctx, event, booking); err != nil {
		s.logger.Warn("booking notification not queued",
			zap.String("booking_id", booking.ID), zap.String("event", string(event)), zap.Error(err))
	}
}

func bookingOutcome(err error) string {
	if err == nil {
		return "success"
	}
	switch {
	case appErrors.HasCode(err, appErrors.ErrConflict):
		return "conflict"
	case appErrors.HasCode(err, appErrors.ErrValidation):
		return "invalid"
	case appErrors.HasCode(err, appErrors.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
