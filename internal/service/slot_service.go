package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
)

type availabilityResolver interface {
	Resolve(ctx context.Context, therapistID string) ([]models.AvailabilityRule, bool)
}

type bookingRangeReader interface {
	ListByTherapistRange(ctx context.Context, therapistID string, from, to time.Time) ([]models.Booking, error)
}

type busyRangeReader interface {
	ListByTherapistRange(ctx context.Context, therapistID string, from, to time.Time) ([]models.BusyInterval, error)
}

// DaySlots is the slot view for one calendar date.
type DaySlots struct {
	TherapistID    string        `json:"therapist_id"`
	Date           string        `json:"date"`
	DefaultApplied bool          `json:"default_applied"`
	Slots          []models.Slot `json:"slots"`
}

// CalendarWindow lists the dates worth querying for slots.
type CalendarWindow struct {
	TherapistID    string   `json:"therapist_id"`
	Days           int      `json:"days"`
	DefaultApplied bool     `json:"default_applied"`
	Dates          []string `json:"dates"`
}

// SlotService combines resolved availability with bookings and busy intervals.
type SlotService struct {
	availability availabilityResolver
	bookings     bookingRangeReader
	busy         busyRangeReader
	generator    *SlotGenerator
	location     *time.Location
	logger       *zap.Logger
}

// NewSlotService builds the read-side slot service. A nil location means time.Local.
func NewSlotService(availability availabilityResolver, bookings bookingRangeReader, busy busyRangeReader, generator *SlotGenerator, location *time.Location, logger *zap.Logger) *SlotService {
	if generator == nil {
		generator = NewSlotGenerator(SlotEngineConfig{})
	}
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotService{
		availability: availability,
		bookings:     bookings,
		busy:         busy,
		generator:    generator,
		location:     location,
		logger:       logger,
	}
}

// Location returns the time frame all slot times are computed in.
func (s *SlotService) Location() *time.Location {
	return s.location
}

// ForDate computes the slots for date. Availability falls back to the default template on
// read failure; booking and busy interval read failures are returned.
func (s *SlotService) ForDate(ctx context.Context, therapistID string, date time.Time) (*DaySlots, error) {
	day := startOfDay(date.In(s.location))
	next := day.AddDate(0, 0, 1)

	rules, isDefault := s.availability.Resolve(ctx, therapistID)

	bookings, err := s.bookings.ListByTherapistRange(ctx, therapistID, day, next)
	if err != nil {
		return nil, storageUnavailable(err, "failed to load bookings")
	}
	busy, err := s.busy.ListByTherapistRange(ctx, therapistID, day, next)
	if err != nil {
		return nil, storageUnavailable(err, "failed to load busy intervals")
	}

	slots := s.generator.Generate(day, rules, busy, bookings)
	if slots == nil {
		slots = []models.Slot{}
	}
	return &DaySlots{
		TherapistID:    therapistID,
		Date:           day.Format("2006-01-02"),
		DefaultApplied: isDefault,
		Slots:          slots,
	}, nil
}

// Calendar lists the upcoming dates that have at least one working window.
func (s *SlotService) Calendar(ctx context.Context, therapistID string, days int) *CalendarWindow {
	rules, isDefault := s.availability.Resolve(ctx, therapistID)
	dates := s.generator.CandidateDates(rules, days, s.location)

	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, d.Format("2006-01-02"))
	}
	if days <= 0 {
		days = s.generator.calendarDays
	}
	return &CalendarWindow{
		TherapistID:    therapistID,
		Days:           days,
		DefaultApplied: isDefault,
		Dates:          formatted,
	}
}
