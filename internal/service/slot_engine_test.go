package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
)

func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func startTimes(slots []models.Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.StartTime)
	}
	return out
}

func TestOverlaps(t *testing.T) {
	day := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	assert.True(t, Overlaps(at(10, 0), at(11, 0), at(10, 30), at(11, 30)))
	assert.False(t, Overlaps(at(10, 0), at(11, 0), at(11, 0), at(12, 0)))
	assert.False(t, Overlaps(at(11, 0), at(12, 0), at(10, 0), at(11, 0)))
	assert.True(t, Overlaps(at(9, 0), at(18, 0), at(12, 0), at(12, 30)))
}

func TestParseClock(t *testing.T) {
	minutes, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, minutes)

	_, err = ParseClock("9am")
	assert.Error(t, err)
	_, err = ParseClock("25:00")
	assert.Error(t, err)
}

func TestDefaultAvailabilityTemplate(t *testing.T) {
	rules := DefaultAvailabilityTemplate("therapist-1")
	require.Len(t, rules, 18)

	perDay := map[int]int{}
	for _, rule := range rules {
		assert.Equal(t, "therapist-1", rule.TherapistID)
		assert.NotEqual(t, 0, rule.DayOfWeek)
		perDay[rule.DayOfWeek]++
		if rule.IsBreak {
			assert.Equal(t, "13:00", rule.StartTime)
			assert.Equal(t, "15:00", rule.EndTime)
		}
	}
	for day := 1; day <= 6; day++ {
		assert.Equal(t, 3, perDay[day])
	}
}

func TestSlotGeneratorWednesdayWithDefaultTemplate(t *testing.T) {
	wednesday := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	gen := NewSlotGenerator(SlotEngineConfig{Now: clockAt(wednesday.Add(8 * time.Hour))})

	slots := gen.Generate(wednesday, DefaultAvailabilityTemplate("t-1"), nil, nil)

	assert.Equal(t, []string{"09:00", "10:00", "11:00", "12:00", "15:00", "16:00", "17:00"}, startTimes(slots))
	assert.False(t, slots[0].IsAvailable, "09:00 falls inside the lead time")
	for _, slot := range slots[1:] {
		assert.True(t, slot.IsAvailable, slot.StartTime)
	}
	assert.Equal(t, wednesday.Add(9*time.Hour), slots[0].Date)
}

func TestSlotGeneratorSundayHasNoSlots(t *testing.T) {
	sunday := time.Date(2024, 5, 19, 0, 0, 0, 0, time.UTC)
	gen := NewSlotGenerator(SlotEngineConfig{Now: clockAt(sunday.AddDate(0, 0, -7))})

	assert.Empty(t, gen.Generate(sunday, DefaultAvailabilityTemplate("t-1"), nil, nil))
}

func TestSlotGeneratorDiscardsPartialTail(t *testing.T) {
	day := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	gen := NewSlotGenerator(SlotEngineConfig{Now: clockAt(day.AddDate(0, 0, -1))})
	rules := []models.AvailabilityRule{{DayOfWeek: 3, StartTime: "09:00", EndTime: "11:30"}}

	slots := gen.Generate(day, rules, nil, nil)

	assert.Equal(t, []string{"09:00", "10:00"}, startTimes(slots))
}

func TestSlotGeneratorMarksBreakBusyAndBooked(t *testing.T) {
	day := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	gen := NewSlotGenerator(SlotEngineConfig{Now: clockAt(day.AddDate(0, 0, -1))})
	rules := []models.AvailabilityRule{
		{DayOfWeek: 3, StartTime: "09:00", EndTime: "15:00"},
		{DayOfWeek: 3, StartTime: "12:00", EndTime: "13:00", IsBreak: true},
		{DayOfWeek: 4, StartTime: "09:00", EndTime: "10:00", IsBreak: true},
	}
	busy := []models.BusyInterval{{Start: day.Add(10*time.Hour + 30*time.Minute), End: day.Add(11 * time.Hour)}}
	bookings := []models.Booking{
		{SessionStart: day.Add(13 * time.Hour), DurationMinutes: 60, Status: models.BookingStatusConfirmed},
		{SessionStart: day.Add(14 * time.Hour), DurationMinutes: 60, Status: models.BookingStatusCancelled},
	}

	slots := gen.Generate(day, rules, busy, bookings)
	require.Len(t, slots, 6)

	availability := map[string]bool{}
	for _, s := range slots {
		availability[s.StartTime] = s.IsAvailable
	}
	assert.Equal(t, map[string]bool{
		"09:00": true,
		"10:00": false,
		"11:00": true,
		"12:00": false,
		"13:00": false,
		"14:00": true,
	}, availability)
}

func TestSlotGeneratorKeepsDuplicatesFromOverlappingRules(t *testing.T) {
	day := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	gen := NewSlotGenerator(SlotEngineConfig{Now: clockAt(day.AddDate(0, 0, -1))})
	rules := []models.AvailabilityRule{
		{DayOfWeek: 3, StartTime: "10:00", EndTime: "12:00"},
		{DayOfWeek: 3, StartTime: "09:00", EndTime: "11:00"},
	}

	slots := gen.Generate(day, rules, nil, nil)

	assert.Equal(t, []string{"09:00", "10:00", "10:00", "11:00"}, startTimes(slots))
}

func TestSlotGeneratorSkipsMalformedRules(t *testing.T) {
	day := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	gen := NewSlotGenerator(SlotEngineConfig{Now: clockAt(day.AddDate(0, 0, -1))})
	rules := []models.AvailabilityRule{
		{DayOfWeek: 3, StartTime: "bogus", EndTime: "12:00"},
		{DayOfWeek: 3, StartTime: "12:00", EndTime: "10:00"},
		{DayOfWeek: 3, StartTime: "16:00", EndTime: "17:00"},
	}

	assert.Equal(t, []string{"16:00"}, startTimes(gen.Generate(day, rules, nil, nil)))
}

func TestCandidateDates(t *testing.T) {
	monday := time.Date(2024, 5, 13, 15, 45, 0, 0, time.UTC)
	gen := NewSlotGenerator(SlotEngineConfig{Now: clockAt(monday)})
	rules := []models.AvailabilityRule{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"},
		{DayOfWeek: 3, StartTime: "09:00", EndTime: "12:00"},
		{DayOfWeek: 5, StartTime: "09:00", EndTime: "12:00", IsBreak: true},
	}

	dates := gen.CandidateDates(rules, 7, time.UTC)

	require.Len(t, dates, 2)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), dates[1])
}

func TestCandidateDatesDefaultsToCalendarLength(t *testing.T) {
	monday := time.Date(2024, 5, 13, 8, 0, 0, 0, time.UTC)
	gen := NewSlotGenerator(SlotEngineConfig{Now: clockAt(monday)})

	dates := gen.CandidateDates(DefaultAvailabilityTemplate("t-1"), 0, time.UTC)

	assert.Len(t, dates, 12)
	for _, d := range dates {
		assert.NotEqual(t, time.Sunday, d.Weekday())
	}
}
