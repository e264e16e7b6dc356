package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
)

const clockLayout = "15:04"

// Overlaps reports whether the half-open intervals [aStart,aEnd) and [bStart,bEnd) share an instant.
// Intervals that only touch at an endpoint do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// ParseClock converts a wall-clock "HH:mm" string into minutes after midnight.
func ParseClock(value string) (int, error) {
	t, err := time.Parse(clockLayout, value)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", value, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// atClock anchors minutes-of-day to date's calendar day in date's location.
func atClock(date time.Time, minutes int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, date.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ruleWindow resolves a rule to absolute bounds on date. ok is false for malformed or empty windows.
func ruleWindow(date time.Time, rule models.AvailabilityRule) (start, end time.Time, ok bool) {
	startMin, err := ParseClock(rule.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	endMin, err := ParseClock(rule.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	if startMin >= endMin {
		return time.Time{}, time.Time{}, false
	}
	return atClock(date, startMin), atClock(date, endMin), true
}

// DefaultAvailabilityTemplate is the schedule used when a therapist has no stored rules:
// Monday to Saturday 09:00-13:00 and 15:00-18:00 with a 13:00-15:00 break. Sunday is off.
func DefaultAvailabilityTemplate(therapistID string) []models.AvailabilityRule {
	rules := make([]models.AvailabilityRule, 0, 18)
	for day := int(time.Monday); day <= int(time.Saturday); day++ {
		rules = append(rules,
			models.AvailabilityRule{ID: fmt.Sprintf("default-%d-morning", day), TherapistID: therapistID, DayOfWeek: day, StartTime: "09:00", EndTime: "13:00"},
			models.AvailabilityRule{ID: fmt.Sprintf("default-%d-break", day), TherapistID: therapistID, DayOfWeek: day, StartTime: "13:00", EndTime: "15:00", IsBreak: true},
			models.AvailabilityRule{ID: fmt.Sprintf("default-%d-afternoon", day), TherapistID: therapistID, DayOfWeek: day, StartTime: "15:00", EndTime: "18:00"},
		)
	}
	return rules
}

// SlotEngineConfig tunes the slot generator.
type SlotEngineConfig struct {
	SessionLength time.Duration
	MinLeadTime   time.Duration
	CalendarDays  int
	Now           func() time.Time
}

// SlotGenerator turns weekly rules and obstructions into bookable slots. It holds no state
// besides its configuration and is safe for concurrent use.
type SlotGenerator struct {
	sessionLength time.Duration
	minLeadTime   time.Duration
	calendarDays  int
	now           func() time.Time
}

// NewSlotGenerator applies defaults of 60 minute sessions, a 2 hour lead time and a 14 day calendar.
func NewSlotGenerator(cfg SlotEngineConfig) *SlotGenerator {
	if cfg.SessionLength <= 0 {
		cfg.SessionLength = time.Hour
	}
	if cfg.MinLeadTime < 0 {
		cfg.MinLeadTime = 0
	} else if cfg.MinLeadTime == 0 {
		cfg.MinLeadTime = 2 * time.Hour
	}
	if cfg.CalendarDays <= 0 {
		cfg.CalendarDays = 14
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &SlotGenerator{
		sessionLength: cfg.SessionLength,
		minLeadTime:   cfg.MinLeadTime,
		calendarDays:  cfg.CalendarDays,
		now:           cfg.Now,
	}
}

// SessionLength returns the fixed slot width.
func (g *SlotGenerator) SessionLength() time.Duration {
	return g.sessionLength
}

// Generate enumerates the slots for date across every working rule of date's weekday.
// Only whole sessions that fit inside a window are emitted. Overlapping working rules yield
// duplicate start times; they are not merged. The result is sorted by start time.
func (g *SlotGenerator) Generate(date time.Time, rules []models.AvailabilityRule, busy []models.BusyInterval, bookings []models.Booking) []models.Slot {
	weekday := date.Weekday()
	cutoff := g.now().Add(g.minLeadTime)

	var windows, breaks []models.AvailabilityRule
	for _, rule := range rules {
		if rule.Weekday() != weekday {
			continue
		}
		if rule.IsBreak {
			breaks = append(breaks, rule)
		} else {
			windows = append(windows, rule)
		}
	}

	var slots []models.Slot
	for _, rule := range windows {
		windowStart, windowEnd, ok := ruleWindow(date, rule)
		if !ok {
			continue
		}
		for slotStart := windowStart; !slotStart.Add(g.sessionLength).After(windowEnd); slotStart = slotStart.Add(g.sessionLength) {
			slotEnd := slotStart.Add(g.sessionLength)

			tooSoon := slotStart.Before(cutoff)
			inBreak := g.inBreak(date, slotStart, slotEnd, breaks)
			isBusy := overlapsBusy(slotStart, slotEnd, busy)
			booked := g.overlapsBooking(slotStart, slotEnd, bookings)

			slots = append(slots, models.Slot{
				StartTime:   slotStart.Format(clockLayout),
				Date:        slotStart,
				IsAvailable: !(tooSoon || inBreak || isBusy || booked),
			})
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Date.Before(slots[j].Date)
	})
	return slots
}

func (g *SlotGenerator) inBreak(date, start, end time.Time, breaks []models.AvailabilityRule) bool {
	for _, br := range breaks {
		breakStart, breakEnd, ok := ruleWindow(date, br)
		if !ok {
			continue
		}
		if Overlaps(start, end, breakStart, breakEnd) {
			return true
		}
	}
	return false
}

func overlapsBusy(start, end time.Time, busy []models.BusyInterval) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}

func (g *SlotGenerator) overlapsBooking(start, end time.Time, bookings []models.Booking) bool {
	for _, b := range bookings {
		if b.IsCancelled() {
			continue
		}
		if Overlaps(start, end, b.SessionStart, b.SessionEnd(g.sessionLength)) {
			return true
		}
	}
	return false
}

// CandidateDates lists the next daysAhead days, starting at today's midnight in loc, whose
// weekday has at least one working rule. Bookings and busy intervals are not consulted.
// daysAhead <= 0 falls back to the configured calendar length.
func (g *SlotGenerator) CandidateDates(rules []models.AvailabilityRule, daysAhead int, loc *time.Location) []time.Time {
	if daysAhead <= 0 {
		daysAhead = g.calendarDays
	}
	if loc == nil {
		loc = time.Local
	}

	working := make(map[time.Weekday]bool, 7)
	for _, rule := range rules {
		if !rule.IsBreak {
			working[rule.Weekday()] = true
		}
	}

	today := startOfDay(g.now().In(loc))
	dates := make([]time.Time, 0, daysAhead)
	for i := 0; i < daysAhead; i++ {
		day := today.AddDate(0, 0, i)
		if working[day.Weekday()] {
			dates = append(dates, day)
		}
	}
	return dates
}
