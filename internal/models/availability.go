package models

import "time"

// AvailabilityRule is one recurring weekly window. Breaks are carved out of working windows.
type AvailabilityRule struct {
	ID          string    `db:"id" json:"id"`
	TherapistID string    `db:"therapist_id" json:"therapist_id"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	IsBreak     bool      `db:"is_break" json:"is_break"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Weekday returns the rule's day as a time.Weekday (Sunday=0).
func (r AvailabilityRule) Weekday() time.Weekday {
	return time.Weekday(r.DayOfWeek)
}

// BusyInterval is an ad-hoc block over [Start, End).
type BusyInterval struct {
	ID          string    `db:"id" json:"id"`
	TherapistID string    `db:"therapist_id" json:"therapist_id"`
	Start       time.Time `db:"start_at" json:"start"`
	End         time.Time `db:"end_at" json:"end"`
	Reason      *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Slot is a computed, never persisted, session start candidate.
type Slot struct {
	StartTime   string    `json:"start_time"`
	Date        time.Time `json:"date"`
	IsAvailable bool      `json:"is_available"`
}
