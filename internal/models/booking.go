package models

import "time"

// BookingStatus enumerates the booking lifecycle.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// PaymentStatus enumerates payment states recorded on a booking.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// Booking is a client session with a therapist. Cancelled bookings are kept and ignored by
// every occupancy check.
type Booking struct {
	ID              string        `db:"id" json:"id"`
	ClientID        string        `db:"client_id" json:"client_id"`
	ClientName      string        `db:"client_name" json:"client_name"`
	ClientEmail     string        `db:"client_email" json:"client_email"`
	TherapistID     string        `db:"therapist_id" json:"therapist_id"`
	TherapistName   string        `db:"therapist_name" json:"therapist_name"`
	SessionStart    time.Time     `db:"session_start" json:"session_start"`
	DurationMinutes int           `db:"duration_minutes" json:"duration_minutes"`
	Status          BookingStatus `db:"status" json:"status"`
	PaymentStatus   PaymentStatus `db:"payment_status" json:"payment_status"`
	Amount          float64       `db:"amount" json:"amount"`
	Notes           *string       `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// IsCancelled reports whether the booking was logically deleted.
func (b Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// SessionEnd returns the exclusive end of the session, using fallback when no duration is stored.
func (b Booking) SessionEnd(fallback time.Duration) time.Time {
	if b.DurationMinutes <= 0 {
		return b.SessionStart.Add(fallback)
	}
	return b.SessionStart.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// BookingFilter captures filters for listing bookings.
type BookingFilter struct {
	TherapistID string
	ClientID    string
	Status      *BookingStatus
	From        *time.Time
	To          *time.Time
	Page        int
	PageSize    int
}
