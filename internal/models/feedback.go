package models

import "time"

// Feedback is a client's rating of a session.
type Feedback struct {
	ID          string    `db:"id" json:"id"`
	BookingID   string    `db:"booking_id" json:"booking_id"`
	ClientID    string    `db:"client_id" json:"client_id"`
	ClientName  string    `db:"client_name" json:"client_name"`
	TherapistID string    `db:"therapist_id" json:"therapist_id"`
	Rating      int       `db:"rating" json:"rating"`
	Comment     *string   `db:"comment" json:"comment,omitempty"`
	IsPublic    bool      `db:"is_public" json:"is_public"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Therapist carries the rating aggregate maintained from feedback.
type Therapist struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Email       string    `db:"email" json:"email"`
	Rating      float64   `db:"rating" json:"rating"`
	ReviewCount int       `db:"review_count" json:"review_count"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
