package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
)

// FeedbackRepository persists client feedback.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs the repository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts feedback.
func (r *FeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO feedback (id, booking_id, client_id, client_name, therapist_id, rating, comment, is_public, created_at)
VALUES (:id, :booking_id, :client_id, :client_name, :therapist_id, :rating, :comment, :is_public, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, feedback); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

// ExistsForBooking reports whether feedback was already left for bookingID.
func (r *FeedbackRepository) ExistsForBooking(ctx context.Context, bookingID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM feedback WHERE booking_id = $1)`, bookingID); err != nil {
		return false, fmt.Errorf("check feedback for booking: %w", err)
	}
	return exists, nil
}

// ListPublicByTherapist returns the newest public feedback for a therapist.
func (r *FeedbackRepository) ListPublicByTherapist(ctx context.Context, therapistID string, limit int) ([]models.Feedback, error) {
	const query = `SELECT id, booking_id, client_id, client_name, therapist_id, rating, comment, is_public, created_at
FROM feedback WHERE therapist_id = $1 AND is_public = TRUE ORDER BY created_at DESC LIMIT $2`
	var items []models.Feedback
	if err := r.db.SelectContext(ctx, &items, query, therapistID, limit); err != nil {
		return nil, fmt.Errorf("list public feedback: %w", err)
	}
	return items, nil
}
