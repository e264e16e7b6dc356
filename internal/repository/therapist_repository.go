package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
)

// TherapistRepository reads therapists and maintains their rating aggregate.
type TherapistRepository struct {
	db *sqlx.DB
}

// NewTherapistRepository constructs the repository.
func NewTherapistRepository(db *sqlx.DB) *TherapistRepository {
	return &TherapistRepository{db: db}
}

// FindByID fetches a therapist.
func (r *TherapistRepository) FindByID(ctx context.Context, id string) (*models.Therapist, error) {
	const query = `SELECT id, name, email, rating, review_count, updated_at FROM therapists WHERE id = $1`
	var therapist models.Therapist
	if err := r.db.GetContext(ctx, &therapist, query, id); err != nil {
		return nil, err
	}
	return &therapist, nil
}

// UpdateRating stores a new rating mean and review count.
func (r *TherapistRepository) UpdateRating(ctx context.Context, id string, rating float64, reviewCount int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE therapists SET rating = $2, review_count = $3, updated_at = $4 WHERE id = $1`,
		id, rating, reviewCount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update therapist rating: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update therapist rating rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
