package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
)

// BusyIntervalRepository persists ad-hoc unavailable periods.
type BusyIntervalRepository struct {
	db *sqlx.DB
}

// NewBusyIntervalRepository constructs the repository.
func NewBusyIntervalRepository(db *sqlx.DB) *BusyIntervalRepository {
	return &BusyIntervalRepository{db: db}
}

// ListByTherapistRange returns intervals overlapping [from, to).
func (r *BusyIntervalRepository) ListByTherapistRange(ctx context.Context, therapistID string, from, to time.Time) ([]models.BusyInterval, error) {
	const query = `SELECT id, therapist_id, start_at, end_at, reason, created_at
FROM busy_intervals WHERE therapist_id = $1 AND start_at < $3 AND end_at > $2 ORDER BY start_at ASC`
	var items []models.BusyInterval
	if err := r.db.SelectContext(ctx, &items, query, therapistID, from, to); err != nil {
		return nil, fmt.Errorf("list busy intervals: %w", err)
	}
	return items, nil
}

// Create inserts a busy interval.
func (r *BusyIntervalRepository) Create(ctx context.Context, interval *models.BusyInterval) error {
	if interval.ID == "" {
		interval.ID = uuid.NewString()
	}
	if interval.CreatedAt.IsZero() {
		interval.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO busy_intervals (id, therapist_id, start_at, end_at, reason, created_at)
VALUES (:id, :therapist_id, :start_at, :end_at, :reason, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, interval); err != nil {
		return fmt.Errorf("create busy interval: %w", err)
	}
	return nil
}

// Delete removes a therapist's interval. It returns sql.ErrNoRows when nothing matched.
func (r *BusyIntervalRepository) Delete(ctx context.Context, therapistID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM busy_intervals WHERE id = $1 AND therapist_id = $2`, id, therapistID)
	if err != nil {
		return fmt.Errorf("delete busy interval: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete busy interval rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
