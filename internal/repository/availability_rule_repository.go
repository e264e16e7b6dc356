package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
)

// AvailabilityRuleRepository persists weekly availability rules.
type AvailabilityRuleRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRuleRepository constructs the repository.
func NewAvailabilityRuleRepository(db *sqlx.DB) *AvailabilityRuleRepository {
	return &AvailabilityRuleRepository{db: db}
}

// ListByTherapist returns every rule stored for the therapist.
func (r *AvailabilityRuleRepository) ListByTherapist(ctx context.Context, therapistID string) ([]models.AvailabilityRule, error) {
	const query = `SELECT id, therapist_id, day_of_week, start_time, end_time, is_break, created_at, updated_at
FROM availability_rules WHERE therapist_id = $1 ORDER BY day_of_week ASC, start_time ASC`
	var rules []models.AvailabilityRule
	if err := r.db.SelectContext(ctx, &rules, query, therapistID); err != nil {
		return nil, fmt.Errorf("list availability rules: %w", err)
	}
	return rules, nil
}

// ReplaceForTherapist swaps the therapist's rules for the provided set within a transaction.
func (r *AvailabilityRuleRepository) ReplaceForTherapist(ctx context.Context, therapistID string, rules []models.AvailabilityRule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace availability rules: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM availability_rules WHERE therapist_id = $1`, therapistID); err != nil {
		return fmt.Errorf("clear availability rules: %w", err)
	}

	now := time.Now().UTC()
	for i := range rules {
		rule := &rules[i]
		if rule.ID == "" {
			rule.ID = uuid.NewString()
		}
		rule.TherapistID = therapistID
		if rule.CreatedAt.IsZero() {
			rule.CreatedAt = now
		}
		rule.UpdatedAt = now
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO availability_rules (id, therapist_id, day_of_week, start_time, end_time, is_break, created_at, updated_at)
VALUES (:id, :therapist_id, :day_of_week, :start_time, :end_time, :is_break, :created_at, :updated_at)`, rule); err != nil {
			return fmt.Errorf("insert availability rule: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit availability rules: %w", err)
	}
	return nil
}
