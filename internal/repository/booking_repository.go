package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
)

const bookingColumns = `id, client_id, client_name, client_email, therapist_id, therapist_name, session_start, duration_minutes, status, payment_status, amount, notes, created_at, updated_at`

// BookingRepository persists bookings. Rows are never deleted; cancellation is a status.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a booking.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now
	query := fmt.Sprintf(`INSERT INTO bookings (%s)
VALUES (:id, :client_id, :client_name, :client_email, :therapist_id, :therapist_name, :session_start, :duration_minutes, :status, :payment_status, :amount, :notes, :created_at, :updated_at)`, bookingColumns)
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// FindByID fetches a booking.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1`, bookingColumns)
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListByTherapistRange returns bookings, cancelled included, starting in [from, to).
func (r *BookingRepository) ListByTherapistRange(ctx context.Context, therapistID string, from, to time.Time) ([]models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE therapist_id = $1 AND session_start >= $2 AND session_start < $3 ORDER BY session_start ASC`, bookingColumns)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, therapistID, from, to); err != nil {
		return nil, fmt.Errorf("list therapist bookings: %w", err)
	}
	return bookings, nil
}

// List returns bookings matching filter.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.TherapistID != "" {
		where = append(where, fmt.Sprintf("therapist_id = $%d", len(args)+1))
		args = append(args, filter.TherapistID)
	}
	if filter.ClientID != "" {
		where = append(where, fmt.Sprintf("client_id = $%d", len(args)+1))
		args = append(args, filter.ClientID)
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("session_start >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("session_start < $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE %s ORDER BY session_start DESC LIMIT %d OFFSET %d`, bookingColumns, whereClause, size, offset)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM bookings WHERE %s", whereClause), args...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}
	return bookings, total, nil
}

// UpdateSchedule moves a booking and sets its status.
func (r *BookingRepository) UpdateSchedule(ctx context.Context, id string, sessionStart time.Time, status models.BookingStatus) error {
	const query = `UPDATE bookings SET session_start = $2, status = $3, updated_at = $4 WHERE id = $1`
	return r.exec(ctx, "reschedule booking", query, id, sessionStart, status, time.Now().UTC())
}

// UpdateStatus sets a booking's status.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	const query = `UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`
	return r.exec(ctx, "update booking status", query, id, status, time.Now().UTC())
}

func (r *BookingRepository) exec(ctx context.Context, op, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
