package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
)

func TestBusyIntervalRepositoryListOverlapping(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBusyIntervalRepository(db)
	from := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	rows := sqlmock.NewRows([]string{"id", "therapist_id", "start_at", "end_at", "reason", "created_at"}).
		AddRow("busy-1", "t-1", from.Add(-2*time.Hour), from.Add(10*time.Hour), "conference", from)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE therapist_id = $1 AND start_at < $3 AND end_at > $2")).
		WithArgs("t-1", from, to).
		WillReturnRows(rows)

	items, err := repo.ListByTherapistRange(context.Background(), "t-1", from, to)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "conference", *items[0].Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBusyIntervalRepositoryCreateAndDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBusyIntervalRepository(db)
	start := time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO busy_intervals").
		WithArgs(sqlmock.AnyArg(), "t-1", start, start.Add(time.Hour), nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM busy_intervals WHERE id = $1 AND therapist_id = $2")).
		WithArgs("busy-9", "t-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	interval := &models.BusyInterval{TherapistID: "t-1", Start: start, End: start.Add(time.Hour)}
	require.NoError(t, repo.Create(context.Background(), interval))
	assert.NotEmpty(t, interval.ID)

	err := repo.Delete(context.Background(), "t-1", "busy-9")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
