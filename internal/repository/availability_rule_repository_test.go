package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
)

func TestAvailabilityRuleRepositoryListByTherapist(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRuleRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "therapist_id", "day_of_week", "start_time", "end_time", "is_break", "created_at", "updated_at"}).
		AddRow("r-1", "t-1", 1, "09:00", "13:00", false, now, now).
		AddRow("r-2", "t-1", 1, "13:00", "15:00", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM availability_rules WHERE therapist_id = $1")).
		WithArgs("t-1").
		WillReturnRows(rows)

	rules, err := repo.ListByTherapist(context.Background(), "t-1")
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, time.Monday, rules[0].Weekday())
	assert.True(t, rules[1].IsBreak)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRuleRepositoryReplace(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRuleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM availability_rules WHERE therapist_id = $1")).
		WithArgs("t-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO availability_rules").
		WithArgs(sqlmock.AnyArg(), "t-1", 2, "10:00", "14:00", false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rules := []models.AvailabilityRule{{DayOfWeek: 2, StartTime: "10:00", EndTime: "14:00"}}
	require.NoError(t, repo.ReplaceForTherapist(context.Background(), "t-1", rules))
	assert.NotEmpty(t, rules[0].ID)
	assert.Equal(t, "t-1", rules[0].TherapistID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRuleRepositoryReplaceRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRuleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM availability_rules").
		WithArgs("t-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO availability_rules").
		WillReturnError(errors.New("check constraint"))
	mock.ExpectRollback()

	err := repo.ReplaceForTherapist(context.Background(), "t-1", []models.AvailabilityRule{{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
