package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
	appErrors "github.com/noah-isme/clinic-scheduling-api/pkg/errors"
)

var bookingDay = time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

func newBookingServiceForTest(repo *bookingRepoFake, notifier BookingNotifier) (*BookingService, *MetricsService) {
	therapists := newTherapistRepoFake(models.Therapist{ID: "t-1", Name: "Dr. Rivera"})
	metrics := NewMetricsService()
	svc := NewBookingService(repo, therapists, notifier, metrics, validator.New(), zap.NewNop(), BookingConfig{
		SessionLength: time.Hour,
		Location:      time.UTC,
	})
	return svc, metrics
}

func bookingRequest(start time.Time) CreateBookingRequest {
	return CreateBookingRequest{
		ClientID:     "c-1",
		ClientName:   "Ana",
		ClientEmail:  "ana@example.com",
		TherapistID:  "t-1",
		SessionStart: start,
		Amount:       80,
	}
}

func TestBookingCreateStoresConfirmedPaid(t *testing.T) {
	repo := newBookingRepoFake()
	notifier := &recordingNotifier{}
	svc, metrics := newBookingServiceForTest(repo, notifier)

	booking, err := svc.Create(context.Background(), bookingRequest(bookingDay.Add(10*time.Hour)))
	require.NoError(t, err)

	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, models.PaymentStatusPaid, booking.PaymentStatus)
	assert.Equal(t, 60, booking.DurationMinutes)
	assert.Equal(t, "Dr. Rivera", booking.TherapistName)
	assert.Equal(t, []BookingEvent{BookingEventCreated}, notifier.events)
	assert.Equal(t, uint64(1), metrics.Snapshot().BookingOperations["create:success"])
}

func TestBookingCreateConflictsOnSameStartUntilCancelled(t *testing.T) {
	start := bookingDay.Add(10 * time.Hour)
	repo := newBookingRepoFake(models.Booking{ID: "existing", TherapistID: "t-1", SessionStart: start, Status: models.BookingStatusConfirmed})
	svc, metrics := newBookingServiceForTest(repo, nil)

	_, err := svc.Create(context.Background(), bookingRequest(start))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "time slot is already booked", appErr.Message)
	assert.Equal(t, uint64(1), metrics.Snapshot().BookingOperations["create:conflict"])

	_, err = svc.Cancel(context.Background(), "existing")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), bookingRequest(start))
	assert.NoError(t, err)
}

func TestBookingCreateAllowsDifferentStartOrTherapist(t *testing.T) {
	start := bookingDay.Add(10 * time.Hour)
	repo := newBookingRepoFake(
		models.Booking{ID: "a", TherapistID: "t-1", SessionStart: start, Status: models.BookingStatusConfirmed},
		models.Booking{ID: "b", TherapistID: "t-2", SessionStart: start.Add(time.Hour), Status: models.BookingStatusConfirmed},
	)
	svc, _ := newBookingServiceForTest(repo, nil)

	_, err := svc.Create(context.Background(), bookingRequest(start.Add(time.Hour)))
	assert.NoError(t, err)
}

func TestBookingCreateValidation(t *testing.T) {
	svc, _ := newBookingServiceForTest(newBookingRepoFake(), nil)
	req := bookingRequest(bookingDay.Add(10 * time.Hour))
	req.ClientEmail = "not-an-email"

	_, err := svc.Create(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBookingCreateUnknownTherapist(t *testing.T) {
	svc, _ := newBookingServiceForTest(newBookingRepoFake(), nil)
	req := bookingRequest(bookingDay.Add(10 * time.Hour))
	req.TherapistID = "nobody"

	_, err := svc.Create(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBookingCreateFailsClosedOnStorageError(t *testing.T) {
	repo := newBookingRepoFake()
	repo.listErr = errors.New("connection reset")
	svc, _ := newBookingServiceForTest(repo, nil)

	_, err := svc.Create(context.Background(), bookingRequest(bookingDay.Add(10*time.Hour)))

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStorageUnavailable.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.items)
}

func TestBookingCreateIgnoresNotifierFailure(t *testing.T) {
	svc, _ := newBookingServiceForTest(newBookingRepoFake(), &recordingNotifier{err: errors.New("queue full")})

	_, err := svc.Create(context.Background(), bookingRequest(bookingDay.Add(10*time.Hour)))

	assert.NoError(t, err)
}

func TestBookingRescheduleExcludesItself(t *testing.T) {
	start := bookingDay.Add(10 * time.Hour)
	repo := newBookingRepoFake(models.Booking{ID: "b-1", TherapistID: "t-1", SessionStart: start, Status: models.BookingStatusPending})
	svc, _ := newBookingServiceForTest(repo, nil)

	moved, err := svc.Reschedule(context.Background(), "b-1", RescheduleBookingRequest{SessionStart: start})

	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, moved.Status)
	assert.Equal(t, models.BookingStatusConfirmed, repo.items["b-1"].Status)
}

func TestBookingRescheduleConflict(t *testing.T) {
	start := bookingDay.Add(10 * time.Hour)
	repo := newBookingRepoFake(
		models.Booking{ID: "b-1", TherapistID: "t-1", SessionStart: start, Status: models.BookingStatusConfirmed},
		models.Booking{ID: "b-2", TherapistID: "t-1", SessionStart: start.Add(2 * time.Hour), Status: models.BookingStatusConfirmed},
		models.Booking{ID: "b-3", TherapistID: "t-1", SessionStart: start.Add(3 * time.Hour), Status: models.BookingStatusCancelled},
	)
	notifier := &recordingNotifier{}
	svc, _ := newBookingServiceForTest(repo, notifier)

	_, err := svc.Reschedule(context.Background(), "b-1", RescheduleBookingRequest{TherapistID: "t-1", SessionStart: start.Add(2 * time.Hour)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.True(t, repo.items["b-1"].SessionStart.Equal(start))

	moved, err := svc.Reschedule(context.Background(), "b-1", RescheduleBookingRequest{SessionStart: start.Add(3 * time.Hour)})
	require.NoError(t, err)
	assert.True(t, moved.SessionStart.Equal(start.Add(3*time.Hour)))
	assert.Equal(t, []BookingEvent{BookingEventRescheduled}, notifier.events)
}

func TestBookingRescheduleRejectsOtherTherapist(t *testing.T) {
	start := bookingDay.Add(10 * time.Hour)
	repo := newBookingRepoFake(
		models.Booking{ID: "b-1", TherapistID: "t-1", SessionStart: start, Status: models.BookingStatusConfirmed},
		models.Booking{ID: "b-2", TherapistID: "t-1", SessionStart: start.Add(time.Hour), Status: models.BookingStatusConfirmed},
	)
	notifier := &recordingNotifier{}
	svc, _ := newBookingServiceForTest(repo, notifier)

	_, err := svc.Reschedule(context.Background(), "b-2", RescheduleBookingRequest{TherapistID: "t-other", SessionStart: start})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.True(t, repo.items["b-2"].SessionStart.Equal(start.Add(time.Hour)))
	assert.Empty(t, notifier.events)
}

func TestBookingRescheduleNotFound(t *testing.T) {
	svc, _ := newBookingServiceForTest(newBookingRepoFake(), nil)

	_, err := svc.Reschedule(context.Background(), "missing", RescheduleBookingRequest{SessionStart: bookingDay})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBookingCancelIsIdempotent(t *testing.T) {
	repo := newBookingRepoFake(models.Booking{ID: "b-1", TherapistID: "t-1", SessionStart: bookingDay.Add(9 * time.Hour), Status: models.BookingStatusConfirmed})
	notifier := &recordingNotifier{}
	svc, _ := newBookingServiceForTest(repo, notifier)

	first, err := svc.Cancel(context.Background(), "b-1")
	require.NoError(t, err)
	second, err := svc.Cancel(context.Background(), "b-1")
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusCancelled, first.Status)
	assert.Equal(t, models.BookingStatusCancelled, second.Status)
	assert.Equal(t, models.BookingStatusCancelled, repo.items["b-1"].Status)
	assert.Equal(t, []BookingEvent{BookingEventCancelled}, notifier.events)
}

func TestBookingCancelStorageFailure(t *testing.T) {
	repo := newBookingRepoFake(models.Booking{ID: "b-1", TherapistID: "t-1", Status: models.BookingStatusConfirmed})
	repo.updateErr = errors.New("read only")
	svc, _ := newBookingServiceForTest(repo, nil)

	_, err := svc.Cancel(context.Background(), "b-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStorageUnavailable.Code, appErrors.FromError(err).Code)
}

func TestBookingListAppliesPagingDefaults(t *testing.T) {
	repo := newBookingRepoFake(
		models.Booking{ID: "b-1", TherapistID: "t-1", ClientID: "c-1", SessionStart: bookingDay},
		models.Booking{ID: "b-2", TherapistID: "t-1", ClientID: "c-2", SessionStart: bookingDay.Add(time.Hour)},
	)
	svc, _ := newBookingServiceForTest(repo, nil)

	items, pagination, err := svc.List(context.Background(), models.BookingFilter{ClientID: "c-2"})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b-2", items[0].ID)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
}
