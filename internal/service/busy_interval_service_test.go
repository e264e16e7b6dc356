package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
	appErrors "github.com/noah-isme/clinic-scheduling-api/pkg/errors"
)

func TestBusyIntervalLifecycle(t *testing.T) {
	repo := &busyRepoFake{}
	svc := NewBusyIntervalService(repo, newTherapistRepoFake(models.Therapist{ID: "t-1"}), nil, nil)
	start := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

	created, err := svc.Create(context.Background(), "t-1", CreateBusyIntervalRequest{Start: start, End: start.Add(3 * time.Hour)})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	items, err := svc.List(context.Background(), "t-1", start.Add(-24*time.Hour), start.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, svc.Delete(context.Background(), "t-1", created.ID))
	err = svc.Delete(context.Background(), "t-1", created.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBusyIntervalValidation(t *testing.T) {
	svc := NewBusyIntervalService(&busyRepoFake{}, newTherapistRepoFake(models.Therapist{ID: "t-1"}), nil, nil)
	start := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

	_, err := svc.Create(context.Background(), "t-1", CreateBusyIntervalRequest{Start: start, End: start})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), "missing", CreateBusyIntervalRequest{Start: start, End: start.Add(time.Hour)})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.List(context.Background(), "t-1", start, start)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
