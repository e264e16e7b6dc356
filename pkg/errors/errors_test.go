package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	conflict := Clone(ErrConflict, "time slot is already booked")
	got := FromError(conflict)
	assert.Equal(t, http.StatusConflict, got.Status)
	assert.Equal(t, "time slot is already booked", got.Message)
	assert.Equal(t, "conflict", ErrConflict.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	raw := errors.New("boom")
	got := FromError(raw)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorIs(t, got, raw)
}

func TestWrapStorageUnavailable(t *testing.T) {
	raw := errors.New("connection refused")
	err := Wrap(raw, ErrStorageUnavailable.Code, ErrStorageUnavailable.Status, "failed to load bookings")
	assert.Equal(t, "failed to load bookings: connection refused", err.Error())
	assert.Equal(t, http.StatusServiceUnavailable, FromError(err).Status)
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(Clone(ErrConflict, "time slot is already booked"), ErrConflict))
	assert.False(t, HasCode(errors.New("boom"), ErrConflict))
	assert.True(t, HasCode(errors.New("boom"), ErrInternal))
	assert.False(t, HasCode(nil, ErrInternal))
}
