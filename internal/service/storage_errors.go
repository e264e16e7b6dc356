package service

import (
	"database/sql"
	"errors"

	appErrors "github.com/noah-isme/clinic-scheduling-api/pkg/errors"
)

func storageUnavailable(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, message)
}

func validationError(err error, message string) *appErrors.Error {
	if err == nil {
		return appErrors.Clone(appErrors.ErrValidation, message)
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// lookupError maps sql.ErrNoRows to a not found error and everything else to storage unavailable.
func lookupError(err error, notFoundMessage, storageMessage string) *appErrors.Error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFoundMessage)
	}
	return storageUnavailable(err, storageMessage)
}
