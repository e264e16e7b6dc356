package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
	appErrors "github.com/noah-isme/clinic-scheduling-api/pkg/errors"
)

type busyIntervalRepository interface {
	Create(ctx context.Context, interval *models.BusyInterval) error
	Delete(ctx context.Context, therapistID, id string) error
	ListByTherapistRange(ctx context.Context, therapistID string, from, to time.Time) ([]models.BusyInterval, error)
}

// CreateBusyIntervalRequest blocks [Start, End) for a therapist.
type CreateBusyIntervalRequest struct {
	Start  time.Time `json:"start" validate:"required"`
	End    time.Time `json:"end" validate:"required"`
	Reason *string   `json:"reason" validate:"omitempty,max=255"`
}

// BusyIntervalService manages ad-hoc blocks layered over weekly availability.
type BusyIntervalService struct {
	repo       busyIntervalRepository
	therapists therapistRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewBusyIntervalService builds the service.
func NewBusyIntervalService(repo busyIntervalRepository, therapists therapistRepository, validate *validator.Validate, logger *zap.Logger) *BusyIntervalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BusyIntervalService{repo: repo, therapists: therapists, validator: validate, logger: logger}
}

// List returns intervals overlapping [from, to).
func (s *BusyIntervalService) List(ctx context.Context, therapistID string, from, to time.Time) ([]models.BusyInterval, error) {
	if !to.After(from) {
		return nil, validationError(nil, "to must be after from")
	}
	items, err := s.repo.ListByTherapistRange(ctx, therapistID, from, to)
	if err != nil {
		return nil, storageUnavailable(err, "failed to list busy intervals")
	}
	return items, nil
}

// Create stores a new busy interval.
func (s *BusyIntervalService) Create(ctx context.Context, therapistID string, req CreateBusyIntervalRequest) (*models.BusyInterval, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid busy interval payload")
	}
	if !req.End.After(req.Start) {
		return nil, validationError(nil, "end must be after start")
	}
	if _, err := s.therapists.FindByID(ctx, therapistID); err != nil {
		return nil, lookupError(err, "therapist not found", "failed to load therapist")
	}

	interval := &models.BusyInterval{
		TherapistID: therapistID,
		Start:       req.Start,
		End:         req.End,
		Reason:      req.Reason,
	}
	if err := s.repo.Create(ctx, interval); err != nil {
		return nil, storageUnavailable(err, "failed to create busy interval")
	}
	return interval, nil
}

// Delete removes one of the therapist's busy intervals.
func (s *BusyIntervalService) Delete(ctx context.Context, therapistID, id string) error {
	if err := s.repo.Delete(ctx, therapistID, id); err != nil {
		appErr := lookupError(err, "busy interval not found", "failed to delete busy interval")
		if appErr.Code == appErrors.ErrStorageUnavailable.Code {
			s.logger.Error("busy interval delete failed", zap.String("id", id), zap.Error(err))
		}
		return appErr
	}
	return nil
}
