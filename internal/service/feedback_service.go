package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
	appErrors "github.com/noah-isme/clinic-scheduling-api/pkg/errors"
)

type feedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	ExistsForBooking(ctx context.Context, bookingID string) (bool, error)
	ListPublicByTherapist(ctx context.Context, therapistID string, limit int) ([]models.Feedback, error)
}

type bookingLookup interface {
	FindByID(ctx context.Context, id string) (*models.Booking, error)
}

// CreateFeedbackRequest rates a completed or confirmed session.
type CreateFeedbackRequest struct {
	BookingID  string  `json:"booking_id" validate:"required"`
	ClientID   string  `json:"client_id" validate:"required"`
	ClientName string  `json:"client_name"`
	Rating     int     `json:"rating" validate:"min=1,max=5"`
	Comment    *string `json:"comment" validate:"omitempty,max=2000"`
	IsPublic   bool    `json:"is_public"`
}

// FeedbackService records feedback and maintains the therapist rating aggregate.
type FeedbackService struct {
	feedback   feedbackRepository
	bookings   bookingLookup
	therapists therapistRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewFeedbackService builds the service.
func NewFeedbackService(feedback feedbackRepository, bookings bookingLookup, therapists therapistRepository, validate *validator.Validate, logger *zap.Logger) *FeedbackService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{feedback: feedback, bookings: bookings, therapists: therapists, validator: validate, logger: logger}
}

// Submit stores feedback, then folds the rating into the therapist's running mean.
// A booking can be rated once.
// A failed rating update after a stored feedback is returned as is; nothing is rolled back.
func (s *FeedbackService) Submit(ctx context.Context, req CreateFeedbackRequest) (*models.Feedback, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid feedback payload")
	}

	booking, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, lookupError(err, "booking not found", "failed to load booking")
	}
	if booking.ClientID != req.ClientID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "booking belongs to another client")
	}
	if booking.IsCancelled() {
		return nil, validationError(nil, "cannot rate a cancelled booking")
	}
	rated, err := s.feedback.ExistsForBooking(ctx, booking.ID)
	if err != nil {
		return nil, storageUnavailable(err, "failed to check existing feedback")
	}
	if rated {
		return nil, appErrors.Clone(appErrors.ErrConflict, "booking already has feedback")
	}

	name := req.ClientName
	if name == "" {
		name = booking.ClientName
	}
	feedback := &models.Feedback{
		BookingID:   booking.ID,
		ClientID:    req.ClientID,
		ClientName:  name,
		TherapistID: booking.TherapistID,
		Rating:      req.Rating,
		Comment:     req.Comment,
		IsPublic:    req.IsPublic,
	}
	if err := s.feedback.Create(ctx, feedback); err != nil {
		return nil, storageUnavailable(err, "failed to store feedback")
	}

	therapist, err := s.therapists.FindByID(ctx, booking.TherapistID)
	if err != nil {
		return nil, lookupError(err, "therapist not found", "failed to load therapist")
	}
	rating, count := RunningMean(therapist.Rating, therapist.ReviewCount, req.Rating)
	if err := s.therapists.UpdateRating(ctx, therapist.ID, rating, count); err != nil {
		s.logger.Error("therapist rating update failed after feedback insert",
			zap.String("therapist_id", therapist.ID), zap.String("feedback_id", feedback.ID), zap.Error(err))
		return nil, storageUnavailable(err, "failed to update therapist rating")
	}
	return feedback, nil
}

// ListPublic returns a therapist's public feedback, newest first.
func (s *FeedbackService) ListPublic(ctx context.Context, therapistID string, limit int) ([]models.Feedback, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items, err := s.feedback.ListPublicByTherapist(ctx, therapistID, limit)
	if err != nil {
		return nil, storageUnavailable(err, "failed to list feedback")
	}
	return items, nil
}

// RunningMean folds rating into an average over count previous reviews.
func RunningMean(current float64, count, rating int) (float64, int) {
	if count < 0 {
		count = 0
	}
	next := count + 1
	return (current*float64(count) + float64(rating)) / float64(next), next
}
