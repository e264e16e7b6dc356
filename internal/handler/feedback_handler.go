package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
	"github.com/noah-isme/clinic-scheduling-api/internal/service"
	appErrors "github.com/noah-isme/clinic-scheduling-api/pkg/errors"
	"github.com/noah-isme/clinic-scheduling-api/pkg/response"
)

type feedbackService interface {
	Submit(ctx context.Context, req service.CreateFeedbackRequest) (*models.Feedback, error)
	ListPublic(ctx context.Context, therapistID string, limit int) ([]models.Feedback, error)
}

// FeedbackHandler exposes session feedback endpoints.
type FeedbackHandler struct {
	service feedbackService
}

// NewFeedbackHandler constructs the handler.
func NewFeedbackHandler(service feedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// Submit godoc
// @Summary Rate a session
// @Tags Feedback
// @Accept json
// @Produce json
// @Param payload body service.CreateFeedbackRequest true "Feedback"
// @Success 201 {object} response.Envelope
// @Router /feedback [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req service.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid feedback payload"))
		return
	}
	if claims, ok := callerIs(c, models.RoleClient); ok {
		req.ClientID = claims.UserID
		if req.ClientName == "" {
			req.ClientName = claims.FullName
		}
	}
	feedback, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, feedback)
}

// ListPublic godoc
// @Summary List public feedback for a therapist
// @Tags Feedback
// @Produce json
// @Param id path string true "Therapist ID"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Envelope
// @Router /therapists/{id}/feedback [get]
func (h *FeedbackHandler) ListPublic(c *gin.Context) {
	therapistID := requirePathID(c, "id")
	if therapistID == "" {
		return
	}
	items, err := h.service.ListPublic(c.Request.Context(), therapistID, parseQueryInt(c, "limit", 20))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
