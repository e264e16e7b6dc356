package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-scheduling-api/internal/middleware"
	"github.com/noah-isme/clinic-scheduling-api/internal/models"
	"github.com/noah-isme/clinic-scheduling-api/internal/service"
	appErrors "github.com/noah-isme/clinic-scheduling-api/pkg/errors"
	"github.com/noah-isme/clinic-scheduling-api/pkg/response"
)

type availabilityService interface {
	Resolve(ctx context.Context, therapistID string) ([]models.AvailabilityRule, bool)
	Replace(ctx context.Context, therapistID string, req service.ReplaceAvailabilityRequest) ([]models.AvailabilityRule, error)
	SaveDefaults(ctx context.Context, therapistID string) ([]models.AvailabilityRule, error)
}

// AvailabilityHandler manages a therapist's weekly availability rules.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(service availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// Get godoc
// @Summary Get effective availability rules
// @Description Returns stored rules, or the default template when none are stored or storage is unreachable.
// @Tags Availability
// @Produce json
// @Param id path string true "Therapist ID"
// @Success 200 {object} response.Envelope
// @Router /therapists/{id}/availability [get]
func (h *AvailabilityHandler) Get(c *gin.Context) {
	therapistID := requirePathID(c, "id")
	if therapistID == "" {
		return
	}
	rules, isDefault := h.service.Resolve(c.Request.Context(), therapistID)
	middleware.SetDefaultApplied(c, isDefault)
	response.JSON(c, http.StatusOK, rules, nil, middleware.ExtractMeta(c))
}

// Replace godoc
// @Summary Replace availability rules
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Therapist ID"
// @Param payload body service.ReplaceAvailabilityRequest true "Rules"
// @Success 200 {object} response.Envelope
// @Router /therapists/{id}/availability [put]
func (h *AvailabilityHandler) Replace(c *gin.Context) {
	therapistID := requirePathID(c, "id")
	if therapistID == "" {
		return
	}
	var req service.ReplaceAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}
	rules, err := h.service.Replace(c.Request.Context(), therapistID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rules, nil)
}

// SaveDefaults godoc
// @Summary Persist the default availability template
// @Tags Availability
// @Produce json
// @Param id path string true "Therapist ID"
// @Success 200 {object} response.Envelope
// @Router /therapists/{id}/availability/defaults [post]
func (h *AvailabilityHandler) SaveDefaults(c *gin.Context) {
	therapistID := requirePathID(c, "id")
	if therapistID == "" {
		return
	}
	rules, err := h.service.SaveDefaults(c.Request.Context(), therapistID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rules, nil)
}
