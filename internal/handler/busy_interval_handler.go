package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
	"github.com/noah-isme/clinic-scheduling-api/internal/service"
	appErrors "github.com/noah-isme/clinic-scheduling-api/pkg/errors"
	"github.com/noah-isme/clinic-scheduling-api/pkg/response"
)

type busyIntervalService interface {
	List(ctx context.Context, therapistID string, from, to time.Time) ([]models.BusyInterval, error)
	Create(ctx context.Context, therapistID string, req service.CreateBusyIntervalRequest) (*models.BusyInterval, error)
	Delete(ctx context.Context, therapistID, id string) error
}

// BusyIntervalHandler manages ad-hoc blocks on a therapist's calendar.
type BusyIntervalHandler struct {
	service  busyIntervalService
	location *time.Location
}

// NewBusyIntervalHandler constructs the handler. Plain dates in queries resolve in location.
func NewBusyIntervalHandler(service busyIntervalService, location *time.Location) *BusyIntervalHandler {
	if location == nil {
		location = time.UTC
	}
	return &BusyIntervalHandler{service: service, location: location}
}

// List godoc
// @Summary List busy intervals overlapping a range
// @Tags Availability
// @Produce json
// @Param id path string true "Therapist ID"
// @Param from query string true "From (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "To (defaults to one week after from)"
// @Success 200 {object} response.Envelope
// @Router /therapists/{id}/busy [get]
func (h *BusyIntervalHandler) List(c *gin.Context) {
	therapistID := requirePathID(c, "id")
	if therapistID == "" {
		return
	}
	from, err := parseInstantParam(c.Query("from"), h.location)
	if err != nil {
		response.Error(c, err)
		return
	}
	if from == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from is required"))
		return
	}
	to, err := parseInstantParam(c.Query("to"), h.location)
	if err != nil {
		response.Error(c, err)
		return
	}
	end := from.AddDate(0, 0, 7)
	if to != nil {
		end = *to
	}
	items, err := h.service.List(c.Request.Context(), therapistID, *from, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Block time on a therapist's calendar
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Therapist ID"
// @Param payload body service.CreateBusyIntervalRequest true "Busy interval"
// @Success 201 {object} response.Envelope
// @Router /therapists/{id}/busy [post]
func (h *BusyIntervalHandler) Create(c *gin.Context) {
	therapistID := requirePathID(c, "id")
	if therapistID == "" {
		return
	}
	var req service.CreateBusyIntervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid busy interval payload"))
		return
	}
	interval, err := h.service.Create(c.Request.Context(), therapistID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, interval)
}

// Delete godoc
// @Summary Remove a busy interval
// @Tags Availability
// @Param id path string true "Therapist ID"
// @Param busyId path string true "Busy interval ID"
// @Success 204
// @Router /therapists/{id}/busy/{busyId} [delete]
func (h *BusyIntervalHandler) Delete(c *gin.Context) {
	therapistID := requirePathID(c, "id")
	if therapistID == "" {
		return
	}
	busyID := requirePathID(c, "busyId")
	if busyID == "" {
		return
	}
	if err := h.service.Delete(c.Request.Context(), therapistID, busyID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
