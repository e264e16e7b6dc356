package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-scheduling-api/internal/middleware"
	"github.com/noah-isme/clinic-scheduling-api/internal/service"
	appErrors "github.com/noah-isme/clinic-scheduling-api/pkg/errors"
	"github.com/noah-isme/clinic-scheduling-api/pkg/response"
)

const maxCalendarDays = 90

type slotService interface {
	Location() *time.Location
	ForDate(ctx context.Context, therapistID string, date time.Time) (*service.DaySlots, error)
	Calendar(ctx context.Context, therapistID string, days int) *service.CalendarWindow
}

// SlotHandler serves computed slots and the bookable-date window.
type SlotHandler struct {
	service slotService
}

// NewSlotHandler constructs the handler.
func NewSlotHandler(service slotService) *SlotHandler {
	return &SlotHandler{service: service}
}

// Slots godoc
// @Summary List slots for a date
// @Tags Slots
// @Produce json
// @Param id path string true "Therapist ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /therapists/{id}/slots [get]
func (h *SlotHandler) Slots(c *gin.Context) {
	therapistID := requirePathID(c, "id")
	if therapistID == "" {
		return
	}
	date, err := parseDateParam(c.Query("date"), h.service.Location())
	if err != nil {
		response.Error(c, err)
		return
	}
	if date == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return
	}
	day, err := h.service.ForDate(c.Request.Context(), therapistID, *date)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetDefaultApplied(c, day.DefaultApplied)
	response.JSON(c, http.StatusOK, day, nil, middleware.ExtractMeta(c))
}

// Calendar godoc
// @Summary List dates with availability rules
// @Tags Slots
// @Produce json
// @Param id path string true "Therapist ID"
// @Param days query int false "Days ahead, 0 to 90 (0 = default 14)"
// @Success 200 {object} response.Envelope
// @Router /therapists/{id}/calendar [get]
func (h *SlotHandler) Calendar(c *gin.Context) {
	therapistID := requirePathID(c, "id")
	if therapistID == "" {
		return
	}
	days := parseQueryInt(c, "days", 0)
	if days < 0 || days > maxCalendarDays {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "days must be between 0 and 90 (0 = default)"))
		return
	}
	window := h.service.Calendar(c.Request.Context(), therapistID, days)
	middleware.SetDefaultApplied(c, window.DefaultApplied)
	response.JSON(c, http.StatusOK, window, nil, middleware.ExtractMeta(c))
}
