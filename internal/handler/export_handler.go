package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-scheduling-api/internal/service"
	appErrors "github.com/noah-isme/clinic-scheduling-api/pkg/errors"
	"github.com/noah-isme/clinic-scheduling-api/pkg/response"
)

type exportService interface {
	ExportBookings(ctx context.Context, therapistID string, format service.ExportFormat, from, to time.Time) (*service.ExportResult, error)
}

// ExportHandler streams booking exports.
type ExportHandler struct {
	service  exportService
	location *time.Location
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService, location *time.Location) *ExportHandler {
	if location == nil {
		location = time.UTC
	}
	return &ExportHandler{service: service, location: location}
}

// Bookings godoc
// @Summary Export a therapist's bookings
// @Tags Bookings
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Therapist ID"
// @Param format query string false "csv or pdf"
// @Param from query string true "From (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "To (defaults to 30 days after from)"
// @Success 200 {file} file
// @Router /therapists/{id}/bookings/export [get]
func (h *ExportHandler) Bookings(c *gin.Context) {
	therapistID := requirePathID(c, "id")
	if therapistID == "" {
		return
	}
	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(service.ExportFormatCSV))))
	if format != service.ExportFormatCSV && format != service.ExportFormatPDF {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
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
	end := from.AddDate(0, 0, 30)
	if to != nil {
		end = *to
	}

	result, err := h.service.ExportBookings(c.Request.Context(), therapistID, format, *from, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Payload)
}
