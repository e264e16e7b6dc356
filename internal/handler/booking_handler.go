package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
	"github.com/noah-isme/clinic-scheduling-api/internal/service"
	appErrors "github.com/noah-isme/clinic-scheduling-api/pkg/errors"
	"github.com/noah-isme/clinic-scheduling-api/pkg/response"
)

type bookingService interface {
	Create(ctx context.Context, req service.CreateBookingRequest) (*models.Booking, error)
	Reschedule(ctx context.Context, id string, req service.RescheduleBookingRequest) (*models.Booking, error)
	Cancel(ctx context.Context, id string) (*models.Booking, error)
	Get(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error)
}

// BookingHandler exposes booking endpoints.
type BookingHandler struct {
	service bookingService
}

// NewBookingHandler constructs the handler.
func NewBookingHandler(service bookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Create godoc
// @Summary Book a session
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body service.CreateBookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req service.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}
	if claims, ok := callerIs(c, models.RoleClient); ok {
		req.ClientID = claims.UserID
	}
	booking, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// Get godoc
// @Summary Get a booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	booking := h.loadOwned(c)
	if booking == nil {
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// List godoc
// @Summary List bookings
// @Tags Bookings
// @Produce json
// @Param therapist_id query string false "Therapist ID"
// @Param client_id query string false "Client ID"
// @Param status query string false "Status"
// @Param from query string false "From (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "To (RFC3339 or YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	filter := models.BookingFilter{
		TherapistID: strings.TrimSpace(c.Query("therapist_id")),
		ClientID:    strings.TrimSpace(c.Query("client_id")),
		Page:        parseQueryInt(c, "page", 1),
		PageSize:    parseQueryInt(c, "page_size", 20),
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := models.BookingStatus(strings.ToLower(raw))
		if !validBookingStatus(status) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status"))
			return
		}
		filter.Status = &status
	}
	from, err := parseInstantParam(c.Query("from"), nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := parseInstantParam(c.Query("to"), nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter.From, filter.To = from, to

	if claims := claimsFromContext(c); claims != nil {
		switch claims.Role {
		case models.RoleClient:
			filter.ClientID = claims.UserID
		case models.RoleTherapist:
			filter.TherapistID = claims.UserID
		}
	}

	items, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Reschedule godoc
// @Summary Move a booking to a new start time
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body service.RescheduleBookingRequest true "Reschedule payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id}/reschedule [patch]
func (h *BookingHandler) Reschedule(c *gin.Context) {
	booking := h.loadOwned(c)
	if booking == nil {
		return
	}
	var req service.RescheduleBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reschedule payload"))
		return
	}
	updated, err := h.service.Reschedule(c.Request.Context(), booking.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// Cancel godoc
// @Summary Cancel a booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	booking := h.loadOwned(c)
	if booking == nil {
		return
	}
	cancelled, err := h.service.Cancel(c.Request.Context(), booking.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cancelled, nil)
}

// loadOwned fetches the :id booking and writes an error response unless the caller may act on it.
func (h *BookingHandler) loadOwned(c *gin.Context) *models.Booking {
	id := requirePathID(c, "id")
	if id == "" {
		return nil
	}
	booking, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return nil
	}
	if !canAccessBooking(claimsFromContext(c), booking) {
		response.Error(c, appErrors.ErrForbidden)
		return nil
	}
	return booking
}

func canAccessBooking(claims *models.JWTClaims, booking *models.Booking) bool {
	if claims == nil {
		return false
	}
	switch claims.Role {
	case models.RoleAdmin:
		return true
	case models.RoleTherapist:
		return booking.TherapistID == claims.UserID
	case models.RoleClient:
		return booking.ClientID == claims.UserID
	}
	return false
}

func validBookingStatus(status models.BookingStatus) bool {
	switch status {
	case models.BookingStatusPending, models.BookingStatusConfirmed, models.BookingStatusCompleted, models.BookingStatusCancelled:
		return true
	}
	return false
}
