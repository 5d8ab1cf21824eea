package handlers

import (
	"errors"
	"net/http"

	"consultly/models"
	"consultly/services/booking"
	"consultly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking service over HTTP.
type BookingHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

// NewBookingHandler builds the handler.
func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: svc, Logger: logger}
}

// CreateBookingHandler handles POST /api/bookings.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var input models.BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	created, err := h.Service.Create(c.Request.Context(), input)
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateBookingHandler handles PATCH /api/bookings/:id.
func (h *BookingHandler) UpdateBookingHandler(c *gin.Context) {
	var input models.BookingUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	updated, err := h.Service.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// CancelBookingHandler handles DELETE /api/bookings/:id.
func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	cancelled, err := h.Service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cancelled)
}

// GetBookingHandler handles GET /api/bookings/:id.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	found, err := h.Service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

// ListBookingsHandler handles GET /api/bookings.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	var query struct {
		Email  string `form:"email"`
		Status string `form:"status"`
		Page   int    `form:"page"`
		Limit  int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid query", err.Error())
		return
	}

	page, err := h.Service.List(c.Request.Context(), models.BookingFilter{
		Email:  query.Email,
		Status: query.Status,
		Page:   query.Page,
		Limit:  query.Limit,
	})
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// writeDomainError maps booking-service errors onto HTTP statuses.
func (h *BookingHandler) writeDomainError(c *gin.Context, err error) {
	var (
		validationErr *booking.ValidationError
		frequencyErr  *booking.FrequencyLimitError
		conflictErr   *booking.ConflictError
		notFoundErr   *booking.NotFoundError
		providerErr   *booking.ProviderError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": validationErr.Fields})
	case errors.As(err, &frequencyErr):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":           frequencyErr.Error(),
			"limit":           frequencyErr.Limit,
			"windowMinutes":   frequencyErr.WindowMinutes,
			"durationMinutes": frequencyErr.DurationMinutes,
		})
	case errors.As(err, &conflictErr):
		body := gin.H{"error": conflictErr.Message}
		if conflictErr.Slot != nil {
			body["slot"] = conflictErr.Slot
		}
		c.JSON(http.StatusConflict, body)
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &providerErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "availability data is temporarily unavailable"})
	default:
		h.Logger.Error("booking request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
