package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"boxoffice/internal/cache"
	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/logger"
	"boxoffice/internal/models"
	"boxoffice/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services     *service.Services
	valkeyClient *cache.ValkeyClient
}

// NewHandlers wires handlers to the services. valkeyClient may be nil.
func NewHandlers(services *service.Services, valkeyClient *cache.ValkeyClient) *Handlers {
	return &Handlers{
		services:     services,
		valkeyClient: valkeyClient,
	}
}

// Movies handlers

// ListMovies - GET /api/movies
// Получить список фильмов
func (h *Handlers) ListMovies(c *gin.Context) {
	ctx := c.Request.Context()

	if h.valkeyClient != nil {
		rawJSON, err := h.valkeyClient.GetMoviesListRaw(ctx)
		if err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", rawJSON)
			return
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.WithContext(ctx).Warn("Movies cache lookup failed", "error", err)
		}
	}

	response, err := h.services.Reservations.ViewMovies(ctx)
	if err != nil {
		respondError(c, "Failed to list movies", err)
		return
	}

	if h.valkeyClient != nil {
		if err := h.valkeyClient.SetMoviesList(ctx, response); err != nil {
			logger.WithContext(ctx).Warn("Failed to cache movies list", "error", err)
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetMovie - GET /api/movies/:id
// Получить фильм вместе с сеансами
func (h *Handlers) GetMovie(c *gin.Context) {
	response, err := h.services.Reservations.ViewMovie(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to get movie", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListShowtimes - GET /api/movies/:id/showtimes
// Получить сеансы фильма
func (h *Handlers) ListShowtimes(c *gin.Context) {
	response, err := h.services.Reservations.ViewShowtimes(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to list showtimes", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Bookings handlers

// CreateBooking - POST /api/bookings
// Создать бронирование
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Reservations.BookTickets(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Failed to create booking", err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListBookings - GET /api/bookings
// Получить список бронирований
func (h *Handlers) ListBookings(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Reservations.ViewBookings(c.Request.Context()))
}

// DeleteBooking - DELETE /api/bookings/:id
// Отменить бронирование по идентификатору
func (h *Handlers) DeleteBooking(c *gin.Context) {
	response, err := h.services.Reservations.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to cancel booking", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// CancelBooking - PATCH /api/bookings/cancel
// Отменить бронирование по номеру в списке
func (h *Handlers) CancelBooking(c *gin.Context) {
	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Reservations.CancelBookingAt(c.Request.Context(), req.Position)
	if err != nil {
		respondError(c, "Failed to cancel booking", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Audit - GET /api/audit
// Сверка доступных мест с журналом бронирований
func (h *Handlers) Audit(c *gin.Context) {
	report := h.services.Reservations.Audit(c.Request.Context())

	status := http.StatusOK
	if !report.OK() {
		status = http.StatusConflict
	}
	c.JSON(status, report)
}

// respondError maps domain errors to HTTP statuses. The error text is the
// human-readable reason shown to the caller.
func respondError(c *gin.Context, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrMovieNotFound),
		errors.Is(err, apperrors.ErrShowtimeNotFound),
		errors.Is(err, apperrors.ErrInvalidBookingID):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrInsufficientSeats):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		slog.Error(msg, "error", err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
