package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"transit/internal/repository"
	"transit/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error          string `json:"error"`
	AvailableSeats *int   `json:"available_seats,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Insufficient-seat rejections carry the remaining count so the caller can
// offer a reduced request.
func respondError(c *gin.Context, err error) {
	var insufficient *service.InsufficientSeatsError
	if errors.As(err, &insufficient) {
		available := insufficient.Available
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), AvailableSeats: &available})
		return
	}

	c.JSON(mapErrorToHTTPStatus(err), ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidSeatCount),
		errors.Is(err, service.ErrInvalidBusID),
		errors.Is(err, service.ErrInvalidBookingID),
		errors.Is(err, service.ErrInvalidClientID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidRouteID),
		errors.Is(err, service.ErrInvalidRecipientID):
		return http.StatusBadRequest

	// Conflict errors - state machine or lifecycle misuse
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrBusAlreadyActive),
		errors.Is(err, service.ErrDriverAlreadyActive),
		errors.Is(err, service.ErrDriverNotActive),
		errors.Is(err, service.ErrActivationInProgress):
		return http.StatusConflict

	// Authorization boundary
	case errors.Is(err, service.ErrBusNotOwned):
		return http.StatusForbidden

	// Transient store contention - caller may retry
	case errors.Is(err, repository.ErrConflict):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
