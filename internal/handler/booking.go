package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"transit/internal/domain"
	"transit/internal/repository"
	"transit/internal/service"
)

// BookingHandler handles HTTP requests for the booking ledger.
type BookingHandler struct {
	allocator   *service.AllocatorService
	bookingRepo repository.BookingRepository
	clientRepo  repository.ClientRepository
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(
	allocator *service.AllocatorService,
	bookingRepo repository.BookingRepository,
	clientRepo repository.ClientRepository,
) *BookingHandler {
	return &BookingHandler{
		allocator:   allocator,
		bookingRepo: bookingRepo,
		clientRepo:  clientRepo,
	}
}

// CreateBookingRequest is the HTTP request body for reserving seats.
type CreateBookingRequest struct {
	BusID       string `json:"bus_id"`
	ClientID    string `json:"client_id"`
	Departure   string `json:"departure"`
	Destination string `json:"destination"`
	Seats       int    `json:"seats"`
}

// BookingResponse is the HTTP representation of a booking.
type BookingResponse struct {
	ID           string `json:"id"`
	ClientID     string `json:"client_id"`
	ClientName   string `json:"client_name"`
	DriverID     string `json:"driver_id"`
	DriverName   string `json:"driver_name"`
	BusID        string `json:"bus_id"`
	LicensePlate string `json:"license_plate"`
	RouteID      string `json:"route_id"`
	Departure    string `json:"departure"`
	Destination  string `json:"destination"`
	Seats        int    `json:"seats"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	PickupTime   string `json:"pickup_time,omitempty"`
	DropoffTime  string `json:"dropoff_time,omitempty"`
	UpdatedAt    string `json:"updated_at"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	resp := BookingResponse{
		ID:           b.ID,
		ClientID:     b.ClientID,
		ClientName:   b.ClientName,
		DriverID:     b.DriverID,
		DriverName:   b.DriverName,
		BusID:        b.BusID,
		LicensePlate: b.LicensePlate,
		RouteID:      b.RouteID,
		Departure:    b.Departure,
		Destination:  b.Destination,
		Seats:        b.Seats,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    b.UpdatedAt.Format(time.RFC3339),
	}
	if !b.PickupTime.IsZero() {
		resp.PickupTime = b.PickupTime.Format(time.RFC3339)
	}
	if !b.DropoffTime.IsZero() {
		resp.DropoffTime = b.DropoffTime.Format(time.RFC3339)
	}
	return resp
}

// Create handles POST /v1/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	// The ledger denormalizes client identity; resolve it from the profile
	// store rather than trusting the request body.
	client, err := h.clientRepo.GetByID(c.Request.Context(), req.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "client profile not found"})
			return
		}
		respondError(c, err)
		return
	}

	booking, err := h.allocator.Reserve(c.Request.Context(), service.ReserveRequest{
		BusID:       req.BusID,
		ClientID:    client.ID,
		ClientName:  client.Name,
		ClientEmail: client.Email,
		Departure:   req.Departure,
		Destination: req.Destination,
		Seats:       req.Seats,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toBookingResponse(booking))
}

// Get handles GET /v1/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.bookingRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// ListByClient handles GET /v1/bookings?client_id=
func (h *BookingHandler) ListByClient(c *gin.Context) {
	clientID := c.Query("client_id")
	if clientID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "client_id is required"})
		return
	}

	bookings, err := h.bookingRepo.GetByClient(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, toBookingResponse(b))
	}
	respondJSON(c, http.StatusOK, response)
}

// Manifest handles GET /v1/buses/:id/bookings — the driver's live list of
// bookings still waiting for pickup or on board.
func (h *BookingHandler) Manifest(c *gin.Context) {
	bookings, err := h.bookingRepo.GetActiveByBus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, toBookingResponse(b))
	}
	respondJSON(c, http.StatusOK, response)
}

// Pickup handles POST /v1/bookings/:id/pickup
func (h *BookingHandler) Pickup(c *gin.Context) {
	if err := h.allocator.Pickup(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(domain.BookingStatusEnRoute)})
}

// Dropoff handles POST /v1/bookings/:id/dropoff
func (h *BookingHandler) Dropoff(c *gin.Context) {
	if err := h.allocator.Dropoff(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(domain.BookingStatusCompleted)})
}
