package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"transit/internal/domain"
	"transit/internal/service"
)

// AvailabilityHandler handles HTTP requests for the availability index.
type AvailabilityHandler struct {
	availability *service.AvailabilityService
	upgrader     websocket.Upgrader
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(availability *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{
		availability: availability,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The browser front-end is served from another origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// AvailableBusResponse is the HTTP representation of an availability entry.
type AvailableBusResponse struct {
	BusID             string `json:"bus_id"`
	DriverID          string `json:"driver_id"`
	DriverName        string `json:"driver_name"`
	LicensePlate      string `json:"license_plate"`
	Capacity          int    `json:"capacity"`
	Type              string `json:"type"`
	RouteID           string `json:"route_id"`
	PassengersOnBoard int    `json:"passengers_on_board"`
	AvailableSeats    int    `json:"available_seats"`
	ActivatedAt       string `json:"activated_at,omitempty"`
}

func toAvailableBusResponse(entry *domain.AvailableBus) AvailableBusResponse {
	resp := AvailableBusResponse{
		BusID:             entry.BusID,
		DriverID:          entry.DriverID,
		DriverName:        entry.DriverName,
		LicensePlate:      entry.LicensePlate,
		Capacity:          entry.Capacity,
		Type:              string(entry.Type),
		RouteID:           entry.RouteID,
		PassengersOnBoard: entry.PassengersOnBoard,
		AvailableSeats:    entry.AvailableSeats,
	}
	if !entry.ActivatedAt.IsZero() {
		resp.ActivatedAt = entry.ActivatedAt.Format(time.RFC3339)
	}
	return resp
}

// ByRoute handles GET /v1/routes/:id/buses
func (h *AvailabilityHandler) ByRoute(c *gin.Context) {
	entries, err := h.availability.ByRoute(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]AvailableBusResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, toAvailableBusResponse(entry))
	}
	respondJSON(c, http.StatusOK, response)
}

// ByBus handles GET /v1/buses/:id/availability
func (h *AvailabilityHandler) ByBus(c *gin.Context) {
	entry, err := h.availability.ByBus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toAvailableBusResponse(entry))
}

// ByOwner handles GET /v1/owners/:id/buses/active
func (h *AvailabilityHandler) ByOwner(c *gin.Context) {
	entries, err := h.availability.ByOwner(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]AvailableBusResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, toAvailableBusResponse(entry))
	}
	respondJSON(c, http.StatusOK, response)
}

// Watch handles GET /v1/routes/:id/buses/watch — upgrades to a WebSocket and
// forwards availability events for the route until the client disconnects.
// The subscription handle is scoped to the connection: acquired on upgrade,
// closed on disconnect.
func (h *AvailabilityHandler) Watch(c *gin.Context) {
	routeID := c.Param("id")

	sub, err := h.availability.Subscribe(c.Request.Context(), routeID)
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		_ = sub.Close()
		return
	}
	defer conn.Close()
	defer sub.Close()

	// Read pump: its only job is to notice the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
