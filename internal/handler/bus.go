package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"transit/internal/domain"
	"transit/internal/repository"
)

// BusHandler handles HTTP requests for the fleet registry.
type BusHandler struct {
	busRepo repository.BusRepository
}

// NewBusHandler creates a new BusHandler.
func NewBusHandler(busRepo repository.BusRepository) *BusHandler {
	return &BusHandler{busRepo: busRepo}
}

// RegisterBusRequest is the HTTP request body for registering a bus.
type RegisterBusRequest struct {
	LicensePlate string `json:"license_plate"`
	Capacity     int    `json:"capacity"`
	Type         string `json:"type,omitempty"`
	CompanyID    string `json:"company_id"`
	OwnerID      string `json:"owner_id"`
}

// BusResponse is the HTTP representation of a fleet bus.
type BusResponse struct {
	ID            string `json:"id"`
	LicensePlate  string `json:"license_plate"`
	Capacity      int    `json:"capacity"`
	Type          string `json:"type"`
	CompanyID     string `json:"company_id"`
	OwnerID       string `json:"owner_id"`
	Active        bool   `json:"active"`
	CurrentDriver string `json:"current_driver,omitempty"`
	CurrentRoute  string `json:"current_route,omitempty"`
}

func toBusResponse(b *domain.Bus) BusResponse {
	return BusResponse{
		ID:            b.ID,
		LicensePlate:  b.LicensePlate,
		Capacity:      b.Capacity,
		Type:          string(b.Type),
		CompanyID:     b.CompanyID,
		OwnerID:       b.OwnerID,
		Active:        b.Active,
		CurrentDriver: b.CurrentDriver,
		CurrentRoute:  b.CurrentRoute,
	}
}

// validBusType validates a bus type string, defaulting empty to STANDARD.
func validBusType(raw string) (domain.BusType, bool) {
	switch domain.BusType(raw) {
	case domain.BusTypeStandard, domain.BusTypeMinibus, domain.BusTypeCoach:
		return domain.BusType(raw), true
	case "":
		return domain.BusTypeStandard, true
	default:
		return "", false
	}
}

// Register handles POST /v1/buses
func (h *BusHandler) Register(c *gin.Context) {
	var req RegisterBusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.LicensePlate == "" || req.CompanyID == "" || req.OwnerID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "license_plate, company_id and owner_id are required"})
		return
	}
	if req.Capacity < 1 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "capacity must be at least 1"})
		return
	}

	busType, ok := validBusType(req.Type)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid bus type"})
		return
	}

	bus := &domain.Bus{
		ID:           uuid.New().String(),
		LicensePlate: req.LicensePlate,
		Capacity:     req.Capacity,
		Type:         busType,
		CompanyID:    req.CompanyID,
		OwnerID:      req.OwnerID,
	}

	if err := h.busRepo.Create(c.Request.Context(), bus); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBusResponse(bus))
}

// Get handles GET /v1/buses/:id
func (h *BusHandler) Get(c *gin.Context) {
	bus, err := h.busRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toBusResponse(bus))
}

// GetAll handles GET /v1/buses with an optional owner_id filter.
func (h *BusHandler) GetAll(c *gin.Context) {
	var buses []*domain.Bus
	var err error

	if ownerID := c.Query("owner_id"); ownerID != "" {
		buses, err = h.busRepo.GetByOwner(c.Request.Context(), ownerID)
	} else {
		buses, err = h.busRepo.GetAll(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BusResponse, 0, len(buses))
	for _, bus := range buses {
		response = append(response, toBusResponse(bus))
	}
	respondJSON(c, http.StatusOK, response)
}
