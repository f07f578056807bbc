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

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	activation *service.ActivationService
	driverRepo repository.DriverRepository
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(activation *service.ActivationService, driverRepo repository.DriverRepository) *DriverHandler {
	return &DriverHandler{
		activation: activation,
		driverRepo: driverRepo,
	}
}

// RegisterDriverRequest is the HTTP request body for driver registration.
// UID comes from the external auth service.
type RegisterDriverRequest struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CompanyID string `json:"company_id"`
}

// ActivateRequest is the HTTP request body for activating a bus.
type ActivateRequest struct {
	BusID   string `json:"bus_id"`
	RouteID string `json:"route_id"`
}

// DriverResponse is the HTTP response for driver data.
type DriverResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	CompanyID    string `json:"company_id"`
	Active       bool   `json:"active"`
	CurrentBus   string `json:"current_bus,omitempty"`
	CurrentRoute string `json:"current_route,omitempty"`
}

func toDriverResponse(d *domain.Driver) DriverResponse {
	return DriverResponse{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		CompanyID:    d.CompanyID,
		Active:       d.Active,
		CurrentBus:   d.CurrentBus,
		CurrentRoute: d.CurrentRoute,
	}
}

// Register handles POST /v1/drivers/register
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.UID == "" || req.Name == "" || req.CompanyID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "uid, name and company_id are required"})
		return
	}

	existing, err := h.driverRepo.GetByID(c.Request.Context(), req.UID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{
			"message": "Driver already registered",
			"driver":  toDriverResponse(existing),
		})
		return
	}

	if req.Email != "" {
		byEmail, err := h.driverRepo.GetByEmail(c.Request.Context(), req.Email)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			respondError(c, err)
			return
		}
		if byEmail != nil {
			c.JSON(http.StatusConflict, gin.H{
				"message": "Email already in use",
				"driver":  toDriverResponse(byEmail),
			})
			return
		}
	}

	driver := &domain.Driver{
		ID:        req.UID,
		Name:      req.Name,
		Email:     req.Email,
		CompanyID: req.CompanyID,
	}

	if err := h.driverRepo.Create(c.Request.Context(), driver); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toDriverResponse(driver))
}

// Get handles GET /v1/drivers/:id
func (h *DriverHandler) Get(c *gin.Context) {
	driver, err := h.driverRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// ListByCompany handles GET /v1/companies/:id/drivers
func (h *DriverHandler) ListByCompany(c *gin.Context) {
	drivers, err := h.driverRepo.GetByCompany(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverResponse, 0, len(drivers))
	for _, driver := range drivers {
		response = append(response, toDriverResponse(driver))
	}
	respondJSON(c, http.StatusOK, response)
}

// Activate handles POST /v1/drivers/:id/activate
func (h *DriverHandler) Activate(c *gin.Context) {
	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	entry, err := h.activation.Activate(c.Request.Context(), c.Param("id"), req.BusID, req.RouteID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, AvailableBusResponse{
		BusID:             entry.BusID,
		DriverID:          entry.DriverID,
		DriverName:        entry.DriverName,
		LicensePlate:      entry.LicensePlate,
		Capacity:          entry.Capacity,
		Type:              string(entry.Type),
		RouteID:           entry.RouteID,
		PassengersOnBoard: entry.PassengersOnBoard,
		AvailableSeats:    entry.AvailableSeats,
		ActivatedAt:       entry.ActivatedAt.Format(time.RFC3339),
	})
}

// Deactivate handles POST /v1/drivers/:id/deactivate
func (h *DriverHandler) Deactivate(c *gin.Context) {
	if err := h.activation.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}
