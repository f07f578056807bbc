package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"transit/internal/domain"
	"transit/internal/repository"
)

// RouteHandler handles HTTP requests for routes.
type RouteHandler struct {
	routeRepo repository.RouteRepository
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(routeRepo repository.RouteRepository) *RouteHandler {
	return &RouteHandler{routeRepo: routeRepo}
}

// CreateRouteRequest is the HTTP request body for creating a route.
type CreateRouteRequest struct {
	Name  string   `json:"name"`
	Stops []string `json:"stops"`
}

// RouteResponse is the HTTP representation of a route.
type RouteResponse struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Stops []string `json:"stops"`
}

// Create handles POST /v1/routes
func (h *RouteHandler) Create(c *gin.Context) {
	var req CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name is required"})
		return
	}
	if len(req.Stops) < 2 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "a route needs at least two stops"})
		return
	}

	route := &domain.Route{
		ID:    uuid.New().String(),
		Name:  req.Name,
		Stops: req.Stops,
	}

	if err := h.routeRepo.Create(c.Request.Context(), route); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, RouteResponse{ID: route.ID, Name: route.Name, Stops: route.Stops})
}

// Get handles GET /v1/routes/:id
func (h *RouteHandler) Get(c *gin.Context) {
	route, err := h.routeRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, RouteResponse{ID: route.ID, Name: route.Name, Stops: route.Stops})
}

// GetAll handles GET /v1/routes
func (h *RouteHandler) GetAll(c *gin.Context) {
	routes, err := h.routeRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RouteResponse, 0, len(routes))
	for _, route := range routes {
		response = append(response, RouteResponse{ID: route.ID, Name: route.Name, Stops: route.Stops})
	}
	respondJSON(c, http.StatusOK, response)
}
