package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"transit/internal/domain"
	"transit/internal/repository"
	"transit/internal/service"
)

// UserHandler handles HTTP requests for client and owner profiles,
// companies, and role resolution.
type UserHandler struct {
	identity    *service.IdentityService
	clientRepo  repository.ClientRepository
	ownerRepo   repository.OwnerRepository
	companyRepo repository.CompanyRepository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(
	identity *service.IdentityService,
	clientRepo repository.ClientRepository,
	ownerRepo repository.OwnerRepository,
	companyRepo repository.CompanyRepository,
) *UserHandler {
	return &UserHandler{
		identity:    identity,
		clientRepo:  clientRepo,
		ownerRepo:   ownerRepo,
		companyRepo: companyRepo,
	}
}

// RegisterClientRequest is the HTTP request body for client registration.
// UID comes from the external auth service.
type RegisterClientRequest struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RegisterOwnerRequest is the HTTP request body for owner registration.
type RegisterOwnerRequest struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CompanyID string `json:"company_id"`
}

// CreateCompanyRequest is the HTTP request body for creating a company.
type CreateCompanyRequest struct {
	Name string `json:"name"`
}

// ClientResponse is the HTTP representation of a client profile.
type ClientResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at,omitempty"`
}

// OwnerResponse is the HTTP representation of an owner profile.
type OwnerResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CompanyID string `json:"company_id"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CompanyResponse is the HTTP representation of a company.
type CompanyResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IdentityResponse reports which role a uid resolved to. Exactly one of the
// profile fields is set.
type IdentityResponse struct {
	Role   string          `json:"role"`
	Client *ClientResponse `json:"client,omitempty"`
	Driver *DriverResponse `json:"driver,omitempty"`
	Owner  *OwnerResponse  `json:"owner,omitempty"`
}

func toClientResponse(cl *domain.Client) ClientResponse {
	resp := ClientResponse{ID: cl.ID, Name: cl.Name, Email: cl.Email}
	if !cl.CreatedAt.IsZero() {
		resp.CreatedAt = cl.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

func toOwnerResponse(o *domain.Owner) OwnerResponse {
	resp := OwnerResponse{ID: o.ID, Name: o.Name, Email: o.Email, CompanyID: o.CompanyID}
	if !o.CreatedAt.IsZero() {
		resp.CreatedAt = o.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

// RegisterClient handles POST /v1/clients/register
func (h *UserHandler) RegisterClient(c *gin.Context) {
	var req RegisterClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.UID == "" || req.Name == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "uid and name are required"})
		return
	}

	existing, err := h.clientRepo.GetByID(c.Request.Context(), req.UID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{
			"message": "Client already registered",
			"client":  toClientResponse(existing),
		})
		return
	}

	client := &domain.Client{
		ID:        req.UID,
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.clientRepo.Create(c.Request.Context(), client); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toClientResponse(client))
}

// GetClient handles GET /v1/clients/:id
func (h *UserHandler) GetClient(c *gin.Context) {
	client, err := h.clientRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toClientResponse(client))
}

// RegisterOwner handles POST /v1/owners/register
func (h *UserHandler) RegisterOwner(c *gin.Context) {
	var req RegisterOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.UID == "" || req.Name == "" || req.CompanyID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "uid, name and company_id are required"})
		return
	}

	if _, err := h.companyRepo.GetByID(c.Request.Context(), req.CompanyID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "company not found"})
			return
		}
		respondError(c, err)
		return
	}

	existing, err := h.ownerRepo.GetByID(c.Request.Context(), req.UID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{
			"message": "Owner already registered",
			"owner":   toOwnerResponse(existing),
		})
		return
	}

	owner := &domain.Owner{
		ID:        req.UID,
		Name:      req.Name,
		Email:     req.Email,
		CompanyID: req.CompanyID,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.ownerRepo.Create(c.Request.Context(), owner); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOwnerResponse(owner))
}

// GetOwner handles GET /v1/owners/:id
func (h *UserHandler) GetOwner(c *gin.Context) {
	owner, err := h.ownerRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toOwnerResponse(owner))
}

// CreateCompany handles POST /v1/companies
func (h *UserHandler) CreateCompany(c *gin.Context) {
	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name is required"})
		return
	}

	company := &domain.Company{
		ID:   uuid.New().String(),
		Name: req.Name,
	}

	if err := h.companyRepo.Create(c.Request.Context(), company); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CompanyResponse{ID: company.ID, Name: company.Name})
}

// ListCompanies handles GET /v1/companies
func (h *UserHandler) ListCompanies(c *gin.Context) {
	companies, err := h.companyRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]CompanyResponse, 0, len(companies))
	for _, company := range companies {
		response = append(response, CompanyResponse{ID: company.ID, Name: company.Name})
	}
	respondJSON(c, http.StatusOK, response)
}

// ResolveIdentity handles GET /v1/identity/:uid
func (h *UserHandler) ResolveIdentity(c *gin.Context) {
	identity, err := h.identity.Resolve(c.Request.Context(), c.Param("uid"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := IdentityResponse{Role: string(identity.Role)}
	switch identity.Role {
	case domain.RoleClient:
		client := toClientResponse(identity.Client)
		resp.Client = &client
	case domain.RoleDriver:
		driver := toDriverResponse(identity.Driver)
		resp.Driver = &driver
	case domain.RoleOwner:
		owner := toOwnerResponse(identity.Owner)
		resp.Owner = &owner
	}
	respondJSON(c, http.StatusOK, resp)
}
