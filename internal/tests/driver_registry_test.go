package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"transit/internal/domain"
	"transit/internal/handler"
)

// ──────────────────────────────────────────────
// 10. DRIVER REGISTRY
// ──────────────────────────────────────────────

func newDriverRegistryRouter(driverRepo *MockDriverProfileRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewDriverHandler(nil, driverRepo)
	router := gin.New()
	router.POST("/v1/drivers/register", h.Register)
	router.GET("/v1/companies/:id/drivers", h.ListByCompany)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterDriver_Succeeds(t *testing.T) {
	t.Parallel()

	driverRepo := NewMockDriverProfileRepository()
	router := newDriverRegistryRouter(driverRepo)

	rec := postJSON(t, router, "/v1/drivers/register",
		`{"uid":"driver-1","name":"Amara","email":"amara@example.com","company_id":"company-1"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if driver, _ := driverRepo.GetByID(context.Background(), "driver-1"); driver == nil {
		t.Error("driver not persisted")
	}
}

func TestRegisterDriver_DuplicateUID_Conflict(t *testing.T) {
	t.Parallel()

	driverRepo := NewMockDriverProfileRepository()
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Name: "Amara", CompanyID: "company-1"})
	router := newDriverRegistryRouter(driverRepo)

	rec := postJSON(t, router, "/v1/drivers/register",
		`{"uid":"driver-1","name":"Amara","company_id":"company-1"}`)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for a duplicate uid, got %d", rec.Code)
	}
}

func TestRegisterDriver_DuplicateEmail_Conflict(t *testing.T) {
	t.Parallel()

	driverRepo := NewMockDriverProfileRepository()
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Name: "Amara", Email: "amara@example.com", CompanyID: "company-1"})
	router := newDriverRegistryRouter(driverRepo)

	rec := postJSON(t, router, "/v1/drivers/register",
		`{"uid":"driver-2","name":"Kemi","email":"amara@example.com","company_id":"company-1"}`)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a duplicate email, got %d", rec.Code)
	}
	if driver, _ := driverRepo.GetByID(context.Background(), "driver-2"); driver != nil {
		t.Error("conflicting registration must not be persisted")
	}
}

func TestListDriversByCompany_ReturnsRosterOnly(t *testing.T) {
	t.Parallel()

	driverRepo := NewMockDriverProfileRepository()
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Name: "Amara", CompanyID: "company-1"})
	driverRepo.AddDriver(&domain.Driver{ID: "driver-2", Name: "Kemi", CompanyID: "company-1"})
	driverRepo.AddDriver(&domain.Driver{ID: "driver-3", Name: "Femi", CompanyID: "rival-company"})
	router := newDriverRegistryRouter(driverRepo)

	req := httptest.NewRequest(http.MethodGet, "/v1/companies/company-1/drivers", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var roster []handler.DriverResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &roster); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("expected 2 drivers on the roster, got %d", len(roster))
	}
	for _, driver := range roster {
		if driver.CompanyID != "company-1" {
			t.Errorf("foreign driver %s on the roster", driver.ID)
		}
	}
}
