package tests

import (
	"context"
	"errors"
	"testing"

	"transit/internal/domain"
	"transit/internal/repository"
	"transit/internal/service"
)

// ──────────────────────────────────────────────
// 8. ROLE RESOLUTION
// ──────────────────────────────────────────────

func newIdentityFixture() (*service.IdentityService, *MockClientRepository, *MockDriverProfileRepository, *MockOwnerRepository) {
	clientRepo := NewMockClientRepository()
	driverRepo := NewMockDriverProfileRepository()
	ownerRepo := NewMockOwnerRepository()
	identity := service.NewIdentityService(clientRepo, driverRepo, ownerRepo)
	return identity, clientRepo, driverRepo, ownerRepo
}

func TestResolve_Client(t *testing.T) {
	t.Parallel()

	identity, clientRepo, _, _ := newIdentityFixture()
	clientRepo.AddClient(&domain.Client{ID: "uid-1", Name: "Joy"})

	resolved, err := identity.Resolve(context.Background(), "uid-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resolved.Role != domain.RoleClient {
		t.Errorf("expected role %s, got %s", domain.RoleClient, resolved.Role)
	}
	if resolved.Client == nil || resolved.Client.Name != "Joy" {
		t.Error("expected client profile attached")
	}
	if resolved.Driver != nil || resolved.Owner != nil {
		t.Error("only the matching profile may be set")
	}
}

func TestResolve_Driver(t *testing.T) {
	t.Parallel()

	identity, _, driverRepo, _ := newIdentityFixture()
	driverRepo.AddDriver(&domain.Driver{ID: "uid-2", Name: "Amara", CompanyID: "company-1"})

	resolved, err := identity.Resolve(context.Background(), "uid-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resolved.Role != domain.RoleDriver {
		t.Errorf("expected role %s, got %s", domain.RoleDriver, resolved.Role)
	}
	if resolved.Driver == nil || resolved.Driver.CompanyID != "company-1" {
		t.Error("expected driver profile attached")
	}
}

func TestResolve_Owner(t *testing.T) {
	t.Parallel()

	identity, _, _, ownerRepo := newIdentityFixture()
	ownerRepo.AddOwner(&domain.Owner{ID: "uid-3", Name: "Chiedu", CompanyID: "company-1"})

	resolved, err := identity.Resolve(context.Background(), "uid-3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resolved.Role != domain.RoleOwner {
		t.Errorf("expected role %s, got %s", domain.RoleOwner, resolved.Role)
	}
	if resolved.Owner == nil {
		t.Error("expected owner profile attached")
	}
}

func TestResolve_ProbesClientsFirst(t *testing.T) {
	t.Parallel()

	// A uid present in more than one store resolves in probe order:
	// clients, then drivers, then owners.
	identity, clientRepo, driverRepo, _ := newIdentityFixture()
	clientRepo.AddClient(&domain.Client{ID: "uid-dup", Name: "Joy"})
	driverRepo.AddDriver(&domain.Driver{ID: "uid-dup", Name: "Amara"})

	resolved, err := identity.Resolve(context.Background(), "uid-dup")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Role != domain.RoleClient {
		t.Errorf("expected client to win the probe order, got %s", resolved.Role)
	}
}

func TestResolve_UnknownUID_NotFound(t *testing.T) {
	t.Parallel()

	identity, _, _, _ := newIdentityFixture()

	_, err := identity.Resolve(context.Background(), "ghost")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve_EmptyUID_Rejected(t *testing.T) {
	t.Parallel()

	identity, _, _, _ := newIdentityFixture()

	_, err := identity.Resolve(context.Background(), "")
	if err == nil {
		t.Error("expected error for empty uid")
	}
}

func TestResolve_StoreFailureSurfaces(t *testing.T) {
	t.Parallel()

	// A store error is not the same as "no profile": it must propagate
	// instead of silently falling through to the next probe.
	identity, clientRepo, driverRepo, _ := newIdentityFixture()
	clientRepo.GetError = ErrMockTimeout
	driverRepo.AddDriver(&domain.Driver{ID: "uid-2", Name: "Amara"})

	_, err := identity.Resolve(context.Background(), "uid-2")
	if !errors.Is(err, ErrMockTimeout) {
		t.Errorf("expected store failure to surface, got %v", err)
	}
}
