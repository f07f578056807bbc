package service

import (
	"context"
	"errors"

	"transit/internal/domain"
	"transit/internal/repository"
)

// Identity is a resolved user: the role plus the matching profile. Exactly
// one of Client, Driver, Owner is non-nil.
type Identity struct {
	Role   domain.Role
	Client *domain.Client
	Driver *domain.Driver
	Owner  *domain.Owner
}

// IdentityService resolves an authenticated uid to its role by probing the
// role-tagged profile stores. Authentication itself is external; this service
// only answers "which kind of user is this uid".
type IdentityService struct {
	clientRepo repository.ClientRepository
	driverRepo repository.DriverRepository
	ownerRepo  repository.OwnerRepository
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(
	clientRepo repository.ClientRepository,
	driverRepo repository.DriverRepository,
	ownerRepo repository.OwnerRepository,
) *IdentityService {
	return &IdentityService{
		clientRepo: clientRepo,
		driverRepo: driverRepo,
		ownerRepo:  ownerRepo,
	}
}

// Resolve looks the uid up as client, then driver, then owner. Returns
// repository.ErrNotFound when the uid has no profile in any store.
func (s *IdentityService) Resolve(ctx context.Context, uid string) (*Identity, error) {
	if uid == "" {
		return nil, ErrInvalidClientID
	}

	client, err := s.clientRepo.GetByID(ctx, uid)
	if err == nil {
		return &Identity{Role: domain.RoleClient, Client: client}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	driver, err := s.driverRepo.GetByID(ctx, uid)
	if err == nil {
		return &Identity{Role: domain.RoleDriver, Driver: driver}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	owner, err := s.ownerRepo.GetByID(ctx, uid)
	if err == nil {
		return &Identity{Role: domain.RoleOwner, Owner: owner}, nil
	}
	return nil, err
}
