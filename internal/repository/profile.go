package repository

import (
	"context"

	"transit/internal/domain"
)

// ClientRepository defines the persistence operations for client profiles.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
}

// OwnerRepository defines the persistence operations for owner profiles.
type OwnerRepository interface {
	Create(ctx context.Context, owner *domain.Owner) error
	GetByID(ctx context.Context, id string) (*domain.Owner, error)
}

// CompanyRepository defines the persistence operations for companies.
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) error
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	GetAll(ctx context.Context) ([]*domain.Company, error)
}
