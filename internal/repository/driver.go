package repository

import (
	"context"

	"transit/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create adds a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetByIDForUpdate retrieves a driver by ID, locking the row for the
	// duration of the enclosing transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Driver, error)

	// GetByEmail retrieves a driver by email.
	GetByEmail(ctx context.Context, email string) (*domain.Driver, error)

	// GetByCompany retrieves all drivers of a company.
	GetByCompany(ctx context.Context, companyID string) ([]*domain.Driver, error)

	// SetActive marks a driver as active and binds the bus and route.
	SetActive(ctx context.Context, id, busID, routeID string) error

	// ClearActive marks a driver as inactive and unbinds bus and route.
	ClearActive(ctx context.Context, id string) error
}
