package repository

import (
	"context"

	"transit/internal/domain"
)

// BusRepository defines the persistence operations for fleet buses.
type BusRepository interface {
	// Create registers a new bus.
	Create(ctx context.Context, bus *domain.Bus) error

	// GetByID retrieves a bus by ID.
	GetByID(ctx context.Context, id string) (*domain.Bus, error)

	// GetByIDForUpdate retrieves a bus by ID, locking the row for the
	// duration of the enclosing transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Bus, error)

	// GetByOwner retrieves all buses registered by an owner.
	GetByOwner(ctx context.Context, ownerID string) ([]*domain.Bus, error)

	// GetAll retrieves all buses.
	GetAll(ctx context.Context) ([]*domain.Bus, error)

	// SetActive marks a bus as active and binds the driver and route.
	SetActive(ctx context.Context, id, driverID, routeID string) error

	// ClearActive marks a bus as inactive and unbinds driver and route.
	ClearActive(ctx context.Context, id string) error
}
