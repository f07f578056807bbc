package repository

import (
	"context"

	"transit/internal/domain"
)

// AvailabilityRepository defines the persistence operations for the
// availability projection. Entries are created by activation, mutated only
// inside seat-allocator transactions, and deleted by deactivation.
type AvailabilityRepository interface {
	// Create inserts the projection entry for a newly activated bus.
	Create(ctx context.Context, entry *domain.AvailableBus) error

	// GetByBusID retrieves the entry for a bus.
	GetByBusID(ctx context.Context, busID string) (*domain.AvailableBus, error)

	// GetByBusIDForUpdate retrieves the entry for a bus, locking the row for
	// the duration of the enclosing transaction.
	GetByBusIDForUpdate(ctx context.Context, busID string) (*domain.AvailableBus, error)

	// GetByRoute retrieves entries serving a route with at least one seat.
	GetByRoute(ctx context.Context, routeID string) ([]*domain.AvailableBus, error)

	// GetByOwner retrieves entries for buses registered by an owner.
	GetByOwner(ctx context.Context, ownerID string) ([]*domain.AvailableBus, error)

	// UpdateSeats sets the remaining seat count for a bus.
	UpdateSeats(ctx context.Context, busID string, availableSeats int) error

	// UpdatePassengers sets the on-board passenger count for a bus.
	UpdatePassengers(ctx context.Context, busID string, passengersOnBoard int) error

	// Delete removes the entry for a deactivated bus.
	Delete(ctx context.Context, busID string) error
}
