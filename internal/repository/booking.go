package repository

import (
	"context"

	"transit/internal/domain"
)

// BookingRepository defines the persistence operations for the booking ledger.
// Bookings are never deleted; lifecycle transitions go through Update.
type BookingRepository interface {
	// Create appends a new booking to the ledger.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// GetByIDForUpdate retrieves a booking by ID, locking the row for the
	// duration of the enclosing transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error)

	// GetByClient retrieves all bookings created by a client, newest first.
	GetByClient(ctx context.Context, clientID string) ([]*domain.Booking, error)

	// GetActiveByBus retrieves the non-terminal bookings bound to a bus.
	GetActiveByBus(ctx context.Context, busID string) ([]*domain.Booking, error)

	// Update persists lifecycle changes to an existing booking.
	Update(ctx context.Context, booking *domain.Booking) error
}
