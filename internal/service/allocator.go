package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"transit/internal/domain"
	"transit/internal/redis"
	"transit/internal/repository"
)

// AllocatorService is the transactional core of seat reservation. Every
// operation runs as one atomic unit over the availability entry and the
// booking ledger: a reader never observes a decremented seat count without
// the corresponding booking, or vice versa.
type AllocatorService struct {
	txm      repository.TxManager
	stream   redis.StreamInterface
	cache    redis.CacheStoreInterface
	notifier *NotificationService
}

// NewAllocatorService creates a new AllocatorService.
func NewAllocatorService(
	txm repository.TxManager,
	stream redis.StreamInterface,
	cache redis.CacheStoreInterface,
	notifier *NotificationService,
) *AllocatorService {
	return &AllocatorService{
		txm:      txm,
		stream:   stream,
		cache:    cache,
		notifier: notifier,
	}
}

// ReserveRequest contains the parameters for reserving seats on a bus.
type ReserveRequest struct {
	BusID       string
	ClientID    string
	ClientName  string
	ClientEmail string
	Departure   string
	Destination string
	Seats       int
}

// Reserve atomically checks remaining capacity, debits the requested seats
// and appends the booking. The seat check happens against the locked row, not
// the caller's earlier read: two clients racing for the last N seats cannot
// both succeed beyond capacity.
func (s *AllocatorService) Reserve(ctx context.Context, req ReserveRequest) (*domain.Booking, error) {
	if err := s.validateReserve(req); err != nil {
		return nil, err
	}

	var booking *domain.Booking
	var entry *domain.AvailableBus

	err := s.txm.InTx(ctx, func(tx repository.Tx) error {
		var err error
		entry, err = tx.Availability().GetByBusIDForUpdate(ctx, req.BusID)
		if err != nil {
			// Entry gone means the bus was deactivated under the client.
			return err
		}

		if req.Seats > entry.AvailableSeats {
			return &InsufficientSeatsError{Available: entry.AvailableSeats}
		}

		entry.AvailableSeats -= req.Seats
		if err := tx.Availability().UpdateSeats(ctx, entry.BusID, entry.AvailableSeats); err != nil {
			return err
		}

		now := time.Now()
		booking = &domain.Booking{
			ID:           uuid.New().String(),
			ClientID:     req.ClientID,
			ClientName:   req.ClientName,
			ClientEmail:  req.ClientEmail,
			DriverID:     entry.DriverID,
			DriverName:   entry.DriverName,
			BusID:        entry.BusID,
			LicensePlate: entry.LicensePlate,
			RouteID:      entry.RouteID,
			Departure:    req.Departure,
			Destination:  req.Destination,
			Seats:        req.Seats,
			Status:       domain.BookingStatusWaitingPickup,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.Bookings().Create(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.publishEntry(ctx, entry)
	if s.notifier != nil {
		_ = s.notifier.NotifyBookingCreated(ctx, booking, entry.OwnerID)
	}

	return booking, nil
}

// Pickup transitions a booking from WAITING_FOR_PICKUP to EN_ROUTE and adds
// its seats to the bus's on-board counter. AvailableSeats is untouched: the
// seats were already debited at reservation time.
func (s *AllocatorService) Pickup(ctx context.Context, bookingID string) error {
	if bookingID == "" {
		return ErrInvalidBookingID
	}

	var booking *domain.Booking
	var entry *domain.AvailableBus

	err := s.txm.InTx(ctx, func(tx repository.Tx) error {
		var err error
		booking, err = tx.Bookings().GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}

		if booking.Status != domain.BookingStatusWaitingPickup {
			return ErrInvalidTransition
		}

		entry, err = tx.Availability().GetByBusIDForUpdate(ctx, booking.BusID)
		if err != nil {
			return err
		}

		now := time.Now()
		booking.Status = domain.BookingStatusEnRoute
		booking.PickupTime = now
		booking.UpdatedAt = now
		if err := tx.Bookings().Update(ctx, booking); err != nil {
			return err
		}

		entry.PassengersOnBoard += booking.Seats
		return tx.Availability().UpdatePassengers(ctx, entry.BusID, entry.PassengersOnBoard)
	})
	if err != nil {
		return err
	}

	s.publishEntry(ctx, entry)
	if s.notifier != nil {
		_ = s.notifier.NotifyBookingPickedUp(ctx, booking)
	}
	return nil
}

// Dropoff transitions a booking from EN_ROUTE to COMPLETED and removes its
// seats from the on-board counter, returning it to the pre-pickup value.
func (s *AllocatorService) Dropoff(ctx context.Context, bookingID string) error {
	if bookingID == "" {
		return ErrInvalidBookingID
	}

	var booking *domain.Booking
	var entry *domain.AvailableBus

	err := s.txm.InTx(ctx, func(tx repository.Tx) error {
		var err error
		booking, err = tx.Bookings().GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}

		if booking.Status != domain.BookingStatusEnRoute {
			return ErrInvalidTransition
		}

		entry, err = tx.Availability().GetByBusIDForUpdate(ctx, booking.BusID)
		if err != nil {
			return err
		}

		now := time.Now()
		booking.Status = domain.BookingStatusCompleted
		booking.DropoffTime = now
		booking.UpdatedAt = now
		if err := tx.Bookings().Update(ctx, booking); err != nil {
			return err
		}

		entry.PassengersOnBoard -= booking.Seats
		return tx.Availability().UpdatePassengers(ctx, entry.BusID, entry.PassengersOnBoard)
	})
	if err != nil {
		return err
	}

	s.publishEntry(ctx, entry)
	if s.notifier != nil {
		_ = s.notifier.NotifyBookingCompleted(ctx, booking)
	}
	return nil
}

func (s *AllocatorService) validateReserve(req ReserveRequest) error {
	if req.BusID == "" {
		return ErrInvalidBusID
	}
	if req.ClientID == "" {
		return ErrInvalidClientID
	}
	if req.Seats < 1 {
		return ErrInvalidSeatCount
	}
	return nil
}

// publishEntry pushes the entry's current counters to route subscribers and
// drops the stale cached copy. Both are best effort: the database commit
// already happened.
func (s *AllocatorService) publishEntry(ctx context.Context, entry *domain.AvailableBus) {
	if entry == nil {
		return
	}
	if s.stream != nil {
		_ = s.stream.Publish(ctx, redis.AvailabilityEvent{
			Type:              redis.EventEntryUpdated,
			BusID:             entry.BusID,
			RouteID:           entry.RouteID,
			AvailableSeats:    entry.AvailableSeats,
			PassengersOnBoard: entry.PassengersOnBoard,
		})
	}
	if s.cache != nil {
		_ = s.cache.InvalidateEntry(ctx, entry.BusID)
	}
}
