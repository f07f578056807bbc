package service

import (
	"context"
	"time"

	"transit/internal/domain"
	"transit/internal/redis"
	"transit/internal/repository"
)

// activationLockTTL bounds how long a crashed activation attempt can keep a
// bus locked.
const activationLockTTL = 10 * time.Second

// ActivationService handles the bus lifecycle state machine: a driver binds
// to one inactive bus of their company and one route, which opens the bus for
// bookings; deactivation closes it again.
type ActivationService struct {
	txm       repository.TxManager
	routeRepo repository.RouteRepository
	lockStore redis.LockStoreInterface
	stream    redis.StreamInterface
	cache     redis.CacheStoreInterface
	notifier  *NotificationService
}

// NewActivationService creates a new ActivationService.
func NewActivationService(
	txm repository.TxManager,
	routeRepo repository.RouteRepository,
	lockStore redis.LockStoreInterface,
	stream redis.StreamInterface,
	cache redis.CacheStoreInterface,
	notifier *NotificationService,
) *ActivationService {
	return &ActivationService{
		txm:       txm,
		routeRepo: routeRepo,
		lockStore: lockStore,
		stream:    stream,
		cache:     cache,
		notifier:  notifier,
	}
}

// Activate marks the bus and driver active, binds them to the route and
// seeds the availability entry with the full capacity. The locked read of
// the bus row inside the transaction is the serialization point against a
// concurrent second driver; the redis lock only short-circuits the obvious
// races before a transaction is opened.
func (s *ActivationService) Activate(ctx context.Context, driverID, busID, routeID string) (*domain.AvailableBus, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if busID == "" {
		return nil, ErrInvalidBusID
	}
	if routeID == "" {
		return nil, ErrInvalidRouteID
	}

	// Routes are immutable reference data, safe to check outside the tx.
	if _, err := s.routeRepo.GetByID(ctx, routeID); err != nil {
		return nil, err
	}

	if s.lockStore != nil {
		locked, err := s.lockStore.AcquireBusLock(ctx, busID, activationLockTTL)
		if err != nil {
			return nil, err
		}
		if !locked {
			return nil, ErrActivationInProgress
		}
		defer s.lockStore.ReleaseBusLock(ctx, busID)
	}

	var entry *domain.AvailableBus

	err := s.txm.InTx(ctx, func(tx repository.Tx) error {
		bus, err := tx.Buses().GetByIDForUpdate(ctx, busID)
		if err != nil {
			return err
		}
		if bus.Active {
			return ErrBusAlreadyActive
		}

		driver, err := tx.Drivers().GetByIDForUpdate(ctx, driverID)
		if err != nil {
			return err
		}
		if driver.Active {
			return ErrDriverAlreadyActive
		}
		if driver.CompanyID != bus.CompanyID {
			return ErrBusNotOwned
		}

		if err := tx.Buses().SetActive(ctx, busID, driverID, routeID); err != nil {
			return err
		}
		if err := tx.Drivers().SetActive(ctx, driverID, busID, routeID); err != nil {
			return err
		}

		entry = &domain.AvailableBus{
			BusID:             bus.ID,
			DriverID:          driver.ID,
			DriverName:        driver.Name,
			LicensePlate:      bus.LicensePlate,
			Capacity:          bus.Capacity,
			Type:              bus.Type,
			OwnerID:           bus.OwnerID,
			RouteID:           routeID,
			PassengersOnBoard: 0,
			AvailableSeats:    bus.Capacity,
			ActivatedAt:       time.Now(),
		}
		return tx.Availability().Create(ctx, entry)
	})
	if err != nil {
		return nil, err
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
	if s.notifier != nil {
		_ = s.notifier.NotifyBusActivated(ctx, entry)
	}

	return entry, nil
}

// Deactivate clears the activation fields on both bus and driver, resolves
// the in-flight bookings and deletes the availability entry, all in one
// transaction. Bookings still waiting for pickup are cancelled; bookings en
// route are completed with the deactivation time as dropoff, so no booking is
// left in a non-terminal state.
func (s *ActivationService) Deactivate(ctx context.Context, driverID string) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	var entry *domain.AvailableBus
	var resolved []*domain.Booking

	err := s.txm.InTx(ctx, func(tx repository.Tx) error {
		driver, err := tx.Drivers().GetByIDForUpdate(ctx, driverID)
		if err != nil {
			return err
		}
		if !driver.Active || driver.CurrentBus == "" {
			return ErrDriverNotActive
		}
		busID := driver.CurrentBus

		if _, err := tx.Buses().GetByIDForUpdate(ctx, busID); err != nil {
			return err
		}
		entry, err = tx.Availability().GetByBusIDForUpdate(ctx, busID)
		if err != nil {
			return err
		}

		bookings, err := tx.Bookings().GetActiveByBus(ctx, busID)
		if err != nil {
			return err
		}

		now := time.Now()
		for _, booking := range bookings {
			switch booking.Status {
			case domain.BookingStatusWaitingPickup:
				booking.Status = domain.BookingStatusCancelled
			case domain.BookingStatusEnRoute:
				booking.Status = domain.BookingStatusCompleted
				booking.DropoffTime = now
			}
			booking.UpdatedAt = now
			if err := tx.Bookings().Update(ctx, booking); err != nil {
				return err
			}
			resolved = append(resolved, booking)
		}

		if err := tx.Buses().ClearActive(ctx, busID); err != nil {
			return err
		}
		if err := tx.Drivers().ClearActive(ctx, driverID); err != nil {
			return err
		}
		return tx.Availability().Delete(ctx, busID)
	})
	if err != nil {
		return err
	}

	if s.stream != nil {
		_ = s.stream.Publish(ctx, redis.AvailabilityEvent{
			Type:    redis.EventEntryRemoved,
			BusID:   entry.BusID,
			RouteID: entry.RouteID,
		})
	}
	if s.cache != nil {
		_ = s.cache.InvalidateEntry(ctx, entry.BusID)
	}
	if s.notifier != nil {
		_ = s.notifier.NotifyBusDeactivated(ctx, entry, len(resolved))
	}

	return nil
}
