package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"transit/internal/domain"
	"transit/internal/repository"
	"transit/internal/service"
)

// ──────────────────────────────────────────────
// 3. BOOKING LIFECYCLE
// ──────────────────────────────────────────────

func seedBooking(store *MemStore, id, busID string, seats int, status domain.BookingStatus) {
	now := time.Now()
	store.AddBooking(&domain.Booking{
		ID:        id,
		ClientID:  "client-1",
		BusID:     busID,
		RouteID:   "route-1",
		Seats:     seats,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func TestPickup_MovesBookingEnRouteAndBoardsPassengers(t *testing.T) {
	t.Parallel()

	allocator, store, _, _ := newAllocatorFixture()
	store.AddEntry(&domain.AvailableBus{
		BusID: "bus-1", RouteID: "route-1", OwnerID: "owner-1",
		Capacity: 10, AvailableSeats: 7, PassengersOnBoard: 0,
	})
	seedBooking(store, "booking-1", "bus-1", 3, domain.BookingStatusWaitingPickup)

	if err := allocator.Pickup(context.Background(), "booking-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	booking := store.GetBooking("booking-1")
	if booking.Status != domain.BookingStatusEnRoute {
		t.Errorf("expected status %s, got %s", domain.BookingStatusEnRoute, booking.Status)
	}
	if booking.PickupTime.IsZero() {
		t.Error("pickup must record the pickup time")
	}

	entry := store.GetEntry("bus-1")
	if entry.PassengersOnBoard != 3 {
		t.Errorf("expected 3 passengers on board, got %d", entry.PassengersOnBoard)
	}
	if entry.AvailableSeats != 7 {
		t.Errorf("pickup must not touch the seat counter, got %d", entry.AvailableSeats)
	}
}

func TestDropoff_CompletesBookingAndUnboardsPassengers(t *testing.T) {
	t.Parallel()

	allocator, store, _, _ := newAllocatorFixture()
	store.AddEntry(&domain.AvailableBus{
		BusID: "bus-1", RouteID: "route-1", OwnerID: "owner-1",
		Capacity: 10, AvailableSeats: 7, PassengersOnBoard: 3,
	})
	seedBooking(store, "booking-1", "bus-1", 3, domain.BookingStatusEnRoute)

	if err := allocator.Dropoff(context.Background(), "booking-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	booking := store.GetBooking("booking-1")
	if booking.Status != domain.BookingStatusCompleted {
		t.Errorf("expected status %s, got %s", domain.BookingStatusCompleted, booking.Status)
	}
	if booking.DropoffTime.IsZero() {
		t.Error("dropoff must record the dropoff time")
	}

	entry := store.GetEntry("bus-1")
	if entry.PassengersOnBoard != 0 {
		t.Errorf("expected 0 passengers on board, got %d", entry.PassengersOnBoard)
	}
	if entry.AvailableSeats != 7 {
		t.Errorf("dropoff must not touch the seat counter, got %d", entry.AvailableSeats)
	}
}

func TestPickupDropoff_OnBoardCounterIsSymmetric(t *testing.T) {
	t.Parallel()

	allocator, store, _, _ := newAllocatorFixture()
	store.AddEntry(&domain.AvailableBus{
		BusID: "bus-1", RouteID: "route-1", OwnerID: "owner-1",
		Capacity: 12, AvailableSeats: 5, PassengersOnBoard: 0,
	})
	seedBooking(store, "booking-1", "bus-1", 4, domain.BookingStatusWaitingPickup)
	seedBooking(store, "booking-2", "bus-1", 3, domain.BookingStatusWaitingPickup)

	ctx := context.Background()
	if err := allocator.Pickup(ctx, "booking-1"); err != nil {
		t.Fatalf("pickup 1 failed: %v", err)
	}
	if err := allocator.Pickup(ctx, "booking-2"); err != nil {
		t.Fatalf("pickup 2 failed: %v", err)
	}

	if got := store.GetEntry("bus-1").PassengersOnBoard; got != 7 {
		t.Fatalf("expected 7 passengers after both pickups, got %d", got)
	}

	if err := allocator.Dropoff(ctx, "booking-1"); err != nil {
		t.Fatalf("dropoff 1 failed: %v", err)
	}
	if err := allocator.Dropoff(ctx, "booking-2"); err != nil {
		t.Fatalf("dropoff 2 failed: %v", err)
	}

	if got := store.GetEntry("bus-1").PassengersOnBoard; got != 0 {
		t.Errorf("expected on-board counter back at 0, got %d", got)
	}
}

func TestPickup_InvalidTransitions(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		status domain.BookingStatus
	}{
		{"already en route", domain.BookingStatusEnRoute},
		{"already completed", domain.BookingStatusCompleted},
		{"cancelled", domain.BookingStatusCancelled},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			allocator, store, _, _ := newAllocatorFixture()
			store.AddEntry(&domain.AvailableBus{
				BusID: "bus-1", RouteID: "route-1",
				Capacity: 10, AvailableSeats: 5, PassengersOnBoard: 2,
			})
			seedBooking(store, "booking-1", "bus-1", 2, tc.status)

			err := allocator.Pickup(context.Background(), "booking-1")
			if !errors.Is(err, service.ErrInvalidTransition) {
				t.Errorf("expected ErrInvalidTransition, got %v", err)
			}

			// Failed transition must leave the counters alone.
			if got := store.GetEntry("bus-1").PassengersOnBoard; got != 2 {
				t.Errorf("on-board counter changed on failed pickup: %d", got)
			}
		})
	}
}

func TestDropoff_BeforePickup_Rejected(t *testing.T) {
	t.Parallel()

	allocator, store, _, _ := newAllocatorFixture()
	store.AddEntry(&domain.AvailableBus{
		BusID: "bus-1", RouteID: "route-1",
		Capacity: 10, AvailableSeats: 8, PassengersOnBoard: 0,
	})
	seedBooking(store, "booking-1", "bus-1", 2, domain.BookingStatusWaitingPickup)

	err := allocator.Dropoff(context.Background(), "booking-1")
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}

	if got := store.GetBooking("booking-1").Status; got != domain.BookingStatusWaitingPickup {
		t.Errorf("booking status changed on rejected dropoff: %s", got)
	}
}

func TestPickup_UnknownBooking_NotFound(t *testing.T) {
	t.Parallel()

	allocator, _, _, _ := newAllocatorFixture()

	err := allocator.Pickup(context.Background(), "no-such-booking")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPickup_EmptyBookingID_Rejected(t *testing.T) {
	t.Parallel()

	allocator, _, _, _ := newAllocatorFixture()

	if err := allocator.Pickup(context.Background(), ""); !errors.Is(err, service.ErrInvalidBookingID) {
		t.Errorf("expected ErrInvalidBookingID, got %v", err)
	}
	if err := allocator.Dropoff(context.Background(), ""); !errors.Is(err, service.ErrInvalidBookingID) {
		t.Errorf("expected ErrInvalidBookingID, got %v", err)
	}
}

func TestPickup_EntryGone_RollsBackStatusChange(t *testing.T) {
	t.Parallel()

	// Booking exists but the availability entry does not: the transaction
	// must fail as a unit and leave the booking untouched.
	allocator, store, _, _ := newAllocatorFixture()
	seedBooking(store, "booking-1", "bus-gone", 2, domain.BookingStatusWaitingPickup)

	err := allocator.Pickup(context.Background(), "booking-1")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if got := store.GetBooking("booking-1").Status; got != domain.BookingStatusWaitingPickup {
		t.Errorf("booking status must survive the rolled-back pickup, got %s", got)
	}
	if store.TxRollbackCount != 1 {
		t.Errorf("expected 1 rollback, got %d", store.TxRollbackCount)
	}
}

func TestLifecycle_PublishesEventPerTransition(t *testing.T) {
	t.Parallel()

	allocator, store, stream, _ := newAllocatorFixture()
	seedActiveBus(store, "bus-1", 10)

	ctx := context.Background()
	booking, err := allocator.Reserve(ctx, service.ReserveRequest{
		BusID: "bus-1", ClientID: "client-1", Seats: 2,
	})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if err := allocator.Pickup(ctx, booking.ID); err != nil {
		t.Fatalf("pickup failed: %v", err)
	}
	if err := allocator.Dropoff(ctx, booking.ID); err != nil {
		t.Fatalf("dropoff failed: %v", err)
	}

	events := stream.PublishedEvents()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	// Reserve debits seats; pickup and dropoff move only the on-board count.
	if events[0].AvailableSeats != 8 || events[0].PassengersOnBoard != 0 {
		t.Errorf("reserve event wrong: %+v", events[0])
	}
	if events[1].AvailableSeats != 8 || events[1].PassengersOnBoard != 2 {
		t.Errorf("pickup event wrong: %+v", events[1])
	}
	if events[2].AvailableSeats != 8 || events[2].PassengersOnBoard != 0 {
		t.Errorf("dropoff event wrong: %+v", events[2])
	}
}
