package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"transit/internal/domain"
	"transit/internal/repository"
	"transit/internal/service"
)

// ──────────────────────────────────────────────
// 4. DRIVER ACTIVATION
// ──────────────────────────────────────────────

func newActivationFixture() (*service.ActivationService, *MemStore, *MockRouteRepository, *MockLockStore, *MockStreamStore) {
	store := NewMemStore()
	routeRepo := NewMockRouteRepository()
	lockStore := NewMockLockStore()
	stream := NewMockStreamStore()
	cache := NewMockCacheStore()
	activation := service.NewActivationService(store, routeRepo, lockStore, stream, cache, service.NewNotificationService(NewMockNotificationRepository()))
	return activation, store, routeRepo, lockStore, stream
}

func seedFleet(store *MemStore, routeRepo *MockRouteRepository) {
	routeRepo.AddRoute(&domain.Route{ID: "route-1", Name: "CBD - Westlands", Stops: []string{"CBD", "Museum Hill", "Westlands"}})
	store.AddBus(&domain.Bus{
		ID:           "bus-1",
		LicensePlate: "KBX 123A",
		Capacity:     14,
		Type:         domain.BusTypeMinibus,
		CompanyID:    "company-1",
		OwnerID:      "owner-1",
	})
	store.AddDriver(&domain.Driver{
		ID:        "driver-1",
		Name:      "Amara",
		CompanyID: "company-1",
	})
}

func TestActivate_SeedsEntryWithFullCapacity(t *testing.T) {
	t.Parallel()

	activation, store, routeRepo, _, stream := newActivationFixture()
	seedFleet(store, routeRepo)

	entry, err := activation.Activate(context.Background(), "driver-1", "bus-1", "route-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.AvailableSeats != 14 {
		t.Errorf("expected entry seeded with full capacity 14, got %d", entry.AvailableSeats)
	}
	if entry.PassengersOnBoard != 0 {
		t.Errorf("expected 0 passengers at activation, got %d", entry.PassengersOnBoard)
	}
	if entry.DriverName != "Amara" || entry.LicensePlate != "KBX 123A" {
		t.Error("entry should denormalize driver and bus identity")
	}
	if entry.ActivatedAt.IsZero() {
		t.Error("entry should record activation time")
	}

	bus := store.GetBus("bus-1")
	if !bus.Active || bus.CurrentDriver != "driver-1" || bus.CurrentRoute != "route-1" {
		t.Errorf("bus not bound: %+v", bus)
	}
	driver := store.GetDriver("driver-1")
	if !driver.Active || driver.CurrentBus != "bus-1" || driver.CurrentRoute != "route-1" {
		t.Errorf("driver not bound: %+v", driver)
	}

	event := stream.LastEvent()
	if event == nil || event.AvailableSeats != 14 {
		t.Errorf("expected activation event with full capacity, got %+v", event)
	}
}

func TestActivate_UnknownRoute_Rejected(t *testing.T) {
	t.Parallel()

	activation, store, routeRepo, _, _ := newActivationFixture()
	seedFleet(store, routeRepo)

	_, err := activation.Activate(context.Background(), "driver-1", "bus-1", "no-such-route")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if store.GetBus("bus-1").Active {
		t.Error("bus must stay inactive when the route check fails")
	}
}

func TestActivate_BusAlreadyActive_Rejected(t *testing.T) {
	t.Parallel()

	activation, store, routeRepo, _, _ := newActivationFixture()
	seedFleet(store, routeRepo)
	store.AddDriver(&domain.Driver{ID: "driver-2", Name: "Kemi", CompanyID: "company-1"})

	if _, err := activation.Activate(context.Background(), "driver-1", "bus-1", "route-1"); err != nil {
		t.Fatalf("first activation failed: %v", err)
	}

	_, err := activation.Activate(context.Background(), "driver-2", "bus-1", "route-1")
	if !errors.Is(err, service.ErrBusAlreadyActive) {
		t.Errorf("expected ErrBusAlreadyActive, got %v", err)
	}
	if store.GetDriver("driver-2").Active {
		t.Error("second driver must stay inactive")
	}
}

func TestActivate_DriverAlreadyActive_Rejected(t *testing.T) {
	t.Parallel()

	activation, store, routeRepo, _, _ := newActivationFixture()
	seedFleet(store, routeRepo)
	store.AddBus(&domain.Bus{
		ID: "bus-2", LicensePlate: "KCD 456B", Capacity: 33,
		Type: domain.BusTypeCoach, CompanyID: "company-1", OwnerID: "owner-1",
	})

	if _, err := activation.Activate(context.Background(), "driver-1", "bus-1", "route-1"); err != nil {
		t.Fatalf("first activation failed: %v", err)
	}

	_, err := activation.Activate(context.Background(), "driver-1", "bus-2", "route-1")
	if !errors.Is(err, service.ErrDriverAlreadyActive) {
		t.Errorf("expected ErrDriverAlreadyActive, got %v", err)
	}
	if store.GetBus("bus-2").Active {
		t.Error("second bus must stay inactive")
	}
}

func TestActivate_ForeignCompanyBus_Rejected(t *testing.T) {
	t.Parallel()

	activation, store, routeRepo, _, _ := newActivationFixture()
	seedFleet(store, routeRepo)
	store.AddDriver(&domain.Driver{ID: "driver-x", Name: "Femi", CompanyID: "rival-company"})

	_, err := activation.Activate(context.Background(), "driver-x", "bus-1", "route-1")
	if !errors.Is(err, service.ErrBusNotOwned) {
		t.Errorf("expected ErrBusNotOwned, got %v", err)
	}
	if store.GetEntry("bus-1") != nil {
		t.Error("no availability entry may exist after a rejected activation")
	}
}

func TestActivate_LockHeld_Rejected(t *testing.T) {
	t.Parallel()

	activation, store, routeRepo, lockStore, _ := newActivationFixture()
	seedFleet(store, routeRepo)
	lockStore.ForceAcquireFailure = true

	_, err := activation.Activate(context.Background(), "driver-1", "bus-1", "route-1")
	if !errors.Is(err, service.ErrActivationInProgress) {
		t.Errorf("expected ErrActivationInProgress, got %v", err)
	}
	if store.TxCallCount != 0 {
		t.Error("lock rejection must happen before any transaction is opened")
	}
}

func TestActivate_ConcurrentSameBus_ExactlyOneWins(t *testing.T) {
	t.Parallel()

	activation, store, routeRepo, _, _ := newActivationFixture()
	seedFleet(store, routeRepo)
	store.AddDriver(&domain.Driver{ID: "driver-2", Name: "Kemi", CompanyID: "company-1"})

	var wg sync.WaitGroup
	var succeeded int32
	for _, driverID := range []string{"driver-1", "driver-2"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := activation.Activate(context.Background(), id, "bus-1", "route-1"); err == nil {
				atomic.AddInt32(&succeeded, 1)
			}
		}(driverID)
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("expected exactly one activation to win, got %d", succeeded)
	}

	bus := store.GetBus("bus-1")
	if !bus.Active {
		t.Fatal("bus should be active after the winning activation")
	}
	winner := store.GetDriver(bus.CurrentDriver)
	if winner == nil || !winner.Active || winner.CurrentBus != "bus-1" {
		t.Errorf("winning driver not bound: %+v", winner)
	}
}

// ──────────────────────────────────────────────
// 5. DRIVER DEACTIVATION
// ──────────────────────────────────────────────

func activateForTest(t *testing.T, activation *service.ActivationService) {
	t.Helper()
	if _, err := activation.Activate(context.Background(), "driver-1", "bus-1", "route-1"); err != nil {
		t.Fatalf("setup activation failed: %v", err)
	}
}

func TestDeactivate_UnbindsAndRemovesEntry(t *testing.T) {
	t.Parallel()

	activation, store, routeRepo, _, stream := newActivationFixture()
	seedFleet(store, routeRepo)
	activateForTest(t, activation)

	if err := activation.Deactivate(context.Background(), "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.GetEntry("bus-1") != nil {
		t.Error("availability entry must be deleted on deactivation")
	}
	bus := store.GetBus("bus-1")
	if bus.Active || bus.CurrentDriver != "" || bus.CurrentRoute != "" {
		t.Errorf("bus not unbound: %+v", bus)
	}
	driver := store.GetDriver("driver-1")
	if driver.Active || driver.CurrentBus != "" || driver.CurrentRoute != "" {
		t.Errorf("driver not unbound: %+v", driver)
	}

	event := stream.LastEvent()
	if event == nil || event.BusID != "bus-1" {
		t.Fatalf("expected removal event, got %+v", event)
	}
}

func TestDeactivate_ResolvesInFlightBookings(t *testing.T) {
	t.Parallel()

	activation, store, routeRepo, _, _ := newActivationFixture()
	seedFleet(store, routeRepo)
	activateForTest(t, activation)

	seedBooking(store, "waiting-1", "bus-1", 2, domain.BookingStatusWaitingPickup)
	seedBooking(store, "waiting-2", "bus-1", 1, domain.BookingStatusWaitingPickup)
	seedBooking(store, "onboard-1", "bus-1", 3, domain.BookingStatusEnRoute)
	seedBooking(store, "done-1", "bus-1", 2, domain.BookingStatusCompleted)

	before := time.Now()
	if err := activation.Deactivate(context.Background(), "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Bookings still waiting are cancelled.
	for _, id := range []string{"waiting-1", "waiting-2"} {
		if got := store.GetBooking(id).Status; got != domain.BookingStatusCancelled {
			t.Errorf("booking %s: expected CANCELLED, got %s", id, got)
		}
	}

	// Passengers already on board are dropped off at deactivation time.
	onboard := store.GetBooking("onboard-1")
	if onboard.Status != domain.BookingStatusCompleted {
		t.Errorf("expected en-route booking COMPLETED, got %s", onboard.Status)
	}
	if onboard.DropoffTime.Before(before) {
		t.Error("forced completion must stamp the deactivation time as dropoff")
	}

	// Terminal bookings are left alone.
	if got := store.GetBooking("done-1"); got.UpdatedAt.After(before) {
		t.Error("already-completed booking must not be touched")
	}

	if active := store.BookingsByStatus(domain.BookingStatusEnRoute); len(active) != 0 {
		t.Errorf("no booking may stay non-terminal, found %d en route", len(active))
	}
	if waiting := store.BookingsByStatus(domain.BookingStatusWaitingPickup); len(waiting) != 0 {
		t.Errorf("no booking may stay non-terminal, found %d waiting", len(waiting))
	}
}

func TestDeactivate_InactiveDriver_Rejected(t *testing.T) {
	t.Parallel()

	activation, store, routeRepo, _, _ := newActivationFixture()
	seedFleet(store, routeRepo)

	err := activation.Deactivate(context.Background(), "driver-1")
	if !errors.Is(err, service.ErrDriverNotActive) {
		t.Errorf("expected ErrDriverNotActive, got %v", err)
	}
}

func TestDeactivate_UnknownDriver_NotFound(t *testing.T) {
	t.Parallel()

	activation, _, _, _, _ := newActivationFixture()

	err := activation.Deactivate(context.Background(), "ghost-driver")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeactivate_MissingEntry_RollsBack(t *testing.T) {
	t.Parallel()

	// An active driver whose availability entry has vanished is an
	// inconsistent store; the transaction must fail without unbinding
	// anything.
	activation, store, routeRepo, _, _ := newActivationFixture()
	seedFleet(store, routeRepo)
	activateForTest(t, activation)

	store.mu.Lock()
	delete(store.availability, "bus-1")
	store.mu.Unlock()

	err := activation.Deactivate(context.Background(), "driver-1")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if !store.GetDriver("driver-1").Active {
		t.Error("driver must stay active when deactivation rolls back")
	}
	if !store.GetBus("bus-1").Active {
		t.Error("bus must stay active when deactivation rolls back")
	}
}

func TestActivateDeactivateCycle_BusCanBeReactivated(t *testing.T) {
	t.Parallel()

	activation, store, routeRepo, _, _ := newActivationFixture()
	seedFleet(store, routeRepo)
	store.AddDriver(&domain.Driver{ID: "driver-2", Name: "Kemi", CompanyID: "company-1"})

	ctx := context.Background()
	if _, err := activation.Activate(ctx, "driver-1", "bus-1", "route-1"); err != nil {
		t.Fatalf("first activation failed: %v", err)
	}
	if err := activation.Deactivate(ctx, "driver-1"); err != nil {
		t.Fatalf("deactivation failed: %v", err)
	}

	entry, err := activation.Activate(ctx, "driver-2", "bus-1", "route-1")
	if err != nil {
		t.Fatalf("reactivation failed: %v", err)
	}
	if entry.DriverID != "driver-2" {
		t.Errorf("expected entry bound to driver-2, got %s", entry.DriverID)
	}
	if entry.AvailableSeats != 14 {
		t.Errorf("reactivation must reseed full capacity, got %d", entry.AvailableSeats)
	}
}
