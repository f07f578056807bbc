package tests

import (
	"context"
	"errors"
	"testing"

	"transit/internal/domain"
	"transit/internal/service"
)

// ──────────────────────────────────────────────
// 9. ACTIVITY FEED
// ──────────────────────────────────────────────

func newFeedFixture() (*service.ActivationService, *service.AllocatorService, *MemStore, *MockRouteRepository, *MockNotificationRepository) {
	store := NewMemStore()
	routeRepo := NewMockRouteRepository()
	notifRepo := NewMockNotificationRepository()
	notifier := service.NewNotificationService(notifRepo)
	stream := NewMockStreamStore()
	cache := NewMockCacheStore()
	activation := service.NewActivationService(store, routeRepo, NewMockLockStore(), stream, cache, notifier)
	allocator := service.NewAllocatorService(store, stream, cache, notifier)
	return activation, allocator, store, routeRepo, notifRepo
}

func TestActivationCycle_WritesOwnerFeed(t *testing.T) {
	t.Parallel()

	activation, _, store, routeRepo, notifRepo := newFeedFixture()
	seedFleet(store, routeRepo)
	ctx := context.Background()

	if _, err := activation.Activate(ctx, "driver-1", "bus-1", "route-1"); err != nil {
		t.Fatalf("activation failed: %v", err)
	}

	entry := notifRepo.LastFor("owner-1")
	if entry == nil {
		t.Fatal("expected an activation entry on the owner's feed")
	}
	if entry.Type != domain.NotificationBusActivated {
		t.Errorf("expected %s, got %s", domain.NotificationBusActivated, entry.Type)
	}
	if entry.Data["bus_id"] != "bus-1" {
		t.Errorf("entry should reference the bus, got %v", entry.Data["bus_id"])
	}

	if err := activation.Deactivate(ctx, "driver-1"); err != nil {
		t.Fatalf("deactivation failed: %v", err)
	}

	if got := notifRepo.LastFor("owner-1").Type; got != domain.NotificationBusDeactivated {
		t.Errorf("expected %s after deactivation, got %s", domain.NotificationBusDeactivated, got)
	}
	if got := notifRepo.CountFor("owner-1"); got != 2 {
		t.Errorf("expected 2 feed entries for the owner, got %d", got)
	}
}

func TestReserve_WritesOwnerFeed(t *testing.T) {
	t.Parallel()

	_, allocator, store, _, notifRepo := newFeedFixture()
	seedActiveBus(store, "bus-1", 10)

	booking, err := allocator.Reserve(context.Background(), service.ReserveRequest{
		BusID: "bus-1", ClientID: "client-1", Seats: 2,
	})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	entry := notifRepo.LastFor("owner-1")
	if entry == nil {
		t.Fatal("expected a booking entry on the owner's feed")
	}
	if entry.Type != domain.NotificationBookingCreated {
		t.Errorf("expected %s, got %s", domain.NotificationBookingCreated, entry.Type)
	}
	if entry.Data["booking_id"] != booking.ID {
		t.Errorf("entry should reference the booking, got %v", entry.Data["booking_id"])
	}
	if entry.ID == "" || entry.CreatedAt.IsZero() {
		t.Error("feed entries must carry an id and a timestamp")
	}
}

func TestBookingLifecycle_WritesClientFeed(t *testing.T) {
	t.Parallel()

	_, allocator, store, _, notifRepo := newFeedFixture()
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
	if got := notifRepo.LastFor("client-1").Type; got != domain.NotificationBookingPickedUp {
		t.Errorf("expected %s after pickup, got %s", domain.NotificationBookingPickedUp, got)
	}

	if err := allocator.Dropoff(ctx, booking.ID); err != nil {
		t.Fatalf("dropoff failed: %v", err)
	}
	if got := notifRepo.LastFor("client-1").Type; got != domain.NotificationBookingCompleted {
		t.Errorf("expected %s after dropoff, got %s", domain.NotificationBookingCompleted, got)
	}
}

func TestFeed_ReturnsRecipientEntriesNewestFirst(t *testing.T) {
	t.Parallel()

	notifRepo := NewMockNotificationRepository()
	notifier := service.NewNotificationService(notifRepo)
	ctx := context.Background()

	first := &domain.Booking{ID: "booking-1", BusID: "bus-1", Seats: 1, LicensePlate: "KBX 123A", RouteID: "route-1"}
	second := &domain.Booking{ID: "booking-2", BusID: "bus-1", Seats: 3, LicensePlate: "KBX 123A", RouteID: "route-1"}
	if err := notifier.NotifyBookingCreated(ctx, first, "owner-1"); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if err := notifier.NotifyBookingCreated(ctx, second, "owner-1"); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if err := notifier.NotifyBookingCreated(ctx, first, "owner-2"); err != nil {
		t.Fatalf("notify failed: %v", err)
	}

	feed, err := notifier.Feed(ctx, "owner-1")
	if err != nil {
		t.Fatalf("feed read failed: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("expected 2 entries for owner-1, got %d", len(feed))
	}
	if feed[0].Data["booking_id"] != "booking-2" {
		t.Errorf("expected the newest entry first, got %v", feed[0].Data["booking_id"])
	}
}

func TestFeed_EmptyRecipient_Rejected(t *testing.T) {
	t.Parallel()

	notifier := service.NewNotificationService(NewMockNotificationRepository())

	_, err := notifier.Feed(context.Background(), "")
	if !errors.Is(err, service.ErrInvalidRecipientID) {
		t.Errorf("expected ErrInvalidRecipientID, got %v", err)
	}
}

func TestNotify_BrokenFeedStoreSurfaces(t *testing.T) {
	t.Parallel()

	notifRepo := NewMockNotificationRepository()
	notifRepo.CreateError = ErrMockTimeout
	notifier := service.NewNotificationService(notifRepo)

	err := notifier.NotifyBookingCompleted(context.Background(), &domain.Booking{ID: "booking-1", ClientID: "client-1"})
	if !errors.Is(err, ErrMockTimeout) {
		t.Errorf("expected the store failure to surface, got %v", err)
	}
}
