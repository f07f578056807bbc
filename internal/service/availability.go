package service

import (
	"context"

	"transit/internal/domain"
	"transit/internal/redis"
	"transit/internal/repository"
)

// AvailabilityService answers "which buses currently serve route R with at
// least one seat". It owns no state: everything is a filtered read of the
// availability projection, with a short-lived redis cache on the hot paths
// and a pub/sub feed for push delivery.
type AvailabilityService struct {
	availRepo repository.AvailabilityRepository
	cache     redis.CacheStoreInterface
	stream    redis.StreamInterface
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(
	availRepo repository.AvailabilityRepository,
	cache redis.CacheStoreInterface,
	stream redis.StreamInterface,
) *AvailabilityService {
	return &AvailabilityService{
		availRepo: availRepo,
		cache:     cache,
		stream:    stream,
	}
}

// ByRoute returns the entries serving a route with seats remaining.
func (s *AvailabilityService) ByRoute(ctx context.Context, routeID string) ([]*domain.AvailableBus, error) {
	if routeID == "" {
		return nil, ErrInvalidRouteID
	}

	entries, err := s.availRepo.GetByRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}

	s.cacheEntriesAsync(entries)
	return entries, nil
}

// ByBus returns the entry for one bus, trying the cache first.
func (s *AvailabilityService) ByBus(ctx context.Context, busID string) (*domain.AvailableBus, error) {
	if busID == "" {
		return nil, ErrInvalidBusID
	}

	if s.cache != nil {
		cached, err := s.cache.GetEntry(ctx, busID)
		if err == nil && cached != nil {
			return cachedToEntry(cached), nil
		}
	}

	entry, err := s.availRepo.GetByBusID(ctx, busID)
	if err != nil {
		return nil, err
	}

	s.cacheEntriesAsync([]*domain.AvailableBus{entry})
	return entry, nil
}

// ByOwner returns the active entries for an owner's buses.
func (s *AvailabilityService) ByOwner(ctx context.Context, ownerID string) ([]*domain.AvailableBus, error) {
	if ownerID == "" {
		return nil, ErrInvalidClientID
	}
	return s.availRepo.GetByOwner(ctx, ownerID)
}

// Subscribe opens a push feed of availability changes on one route. The
// caller owns the returned handle and must Close it when the consuming view
// goes away; exactly one subscription per (consumer, route) at a time.
func (s *AvailabilityService) Subscribe(ctx context.Context, routeID string) (redis.AvailabilitySubscription, error) {
	if routeID == "" {
		return nil, ErrInvalidRouteID
	}
	return s.stream.Subscribe(ctx, routeID)
}

// cacheEntriesAsync caches entries fire-and-forget.
func (s *AvailabilityService) cacheEntriesAsync(entries []*domain.AvailableBus) {
	if s.cache == nil || len(entries) == 0 {
		return
	}
	cached := make([]*redis.CachedEntry, 0, len(entries))
	for _, entry := range entries {
		cached = append(cached, entryToCached(entry))
	}
	go func() {
		_ = s.cache.SetEntriesBatch(context.Background(), cached)
	}()
}

func entryToCached(entry *domain.AvailableBus) *redis.CachedEntry {
	return &redis.CachedEntry{
		BusID:             entry.BusID,
		DriverID:          entry.DriverID,
		DriverName:        entry.DriverName,
		LicensePlate:      entry.LicensePlate,
		Capacity:          entry.Capacity,
		Type:              string(entry.Type),
		OwnerID:           entry.OwnerID,
		RouteID:           entry.RouteID,
		PassengersOnBoard: entry.PassengersOnBoard,
		AvailableSeats:    entry.AvailableSeats,
	}
}

func cachedToEntry(cached *redis.CachedEntry) *domain.AvailableBus {
	return &domain.AvailableBus{
		BusID:             cached.BusID,
		DriverID:          cached.DriverID,
		DriverName:        cached.DriverName,
		LicensePlate:      cached.LicensePlate,
		Capacity:          cached.Capacity,
		Type:              domain.BusType(cached.Type),
		OwnerID:           cached.OwnerID,
		RouteID:           cached.RouteID,
		PassengersOnBoard: cached.PassengersOnBoard,
		AvailableSeats:    cached.AvailableSeats,
	}
}
