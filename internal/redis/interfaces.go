package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the distributed lock contract.
// This interface allows for testing with mock implementations.
type LockStoreInterface interface {
	AcquireBusLock(ctx context.Context, busID string, ttl time.Duration) (bool, error)
	ReleaseBusLock(ctx context.Context, busID string) error
}

// StreamInterface defines the availability event feed contract.
type StreamInterface interface {
	Publish(ctx context.Context, event AvailabilityEvent) error
	Subscribe(ctx context.Context, routeID string) (AvailabilitySubscription, error)
}

// CacheStoreInterface defines the availability entry cache contract.
type CacheStoreInterface interface {
	GetEntry(ctx context.Context, busID string) (*CachedEntry, error)
	SetEntry(ctx context.Context, entry *CachedEntry) error
	SetEntriesBatch(ctx context.Context, entries []*CachedEntry) error
	InvalidateEntry(ctx context.Context, busID string) error
}

// Ensure implementations satisfy the interfaces.
var (
	_ LockStoreInterface  = (*LockStore)(nil)
	_ StreamInterface     = (*StreamStore)(nil)
	_ CacheStoreInterface = (*CacheStore)(nil)
)
