package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore caches availability entries in Redis for the read path. Entries
// are invalidated by every seat-allocator and activation write; the database
// row stays authoritative.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// EntryCacheTTL bounds staleness when an invalidation is missed. Seat counts
// change on every reservation, so keep it short.
const EntryCacheTTL = 5 * time.Second

const entryCachePrefix = "cache:availablebus:"

// CachedEntry represents a cached availability entry.
type CachedEntry struct {
	BusID             string `json:"bus_id"`
	DriverID          string `json:"driver_id"`
	DriverName        string `json:"driver_name"`
	LicensePlate      string `json:"license_plate"`
	Capacity          int    `json:"capacity"`
	Type              string `json:"type"`
	OwnerID           string `json:"owner_id"`
	RouteID           string `json:"route_id"`
	PassengersOnBoard int    `json:"passengers_on_board"`
	AvailableSeats    int    `json:"available_seats"`
}

// GetEntry retrieves an availability entry from cache. A nil entry with nil
// error is a cache miss.
func (s *CacheStore) GetEntry(ctx context.Context, busID string) (*CachedEntry, error) {
	data, err := s.client.Get(ctx, entryCachePrefix+busID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var entry CachedEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// SetEntry stores an availability entry in cache.
func (s *CacheStore) SetEntry(ctx context.Context, entry *CachedEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, entryCachePrefix+entry.BusID, data, EntryCacheTTL).Err()
}

// SetEntriesBatch stores multiple entries using a pipeline.
func (s *CacheStore) SetEntriesBatch(ctx context.Context, entries []*CachedEntry) error {
	if len(entries) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			continue
		}
		pipe.Set(ctx, entryCachePrefix+entry.BusID, data, EntryCacheTTL)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// InvalidateEntry removes an availability entry from cache.
func (s *CacheStore) InvalidateEntry(ctx context.Context, busID string) error {
	return s.client.Del(ctx, entryCachePrefix+busID).Err()
}
