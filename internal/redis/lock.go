package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireBusLock attempts to acquire the activation lock for the given bus.
// Returns true if the lock was acquired, false if already held. The lock only
// narrows the double-activation window; the database transaction over the
// bus row remains the serialization point.
func (s *LockStore) AcquireBusLock(ctx context.Context, busID string, ttl time.Duration) (bool, error) {
	key := busLockKey(busID)
	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// ReleaseBusLock releases the activation lock for a bus.
func (s *LockStore) ReleaseBusLock(ctx context.Context, busID string) error {
	return s.client.Del(ctx, busLockKey(busID)).Err()
}

func busLockKey(busID string) string {
	return fmt.Sprintf("lock:bus:%s", busID)
}
