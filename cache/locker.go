package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/nuibits/userbase"
)

// Lock attempts to acquire locks for all provided keys using the given TTL
// duration. Unlike the Redis backend, acquisition here is a single critical
// section, the two-step set-then-verify is unnecessary in-process.
func (c *InMemoryCache) Lock(ctx context.Context, duration time.Duration, lockKeys []*userbase.LockKey) (bool, userbase.UUID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, lk := range lockKeys {
		if it, ok := c.get(lk.Key); ok {
			if string(it.data) != lk.LockID.String() {
				id, _ := userbase.ParseUUID(string(it.data))
				return false, id, nil
			}
			continue
		}
		c.set(lk.Key, []byte(lk.LockID.String()), duration)
		lk.IsLockOwner = true
	}
	return true, userbase.NilUUID, nil
}

// IsLocked reports whether all provided lock keys are currently owned by this process.
func (c *InMemoryCache) IsLocked(ctx context.Context, lockKeys []*userbase.LockKey) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := true
	for _, lk := range lockKeys {
		it, ok := c.get(lk.Key)
		if !ok || string(it.data) != lk.LockID.String() {
			lk.IsLockOwner = false
			r = false
			continue
		}
		lk.IsLockOwner = true
	}
	return r, nil
}

// Unlock releases the provided lock keys, deleting only those owned by this process.
func (c *InMemoryCache) Unlock(ctx context.Context, lockKeys []*userbase.LockKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, lk := range lockKeys {
		if !lk.IsLockOwner {
			continue
		}
		delete(c.items, lk.Key)
	}
	return nil
}

// CreateLockKeysForIDs builds lock keys from (name, lockID) tuples, applying the lock namespace prefix.
func (c *InMemoryCache) CreateLockKeysForIDs(keys []userbase.Tuple[string, userbase.UUID]) []*userbase.LockKey {
	lockKeys := make([]*userbase.LockKey, len(keys))
	for i := range keys {
		lockKeys[i] = &userbase.LockKey{
			Key:    c.FormatLockKey(keys[i].First),
			LockID: keys[i].Second,
		}
	}
	return lockKeys
}

// CreateLockKeys creates lock keys using newly generated lock IDs for each provided key name.
func (c *InMemoryCache) CreateLockKeys(keys []string) []*userbase.LockKey {
	lockKeys := make([]*userbase.LockKey, len(keys))
	for i := range keys {
		lockKeys[i] = &userbase.LockKey{
			Key:    c.FormatLockKey(keys[i]),
			LockID: userbase.NewUUID(),
		}
	}
	return lockKeys
}

// FormatLockKey prefixes the key with 'L' to form the namespaced key used for locking.
func (c *InMemoryCache) FormatLockKey(k string) string {
	return fmt.Sprintf("L%s", k)
}
