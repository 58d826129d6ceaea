package common

import (
	"context"
	"time"

	"github.com/nuibits/userbase"
)

// BundleLock is the per-user advisory lock gating bundle uploads. At most one
// live lock per user; the lock ID is an unguessable token returned on
// acquisition and expiry is the cache TTL. It is an optimization, not a
// correctness primitive: the bundle path re-checks ownership but tolerates
// concurrent uploads via the bundle sequence monotonicity check.
type BundleLock struct {
	cache userbase.Cache
	lease time.Duration
}

// NewBundleLock creates a BundleLock over the given cache backend with the
// given lease duration.
func NewBundleLock(c userbase.Cache, lease time.Duration) *BundleLock {
	if lease <= 0 {
		lease = userbase.DefaultBundleLockLease
	}
	return &BundleLock{
		cache: c,
		lease: lease,
	}
}

// Acquire attempts to take the user's bundle lock. On success it returns the
// fresh lock ID and true; when another caller holds a live lock it returns
// false.
func (bl *BundleLock) Acquire(ctx context.Context, userID string) (userbase.UUID, bool, error) {
	lk := bl.cache.CreateLockKeys([]string{userID})[0]
	ok, _, err := bl.cache.Lock(ctx, bl.lease, []*userbase.LockKey{lk})
	if err != nil || !ok {
		return userbase.NilUUID, false, err
	}
	return lk.LockID, true, nil
}

// OwnedBy reports whether a live lock for the user exists and its lock ID
// matches the caller's.
func (bl *BundleLock) OwnedBy(ctx context.Context, userID string, lockID userbase.UUID) (bool, error) {
	if lockID.IsNil() {
		return false, nil
	}
	lks := bl.cache.CreateLockKeysForIDs([]userbase.Tuple[string, userbase.UUID]{
		{First: userID, Second: lockID},
	})
	return bl.cache.IsLocked(ctx, lks)
}

// Release clears the user's lock iff the caller owns it; returns whether it did.
func (bl *BundleLock) Release(ctx context.Context, userID string, lockID userbase.UUID) (bool, error) {
	lks := bl.cache.CreateLockKeysForIDs([]userbase.Tuple[string, userbase.UUID]{
		{First: userID, Second: lockID},
	})
	owned, err := bl.cache.IsLocked(ctx, lks)
	if err != nil || !owned {
		return false, err
	}
	if err := bl.cache.Unlock(ctx, lks); err != nil {
		return false, err
	}
	return true, nil
}
