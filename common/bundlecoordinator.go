package common

import (
	"context"
	"io"

	"github.com/nuibits/userbase"
)

// BundleCoordinator owns the snapshot upload path: it validates against the
// advisory lock, streams the bundle to the blob store, reconciles the user's
// bundle sequence number and truncates the in-memory log.
type BundleCoordinator struct {
	memcache *Memcache
	lock     *BundleLock
	users    userbase.UserRepository
	bundles  userbase.BundleStore
}

// NewBundleCoordinator wires the coordinator from its collaborators.
func NewBundleCoordinator(memcache *Memcache, lock *BundleLock, users userbase.UserRepository, bundles userbase.BundleStore) *BundleCoordinator {
	return &BundleCoordinator{
		memcache: memcache,
		lock:     lock,
		users:    users,
		bundles:  bundles,
	}
}

// UploadBundle streams a client snapshot covering everything up to
// proposedSeq into the blob store, then advances the user's watermark.
//
// Two concurrent uploads at different sequence numbers are safe: the
// monotonicity check admits both only while neither has updated the user
// record, and any bundle at sequence S correctly reconstructs state up to S.
// The lock is advisory; ownership is re-checked but exclusivity never assumed.
func (bc *BundleCoordinator) UploadBundle(ctx context.Context, userID string, proposedSeq int64, lockID userbase.UUID, contentType string, body io.Reader) error {
	if proposedSeq <= 0 {
		return userbase.Errorf(userbase.BadInput, "bundle sequence number is missing")
	}
	if lockID.IsNil() {
		return userbase.Errorf(userbase.BadInput, "lock id is missing")
	}

	owned, err := bc.lock.OwnedBy(ctx, userID, lockID)
	if err != nil {
		return err
	}
	if !owned {
		return userbase.Errorf(userbase.Unauthorized, "caller does not own the bundle lock of user %s", userID)
	}

	u, err := bc.users.GetByID(ctx, userID)
	if err != nil {
		bc.lock.Release(ctx, userID, lockID)
		return err
	}
	if u.BundleSequenceNo >= proposedSeq {
		bc.lock.Release(ctx, userID, lockID)
		return userbase.Errorf(userbase.BadInput, "bundle sequence number %d must be greater than the current %d",
			proposedSeq, u.BundleSequenceNo)
	}

	if err := bc.bundles.Upload(ctx, userbase.BundleKey(userID, proposedSeq), contentType, body); err != nil {
		bc.lock.Release(ctx, userID, lockID)
		return err
	}

	if err := bc.users.UpdateBundleSequence(ctx, u.Username, proposedSeq); err != nil {
		bc.lock.Release(ctx, userID, lockID)
		return err
	}
	if err := bc.memcache.SetBundleSequence(ctx, userID, proposedSeq); err != nil {
		bc.lock.Release(ctx, userID, lockID)
		return err
	}

	bc.lock.Release(ctx, userID, lockID)
	return nil
}
