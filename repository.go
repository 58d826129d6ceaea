package userbase

import (
	"context"
	"io"
	"time"
)

// TransactionStore is the durable, strongly-consistent record store the log
// persists to. It offers conditional-write semantics; it is the only part of
// the core (together with BundleStore) that touches the network.
type TransactionStore interface {
	// Add inserts the transaction if the (UserID, SequenceNo) slot is absent.
	// Returns a Conflict coded error when the slot already exists and a
	// TransientFailure coded error on store/network failure.
	Add(ctx context.Context, tx Transaction) error
	// AddOrRollback writes the transaction if the slot is absent or the existing
	// record's command is Rollback. Returns Conflict when a non-Rollback record
	// occupies the slot, i.e. the original insert durably landed.
	AddOrRollback(ctx context.Context, tx Transaction) error
	// GetAll fetches the user's transactions ordered by sequence number.
	// Used to rebuild the in-memory log projection on cold start.
	GetAll(ctx context.Context, userID string) ([]Transaction, error)
}

// UserRepository is the externally-owned user record store. The core reads
// user records and updates only their bundle sequence number.
type UserRepository interface {
	// GetByID fetches the user record keyed by user ID. Returns NotFound if absent.
	GetByID(ctx context.Context, userID string) (User, error)
	// UpdateBundleSequence unconditionally sets the user's bundle sequence number.
	UpdateBundleSequence(ctx context.Context, username string, bundleSequenceNo int64) error
}

// BundleObject is a streamed bundle download. Caller owns closing Body.
type BundleObject struct {
	Body          io.ReadCloser
	ContentLength int64
	ContentType   string
}

// BundleStore is the blob store holding client-computed snapshots. Uploads
// and downloads stream; bodies are never buffered whole in memory.
type BundleStore interface {
	// Upload streams the body to the blob at the given key.
	Upload(ctx context.Context, key string, contentType string, body io.Reader) error
	// Download streams the blob at the given key. Returns a NotFound coded
	// error when the blob is absent.
	Download(ctx context.Context, key string) (BundleObject, error)
}

// Cache is the shared cache & cooperative locking API. The redis package
// implements it for clustered deployments, the cache package in-process for
// standalone mode and tests.
type Cache interface {
	// Set stores the key/value pair with the given expiration. Expiration of 0
	// means no expiry, < 0 means don't cache.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	// Get fetches the value of the key, first result is false if not found.
	Get(ctx context.Context, key string) (bool, string, error)
	// GetEx fetches and extends the key's expiration.
	GetEx(ctx context.Context, key string, expiration time.Duration) (bool, string, error)
	// SetStruct marshals the value and stores it under the key.
	SetStruct(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	// GetStruct fetches and unmarshals the value into target.
	GetStruct(ctx context.Context, key string, target interface{}) (bool, error)
	// Delete removes the given keys. First result is false if none were found.
	Delete(ctx context.Context, keys []string) (bool, error)

	// Lock attempts to acquire locks on all given keys for the duration. If a
	// key is held by another owner it returns false together with that owner's
	// lock ID.
	Lock(ctx context.Context, duration time.Duration, lockKeys []*LockKey) (bool, UUID, error)
	// IsLocked reports whether all given lock keys are owned by this process.
	IsLocked(ctx context.Context, lockKeys []*LockKey) (bool, error)
	// Unlock releases the given lock keys, deleting only those owned by this process.
	Unlock(ctx context.Context, lockKeys []*LockKey) error
	// CreateLockKeys creates lock keys with freshly generated lock IDs.
	CreateLockKeys(keys []string) []*LockKey
	// CreateLockKeysForIDs creates lock keys from (name, lockID) tuples.
	CreateLockKeysForIDs(keys []Tuple[string, UUID]) []*LockKey
	// FormatLockKey returns the namespaced cache key used for locking.
	FormatLockKey(k string) string
}
