package common

import (
	"context"
	"io"

	"github.com/nuibits/userbase"
)

// Service is the transport-agnostic facade over the engine: the operations
// the HTTP/WebSocket glue calls. It wires the memcache, bundle lock,
// transaction engine, bundle coordinator and read path from one Options.
type Service struct {
	options userbase.Options

	memcache    *Memcache
	lock        *BundleLock
	engine      *TransactionEngine
	coordinator *BundleCoordinator
	readPath    *ReadPath
}

// NewService creates the engine facade. ctx bounds the background rollback
// workers; cache is the lock backend (redis client in clustered mode, the
// in-process cache in standalone mode).
func NewService(ctx context.Context, options userbase.Options, store userbase.TransactionStore,
	users userbase.UserRepository, bundles userbase.BundleStore, cache userbase.Cache) *Service {
	options.EnsureDefaults()

	memcache := NewMemcache(store, users)
	lock := NewBundleLock(cache, options.BundleLockLease)
	engine := NewTransactionEngine(ctx, options, memcache, store)
	return &Service{
		options:     options,
		memcache:    memcache,
		lock:        lock,
		engine:      engine,
		coordinator: NewBundleCoordinator(memcache, lock, users, bundles),
		readPath:    NewReadPath(memcache, bundles),
	}
}

// Submit writes one transaction and returns its sequence number.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (int64, error) {
	return s.engine.Submit(ctx, req)
}

// SubmitBatch writes the batch concurrently, returning sequence numbers in input order.
func (s *Service) SubmitBatch(ctx context.Context, reqs []SubmitRequest) ([]int64, error) {
	return s.engine.SubmitBatch(ctx, reqs)
}

// QueryTransactionLog returns the user's bundle watermark and committed log tail.
func (s *Service) QueryTransactionLog(ctx context.Context, userID string) (TransactionLogTail, error) {
	return s.readPath.QueryTransactionLog(ctx, userID)
}

// QueryDbState streams the user's bundle at the given sequence number.
func (s *Service) QueryDbState(ctx context.Context, userID string, bundleSeq int64) (userbase.BundleObject, error) {
	return s.readPath.QueryDbState(ctx, userID, bundleSeq)
}

// AcquireBundleLock takes the user's advisory bundle lock, returning the lock
// ID and whether acquisition succeeded.
func (s *Service) AcquireBundleLock(ctx context.Context, userID string) (userbase.UUID, bool, error) {
	return s.lock.Acquire(ctx, userID)
}

// ReleaseBundleLock releases the lock iff the caller owns it.
func (s *Service) ReleaseBundleLock(ctx context.Context, userID string, lockID userbase.UUID) (bool, error) {
	return s.lock.Release(ctx, userID, lockID)
}

// UploadBundle streams a snapshot upload and advances the user's watermark.
func (s *Service) UploadBundle(ctx context.Context, userID string, proposedSeq int64, lockID userbase.UUID, contentType string, body io.Reader) error {
	return s.coordinator.UploadBundle(ctx, userID, proposedSeq, lockID, contentType, body)
}

// Close drains the engine's background rollback queue.
func (s *Service) Close() error {
	return s.engine.Close()
}
