package common

import (
	"context"

	"github.com/nuibits/userbase"
	"github.com/nuibits/userbase/cache"
	"github.com/nuibits/userbase/common/mocks"
)

// Test plumbing shared by this package's tests. Kept in a non-test file so
// scenario helpers can live beside the code they exercise.

type testBackends struct {
	store   *mocks.MockTransactionStore
	users   *mocks.MockUserRepository
	bundles *mocks.MockBundleStore
	cache   *cache.InMemoryCache
}

// newTestService wires a Service over mocked backends and the in-process
// cache, with the rollback retrier swapped for an immediate one so tests
// never sleep on backoff.
func newTestService(ctx context.Context, options userbase.Options) (*Service, *testBackends) {
	b := &testBackends{
		store:   mocks.NewMockTransactionStore(),
		users:   mocks.NewMockUserRepository(),
		bundles: mocks.NewMockBundleStore(),
		cache:   cache.NewInMemoryCache(),
	}
	svc := NewService(ctx, options, b.store, b.users, b.bundles, b.cache)
	svc.engine.retrier = immediateRetrier
	return svc, b
}

// immediateRetrier runs the task up to three times with no backoff.
func immediateRetrier(ctx context.Context, task func(ctx context.Context) error, gaveUpTask func(ctx context.Context)) error {
	var err error
	for i := 0; i < 3; i++ {
		if err = task(ctx); err == nil {
			return nil
		}
	}
	if gaveUpTask != nil {
		gaveUpTask(ctx)
	}
	return err
}
