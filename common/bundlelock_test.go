package common

import (
	"sync"
	"testing"
	"time"

	"github.com/nuibits/userbase"
	"github.com/nuibits/userbase/cache"
)

func Test_BundleLock_AcquireAndRelease(t *testing.T) {
	bl := NewBundleLock(cache.NewInMemoryCache(), 30*time.Second)

	lockID, ok, err := bl.Acquire(ctx, "u")
	if err != nil || !ok {
		t.Fatalf("Acquire failed: ok=%v err=%v", ok, err)
	}
	if lockID.IsNil() {
		t.Fatalf("acquired lock has nil ID")
	}

	owned, err := bl.OwnedBy(ctx, "u", lockID)
	if err != nil || !owned {
		t.Fatalf("OwnedBy failed: owned=%v err=%v", owned, err)
	}

	released, err := bl.Release(ctx, "u", lockID)
	if err != nil || !released {
		t.Fatalf("Release failed: released=%v err=%v", released, err)
	}

	// Released lock is free for the next caller.
	if _, ok, _ := bl.Acquire(ctx, "u"); !ok {
		t.Fatalf("reacquire after release failed")
	}
}

func Test_BundleLock_SecondAcquireLosesWhileHeld(t *testing.T) {
	bl := NewBundleLock(cache.NewInMemoryCache(), 30*time.Second)

	if _, ok, _ := bl.Acquire(ctx, "u"); !ok {
		t.Fatalf("first acquire failed")
	}
	if _, ok, _ := bl.Acquire(ctx, "u"); ok {
		t.Fatalf("second acquire won while lock held")
	}
	// A different user's lock is unaffected.
	if _, ok, _ := bl.Acquire(ctx, "v"); !ok {
		t.Fatalf("other user's acquire failed")
	}
}

func Test_BundleLock_ConcurrentAcquireSingleWinner(t *testing.T) {
	bl := NewBundleLock(cache.NewInMemoryCache(), 30*time.Second)

	const n = 16
	winners := make([]bool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, ok, err := bl.Acquire(ctx, "u")
			if err != nil {
				t.Errorf("Acquire error: %v", err)
				return
			}
			winners[i] = ok
		}(i)
	}
	wg.Wait()

	count := 0
	for _, w := range winners {
		if w {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("winner count mismatch: got %d, want exactly 1", count)
	}
}

func Test_BundleLock_WrongLockIDIsNotOwner(t *testing.T) {
	bl := NewBundleLock(cache.NewInMemoryCache(), 30*time.Second)

	if _, ok, _ := bl.Acquire(ctx, "u"); !ok {
		t.Fatalf("acquire failed")
	}
	if owned, _ := bl.OwnedBy(ctx, "u", userbase.NewUUID()); owned {
		t.Fatalf("foreign lock ID reported as owner")
	}
	if released, _ := bl.Release(ctx, "u", userbase.NewUUID()); released {
		t.Fatalf("foreign lock ID released the lock")
	}
}

func Test_BundleLock_LeaseExpiryFreesLock(t *testing.T) {
	defer func() { cache.Now = time.Now }()

	now := time.Now()
	cache.Now = func() time.Time { return now }

	bl := NewBundleLock(cache.NewInMemoryCache(), 30*time.Second)
	lockID, ok, _ := bl.Acquire(ctx, "u")
	if !ok {
		t.Fatalf("acquire failed")
	}

	// Push the clock past the lease; the stale lock no longer counts.
	now = now.Add(31 * time.Second)
	if owned, _ := bl.OwnedBy(ctx, "u", lockID); owned {
		t.Fatalf("expired lock still owned")
	}
	if _, ok, _ := bl.Acquire(ctx, "u"); !ok {
		t.Fatalf("acquire after expiry failed")
	}
}
