package common

import (
	"context"
	"sync"
	"testing"

	"github.com/nuibits/userbase"
	"github.com/nuibits/userbase/common/mocks"
)

var ctx = context.Background()

func newTestMemcache() (*Memcache, *mocks.MockTransactionStore, *mocks.MockUserRepository) {
	store := mocks.NewMockTransactionStore()
	users := mocks.NewMockUserRepository()
	return NewMemcache(store, users), store, users
}

func Test_PushTransaction_AssignsSequentialNumbers(t *testing.T) {
	mc, _, _ := newTestMemcache()

	for want := int64(0); want < 3; want++ {
		tx, err := mc.PushTransaction(ctx, userbase.Transaction{UserID: "u", ItemID: "a", Command: userbase.CommandInsert})
		if err != nil {
			t.Fatalf("PushTransaction error: %v", err)
		}
		if tx.SequenceNo != want {
			t.Fatalf("sequence mismatch: got %d, want %d", tx.SequenceNo, want)
		}
	}
}

func Test_PushTransaction_ConcurrentDistinctSequences(t *testing.T) {
	mc, _, _ := newTestMemcache()

	const n = 100
	seqs := make([]int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tx, err := mc.PushTransaction(ctx, userbase.Transaction{UserID: "u", ItemID: "a", Command: userbase.CommandInsert})
			if err != nil {
				t.Errorf("PushTransaction error: %v", err)
				return
			}
			seqs[i] = tx.SequenceNo
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for _, s := range seqs {
		if s < 0 || s >= n {
			t.Fatalf("sequence %d out of range [0, %d)", s, n)
		}
		if seen[s] {
			t.Fatalf("duplicate sequence %d", s)
		}
		seen[s] = true
	}
}

func Test_MarkSlot_TerminalStatesStick(t *testing.T) {
	mc, _, _ := newTestMemcache()

	tx, _ := mc.PushTransaction(ctx, userbase.Transaction{UserID: "u", ItemID: "a", Command: userbase.CommandInsert})

	// Rollback is terminal; a later commit mark must not resurrect the slot.
	mc.TransactionRolledBack(ctx, tx)
	mc.TransactionRolledBack(ctx, tx)
	mc.TransactionPersisted(ctx, tx)

	txs, err := mc.GetTransactions(ctx, "u", 0)
	if err != nil {
		t.Fatalf("GetTransactions error: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("rolled-back slot leaked into committed reads: %+v", txs)
	}
}

func Test_GetTransactions_SkipsPendingAndRolledBack(t *testing.T) {
	mc, _, _ := newTestMemcache()

	t0, _ := mc.PushTransaction(ctx, userbase.Transaction{UserID: "u", ItemID: "a", Command: userbase.CommandInsert, Record: []byte{1}})
	t1, _ := mc.PushTransaction(ctx, userbase.Transaction{UserID: "u", ItemID: "b", Command: userbase.CommandInsert, Record: []byte{2}})
	t2, _ := mc.PushTransaction(ctx, userbase.Transaction{UserID: "u", ItemID: "c", Command: userbase.CommandInsert, Record: []byte{3}})

	mc.TransactionPersisted(ctx, t0)
	mc.TransactionRolledBack(ctx, t1)
	mc.TransactionPersisted(ctx, t2)

	txs, err := mc.GetTransactions(ctx, "u", 0)
	if err != nil {
		t.Fatalf("GetTransactions error: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("committed count mismatch: got %d, want 2", len(txs))
	}
	// Readers see a gap at the rolled-back slot, positions are preserved.
	if txs[0].SequenceNo != 0 || txs[1].SequenceNo != 2 {
		t.Fatalf("sequence gap not preserved: got %d and %d", txs[0].SequenceNo, txs[1].SequenceNo)
	}
}

func Test_Hydration_RebuildsFromDurableStore(t *testing.T) {
	store := mocks.NewMockTransactionStore()
	users := mocks.NewMockUserRepository()
	users.AddUser(userbase.User{Username: "joe", UserID: "u", BundleSequenceNo: 0})

	store.Seed(userbase.Transaction{UserID: "u", SequenceNo: 0, ItemID: "a", Command: userbase.CommandInsert, Record: []byte{1}})
	store.Seed(userbase.Transaction{UserID: "u", SequenceNo: 1, ItemID: "b", Command: userbase.CommandRollback})
	store.Seed(userbase.Transaction{UserID: "u", SequenceNo: 2, ItemID: "c", Command: userbase.CommandDelete})

	// Fresh memcache simulates a process restart.
	mc := NewMemcache(store, users)
	bundleSeq, txs, err := mc.QuerySnapshot(ctx, "u")
	if err != nil {
		t.Fatalf("QuerySnapshot error: %v", err)
	}
	if bundleSeq != 0 {
		t.Fatalf("bundle sequence mismatch: got %d, want 0", bundleSeq)
	}
	// Rollback rows rebuild as rolled back, everything else as committed.
	if len(txs) != 2 || txs[0].SequenceNo != 0 || txs[1].SequenceNo != 2 {
		t.Fatalf("rebuilt log mismatch: %+v", txs)
	}

	// Allocation resumes after the highest durable sequence.
	tx, err := mc.PushTransaction(ctx, userbase.Transaction{UserID: "u", ItemID: "d", Command: userbase.CommandInsert})
	if err != nil {
		t.Fatalf("PushTransaction error: %v", err)
	}
	if tx.SequenceNo != 3 {
		t.Fatalf("resumed sequence mismatch: got %d, want 3", tx.SequenceNo)
	}
}

func Test_Hydration_RespectsBundleWatermark(t *testing.T) {
	store := mocks.NewMockTransactionStore()
	users := mocks.NewMockUserRepository()
	users.AddUser(userbase.User{Username: "joe", UserID: "u", BundleSequenceNo: 2})

	for i := int64(0); i <= 4; i++ {
		store.Seed(userbase.Transaction{UserID: "u", SequenceNo: i, ItemID: "a", Command: userbase.CommandInsert})
	}

	mc := NewMemcache(store, users)
	bundleSeq, txs, err := mc.QuerySnapshot(ctx, "u")
	if err != nil {
		t.Fatalf("QuerySnapshot error: %v", err)
	}
	if bundleSeq != 2 {
		t.Fatalf("bundle sequence mismatch: got %d, want 2", bundleSeq)
	}
	if len(txs) != 2 || txs[0].SequenceNo != 3 || txs[1].SequenceNo != 4 {
		t.Fatalf("tail above watermark mismatch: %+v", txs)
	}
}

func Test_Hydration_ToleratesPartitionGaps(t *testing.T) {
	store := mocks.NewMockTransactionStore()
	users := mocks.NewMockUserRepository()
	users.AddUser(userbase.User{Username: "joe", UserID: "u", BundleSequenceNo: 0})

	// Sequence 1 is missing: its rollback gave up before the record landed.
	store.Seed(userbase.Transaction{UserID: "u", SequenceNo: 0, ItemID: "a", Command: userbase.CommandInsert, Record: []byte{1}})
	store.Seed(userbase.Transaction{UserID: "u", SequenceNo: 2, ItemID: "c", Command: userbase.CommandInsert, Record: []byte{3}})

	mc := NewMemcache(store, users)

	// A post-restart write above the gap must commit visibly.
	tx, err := mc.PushTransaction(ctx, userbase.Transaction{UserID: "u", ItemID: "d", Command: userbase.CommandInsert})
	if err != nil {
		t.Fatalf("PushTransaction error: %v", err)
	}
	if tx.SequenceNo != 3 {
		t.Fatalf("resumed sequence mismatch: got %d, want 3", tx.SequenceNo)
	}
	mc.TransactionPersisted(ctx, tx)

	txs, err := mc.GetTransactions(ctx, "u", 0)
	if err != nil {
		t.Fatalf("GetTransactions error: %v", err)
	}
	if len(txs) != 3 || txs[0].SequenceNo != 0 || txs[1].SequenceNo != 2 || txs[2].SequenceNo != 3 {
		t.Fatalf("committed log over gap mismatch: %+v", txs)
	}

	// Eviction across the gap must not touch slots above the watermark.
	if err := mc.SetBundleSequence(ctx, "u", 2); err != nil {
		t.Fatalf("SetBundleSequence error: %v", err)
	}
	bundleSeq, tail, err := mc.QuerySnapshot(ctx, "u")
	if err != nil {
		t.Fatalf("QuerySnapshot error: %v", err)
	}
	if bundleSeq != 2 || len(tail) != 1 || tail[0].SequenceNo != 3 {
		t.Fatalf("post-eviction tail mismatch: watermark=%d tail=%+v", bundleSeq, tail)
	}
}

func Test_SetBundleSequence_EvictsAndStaysMonotonic(t *testing.T) {
	mc, _, _ := newTestMemcache()

	for i := 0; i < 6; i++ {
		tx, _ := mc.PushTransaction(ctx, userbase.Transaction{UserID: "u", ItemID: "a", Command: userbase.CommandInsert})
		mc.TransactionPersisted(ctx, tx)
	}

	if err := mc.SetBundleSequence(ctx, "u", 3); err != nil {
		t.Fatalf("SetBundleSequence error: %v", err)
	}
	// A lower watermark must not regress the current one.
	if err := mc.SetBundleSequence(ctx, "u", 1); err != nil {
		t.Fatalf("SetBundleSequence error: %v", err)
	}

	got, err := mc.GetBundleSequence(ctx, "u")
	if err != nil {
		t.Fatalf("GetBundleSequence error: %v", err)
	}
	if got != 3 {
		t.Fatalf("watermark mismatch: got %d, want 3", got)
	}

	txs, _ := mc.GetTransactions(ctx, "u", startingSequence(got))
	if len(txs) != 2 || txs[0].SequenceNo != 4 || txs[1].SequenceNo != 5 {
		t.Fatalf("post-eviction tail mismatch: %+v", txs)
	}

	// Allocation continues from where it left off.
	tx, _ := mc.PushTransaction(ctx, userbase.Transaction{UserID: "u", ItemID: "a", Command: userbase.CommandInsert})
	if tx.SequenceNo != 6 {
		t.Fatalf("sequence after eviction mismatch: got %d, want 6", tx.SequenceNo)
	}
}

func Test_Memcache_UsersAreIndependent(t *testing.T) {
	mc, _, _ := newTestMemcache()

	a, _ := mc.PushTransaction(ctx, userbase.Transaction{UserID: "u1", ItemID: "a", Command: userbase.CommandInsert})
	b, _ := mc.PushTransaction(ctx, userbase.Transaction{UserID: "u2", ItemID: "a", Command: userbase.CommandInsert})
	if a.SequenceNo != 0 || b.SequenceNo != 0 {
		t.Fatalf("users share sequence space: %d and %d", a.SequenceNo, b.SequenceNo)
	}
}
