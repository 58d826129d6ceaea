// Package common contains the per-user transactional log engine: the
// in-memory log projection (Memcache), the advisory bundle lock, the
// transaction engine driving writes to a terminal state, the bundle
// coordinator and the read path. Everything here is pure logic over
// in-memory state plus the backend interfaces in the root package.
package common

import (
	"context"
	"sync"

	"github.com/nuibits/userbase"
)

type slotState int

const (
	statePending slotState = iota
	stateCommitted
	stateRolledBack
)

// slot is one sequence-numbered position in a user's log projection.
// Pending moves to Committed or RolledBack; both are terminal.
type slot struct {
	tx    userbase.Transaction
	state slotState
}

// userLog is the per-user projection. Its mutex is the single critical
// section serializing sequence allocation for that user; different users'
// logs never contend.
type userLog struct {
	mu       sync.Mutex
	hydrated bool
	// startSeq is the sequence number of slots[0]. Slots at or below the
	// bundle watermark get evicted, startSeq tracks the surviving front.
	startSeq  int64
	nextSeq   int64
	bundleSeq int64
	slots     []slot
}

// Memcache owns the per-user in-memory log projections: sequence number
// allocation, visibility gating and the bundle watermark. Projections are
// lazily rebuilt from the durable store on first access after a process
// start; the user record supplies the watermark.
type Memcache struct {
	mu    sync.RWMutex
	logs  map[string]*userLog
	store userbase.TransactionStore
	users userbase.UserRepository
}

// NewMemcache creates a Memcache hydrating from the given store and user repository.
func NewMemcache(store userbase.TransactionStore, users userbase.UserRepository) *Memcache {
	return &Memcache{
		logs:  make(map[string]*userLog),
		store: store,
		users: users,
	}
}

// getLog returns the user's projection, creating and hydrating it on first
// access. Hydration scans the durable partition: Rollback records rebuild as
// RolledBack, everything else as Committed. There are no Pending slots after
// a restart.
func (mc *Memcache) getLog(ctx context.Context, userID string) (*userLog, error) {
	mc.mu.RLock()
	ul := mc.logs[userID]
	mc.mu.RUnlock()
	if ul == nil {
		mc.mu.Lock()
		ul = mc.logs[userID]
		if ul == nil {
			ul = &userLog{}
			mc.logs[userID] = ul
		}
		mc.mu.Unlock()
	}

	ul.mu.Lock()
	defer ul.mu.Unlock()
	if ul.hydrated {
		return ul, nil
	}
	if err := mc.hydrate(ctx, userID, ul); err != nil {
		return nil, err
	}
	ul.hydrated = true
	return ul, nil
}

func (mc *Memcache) hydrate(ctx context.Context, userID string, ul *userLog) error {
	txs, err := mc.store.GetAll(ctx, userID)
	if err != nil {
		return err
	}

	var bundleSeq int64
	u, err := mc.users.GetByID(ctx, userID)
	if err == nil {
		bundleSeq = u.BundleSequenceNo
	} else if !userbase.IsCode(err, userbase.NotFound) {
		return err
	}

	ul.bundleSeq = bundleSeq
	ul.startSeq = startingSequence(bundleSeq)
	ul.nextSeq = ul.startSeq
	ul.slots = ul.slots[:0]
	for _, tx := range txs {
		if tx.SequenceNo < ul.startSeq {
			continue
		}
		// The partition can have holes where a rollback gave up before its
		// record landed. Pad them as RolledBack so slots[i] always holds
		// sequence number startSeq+i.
		for ul.nextSeq < tx.SequenceNo {
			ul.slots = append(ul.slots, slot{
				tx: userbase.Transaction{
					UserID:     userID,
					SequenceNo: ul.nextSeq,
					Command:    userbase.CommandRollback,
				},
				state: stateRolledBack,
			})
			ul.nextSeq++
		}
		st := stateCommitted
		if tx.Command == userbase.CommandRollback {
			st = stateRolledBack
		}
		ul.slots = append(ul.slots, slot{tx: tx, state: st})
		ul.nextSeq = tx.SequenceNo + 1
	}
	return nil
}

// startingSequence maps a bundle watermark to the first log sequence a
// reader needs. A zero watermark means no bundle yet, the log starts at 0.
func startingSequence(bundleSeq int64) int64 {
	if bundleSeq <= 0 {
		return 0
	}
	return bundleSeq + 1
}

// PushTransaction atomically allocates the user's next sequence number and
// appends the transaction as a Pending slot. Allocation and append are one
// critical section, two concurrent pushes for the same user always get
// distinct, ordered sequence numbers.
func (mc *Memcache) PushTransaction(ctx context.Context, tx userbase.Transaction) (userbase.Transaction, error) {
	ul, err := mc.getLog(ctx, tx.UserID)
	if err != nil {
		return tx, err
	}
	ul.mu.Lock()
	defer ul.mu.Unlock()
	tx.SequenceNo = ul.nextSeq
	ul.nextSeq++
	ul.slots = append(ul.slots, slot{tx: tx, state: statePending})
	return tx, nil
}

// TransactionPersisted marks the slot at the transaction's sequence number
// Committed. Idempotent; a RolledBack slot is terminal and stays as is.
func (mc *Memcache) TransactionPersisted(ctx context.Context, tx userbase.Transaction) {
	mc.markSlot(ctx, tx, stateCommitted)
}

// TransactionRolledBack marks the slot RolledBack and rewrites its command
// to Rollback. Idempotent; a Committed slot whose durable record was
// conditionally rewritten is the only legal source besides Pending.
func (mc *Memcache) TransactionRolledBack(ctx context.Context, tx userbase.Transaction) {
	tx.Command = userbase.CommandRollback
	tx.Record = nil
	mc.markSlot(ctx, tx, stateRolledBack)
}

func (mc *Memcache) markSlot(ctx context.Context, tx userbase.Transaction, target slotState) {
	ul, err := mc.getLog(ctx, tx.UserID)
	if err != nil {
		return
	}
	ul.mu.Lock()
	defer ul.mu.Unlock()
	i := tx.SequenceNo - ul.startSeq
	if i < 0 || i >= int64(len(ul.slots)) {
		return
	}
	s := &ul.slots[i]
	switch target {
	case stateCommitted:
		// No transition out of the RolledBack terminal.
		if s.state == statePending {
			s.state = stateCommitted
		}
	case stateRolledBack:
		if s.state == statePending || s.state == stateCommitted {
			s.state = stateRolledBack
			s.tx.Command = userbase.CommandRollback
			s.tx.Record = nil
		}
	}
}

// GetBundleSequence returns the user's current bundle watermark, 0 if none.
func (mc *Memcache) GetBundleSequence(ctx context.Context, userID string) (int64, error) {
	ul, err := mc.getLog(ctx, userID)
	if err != nil {
		return 0, err
	}
	ul.mu.Lock()
	defer ul.mu.Unlock()
	return ul.bundleSeq, nil
}

// GetTransactions returns a snapshot of the user's Committed transactions
// from startingSeq onward. Pending and RolledBack slots are skipped, readers
// see gaps at rolled-back sequence numbers.
func (mc *Memcache) GetTransactions(ctx context.Context, userID string, startingSeq int64) ([]userbase.Transaction, error) {
	ul, err := mc.getLog(ctx, userID)
	if err != nil {
		return nil, err
	}
	ul.mu.Lock()
	defer ul.mu.Unlock()
	return ul.committedFrom(startingSeq), nil
}

// committedFrom snapshots committed slots from the given sequence. Caller
// holds the log's mutex.
func (ul *userLog) committedFrom(startingSeq int64) []userbase.Transaction {
	r := make([]userbase.Transaction, 0, len(ul.slots))
	for i := range ul.slots {
		s := &ul.slots[i]
		if s.tx.SequenceNo < startingSeq || s.state != stateCommitted {
			continue
		}
		r = append(r, s.tx)
	}
	return r
}

// QuerySnapshot returns the watermark together with the committed
// transactions above it, taken under one critical section so a reader can
// never observe a watermark advance without the matching truncation.
func (mc *Memcache) QuerySnapshot(ctx context.Context, userID string) (int64, []userbase.Transaction, error) {
	ul, err := mc.getLog(ctx, userID)
	if err != nil {
		return 0, nil, err
	}
	ul.mu.Lock()
	defer ul.mu.Unlock()
	return ul.bundleSeq, ul.committedFrom(startingSequence(ul.bundleSeq)), nil
}

// SetBundleSequence advances the user's watermark. Slots at or below it are
// evicted from the projection; the bundle blob carries their state now.
func (mc *Memcache) SetBundleSequence(ctx context.Context, userID string, bundleSeq int64) error {
	ul, err := mc.getLog(ctx, userID)
	if err != nil {
		return err
	}
	ul.mu.Lock()
	defer ul.mu.Unlock()
	if bundleSeq <= ul.bundleSeq {
		return nil
	}
	ul.bundleSeq = bundleSeq
	evictUpTo := bundleSeq - ul.startSeq + 1
	if evictUpTo > int64(len(ul.slots)) {
		evictUpTo = int64(len(ul.slots))
	}
	if evictUpTo > 0 {
		ul.slots = append(ul.slots[:0:0], ul.slots[evictUpTo:]...)
		ul.startSeq += evictUpTo
	}
	if ul.nextSeq < ul.startSeq {
		ul.nextSeq = ul.startSeq
	}
	return nil
}
