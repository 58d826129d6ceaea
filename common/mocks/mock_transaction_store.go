// Package mocks contains in-memory backend implementations used by the
// common package tests: a transaction store with scriptable failures, a
// bundle store and a user repository.
package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/nuibits/userbase"
)

// MockTransactionStore is an in-memory TransactionStore honoring the
// conditional-write predicates. Failure injection fields let tests simulate
// a store that persisted a record but reported a transient failure, or one
// that is fully down.
type MockTransactionStore struct {
	mu     sync.Mutex
	lookup map[string]map[int64]userbase.Transaction

	// ErrorOnAdd, when set, is reported by every Add call. When
	// PersistDespiteError is also set the record is stored anyway, simulating
	// a durable write whose acknowledgment was lost.
	ErrorOnAdd          error
	PersistDespiteError bool

	// ErrorOnAddOrRollback, when set, is reported by every AddOrRollback call
	// before any store mutation.
	ErrorOnAddOrRollback error

	// Counts of calls made, for asserting no store traffic happened.
	AddCalls           int
	AddOrRollbackCalls int
}

// NewMockTransactionStore instantiates a new (mocked) transaction store.
func NewMockTransactionStore() *MockTransactionStore {
	return &MockTransactionStore{
		lookup: make(map[string]map[int64]userbase.Transaction),
	}
}

func (ts *MockTransactionStore) Add(ctx context.Context, tx userbase.Transaction) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.AddCalls++

	if _, ok := ts.lookup[tx.UserID][tx.SequenceNo]; ok {
		return userbase.Errorf(userbase.Conflict, "slot (%s, %d) already exists", tx.UserID, tx.SequenceNo)
	}
	if ts.ErrorOnAdd != nil {
		if ts.PersistDespiteError {
			ts.put(tx)
		}
		return ts.ErrorOnAdd
	}
	ts.put(tx)
	return nil
}

func (ts *MockTransactionStore) AddOrRollback(ctx context.Context, tx userbase.Transaction) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.AddOrRollbackCalls++

	if ts.ErrorOnAddOrRollback != nil {
		return ts.ErrorOnAddOrRollback
	}
	if existing, ok := ts.lookup[tx.UserID][tx.SequenceNo]; ok {
		if existing.Command != userbase.CommandRollback {
			return userbase.Errorf(userbase.Conflict, "slot (%s, %d) holds a durable %v record",
				tx.UserID, tx.SequenceNo, existing.Command)
		}
	}
	ts.put(tx)
	return nil
}

func (ts *MockTransactionStore) GetAll(ctx context.Context, userID string) ([]userbase.Transaction, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	r := make([]userbase.Transaction, 0, len(ts.lookup[userID]))
	for _, tx := range ts.lookup[userID] {
		r = append(r, tx)
	}
	sort.Slice(r, func(i, j int) bool { return r[i].SequenceNo < r[j].SequenceNo })
	return r, nil
}

// Seed stores the transaction unconditionally. Test setup helper.
func (ts *MockTransactionStore) Seed(tx userbase.Transaction) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.put(tx)
}

// Get returns the durable record at the slot, if present. Test assertion helper.
func (ts *MockTransactionStore) Get(userID string, seqNo int64) (userbase.Transaction, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	tx, ok := ts.lookup[userID][seqNo]
	return tx, ok
}

func (ts *MockTransactionStore) put(tx userbase.Transaction) {
	m, ok := ts.lookup[tx.UserID]
	if !ok {
		m = make(map[int64]userbase.Transaction)
		ts.lookup[tx.UserID] = m
	}
	m[tx.SequenceNo] = tx
}
