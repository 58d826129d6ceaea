package common

import (
	"context"
	"fmt"
	log "log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nuibits/userbase"
)

// SubmitRequest is one write command entering the engine.
type SubmitRequest struct {
	UserID  string           `json:"user_id"`
	ItemID  string           `json:"item_id"`
	Command userbase.Command `json:"cmd"`
	Record  []byte           `json:"record,omitempty"`
}

// TransactionEngine orchestrates the write path: allocate a sequence number,
// persist conditionally, then commit or roll back. Every started transaction
// is driven to a terminal state even when the caller is long gone; rollbacks
// run on a background queue and never affect the caller's error.
type TransactionEngine struct {
	options  userbase.Options
	memcache *Memcache
	store    userbase.TransactionStore

	rollbackQueue    chan func() error
	rollbackWorkers  *errgroup.Group
	pendingRollbacks sync.WaitGroup
	closeOnce        sync.Once

	// retrier runs the rollback write with backoff. Tests swap it for an
	// immediate runner.
	retrier func(ctx context.Context, task func(ctx context.Context) error, gaveUpTask func(ctx context.Context)) error
}

// NewTransactionEngine creates the engine. ctx bounds the background rollback
// workers' lifetime.
func NewTransactionEngine(ctx context.Context, options userbase.Options, memcache *Memcache, store userbase.TransactionStore) *TransactionEngine {
	options.EnsureDefaults()
	queue, eg := userbase.JobProcessor(ctx, 1024)
	return &TransactionEngine{
		options:         options,
		memcache:        memcache,
		store:           store,
		rollbackQueue:   queue,
		rollbackWorkers: eg,
		retrier:         userbase.Retry,
	}
}

// Submit validates then writes one transaction, returning its assigned
// sequence number. On a failed durable insert the caller gets a
// TransientFailure while the slot's rollback proceeds in the background.
func (te *TransactionEngine) Submit(ctx context.Context, req SubmitRequest) (int64, error) {
	if err := te.validate(req); err != nil {
		return 0, err
	}
	return te.submit(ctx, req)
}

// submit runs the write algorithm, validation already done.
func (te *TransactionEngine) submit(ctx context.Context, req SubmitRequest) (int64, error) {
	tx, err := te.memcache.PushTransaction(ctx, userbase.Transaction{
		UserID:  req.UserID,
		ItemID:  req.ItemID,
		Command: req.Command,
		Record:  req.Record,
	})
	if err != nil {
		return 0, err
	}

	if err := te.store.Add(ctx, tx); err != nil {
		// The insert may or may not have landed. Schedule the conditional
		// rollback and report the write transient; the rollback's outcome
		// never reaches this caller.
		te.scheduleRollback(tx)
		return 0, userbase.NewError(userbase.TransientFailure,
			fmt.Errorf("durable insert of (%s, %d) failed, details: %w", tx.UserID, tx.SequenceNo, err))
	}

	te.memcache.TransactionPersisted(ctx, tx)
	return tx.SequenceNo, nil
}

// SubmitBatch initiates all submissions concurrently, awaits them and returns
// their sequence numbers in input order. Writes are per-transaction atomic,
// not per-batch: on partial failure the error surfaces while the successful
// submissions stay committed.
func (te *TransactionEngine) SubmitBatch(ctx context.Context, reqs []SubmitRequest) ([]int64, error) {
	if err := te.validateBatch(reqs); err != nil {
		return nil, err
	}

	seqs := make([]int64, len(reqs))
	tr := userbase.NewTaskRunner(ctx, len(reqs))
	for i := range reqs {
		i := i
		tr.Go(func() error {
			seq, err := te.submit(tr.GetContext(), reqs[i])
			if err != nil {
				return err
			}
			seqs[i] = seq
			return nil
		})
	}
	if err := tr.Wait(); err != nil {
		return seqs, err
	}
	return seqs, nil
}

// validate enforces the per-submission input rules before any sequence
// number is consumed or store call made.
func (te *TransactionEngine) validate(req SubmitRequest) error {
	if req.UserID == "" {
		return userbase.Errorf(userbase.BadInput, "user id can't be empty")
	}
	if req.ItemID == "" {
		return userbase.Errorf(userbase.BadInput, "item id can't be empty")
	}
	if !req.Command.IsValid() {
		return userbase.Errorf(userbase.BadInput, "command %v can't be submitted", req.Command)
	}
	if len(req.Record) > te.options.MaxItemBytes {
		return userbase.Errorf(userbase.BadInput, "record of %d bytes exceeds the %d bytes cap",
			len(req.Record), te.options.MaxItemBytes)
	}
	return nil
}

func (te *TransactionEngine) validateBatch(reqs []SubmitRequest) error {
	totalBytes := 0
	deletes := 0
	for i := range reqs {
		if err := te.validate(reqs[i]); err != nil {
			return err
		}
		totalBytes += len(reqs[i].Record)
		if reqs[i].Command == userbase.CommandDelete {
			deletes++
		}
	}
	if totalBytes > te.options.MaxBatchBytes {
		return userbase.Errorf(userbase.BadInput, "batch of %d bytes exceeds the %d bytes cap",
			totalBytes, te.options.MaxBatchBytes)
	}
	if deletes > te.options.MaxBatchDeletes {
		return userbase.Errorf(userbase.BadInput, "batch of %d deletes exceeds the %d deletes cap",
			deletes, te.options.MaxBatchDeletes)
	}
	return nil
}

// scheduleRollback enqueues the slot's rollback on the background queue.
// The queued task always returns nil, one rollback giving up must not cancel
// the workers' group.
func (te *TransactionEngine) scheduleRollback(tx userbase.Transaction) {
	te.pendingRollbacks.Add(1)
	te.rollbackQueue <- func() error {
		defer te.pendingRollbacks.Done()
		// The submitting caller's context may be long gone; the rollback
		// runs detached from it.
		te.rollback(context.Background(), tx)
		return nil
	}
}

// rollback drives the slot at tx's sequence number to a terminal state via
// the conditional rewrite. Three outcomes:
//   - rewrite applied: the slot is durably a Rollback, mark it so in memory;
//   - Conflict: the original insert did land, the slot is committed;
//   - transient failure after retries: log and drop, the slot stays Pending
//     in memory and the next cold-start hydration resolves it.
func (te *TransactionEngine) rollback(ctx context.Context, tx userbase.Transaction) {
	rb := userbase.Transaction{
		UserID:     tx.UserID,
		SequenceNo: tx.SequenceNo,
		ItemID:     tx.ItemID,
		Command:    userbase.CommandRollback,
	}

	var conflicted bool
	err := te.retrier(ctx, func(ctx context.Context) error {
		err := te.store.AddOrRollback(ctx, rb)
		if userbase.IsCode(err, userbase.Conflict) {
			conflicted = true
			return nil
		}
		return userbase.RetryableError(err)
	}, nil)

	if err != nil {
		log.Warn(fmt.Sprintf("rollback of (%s, %d) gave up, slot stays pending until restart, details: %v",
			tx.UserID, tx.SequenceNo, err))
		return
	}
	if conflicted {
		// The conditional rewrite was rejected because a non-Rollback record
		// occupies the slot: the original insert was durable after all.
		log.Info(fmt.Sprintf("insert of (%s, %d) was durable despite the reported failure, marking committed",
			tx.UserID, tx.SequenceNo))
		te.memcache.TransactionPersisted(ctx, tx)
		return
	}
	te.memcache.TransactionRolledBack(ctx, rb)
}

// waitPendingRollbacks blocks until every scheduled rollback ran. Used by
// Close and tests.
func (te *TransactionEngine) waitPendingRollbacks() {
	te.pendingRollbacks.Wait()
}

// Close drains the rollback queue and stops the background workers.
func (te *TransactionEngine) Close() error {
	var err error
	te.closeOnce.Do(func() {
		te.pendingRollbacks.Wait()
		close(te.rollbackQueue)
		err = te.rollbackWorkers.Wait()
	})
	return err
}
