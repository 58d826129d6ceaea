// Package cassandra contains the durable store adapters of userbase: the
// per-user transaction log table and the user records table. Conditional
// writes ride on Cassandra lightweight transactions.
package cassandra

import (
	"context"
	"fmt"

	"github.com/gocql/gocql"

	"github.com/nuibits/userbase"
)

type transactionStore struct{}

// NewTransactionStore returns a Cassandra-backed implementation of userbase.TransactionStore.
func NewTransactionStore() userbase.TransactionStore {
	return &transactionStore{}
}

// Add inserts the transaction into the log table guarded by IF NOT EXISTS. A lost
// CAS means the (user_id, seq_no) slot is already taken and maps to Conflict.
func (ts *transactionStore) Add(ctx context.Context, tx userbase.Transaction) error {
	if connection == nil {
		return userbase.NewError(userbase.TransientFailure,
			fmt.Errorf("cassandra connection is closed; call OpenConnection(config) to open it"))
	}

	insertStatement := fmt.Sprintf("INSERT INTO %s.%s (user_id, seq_no, item_id, cmd, record) VALUES(?,?,?,?,?) IF NOT EXISTS;",
		connection.Config.Keyspace, connection.Config.TransactionTable)
	qry := connection.Session.Query(insertStatement, tx.UserID, tx.SequenceNo, tx.ItemID, int(tx.Command), tx.Record).WithContext(ctx)
	if connection.Config.ConsistencyBook.TransactionAdd > gocql.Any {
		qry.Consistency(connection.Config.ConsistencyBook.TransactionAdd)
	}

	applied, err := qry.MapScanCAS(map[string]interface{}{})
	if err != nil {
		return userbase.NewError(userbase.TransientFailure, err)
	}
	if !applied {
		return userbase.Errorf(userbase.Conflict, "slot (%s, %d) already exists", tx.UserID, tx.SequenceNo)
	}
	return nil
}

// AddOrRollback writes the transaction if the slot is absent or the existing
// record is a Rollback. The latter case uses a conditional rewrite so a
// concurrent commit can never be clobbered.
func (ts *transactionStore) AddOrRollback(ctx context.Context, tx userbase.Transaction) error {
	if connection == nil {
		return userbase.NewError(userbase.TransientFailure,
			fmt.Errorf("cassandra connection is closed; call OpenConnection(config) to open it"))
	}

	insertStatement := fmt.Sprintf("INSERT INTO %s.%s (user_id, seq_no, item_id, cmd, record) VALUES(?,?,?,?,?) IF NOT EXISTS;",
		connection.Config.Keyspace, connection.Config.TransactionTable)
	qry := connection.Session.Query(insertStatement, tx.UserID, tx.SequenceNo, tx.ItemID, int(tx.Command), tx.Record).WithContext(ctx)
	if connection.Config.ConsistencyBook.TransactionAdd > gocql.Any {
		qry.Consistency(connection.Config.ConsistencyBook.TransactionAdd)
	}

	existing := map[string]interface{}{}
	applied, err := qry.MapScanCAS(existing)
	if err != nil {
		return userbase.NewError(userbase.TransientFailure, err)
	}
	if applied {
		return nil
	}

	// Slot is occupied. Rewrite is only legal when the occupant is a Rollback.
	cmd, _ := existing["cmd"].(int)
	if userbase.Command(cmd) != userbase.CommandRollback {
		return userbase.Errorf(userbase.Conflict, "slot (%s, %d) holds a durable %v record",
			tx.UserID, tx.SequenceNo, userbase.Command(cmd))
	}

	updateStatement := fmt.Sprintf("UPDATE %s.%s SET item_id = ?, cmd = ?, record = ? WHERE user_id = ? AND seq_no = ? IF cmd = ?;",
		connection.Config.Keyspace, connection.Config.TransactionTable)
	qry = connection.Session.Query(updateStatement, tx.ItemID, int(tx.Command), tx.Record, tx.UserID, tx.SequenceNo,
		int(userbase.CommandRollback)).WithContext(ctx)
	if connection.Config.ConsistencyBook.TransactionAdd > gocql.Any {
		qry.Consistency(connection.Config.ConsistencyBook.TransactionAdd)
	}
	applied, err = qry.MapScanCAS(map[string]interface{}{})
	if err != nil {
		return userbase.NewError(userbase.TransientFailure, err)
	}
	if !applied {
		return userbase.Errorf(userbase.Conflict, "slot (%s, %d) was rewritten concurrently", tx.UserID, tx.SequenceNo)
	}
	return nil
}

// GetAll reads the user's entire partition ordered by sequence number. Used by
// the memcache to rebuild its projection on cold start.
func (ts *transactionStore) GetAll(ctx context.Context, userID string) ([]userbase.Transaction, error) {
	if connection == nil {
		return nil, userbase.NewError(userbase.TransientFailure,
			fmt.Errorf("cassandra connection is closed; call OpenConnection(config) to open it"))
	}

	selectStatement := fmt.Sprintf("SELECT seq_no, item_id, cmd, record FROM %s.%s WHERE user_id = ?;",
		connection.Config.Keyspace, connection.Config.TransactionTable)
	qry := connection.Session.Query(selectStatement, userID).WithContext(ctx)
	if connection.Config.ConsistencyBook.TransactionGet > gocql.Any {
		qry.Consistency(connection.Config.ConsistencyBook.TransactionGet)
	}

	iter := qry.Iter()
	r := make([]userbase.Transaction, 0, iter.NumRows())
	var seqNo int64
	var itemID string
	var cmd int
	var record []byte
	for iter.Scan(&seqNo, &itemID, &cmd, &record) {
		tx := userbase.Transaction{
			UserID:     userID,
			SequenceNo: seqNo,
			ItemID:     itemID,
			Command:    userbase.Command(cmd),
		}
		if len(record) > 0 {
			tx.Record = append([]byte(nil), record...)
		}
		r = append(r, tx)
		record = nil
	}
	if err := iter.Close(); err != nil {
		return r, userbase.NewError(userbase.TransientFailure, err)
	}
	return r, nil
}
