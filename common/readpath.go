package common

import (
	"context"

	"github.com/nuibits/userbase"
)

// TransactionLogTail is the result of a tail read: the bundle watermark and
// the committed transactions above it.
type TransactionLogTail struct {
	BundleSequenceNo int64                  `json:"bundle_seq_no"`
	Transactions     []userbase.Transaction `json:"transactions"`
}

// ReadPath serves transaction-log tails from the in-memory projection and
// snapshot downloads streamed from the blob store.
type ReadPath struct {
	memcache *Memcache
	bundles  userbase.BundleStore
}

// NewReadPath wires the read path from its collaborators.
func NewReadPath(memcache *Memcache, bundles userbase.BundleStore) *ReadPath {
	return &ReadPath{
		memcache: memcache,
		bundles:  bundles,
	}
}

// QueryTransactionLog returns the user's watermark together with the
// committed transactions above it. The pair is taken under one critical
// section, a reader never observes a watermark advance without the matching
// truncation.
func (rp *ReadPath) QueryTransactionLog(ctx context.Context, userID string) (TransactionLogTail, error) {
	bundleSeq, txs, err := rp.memcache.QuerySnapshot(ctx, userID)
	if err != nil {
		return TransactionLogTail{}, err
	}
	return TransactionLogTail{
		BundleSequenceNo: bundleSeq,
		Transactions:     txs,
	}, nil
}

// QueryDbState streams the bundle at the given sequence number, forwarding
// content length and MIME type. NotFound propagates as a distinct error.
func (rp *ReadPath) QueryDbState(ctx context.Context, userID string, bundleSeq int64) (userbase.BundleObject, error) {
	return rp.bundles.Download(ctx, userbase.BundleKey(userID, bundleSeq))
}
