package userbase

import (
	"time"
)

const (
	// DefaultMaxItemBytes caps a single record payload.
	DefaultMaxItemBytes = 400 * 1024
	// DefaultMaxBatchBytes caps the summed record payloads of one batch.
	DefaultMaxBatchBytes = 10 * 1024 * 1024
	// DefaultMaxBatchDeletes caps the number of deletes in one batch.
	DefaultMaxBatchDeletes = 100
	// DefaultBundleLockLease is how long an acquired bundle lock lives
	// before it silently expires.
	DefaultBundleLockLease = 30 * time.Second
)

// Options holds the engine configuration. Zero fields take defaults via
// DefaultOptions or ensureDefaults on the consuming side.
type Options struct {
	// MaxItemBytes caps a single record payload size. Defaults to 400 KiB.
	MaxItemBytes int `json:"max_item_bytes,omitempty"`
	// MaxBatchBytes caps the total record payload size of a batch. Defaults to 10 MiB.
	MaxBatchBytes int `json:"max_batch_bytes,omitempty"`
	// MaxBatchDeletes caps the number of Delete commands in a batch. Defaults to 100.
	MaxBatchDeletes int `json:"max_batch_deletes,omitempty"`
	// BundleLockLease is the advisory bundle lock's lease duration. Defaults to 30s.
	BundleLockLease time.Duration `json:"bundle_lock_lease,omitempty"`

	// TransactionTableName is the durable store's transaction table. Defaults to "t_by_user".
	TransactionTableName string `json:"transaction_table,omitempty"`
	// UserTableName is the durable store's user table. Defaults to "users".
	UserTableName string `json:"user_table,omitempty"`
	// BundleBucketName is the blob store bucket holding bundles.
	BundleBucketName string `json:"bundle_bucket,omitempty"`
}

// DefaultOptions returns Options with every field at its default value.
func DefaultOptions() Options {
	o := Options{}
	o.EnsureDefaults()
	return o
}

// EnsureDefaults fills zero fields with their default values.
func (o *Options) EnsureDefaults() {
	if o.MaxItemBytes <= 0 {
		o.MaxItemBytes = DefaultMaxItemBytes
	}
	if o.MaxBatchBytes <= 0 {
		o.MaxBatchBytes = DefaultMaxBatchBytes
	}
	if o.MaxBatchDeletes <= 0 {
		o.MaxBatchDeletes = DefaultMaxBatchDeletes
	}
	if o.BundleLockLease <= 0 {
		o.BundleLockLease = DefaultBundleLockLease
	}
	if o.TransactionTableName == "" {
		o.TransactionTableName = "t_by_user"
	}
	if o.UserTableName == "" {
		o.UserTableName = "users"
	}
	if o.BundleBucketName == "" {
		o.BundleBucketName = "userbase-bundles"
	}
}
