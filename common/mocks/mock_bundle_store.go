package mocks

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/nuibits/userbase"
)

type bundleBlob struct {
	data        []byte
	contentType string
}

// MockBundleStore is an in-memory BundleStore. Upload buffers the body, which
// is fine at test sizes.
type MockBundleStore struct {
	mu     sync.Mutex
	lookup map[string]bundleBlob

	// ErrorOnUpload, when set, is reported by every Upload call; nothing is stored.
	ErrorOnUpload error
}

// NewMockBundleStore instantiates a new (mocked) bundle store.
func NewMockBundleStore() *MockBundleStore {
	return &MockBundleStore{
		lookup: make(map[string]bundleBlob),
	}
}

func (bs *MockBundleStore) Upload(ctx context.Context, key string, contentType string, body io.Reader) error {
	if bs.ErrorOnUpload != nil {
		return bs.ErrorOnUpload
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return userbase.NewError(userbase.TransientFailure, err)
	}
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lookup[key] = bundleBlob{
		data:        data,
		contentType: contentType,
	}
	return nil
}

func (bs *MockBundleStore) Download(ctx context.Context, key string) (userbase.BundleObject, error) {
	bs.mu.Lock()
	blob, ok := bs.lookup[key]
	bs.mu.Unlock()
	if !ok {
		return userbase.BundleObject{}, userbase.Errorf(userbase.NotFound, "bundle %s not found", key)
	}
	return userbase.BundleObject{
		Body:          io.NopCloser(bytes.NewReader(blob.data)),
		ContentLength: int64(len(blob.data)),
		ContentType:   blob.contentType,
	}, nil
}

// Has reports whether a blob exists at the key. Test assertion helper.
func (bs *MockBundleStore) Has(key string) bool {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	_, ok := bs.lookup[key]
	return ok
}
