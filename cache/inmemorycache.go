// Package cache contains the in-process Cache implementation used in
// standalone (single process) mode and in tests. It offers the same surface
// as the redis package, including the cooperative lock API, so the bundle
// lock works against either backend.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/nuibits/userbase"
)

type item struct {
	data       []byte
	expiration time.Time
}

type InMemoryCache struct {
	mu        sync.RWMutex
	items     map[string]item
	marshaler userbase.Marshaler
}

// Now is the clock used for expiry checks; tests inject a synthetic one.
var Now = time.Now

// NewInMemoryCache returns an in-process userbase.Cache.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		items:     make(map[string]item),
		marshaler: userbase.NewMarshaler(),
	}
}

func (c *InMemoryCache) set(key string, data []byte, expiration time.Duration) {
	var exp time.Time
	if expiration > 0 {
		exp = Now().Add(expiration)
	}
	c.items[key] = item{
		data:       data,
		expiration: exp,
	}
}

// get returns the live item for the key, expiring it inline when stale.
// Caller holds the write lock.
func (c *InMemoryCache) get(key string) (item, bool) {
	it, ok := c.items[key]
	if !ok {
		return item{}, false
	}
	if !it.expiration.IsZero() && Now().After(it.expiration) {
		delete(c.items, key)
		return item{}, false
	}
	return it, true
}

func (c *InMemoryCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	// No caching if expiration < 0.
	if expiration < 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, []byte(value), expiration)
	return nil
}

func (c *InMemoryCache) Get(ctx context.Context, key string) (bool, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.get(key)
	if !ok {
		return false, "", nil
	}
	return true, string(it.data), nil
}

func (c *InMemoryCache) GetEx(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.get(key)
	if !ok {
		return false, "", nil
	}
	if expiration > 0 {
		it.expiration = Now().Add(expiration)
		c.items[key] = it
	}
	return true, string(it.data), nil
}

func (c *InMemoryCache) SetStruct(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if expiration < 0 {
		return nil
	}
	ba, err := c.marshaler.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, ba, expiration)
	return nil
}

func (c *InMemoryCache) GetStruct(ctx context.Context, key string, target interface{}) (bool, error) {
	c.mu.Lock()
	it, ok := c.get(key)
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := c.marshaler.Unmarshal(it.data, target); err != nil {
		return false, err
	}
	return true, nil
}

func (c *InMemoryCache) Delete(ctx context.Context, keys []string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	found := false
	for _, k := range keys {
		if _, ok := c.items[k]; ok {
			delete(c.items, k)
			found = true
		}
	}
	return found, nil
}

// Clear removes all entries. Test helper.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]item)
}
