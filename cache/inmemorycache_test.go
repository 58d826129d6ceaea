package cache

import (
	"context"
	"testing"
	"time"
)

var ctx = context.Background()

func Test_Cache_SetGetDelete(t *testing.T) {
	c := NewInMemoryCache()

	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	found, v, err := c.Get(ctx, "k")
	if err != nil || !found || v != "v" {
		t.Fatalf("Get mismatch: found=%v v=%q err=%v", found, v, err)
	}

	found, _ = c.Delete(ctx, []string{"k"})
	if !found {
		t.Fatalf("Delete did not find the key")
	}
	if found, _, _ := c.Get(ctx, "k"); found {
		t.Fatalf("key survived deletion")
	}
}

func Test_Cache_Expiry(t *testing.T) {
	defer func() { Now = time.Now }()
	now := time.Now()
	Now = func() time.Time { return now }

	c := NewInMemoryCache()
	c.Set(ctx, "k", "v", time.Minute)

	now = now.Add(59 * time.Second)
	if found, _, _ := c.Get(ctx, "k"); !found {
		t.Fatalf("key expired early")
	}
	now = now.Add(2 * time.Second)
	if found, _, _ := c.Get(ctx, "k"); found {
		t.Fatalf("key survived past its TTL")
	}
}

func Test_Cache_Struct(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	c := NewInMemoryCache()

	if err := c.SetStruct(ctx, "k", payload{Name: "a", Count: 3}, 0); err != nil {
		t.Fatalf("SetStruct error: %v", err)
	}
	var got payload
	found, err := c.GetStruct(ctx, "k", &got)
	if err != nil || !found {
		t.Fatalf("GetStruct failed: found=%v err=%v", found, err)
	}
	if got.Name != "a" || got.Count != 3 {
		t.Fatalf("struct mismatch: %+v", got)
	}
}

func Test_Cache_FormatLockKey(t *testing.T) {
	c := NewInMemoryCache()
	if got := c.FormatLockKey("u"); got != "Lu" {
		t.Fatalf("lock key mismatch: %q", got)
	}
}
