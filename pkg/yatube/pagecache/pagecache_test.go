package pagecache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client, ttl), mr
}

func TestSetAndGet(t *testing.T) {
	store, _ := setupTestStore(t, 20*time.Second)
	ctx := context.Background()

	if _, ok := store.Get(ctx, "/"); ok {
		t.Error("Expected a miss before any Set")
	}

	store.Set(ctx, "/", []byte(`{"page":1}`))

	body, ok := store.Get(ctx, "/")
	if !ok {
		t.Fatal("Expected a hit after Set")
	}
	if string(body) != `{"page":1}` {
		t.Errorf("Unexpected cached body: %s", body)
	}

	// keys are distinct per path
	if _, ok := store.Get(ctx, "/?page=2"); ok {
		t.Error("Different key should not hit")
	}
}

func TestExpiry(t *testing.T) {
	store, mr := setupTestStore(t, 20*time.Second)
	ctx := context.Background()

	store.Set(ctx, "/", []byte("body"))

	mr.FastForward(19 * time.Second)
	if _, ok := store.Get(ctx, "/"); !ok {
		t.Error("Entry should survive until the TTL runs out")
	}

	mr.FastForward(2 * time.Second)
	if _, ok := store.Get(ctx, "/"); ok {
		t.Error("Entry should expire after the TTL")
	}
}

func TestDeleteAndClear(t *testing.T) {
	store, _ := setupTestStore(t, time.Minute)
	ctx := context.Background()

	store.Set(ctx, "/", []byte("index"))
	store.Set(ctx, "/?page=2", []byte("second"))

	store.Delete(ctx, "/")
	if _, ok := store.Get(ctx, "/"); ok {
		t.Error("Deleted entry should miss")
	}
	if _, ok := store.Get(ctx, "/?page=2"); !ok {
		t.Error("Other entries should survive Delete")
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := store.Get(ctx, "/?page=2"); ok {
		t.Error("Clear should drop every entry")
	}
}

func TestNilClient(t *testing.T) {
	store := New(nil, time.Minute)
	ctx := context.Background()

	// all operations are safe no-ops without Redis
	store.Set(ctx, "/", []byte("body"))
	if _, ok := store.Get(ctx, "/"); ok {
		t.Error("Disabled cache should always miss")
	}
	store.Delete(ctx, "/")
	if err := store.Clear(ctx); err != nil {
		t.Errorf("Clear on disabled cache should be a no-op, got %v", err)
	}
}
