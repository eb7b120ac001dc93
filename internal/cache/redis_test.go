package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T, prefix string) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, prefix), mr
}

func TestRedis_SetThenGet(t *testing.T) {
	r, _ := newTestRedis(t, "")
	ctx := context.Background()

	if _, ok, err := r.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := r.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := r.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(got) != "v" {
		t.Errorf("expected v, got %q", got)
	}
}

func TestRedis_KeyPrefix(t *testing.T) {
	r, mr := newTestRedis(t, "bglist")
	ctx := context.Background()

	if err := r.Set(ctx, "list:Domain:x", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("bglist:list:Domain:x") {
		t.Errorf("expected prefixed key, have keys %v", mr.Keys())
	}
}

func TestRedis_Expiry(t *testing.T) {
	r, mr := newTestRedis(t, "")
	ctx := context.Background()

	if err := r.Set(ctx, "k", []byte("v"), 10*time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := mr.TTL("k"); ttl != 10*time.Second {
		t.Errorf("expected ttl 10s, got %v", ttl)
	}

	mr.FastForward(10 * time.Second)
	if _, ok, err := r.Get(ctx, "k"); ok || err != nil {
		t.Errorf("expected miss after expiry, got ok=%v err=%v", ok, err)
	}
}

func TestRedis_NonPositiveTTLStoresNothing(t *testing.T) {
	r, mr := newTestRedis(t, "")

	if err := r.Set(context.Background(), "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if mr.Exists("k") {
		t.Error("expected nothing stored for zero ttl")
	}
}

func TestRedis_ServerDownReturnsError(t *testing.T) {
	r, mr := newTestRedis(t, "")
	mr.Close()

	ctx := context.Background()
	if _, _, err := r.Get(ctx, "k"); err == nil {
		t.Error("expected Get error with server down")
	}
	if err := r.Set(ctx, "k", []byte("v"), time.Second); err == nil {
		t.Error("expected Set error with server down")
	}
}
