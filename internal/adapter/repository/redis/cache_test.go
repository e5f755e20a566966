package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/txingest/internal/usecase"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "summary", []byte(`[{"count":1}]`), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "summary")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(val) != `[{"count":1}]` {
		t.Fatalf("unexpected value %s", val)
	}

	if !mr.Exists("cache:summary") {
		t.Fatalf("expected key to be stored under the cache prefix")
	}
}

func TestCacheMiss(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	_, err := NewCache(client).Get(context.Background(), "absent")
	if !errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}
}

func TestCacheExpires(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "summary", []byte("x"), 30*time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(31 * time.Second)

	if _, err := cache.Get(ctx, "summary"); !errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected expired key to miss, got %v", err)
	}
}

func TestCacheDelete(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "summary", []byte("x"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.Delete(ctx, "summary"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := cache.Get(ctx, "summary"); !errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected deleted key to miss, got %v", err)
	}
}

func TestCacheUnavailable(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()
	mr.Close()

	_, err := NewCache(client).Get(context.Background(), "summary")
	if err == nil || errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
