// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "catalog:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type cachedPage struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(host, port, os.Getenv("VALKEY_PASSWORD"), 15)
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	pong, err := client.Ping(context.Background()).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

func TestConnectValkeyUnreachable(t *testing.T) {
	if _, err := ConnectValkey("127.0.0.1", "1", "", 0); err == nil {
		t.Error("expected error for unreachable Valkey")
	}
}

func TestQueryCacheSetAndGet(t *testing.T) {
	client := testValkeyClient(t)
	qc := NewQueryCache(client, time.Minute)
	ctx := context.Background()

	gen, ok := qc.Generation(ctx)
	if !ok {
		t.Fatal("Generation should be readable")
	}

	var got cachedPage
	if qc.Get(ctx, gen, "packages:test", &got) {
		t.Error("expected cache miss")
	}

	want := cachedPage{Items: []string{"amalfi", "crete"}, Total: 2}
	qc.Set(ctx, gen, "packages:test", want)

	if !qc.Get(ctx, gen, "packages:test", &got) {
		t.Fatal("expected cache hit")
	}
	if got.Total != 2 || len(got.Items) != 2 || got.Items[0] != "amalfi" {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if qc.Get(ctx, gen+1, "packages:test", &got) {
		t.Error("entry leaked into another generation")
	}
}

func TestQueryCacheUndecodableIsMiss(t *testing.T) {
	client := testValkeyClient(t)
	qc := NewQueryCache(client, time.Minute)
	ctx := context.Background()

	client.Set(ctx, entryKey(0, "broken"), "not json", time.Minute)

	var got cachedPage
	if qc.Get(ctx, 0, "broken", &got) {
		t.Error("expected miss for undecodable entry")
	}
}

func TestQueryCacheInvalidateAll(t *testing.T) {
	client := testValkeyClient(t)
	qc := NewQueryCache(client, time.Minute)
	ctx := context.Background()

	client.Set(ctx, "unrelated:key", "keep", time.Minute)
	t.Cleanup(func() { client.Del(ctx, "unrelated:key") })

	gen, _ := qc.Generation(ctx)
	for _, key := range []string{"packages:a", "packages:b", "posts:c"} {
		qc.Set(ctx, gen, key, cachedPage{Total: 1})
	}

	qc.InvalidateAll(ctx)

	next, ok := qc.Generation(ctx)
	if !ok || next != gen+1 {
		t.Fatalf("generation after InvalidateAll: got %d (ok=%t), want %d", next, ok, gen+1)
	}
	var got cachedPage
	for _, key := range []string{"packages:a", "packages:b", "posts:c"} {
		if qc.Get(ctx, next, key, &got) {
			t.Errorf("expected miss for %q after InvalidateAll", key)
		}
		if n, _ := client.Exists(ctx, entryKey(gen, key)).Result(); n != 0 {
			t.Errorf("old entry %q was not deleted", key)
		}
	}
	if v, _ := client.Get(ctx, "unrelated:key").Result(); v != "keep" {
		t.Error("InvalidateAll removed a key outside the catalog prefix")
	}
}

// TestQueryCacheLateSetAfterInvalidate covers a read that loaded its rows
// before a mutation and writes them back after the mutation invalidated.
func TestQueryCacheLateSetAfterInvalidate(t *testing.T) {
	client := testValkeyClient(t)
	qc := NewQueryCache(client, time.Minute)
	ctx := context.Background()

	readerGen, _ := qc.Generation(ctx)
	qc.InvalidateAll(ctx)
	qc.Set(ctx, readerGen, "packages:page1", cachedPage{Items: []string{"hidden"}, Total: 1})

	gen, _ := qc.Generation(ctx)
	var got cachedPage
	if qc.Get(ctx, gen, "packages:page1", &got) {
		t.Errorf("stale result served after invalidation: %+v", got)
	}

	// The next invalidation sweeps the dead entry.
	qc.InvalidateAll(ctx)
	if n, _ := client.Exists(ctx, entryKey(readerGen, "packages:page1")).Result(); n != 0 {
		t.Error("dead-generation entry survived InvalidateAll")
	}
}

func TestQueryCacheUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()

	qc := NewQueryCache(client, time.Minute)
	if _, ok := qc.Generation(context.Background()); ok {
		t.Error("Generation should report unavailable for an unreachable Valkey")
	}
}

func TestEntryKey(t *testing.T) {
	if got := entryKey(12, "packages:x"); got != "catalog:q:12:packages:x" {
		t.Errorf("entryKey = %q", got)
	}
	if strings.HasPrefix(entryKey(12, "x"), entryKey(1, "")) {
		t.Error("generation 1 prefix matches generation 12 keys")
	}
}

func TestNewQueryCacheDefaultTTL(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	qc := NewQueryCache(client, 0)
	if qc.ttl != DefaultQueryTTL {
		t.Errorf("expected DefaultQueryTTL (%v), got %v", DefaultQueryTTL, qc.ttl)
	}
}
