// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// query.go caches public listing results in Valkey as JSON. Keys carry a
// generation number; every admin mutation bumps it, so a result written by a
// read that started before the mutation lands under a dead generation and is
// never served. Old generations are deleted eagerly and expire via the TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// queryKeyPrefix is the Valkey key prefix for cached listings.
	queryKeyPrefix = "catalog:q:"
	// generationKey holds the current cache generation.
	generationKey = "catalog:gen"

	// DefaultQueryTTL is how long a listing stays cached.
	DefaultQueryTTL = 2 * time.Minute
)

// QueryCache stores listing results in Valkey. Errors are logged and
// treated as misses; the cache never fails a request.
type QueryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewQueryCache creates a query cache backed by the given Valkey client.
func NewQueryCache(client *redis.Client, ttl time.Duration) *QueryCache {
	if ttl <= 0 {
		ttl = DefaultQueryTTL
	}
	return &QueryCache{client: client, ttl: ttl}
}

func entryKey(gen int64, key string) string {
	return queryKeyPrefix + strconv.FormatInt(gen, 10) + ":" + key
}

// Generation returns the current generation, 0 before the first
// invalidation. ok is false when Valkey cannot be read.
func (qc *QueryCache) Generation(ctx context.Context) (int64, bool) {
	gen, err := qc.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		slog.Warn("query cache generation error", "error", err)
		return 0, false
	}
	return gen, true
}

// Get decodes the value cached for key in generation gen into dst. Reports
// false on a miss, a Valkey error or an undecodable entry.
func (qc *QueryCache) Get(ctx context.Context, gen int64, key string, dst any) bool {
	val, err := qc.client.Get(ctx, entryKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		slog.Warn("query cache get error", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(val, dst); err != nil {
		slog.Warn("query cache decode error", "key", key, "error", err)
		return false
	}
	slog.Debug("query cache hit", "key", key, "generation", gen)
	return true
}

// Set stores v under key in generation gen with the configured TTL.
func (qc *QueryCache) Set(ctx context.Context, gen int64, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("query cache encode error", "key", key, "error", err)
		return
	}
	if err := qc.client.Set(ctx, entryKey(gen, key), data, qc.ttl).Err(); err != nil {
		slog.Warn("query cache set error", "key", key, "error", err)
	}
}

// InvalidateAll starts a new generation, then deletes the entries of the
// older ones.
func (qc *QueryCache) InvalidateAll(ctx context.Context) {
	// Without a new generation every entry is stale, including those that
	// look current.
	current := "\x00"
	gen, err := qc.client.Incr(ctx, generationKey).Result()
	if err != nil {
		slog.Warn("query cache generation bump error", "error", err)
	} else {
		current = entryKey(gen, "")
	}

	var cursor uint64
	var deleted int
	for {
		keys, next, err := qc.client.Scan(ctx, cursor, queryKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("query cache scan error", "error", err)
			return
		}
		stale := keys[:0]
		for _, k := range keys {
			if !strings.HasPrefix(k, current) {
				stale = append(stale, k)
			}
		}
		if len(stale) > 0 {
			if err := qc.client.Del(ctx, stale...).Err(); err != nil {
				slog.Warn("query cache bulk delete error", "error", err)
			}
			deleted += len(stale)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("query cache cleared", "deleted", deleted, "generation", gen)
	}
}
