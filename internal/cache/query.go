// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// query.go caches the JSON results of public RPC queries in Valkey, keyed by
// method and canonical params, so repeated home page loads skip the database.
// Any admin mutation clears every entry.
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"vivabem/internal/metrics"
)

const (
	// queryKeyPrefix is the Valkey key prefix for cached query results.
	queryKeyPrefix = "rpc:"

	// generationKey counts invalidations. It lives outside queryKeyPrefix so
	// clearing the entries never resets it.
	generationKey = "rpcgen"

	// DefaultQueryTTL is how long a query result stays cached.
	DefaultQueryTTL = 5 * time.Minute
)

// QueryCache stores serialized query results in Valkey. A nil client
// disables caching: every Get misses and Set/InvalidateAll do nothing.
type QueryCache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewQueryCache creates a query cache backed by the given Valkey client.
func NewQueryCache(client *redis.Client, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	if ttl == 0 {
		ttl = DefaultQueryTTL
	}
	return &QueryCache{client: client, ttl: ttl, metrics: m}
}

// Key returns the cache key for method called with params. Params are
// re-encoded so that key order and whitespace do not matter.
func Key(method string, params json.RawMessage) string {
	canonical := []byte("null")
	if len(bytes.TrimSpace(params)) > 0 {
		var v any
		if err := json.Unmarshal(params, &v); err == nil {
			if b, err := json.Marshal(v); err == nil {
				canonical = b
			}
		}
	}
	sum := sha256.Sum256(canonical)
	return method + ":" + hex.EncodeToString(sum[:12])
}

// Versioned scopes key to the current invalidation generation. Read it
// before loading the data to cache: a result computed before an
// invalidation is then stored under the old generation and never served.
// The bool is false when caching should be skipped for this call.
func (qc *QueryCache) Versioned(ctx context.Context, key string) (string, bool) {
	if qc == nil || qc.client == nil {
		return key, false
	}
	gen, err := qc.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		zap.S().Warnw("query cache generation read error", "error", err)
		return key, false
	}
	return strconv.FormatInt(gen, 10) + ":" + key, true
}

// Get retrieves a cached result. The bool is false on miss or error.
func (qc *QueryCache) Get(ctx context.Context, method, key string) ([]byte, bool) {
	if qc == nil || qc.client == nil {
		return nil, false
	}
	val, err := qc.client.Get(ctx, queryKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		qc.metrics.RecordCacheMiss(ctx, method)
		return nil, false
	}
	if err != nil {
		zap.S().Warnw("query cache get error", "key", key, "error", err)
		qc.metrics.RecordCacheMiss(ctx, method)
		return nil, false
	}
	qc.metrics.RecordCacheHit(ctx, method)
	return val, true
}

// Set stores a serialized result with the configured TTL.
func (qc *QueryCache) Set(ctx context.Context, key string, result []byte) {
	if qc == nil || qc.client == nil {
		return
	}
	if err := qc.client.Set(ctx, queryKeyPrefix+key, result, qc.ttl).Err(); err != nil {
		zap.S().Warnw("query cache set error", "key", key, "error", err)
	}
}

// InvalidateAll bumps the generation, which hides every earlier entry at
// once, then removes those entries by scanning for the prefix.
func (qc *QueryCache) InvalidateAll(ctx context.Context) {
	if qc == nil || qc.client == nil {
		return
	}
	if err := qc.client.Incr(ctx, generationKey).Err(); err != nil {
		zap.S().Warnw("query cache generation bump error", "error", err)
	}
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := qc.client.Scan(ctx, cursor, queryKeyPrefix+"*", 100).Result()
		if err != nil {
			zap.S().Warnw("query cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := qc.client.Del(ctx, keys...).Err(); err != nil {
				zap.S().Warnw("query cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		zap.S().Debugw("query cache cleared", "deleted", deleted)
	}
}
