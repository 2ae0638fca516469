// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the Valkey-backed cache front. Values are stored as JSON. All
// methods swallow backend errors after logging them — a broken cache must
// never fail a request. A nil *Store is a valid no-op cache, so callers can
// run without Valkey entirely.
type Store struct {
	client *redis.Client
}

// NewStore creates a cache store backed by the given Valkey client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Get fetches and JSON-decodes a cached value into dest. Returns false on
// miss, on backend error, or when the cached payload is empty or JSON null
// — an empty payload is deliberately treated as a miss so a recompute
// replaces it.
func (s *Store) Get(ctx context.Context, key string, dest any) bool {
	if s == nil {
		return false
	}
	payload, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		slog.Warn("cache get error", "key", key, "error", err)
		return false
	}
	if len(payload) == 0 || string(payload) == "null" {
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		slog.Warn("cache decode error", "key", key, "error", err)
		return false
	}
	slog.Debug("cache hit", "key", key)
	return true
}

// Set stores a JSON-encoded value with the given TTL.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if s == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		slog.Warn("cache encode error", "key", key, "error", err)
		return
	}
	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		slog.Warn("cache set error", "key", key, "error", err)
	}
}

// Del removes one or more keys. Deleting an absent key is a no-op.
func (s *Store) Del(ctx context.Context, keys ...string) {
	if s == nil || len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("cache delete error", "keys", keys, "error", err)
	}
}

// InvalidateCategories removes the whole category cache namespace by
// scanning for the prefixes. Used after reorder, since every position may
// have shifted.
func (s *Store) InvalidateCategories(ctx context.Context) {
	if s == nil {
		return
	}
	s.Del(ctx, KeyCategoryAll)
	for _, prefix := range []string{"category:*", "categories:*"} {
		s.deleteByPattern(ctx, prefix)
	}
}

// deleteByPattern removes every key matching the pattern via SCAN.
func (s *Store) deleteByPattern(ctx context.Context, pattern string) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("cache scan error", "pattern", pattern, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("cache namespace cleared", "pattern", pattern, "deleted", deleted)
	}
}

// GetOrSet returns the cached value for key, or computes it via factory,
// stores it with the TTL, and returns it. Factory errors propagate; cache
// errors do not.
func GetOrSet[T any](ctx context.Context, s *Store, key string, ttl time.Duration, factory func() (T, error)) (T, error) {
	var cached T
	if s.Get(ctx, key, &cached) {
		return cached, nil
	}

	value, err := factory()
	if err != nil {
		return value, err
	}
	s.Set(ctx, key, value, ttl)
	return value, nil
}
