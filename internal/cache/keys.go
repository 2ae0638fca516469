// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"time"

	"github.com/google/uuid"
)

// TTL tiers for cached values.
const (
	TTLShort  = 5 * time.Minute
	TTLMedium = 30 * time.Minute
	TTLLong   = time.Hour
)

// KeyCategoryAll is the cache key for the full ordered category list.
const KeyCategoryAll = "categories:all"

// KeyCategoryByID returns the cache key for a single category record.
func KeyCategoryByID(id uuid.UUID) string {
	return "category:" + id.String()
}

// KeyCategoryStats returns the cache key for a category's stats.
func KeyCategoryStats(id uuid.UUID) string {
	return "category:stats:" + id.String()
}

// KeyCategoryTags returns the cache key for a category's tags.
func KeyCategoryTags(id uuid.UUID) string {
	return "category:tags:" + id.String()
}

// KeySearch returns the cache key for a search result set.
func KeySearch(query string) string {
	return "search:" + query
}

// CategoryKeys returns every per-id key tied to one category. Used to build
// the invalidation set for a single-category mutation.
func CategoryKeys(id uuid.UUID) []string {
	return []string{
		KeyCategoryByID(id),
		KeyCategoryStats(id),
		KeyCategoryTags(id),
	}
}
