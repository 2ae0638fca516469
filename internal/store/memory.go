// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// memory.go provides in-memory CategoryStore and ContentLedger
// implementations. They back tests and ephemeral deployments
// (STORE_DRIVER=memory) with the exact semantics of the Postgres stores.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"catadmin/internal/models"
)

// MemoryCategoryStore is an in-memory CategoryStore guarded by a RWMutex.
type MemoryCategoryStore struct {
	mu    sync.RWMutex
	items []models.Category
}

// NewMemoryCategoryStore returns an empty in-memory category store.
func NewMemoryCategoryStore() *MemoryCategoryStore {
	return &MemoryCategoryStore{}
}

// List returns all categories ordered by position ascending.
func (s *MemoryCategoryStore) List() ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(), nil
}

// snapshot copies the items sorted by position. Callers must hold the lock.
func (s *MemoryCategoryStore) snapshot() []models.Category {
	out := make([]models.Category, len(s.items))
	copy(out, s.items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// FindByID returns the category or nil if the id is unknown.
func (s *MemoryCategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.items {
		if s.items[i].ID == id {
			c := s.items[i]
			return &c, nil
		}
	}
	return nil, nil
}

// FindByName returns the category with the exact name, or nil.
func (s *MemoryCategoryStore) FindByName(name string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.items {
		if s.items[i].Name == name {
			c := s.items[i]
			return &c, nil
		}
	}
	return nil, nil
}

// Create inserts a category at position max(existing)+1.
func (s *MemoryCategoryStore) Create(c *models.Category) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxPos := 0
	for i := range s.items {
		if s.items[i].Position > maxPos {
			maxPos = s.items[i].Position
		}
	}

	now := time.Now()
	stored := models.Category{
		ID:          uuid.New(),
		Name:        c.Name,
		Description: c.Description,
		IconURL:     c.IconURL,
		Active:      c.Active,
		Position:    maxPos + 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.items = append(s.items, stored)
	return &stored, nil
}

// Update applies the non-nil patch fields. Returns nil when the id is unknown.
func (s *MemoryCategoryStore) Update(id uuid.UUID, patch models.CategoryPatch) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyPatch(id, patch), nil
}

// applyPatch mutates the stored record in place. Callers must hold the lock.
func (s *MemoryCategoryStore) applyPatch(id uuid.UUID, patch models.CategoryPatch) *models.Category {
	for i := range s.items {
		if s.items[i].ID == id {
			patch.Apply(&s.items[i])
			c := s.items[i]
			return &c
		}
	}
	return nil
}

// Delete removes the category and re-densifies the remaining positions.
func (s *MemoryCategoryStore) Delete(id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.items {
		if s.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.renumber()
	return true, nil
}

// renumber rewrites positions to 1..N in current position order. Callers
// must hold the lock.
func (s *MemoryCategoryStore) renumber() {
	sort.SliceStable(s.items, func(i, j int) bool { return s.items[i].Position < s.items[j].Position })
	for i := range s.items {
		s.items[i].Position = i + 1
	}
}

// Reorder assigns positions following the given id order, appending any
// unmentioned categories in their prior relative order.
func (s *MemoryCategoryStore) Reorder(order []uuid.UUID) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[uuid.UUID]int, len(s.items))
	for i := range s.items {
		byID[s.items[i].ID] = i
	}

	pos := 1
	assigned := make(map[uuid.UUID]bool, len(order))
	for _, id := range order {
		i, ok := byID[id]
		if !ok || assigned[id] {
			continue
		}
		s.items[i].Position = pos
		s.items[i].UpdatedAt = time.Now()
		assigned[id] = true
		pos++
	}

	rest := make([]int, 0, len(s.items))
	for i := range s.items {
		if !assigned[s.items[i].ID] {
			rest = append(rest, i)
		}
	}
	sort.SliceStable(rest, func(a, b int) bool {
		return s.items[rest[a]].Position < s.items[rest[b]].Position
	})
	for _, i := range rest {
		s.items[i].Position = pos
		s.items[i].UpdatedAt = time.Now()
		pos++
	}

	return s.snapshot(), nil
}

// BulkUpdate applies the patch to each listed category, skipping unknown ids.
func (s *MemoryCategoryStore) BulkUpdate(ids []uuid.UUID, patch models.CategoryPatch) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated []models.Category
	for _, id := range ids {
		if c := s.applyPatch(id, patch); c != nil {
			updated = append(updated, *c)
		}
	}
	return updated, nil
}

// SetContentCount refreshes the cached content count for a category.
func (s *MemoryCategoryStore) SetContentCount(id uuid.UUID, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].ContentCount = count
			return nil
		}
	}
	return nil
}

// MemoryContentLedger is an in-memory ContentLedger guarded by a RWMutex.
type MemoryContentLedger struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*models.Content
}

// NewMemoryContentLedger returns an empty in-memory content ledger.
func NewMemoryContentLedger() *MemoryContentLedger {
	return &MemoryContentLedger{items: make(map[uuid.UUID]*models.Content)}
}

// CountByCategory returns the number of content items in a category.
func (l *MemoryContentLedger) CountByCategory(categoryID uuid.UUID) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	count := 0
	for _, c := range l.items {
		if c.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

// ReassignCategory moves every item from one category to another.
func (l *MemoryContentLedger) ReassignCategory(from, to uuid.UUID) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	moved := 0
	for _, c := range l.items {
		if c.CategoryID == from {
			c.CategoryID = to
			c.UpdatedAt = time.Now()
			moved++
		}
	}
	return moved, nil
}

// ListByCategory returns the content items assigned to a category.
func (l *MemoryContentLedger) ListByCategory(categoryID uuid.UUID) ([]models.Content, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []models.Content
	for _, c := range l.items {
		if c.CategoryID == categoryID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// CreateForCategory inserts a content item into a category.
func (l *MemoryContentLedger) CreateForCategory(categoryID uuid.UUID, title string) (*models.Content, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	c := &models.Content{
		ID:         uuid.New(),
		Title:      title,
		CategoryID: categoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	l.items[c.ID] = c
	return c, nil
}
