// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package service sequences each category use case: store mutation, content
// reassignment, cache invalidation, and change event emission, in that
// order. Cache operations are best-effort throughout — the store and ledger
// are the source of truth.
package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"catadmin/internal/cache"
	"catadmin/internal/models"
	"catadmin/internal/notify"
	"catadmin/internal/store"
)

// UncategorizedName is the reserved bucket that receives content from
// deleted categories when the caller names no target. It is found by exact
// name and created on demand, never duplicated.
const UncategorizedName = "Uncategorized"

// CategoryService orchestrates all category use cases.
type CategoryService struct {
	store  store.CategoryStore
	ledger store.ContentLedger
	cache  *cache.Store
	bus    *notify.Bus
}

// NewCategoryService wires the orchestrator. cacheStore may be nil to run
// without a cache front.
func NewCategoryService(st store.CategoryStore, ledger store.ContentLedger, cacheStore *cache.Store, bus *notify.Bus) *CategoryService {
	return &CategoryService{store: st, ledger: ledger, cache: cacheStore, bus: bus}
}

// Bus exposes the notification bus so transports can subscribe clients.
func (s *CategoryService) Bus() *notify.Bus {
	return s.bus
}

// List returns all categories ordered by position, with fresh content
// counts, read through the cache.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return cache.GetOrSet(ctx, s.cache, cache.KeyCategoryAll, cache.TTLShort, func() ([]models.Category, error) {
		items, err := s.store.List()
		if err != nil {
			return nil, err
		}
		for i := range items {
			count, err := s.ledger.CountByCategory(items[i].ID)
			if err != nil {
				return nil, err
			}
			items[i].ContentCount = count
		}
		return items, nil
	})
}

// Get returns a single category with a fresh content count, read through
// the cache. Returns ErrNotFound for an unknown id.
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return cache.GetOrSet(ctx, s.cache, cache.KeyCategoryByID(id), cache.TTLShort, func() (*models.Category, error) {
		c, err := s.store.FindByID(id)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, ErrNotFound
		}
		count, err := s.ledger.CountByCategory(c.ID)
		if err != nil {
			return nil, err
		}
		c.ContentCount = count
		return c, nil
	})
}

// CreateInput carries the caller-supplied fields for a new category.
type CreateInput struct {
	Name        string
	Description string
	IconURL     string
	Active      *bool // nil defaults to true
}

// Create validates the name, persists the category at the end of the
// position sequence, invalidates the list cache, and emits a created event.
func (s *CategoryService) Create(ctx context.Context, in CreateInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Msg: "is required"}
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	created, err := s.store.Create(&models.Category{
		Name:        name,
		Description: in.Description,
		IconURL:     in.IconURL,
		Active:      active,
	})
	if err != nil {
		return nil, err
	}
	created.ContentCount = 0

	s.cache.Del(ctx, cache.KeyCategoryAll)
	s.bus.Publish(models.ChangeEvent{Type: models.EventCreated, Category: created})
	return created, nil
}

// Update applies only the explicitly provided patch fields. Returns
// ErrNotFound for an unknown id, with no event emitted and no cache touched.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, patch models.CategoryPatch) (*models.Category, error) {
	cur, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, ErrNotFound
	}

	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return nil, &ValidationError{Field: "name", Msg: "must not be blank"}
		}
		patch.Name = &trimmed
	}

	updated, err := s.store.Update(id, patch)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	s.invalidateCategory(ctx, id)
	s.bus.Publish(models.ChangeEvent{Type: models.EventUpdated, Category: updated})
	return updated, nil
}

// DeleteResult reports the outcome of a category deletion.
type DeleteResult struct {
	Moved        int       `json:"moved"`
	ReassignedTo uuid.UUID `json:"reassigned_to"`
}

// Delete reassigns all dependent content to the resolved target, refreshes
// the target's cached content count, removes the category, invalidates both
// cache entries, and emits a deleted event.
//
// Target resolution: the caller-supplied id wins; otherwise the existing
// "Uncategorized" category is reused, or created once on demand.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID, reassignTo *uuid.UUID) (*DeleteResult, error) {
	cur, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, ErrNotFound
	}

	targetID, err := s.resolveReassignTarget(reassignTo)
	if err != nil {
		return nil, err
	}

	moved, err := s.ledger.ReassignCategory(id, targetID)
	if err != nil {
		return nil, err
	}

	count, err := s.ledger.CountByCategory(targetID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetContentCount(targetID, count); err != nil {
		return nil, err
	}

	removed, err := s.store.Delete(id)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, ErrDeleteFailed
	}

	s.invalidateCategory(ctx, id)
	s.invalidateCategory(ctx, targetID)
	s.bus.Publish(models.ChangeEvent{
		Type:         models.EventDeleted,
		CategoryID:   id.String(),
		ReassignedTo: targetID.String(),
		Moved:        moved,
	})
	return &DeleteResult{Moved: moved, ReassignedTo: targetID}, nil
}

// resolveReassignTarget picks the category that receives orphaned content.
func (s *CategoryService) resolveReassignTarget(reassignTo *uuid.UUID) (uuid.UUID, error) {
	if reassignTo != nil {
		return *reassignTo, nil
	}

	existing, err := s.store.FindByName(UncategorizedName)
	if err != nil {
		return uuid.Nil, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	created, err := s.store.Create(&models.Category{
		Name:        UncategorizedName,
		Description: "Auto-created",
		Active:      true,
	})
	if err != nil {
		return uuid.Nil, err
	}
	return created.ID, nil
}

// Enable marks a category active and emits an enabled event.
func (s *CategoryService) Enable(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.setActive(ctx, id, true)
}

// Disable marks a category inactive and emits a disabled event.
func (s *CategoryService) Disable(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.setActive(ctx, id, false)
}

func (s *CategoryService) setActive(ctx context.Context, id uuid.UUID, active bool) (*models.Category, error) {
	updated, err := s.store.Update(id, models.CategoryPatch{Active: &active})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// Unknown id: no event, no invalidation.
		return nil, ErrNotFound
	}

	s.invalidateCategory(ctx, id)
	eventType := models.EventEnabled
	if !active {
		eventType = models.EventDisabled
	}
	s.bus.Publish(models.ChangeEvent{Type: eventType, Category: updated})
	return updated, nil
}

// Reorder renumbers positions following the given order and emits a
// reordered event carrying the full resulting list. The whole category
// cache namespace is invalidated since every position may have shifted.
func (s *CategoryService) Reorder(ctx context.Context, order []uuid.UUID) ([]models.Category, error) {
	list, err := s.store.Reorder(order)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateCategories(ctx)
	s.bus.Publish(models.ChangeEvent{Type: models.EventReordered, Categories: list})
	return list, nil
}

// BulkToggle flips the active flag on every matching id, skipping unknown
// ones, and emits a bulk-toggle event with the updated subset. Cache
// entries for every input id are invalidated, known or not — invalidation
// is best-effort and deleting an absent key is a no-op.
func (s *CategoryService) BulkToggle(ctx context.Context, ids []uuid.UUID, active bool) ([]models.Category, error) {
	updated, err := s.store.BulkUpdate(ids, models.CategoryPatch{Active: &active})
	if err != nil {
		return nil, err
	}

	keys := []string{cache.KeyCategoryAll}
	for _, id := range ids {
		keys = append(keys, cache.CategoryKeys(id)...)
	}
	s.cache.Del(ctx, keys...)

	s.bus.Publish(models.ChangeEvent{
		Type:       models.EventBulkToggle,
		Categories: updated,
		Active:     &active,
	})
	return updated, nil
}

// invalidateCategory drops the per-id keys and the list key for one category.
func (s *CategoryService) invalidateCategory(ctx context.Context, id uuid.UUID) {
	keys := append(cache.CategoryKeys(id), cache.KeyCategoryAll)
	s.cache.Del(ctx, keys...)
}
