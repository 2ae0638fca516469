// Package store provides data access for all catadmin entities. The
// category store and content ledger are defined as interfaces with two
// implementations each — PostgreSQL-backed and in-memory — selected
// explicitly at construction in main.
package store

import (
	"github.com/google/uuid"

	"catadmin/internal/models"
)

// CategoryStore persists category records and maintains the dense 1-based
// position sequence. Implementations guarantee density within a single call
// to Create, Delete, or Reorder; racing calls are not serialized (see the
// concurrency note in DESIGN.md).
type CategoryStore interface {
	// List returns all categories ordered by position ascending.
	List() ([]models.Category, error)

	// FindByID returns the category or nil if the id is unknown.
	FindByID(id uuid.UUID) (*models.Category, error)

	// FindByName returns the category with the exact name, or nil.
	FindByName(name string) (*models.Category, error)

	// Create inserts a category at position max(existing)+1 (1 when the
	// store is empty) and returns the stored record.
	Create(c *models.Category) (*models.Category, error)

	// Update applies the non-nil patch fields and returns the updated
	// record, or nil (no error) when the id is unknown.
	Update(id uuid.UUID, patch models.CategoryPatch) (*models.Category, error)

	// Delete removes the category and re-densifies remaining positions to
	// 1..N in current position order. Reports whether a row was removed.
	Delete(id uuid.UUID) (bool, error)

	// Reorder assigns positions 1..len(order) to the listed ids in the
	// given order, then appends any unmentioned ids with continuing
	// positions, preserving their prior relative order. Unknown ids are
	// skipped. Returns the full resulting list.
	Reorder(order []uuid.UUID) ([]models.Category, error)

	// BulkUpdate applies the patch to every matching id, silently skipping
	// unknown ones. Positions are untouched. Returns the updated subset.
	BulkUpdate(ids []uuid.UUID, patch models.CategoryPatch) ([]models.Category, error)

	// SetContentCount refreshes the cached content count for a category.
	SetContentCount(id uuid.UUID, count int) error
}

// ContentLedger tracks which content items belong to which category.
type ContentLedger interface {
	// CountByCategory returns the number of content items in a category.
	CountByCategory(categoryID uuid.UUID) (int, error)

	// ReassignCategory moves every item from one category to another and
	// returns the number moved. Zero matches is not an error.
	ReassignCategory(from, to uuid.UUID) (int, error)

	// ListByCategory returns the content items assigned to a category.
	ListByCategory(categoryID uuid.UUID) ([]models.Content, error)

	// CreateForCategory inserts a content item into a category.
	CreateForCategory(categoryID uuid.UUID, title string) (*models.Content, error)
}
