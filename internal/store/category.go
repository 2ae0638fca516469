// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"catadmin/internal/models"
)

// PostgresCategoryStore is the database-backed CategoryStore.
type PostgresCategoryStore struct {
	db *sql.DB
}

// NewPostgresCategoryStore returns a CategoryStore backed by PostgreSQL.
func NewPostgresCategoryStore(db *sql.DB) *PostgresCategoryStore {
	return &PostgresCategoryStore{db: db}
}

const categoryColumns = `id, name, description, icon_url, active, position, content_count, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Description, &c.IconURL,
		&c.Active, &c.Position, &c.ContentCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by position ascending.
func (s *PostgresCategoryStore) List() ([]models.Category, error) {
	return listCategories(s.db)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

func listCategories(q querier) ([]models.Category, error) {
	rows, err := q.Query(`SELECT ` + categoryColumns + ` FROM categories ORDER BY position, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *PostgresCategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindByName retrieves a category by its exact name. Returns nil if not found.
func (s *PostgresCategoryStore) FindByName(name string) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE name = $1`, name)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	return c, nil
}

// Create inserts a new category at the end of the position sequence and
// returns it. The position subquery and the insert run as one statement, so
// a single Create never produces a gap.
func (s *PostgresCategoryStore) Create(c *models.Category) (*models.Category, error) {
	row := s.db.QueryRow(`
		INSERT INTO categories (name, description, icon_url, active, position)
		VALUES ($1, $2, $3, $4, (SELECT COALESCE(MAX(position), 0) + 1 FROM categories))
		RETURNING `+categoryColumns,
		c.Name, c.Description, c.IconURL, c.Active,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update applies the non-nil patch fields to an existing category and
// returns the updated record, or nil when the id is unknown.
func (s *PostgresCategoryStore) Update(id uuid.UUID, patch models.CategoryPatch) (*models.Category, error) {
	row := s.db.QueryRow(`
		UPDATE categories SET
			name        = COALESCE($1, name),
			description = COALESCE($2, description),
			icon_url    = COALESCE($3, icon_url),
			active      = COALESCE($4, active),
			updated_at  = NOW()
		WHERE id = $5
		RETURNING `+categoryColumns,
		patch.Name, patch.Description, patch.IconURL, patch.Active, id,
	)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// Delete removes a category and renumbers the remaining positions to a
// contiguous 1..N sequence within the same transaction.
func (s *PostgresCategoryStore) Delete(id uuid.UUID) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete category rows affected: %w", err)
	}
	if affected == 0 {
		return false, tx.Commit()
	}

	if err := renumberPositions(tx); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// renumberPositions rewrites every category position to its 1-based rank in
// the current position order.
func renumberPositions(tx *sql.Tx) error {
	_, err := tx.Exec(`
		WITH ranked AS (
			SELECT id, ROW_NUMBER() OVER (ORDER BY position, created_at) AS rn
			FROM categories
		)
		UPDATE categories c
		SET position = r.rn
		FROM ranked r
		WHERE c.id = r.id AND c.position <> r.rn
	`)
	if err != nil {
		return fmt.Errorf("renumber positions: %w", err)
	}
	return nil
}

// Reorder assigns positions following the given id order, appending any
// categories not mentioned in their prior relative order. The whole
// renumbering commits atomically.
func (s *PostgresCategoryStore) Reorder(order []uuid.UUID) ([]models.Category, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := listCategories(tx)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(current))
	for _, c := range current {
		seen[c.ID] = true
	}

	// Listed ids first (unknown ones skipped), then the rest in prior order.
	var final []uuid.UUID
	mentioned := make(map[uuid.UUID]bool, len(order))
	for _, id := range order {
		if seen[id] && !mentioned[id] {
			final = append(final, id)
			mentioned[id] = true
		}
	}
	for _, c := range current {
		if !mentioned[c.ID] {
			final = append(final, c.ID)
		}
	}

	stmt, err := tx.Prepare(`UPDATE categories SET position = $1, updated_at = NOW() WHERE id = $2`)
	if err != nil {
		return nil, fmt.Errorf("prepare reorder: %w", err)
	}
	defer stmt.Close()

	for i, id := range final {
		if _, err := stmt.Exec(i+1, id); err != nil {
			return nil, fmt.Errorf("reorder category %s: %w", id, err)
		}
	}

	result, err := listCategories(tx)
	if err != nil {
		return nil, err
	}
	return result, tx.Commit()
}

// BulkUpdate applies the patch to each listed category, skipping unknown
// ids. Positions are not changed.
func (s *PostgresCategoryStore) BulkUpdate(ids []uuid.UUID, patch models.CategoryPatch) ([]models.Category, error) {
	var updated []models.Category
	for _, id := range ids {
		c, err := s.Update(id, patch)
		if err != nil {
			return nil, err
		}
		if c != nil {
			updated = append(updated, *c)
		}
	}
	return updated, nil
}

// SetContentCount refreshes the cached content count for a category.
func (s *PostgresCategoryStore) SetContentCount(id uuid.UUID, count int) error {
	_, err := s.db.Exec(`
		UPDATE categories SET content_count = $1, updated_at = NOW() WHERE id = $2
	`, count, id)
	if err != nil {
		return fmt.Errorf("set content count: %w", err)
	}
	return nil
}
