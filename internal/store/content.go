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

// PostgresContentLedger is the database-backed ContentLedger.
type PostgresContentLedger struct {
	db *sql.DB
}

// NewPostgresContentLedger returns a ContentLedger backed by PostgreSQL.
func NewPostgresContentLedger(db *sql.DB) *PostgresContentLedger {
	return &PostgresContentLedger{db: db}
}

// CountByCategory returns the number of content items in a category.
func (l *PostgresContentLedger) CountByCategory(categoryID uuid.UUID) (int, error) {
	var count int
	err := l.db.QueryRow(`SELECT COUNT(*) FROM contents WHERE category_id = $1`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count content by category: %w", err)
	}
	return count, nil
}

// ReassignCategory moves every content item from one category to another
// and returns the number of rows moved.
func (l *PostgresContentLedger) ReassignCategory(from, to uuid.UUID) (int, error) {
	res, err := l.db.Exec(`
		UPDATE contents SET category_id = $1, updated_at = NOW() WHERE category_id = $2
	`, to, from)
	if err != nil {
		return 0, fmt.Errorf("reassign content: %w", err)
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reassign content rows affected: %w", err)
	}
	return int(moved), nil
}

// ListByCategory returns the content items assigned to a category, newest first.
func (l *PostgresContentLedger) ListByCategory(categoryID uuid.UUID) ([]models.Content, error) {
	rows, err := l.db.Query(`
		SELECT id, title, category_id, created_at, updated_at
		FROM contents
		WHERE category_id = $1
		ORDER BY created_at DESC
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list content by category: %w", err)
	}
	defer rows.Close()

	var items []models.Content
	for rows.Next() {
		var c models.Content
		if err := rows.Scan(&c.ID, &c.Title, &c.CategoryID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// CreateForCategory inserts a content item into a category and returns it.
func (l *PostgresContentLedger) CreateForCategory(categoryID uuid.UUID, title string) (*models.Content, error) {
	c := &models.Content{}
	err := l.db.QueryRow(`
		INSERT INTO contents (title, category_id)
		VALUES ($1, $2)
		RETURNING id, title, category_id, created_at, updated_at
	`, title, categoryID).Scan(&c.ID, &c.Title, &c.CategoryID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return c, nil
}
