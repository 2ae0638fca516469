// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is an orderable grouping container for content items.
// Position is a 1-based dense rank defining display order: after any
// structural mutation (create, delete, reorder) the positions of all live
// categories form a contiguous ascending sequence starting at 1.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IconURL     string    `json:"icon_url"`
	Active      bool      `json:"active"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// ContentCount is a cached count of content items assigned to this
	// category. The contents table is authoritative; this field is refreshed
	// on reads and after reassignment.
	ContentCount int `json:"content_count"`
}

// CategoryPatch is a partial update for a category. Nil fields are left
// untouched by Update and BulkUpdate.
type CategoryPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IconURL     *string `json:"icon_url,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

// Apply copies the non-nil patch fields onto the category and refreshes
// its UpdatedAt timestamp.
func (p *CategoryPatch) Apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.IconURL != nil {
		c.IconURL = *p.IconURL
	}
	if p.Active != nil {
		c.Active = *p.Active
	}
	c.UpdatedAt = time.Now()
}
