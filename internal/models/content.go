// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Content is an item belonging to exactly one category at a time.
// Only the category reference matters to this service; the descriptive
// fields exist so the admin UI has something to show.
type Content struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	CategoryID uuid.UUID `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
