// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// EventType tags a ChangeEvent with the mutation that produced it.
type EventType string

const (
	EventInit       EventType = "init"
	EventCreated    EventType = "created"
	EventUpdated    EventType = "updated"
	EventDeleted    EventType = "deleted"
	EventEnabled    EventType = "enabled"
	EventDisabled   EventType = "disabled"
	EventReordered  EventType = "reordered"
	EventBulkToggle EventType = "bulk-toggle"
)

// ChangeEvent describes a category-affecting mutation pushed to live
// subscribers over the SSE stream. Events are ephemeral — they exist only
// in flight from the service to subscribers and are never persisted.
//
// Which fields are populated depends on Type:
//
//	init        Categories (full current list)
//	created     Category
//	updated     Category
//	deleted     CategoryID, ReassignedTo, Moved
//	enabled     Category
//	disabled    Category
//	reordered   Categories (full list in new order)
//	bulk-toggle Categories (updated subset), Active
type ChangeEvent struct {
	Type         EventType  `json:"type"`
	Category     *Category  `json:"category,omitempty"`
	Categories   []Category `json:"categories,omitempty"`
	CategoryID   string     `json:"category_id,omitempty"`
	ReassignedTo string     `json:"reassigned_to,omitempty"`
	Moved        int        `json:"moved,omitempty"`
	Active       *bool      `json:"active,omitempty"`
}
