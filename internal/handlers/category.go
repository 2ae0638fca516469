// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"catadmin/internal/models"
	"catadmin/internal/service"
)

// Category groups the category HTTP handlers around the orchestrating service.
type Category struct {
	svc      *service.CategoryService
	validate *validator.Validate
}

// NewCategory creates the category handler group.
func NewCategory(svc *service.CategoryService) *Category {
	return &Category{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// idParam parses the {id} route parameter. Writes a 400 and returns false
// on malformed ids.
func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid id", "id must be a UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps service errors onto HTTP problem responses.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeProblem(w, http.StatusBadRequest, "validation failed", "", map[string][]string{verr.Field: {verr.Msg}})
	case errors.Is(err, service.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "not found", "no such category", nil)
	default:
		slog.Error("category request failed", "error", err)
		writeProblem(w, http.StatusInternalServerError, "internal error", "", nil)
	}
}

// List returns all categories ordered by position, with content counts.
func (h *Category) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if items == nil {
		items = []models.Category{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Get returns a single category or 404.
func (h *Category) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type createCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=10000"`
	IconURL     string `json:"icon_url" validate:"omitempty,url,max=500"`
	Active      *bool  `json:"active"`
}

// Create persists a new category and returns it with 201.
func (h *Category) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid json", err.Error(), nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeProblem(w, http.StatusBadRequest, "validation failed", err.Error(), nil)
		return
	}

	created, err := h.svc.Create(r.Context(), service.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		IconURL:     req.IconURL,
		Active:      req.Active,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type updateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	IconURL     *string `json:"icon_url" validate:"omitempty,max=500"`
	Active      *bool   `json:"active"`
}

// Update applies a partial update and returns the new record or 404.
func (h *Category) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req updateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid json", err.Error(), nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeProblem(w, http.StatusBadRequest, "validation failed", err.Error(), nil)
		return
	}

	updated, err := h.svc.Update(r.Context(), id, models.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
		IconURL:     req.IconURL,
		Active:      req.Active,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a category, reassigning its content first. The optional
// reassignTo query parameter names the target category.
func (h *Category) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var reassignTo *uuid.UUID
	if raw := r.URL.Query().Get("reassignTo"); raw != "" {
		target, err := uuid.Parse(raw)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "invalid reassignTo", "reassignTo must be a UUID", nil)
			return
		}
		reassignTo = &target
	}

	result, err := h.svc.Delete(r.Context(), id, reassignTo)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Enable marks a category active.
func (h *Category) Enable(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Disable marks a category inactive.
func (h *Category) Disable(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Category) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var (
		c   *models.Category
		err error
	)
	if active {
		c, err = h.svc.Enable(r.Context(), id)
	} else {
		c, err = h.svc.Disable(r.Context(), id)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type reorderRequest struct {
	Order []uuid.UUID `json:"order"`
}

// Reorder renumbers category positions following the posted id order and
// returns the full reordered list.
func (h *Category) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid json", err.Error(), nil)
		return
	}
	if req.Order == nil {
		writeProblem(w, http.StatusBadRequest, "validation failed", "order array required", nil)
		return
	}

	list, err := h.svc.Reorder(r.Context(), req.Order)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if list == nil {
		list = []models.Category{}
	}
	writeJSON(w, http.StatusOK, list)
}

type bulkToggleRequest struct {
	IDs    []uuid.UUID `json:"ids"`
	Active bool        `json:"active"`
}

// BulkToggle enables or disables every listed category, skipping unknown
// ids, and returns the updated subset.
func (h *Category) BulkToggle(w http.ResponseWriter, r *http.Request) {
	var req bulkToggleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid json", err.Error(), nil)
		return
	}
	if req.IDs == nil {
		writeProblem(w, http.StatusBadRequest, "validation failed", "ids array required", nil)
		return
	}

	updated, err := h.svc.BulkToggle(r.Context(), req.IDs, req.Active)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if updated == nil {
		updated = []models.Category{}
	}
	writeJSON(w, http.StatusOK, updated)
}

// Stream is the SSE change stream. The first frame is a synthetic init
// event carrying the current category list; afterwards every published
// change event is forwarded until the client disconnects. Unsubscription is
// tied to the request context, so it happens however the connection ends.
func (h *Category) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "streaming unsupported", "", nil)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Buffered so a slow client cannot block the publisher; an overflowing
	// client just misses events and resyncs on reconnect via init.
	events := make(chan models.ChangeEvent, 16)
	unsubscribe := h.svc.Bus().Subscribe(func(ev models.ChangeEvent) {
		select {
		case events <- ev:
		default:
			slog.Warn("sse client too slow, dropping event", "event", ev.Type)
		}
	})
	defer unsubscribe()

	list, err := h.svc.List(r.Context())
	if err != nil {
		slog.Error("sse initial snapshot failed", "error", err)
		return
	}
	if list == nil {
		list = []models.Category{}
	}
	writeSSE(w, models.ChangeEvent{Type: models.EventInit, Categories: list})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

// writeSSE writes one event as an SSE data frame.
func writeSSE(w http.ResponseWriter, ev models.ChangeEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("sse encode error", "event", ev.Type, "error", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
}
