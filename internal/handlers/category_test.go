package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"catadmin/internal/models"
	"catadmin/internal/notify"
	"catadmin/internal/service"
	"catadmin/internal/store"
)

// newTestRouter mounts the category handlers on the same routes the real
// router uses, backed by in-memory stores and no cache.
func newTestRouter(t *testing.T) (chi.Router, *service.CategoryService, *store.MemoryContentLedger) {
	t.Helper()

	cats := store.NewMemoryCategoryStore()
	ledger := store.NewMemoryContentLedger()
	svc := service.NewCategoryService(cats, ledger, nil, notify.NewBus())
	h := NewCategory(svc)

	r := chi.NewRouter()
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/stream", h.Stream)
		r.Get("/{id}", h.Get)
		r.Post("/", h.Create)
		r.Post("/reorder", h.Reorder)
		r.Post("/bulk/toggle", h.BulkToggle)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/enable", h.Enable)
		r.Post("/{id}/disable", h.Disable)
	})
	return r, svc, ledger
}

func doJSON(t *testing.T, r chi.Router, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeCategory(t *testing.T, rec *httptest.ResponseRecorder) models.Category {
	t.Helper()
	var c models.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode category: %v (body %q)", err, rec.Body.String())
	}
	return c
}

func TestListEmptyReturnsEmptyArray(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/categories/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body: got %q, want []", got)
	}
}

func TestCreateCategory(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/categories/", `{"name":"News","description":"d"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	c := decodeCategory(t, rec)
	if c.Name != "News" {
		t.Errorf("name: got %q", c.Name)
	}
	if !c.Active {
		t.Error("active should default to true")
	}
	if c.Position != 1 {
		t.Errorf("position: got %d, want 1", c.Position)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	r, _, _ := newTestRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"name":`},
		{"missing name", `{"description":"d"}`},
		{"blank name", `{"name":"   "}`},
		{"unknown field", `{"name":"ok","bogus":true}`},
		{"invalid icon url", `{"name":"ok","icon_url":"not a url"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, r, http.MethodPost, "/api/categories/", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("content type: got %q", ct)
			}
		})
	}
}

func TestGetCategory(t *testing.T) {
	r, svc, _ := newTestRouter(t)

	created, err := svc.Create(context.Background(), service.CreateInput{Name: "Lookup"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec := doJSON(t, r, http.MethodGet, "/api/categories/"+created.ID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if got := decodeCategory(t, rec); got.ID != created.ID {
		t.Errorf("id: got %s, want %s", got.ID, created.ID)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/categories/"+uuid.NewString(), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status: got %d, want 404", rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/categories/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id status: got %d, want 400", rec.Code)
	}
}

func TestUpdateCategory(t *testing.T) {
	r, svc, _ := newTestRouter(t)

	created, err := svc.Create(context.Background(), service.CreateInput{Name: "Before", Description: "keep"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec := doJSON(t, r, http.MethodPut, "/api/categories/"+created.ID.String(), `{"name":"After"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	got := decodeCategory(t, rec)
	if got.Name != "After" {
		t.Errorf("name: got %q", got.Name)
	}
	if got.Description != "keep" {
		t.Errorf("description changed: %q", got.Description)
	}

	rec = doJSON(t, r, http.MethodPut, "/api/categories/"+uuid.NewString(), `{"name":"Ghost"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status: got %d, want 404", rec.Code)
	}
}

func TestDeleteCategoryReassignsContent(t *testing.T) {
	r, svc, ledger := newTestRouter(t)
	ctx := context.Background()

	doomed, err := svc.Create(ctx, service.CreateInput{Name: "Doomed"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := ledger.CreateForCategory(doomed.ID, "orphan"); err != nil {
		t.Fatalf("CreateForCategory: %v", err)
	}

	rec := doJSON(t, r, http.MethodDelete, "/api/categories/"+doomed.ID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var result service.DeleteResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Moved != 1 {
		t.Errorf("moved: got %d, want 1", result.Moved)
	}
	if result.ReassignedTo == uuid.Nil {
		t.Error("reassigned_to missing")
	}

	// Bad reassignTo parameter is rejected before any mutation.
	other, err := svc.Create(ctx, service.CreateInput{Name: "Other"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	rec = doJSON(t, r, http.MethodDelete, "/api/categories/"+other.ID.String()+"?reassignTo=junk", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad reassignTo status: got %d, want 400", rec.Code)
	}
	if _, err := svc.Get(ctx, other.ID); err != nil {
		t.Errorf("category deleted despite invalid reassignTo: %v", err)
	}
}

func TestEnableDisableEndpoints(t *testing.T) {
	r, svc, _ := newTestRouter(t)

	created, err := svc.Create(context.Background(), service.CreateInput{Name: "Toggle"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec := doJSON(t, r, http.MethodPost, "/api/categories/"+created.ID.String()+"/disable", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("disable status: got %d, want 200", rec.Code)
	}
	if got := decodeCategory(t, rec); got.Active {
		t.Error("category still active after disable")
	}

	rec = doJSON(t, r, http.MethodPost, "/api/categories/"+created.ID.String()+"/enable", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("enable status: got %d, want 200", rec.Code)
	}
	if got := decodeCategory(t, rec); !got.Active {
		t.Error("category inactive after enable")
	}

	rec = doJSON(t, r, http.MethodPost, "/api/categories/"+uuid.NewString()+"/enable", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status: got %d, want 404", rec.Code)
	}
}

func TestReorderEndpoint(t *testing.T) {
	r, svc, _ := newTestRouter(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, service.CreateInput{Name: "A"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := svc.Create(ctx, service.CreateInput{Name: "B"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	body := `{"order":["` + b.ID.String() + `","` + a.ID.String() + `"]}`
	rec := doJSON(t, r, http.MethodPost, "/api/categories/reorder", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var list []models.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 || list[0].ID != b.ID {
		t.Errorf("order: got %+v", list)
	}

	// Missing order array is a validation error.
	rec = doJSON(t, r, http.MethodPost, "/api/categories/reorder", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing order status: got %d, want 400", rec.Code)
	}
}

func TestBulkToggleEndpoint(t *testing.T) {
	r, svc, _ := newTestRouter(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, service.CreateInput{Name: "A"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := svc.Create(ctx, service.CreateInput{Name: "B"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	body := `{"ids":["` + a.ID.String() + `","` + uuid.NewString() + `","` + b.ID.String() + `"],"active":false}`
	rec := doJSON(t, r, http.MethodPost, "/api/categories/bulk/toggle", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var updated []models.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(updated) != 2 {
		t.Errorf("updated: got %d, want 2 (unknown id skipped)", len(updated))
	}

	rec = doJSON(t, r, http.MethodPost, "/api/categories/bulk/toggle", `{"active":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing ids status: got %d, want 400", rec.Code)
	}
}

func TestStreamSendsInitThenEvents(t *testing.T) {
	r, svc, _ := newTestRouter(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, service.CreateInput{Name: "Existing"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	req := httptest.NewRequest(http.MethodGet, "/api/categories/stream", nil).WithContext(streamCtx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.ServeHTTP(rec, req)
	}()

	// Wait for the handler to subscribe before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for svc.Bus().Len() == 0 {
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("stream handler never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := svc.Create(ctx, service.CreateInput{Name: "Live"}); err != nil {
		cancel()
		t.Fatalf("Create: %v", err)
	}

	// Give the event loop a moment to flush the frame, then disconnect.
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type: got %q", ct)
	}

	frames := parseSSEFrames(t, rec.Body.String())
	if len(frames) < 2 {
		t.Fatalf("frames: got %d, want at least 2 (body %q)", len(frames), rec.Body.String())
	}
	if frames[0].Type != models.EventInit {
		t.Errorf("first frame: got %q, want init", frames[0].Type)
	}
	if len(frames[0].Categories) != 1 {
		t.Errorf("init categories: got %d, want 1", len(frames[0].Categories))
	}
	if frames[1].Type != models.EventCreated {
		t.Errorf("second frame: got %q, want created", frames[1].Type)
	}
	if frames[1].Category == nil || frames[1].Category.Name != "Live" {
		t.Errorf("created event category: got %+v", frames[1].Category)
	}

	// Disconnecting removed the subscriber.
	if svc.Bus().Len() != 0 {
		t.Errorf("subscribers after disconnect: got %d, want 0", svc.Bus().Len())
	}
}

// parseSSEFrames decodes "data: ..." frames from a raw SSE body.
func parseSSEFrames(t *testing.T, body string) []models.ChangeEvent {
	t.Helper()
	var frames []models.ChangeEvent
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev models.ChangeEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("decode frame %q: %v", line, err)
		}
		frames = append(frames, ev)
	}
	return frames
}
