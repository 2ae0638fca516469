// Package router sets up all HTTP routes and middleware chains for the
// catadmin server. Read endpoints and the change stream are open; every
// mutating endpoint requires an authenticated, 2FA-verified session.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"catadmin/internal/handlers"
	"catadmin/internal/middleware"
	"catadmin/internal/session"
	"catadmin/web"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessions *session.Store, categories *handlers.Category, auth *handlers.Auth) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.LoadSession(sessions))

	// Health check — no auth.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Session authentication.
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", auth.Login)
			r.Post("/logout", auth.Logout)

			// 2FA endpoints require a session but NOT completed 2FA.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/2fa/setup", auth.TwoFASetup)
				r.Post("/2fa/verify", auth.TwoFAVerify)
				r.Get("/me", auth.Me)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			// Reads and the change stream.
			r.Get("/", categories.List)
			r.Get("/stream", categories.Stream)
			r.Get("/{id}", categories.Get)

			// Mutations — authenticated and 2FA-verified only.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Use(middleware.Require2FA)

				r.Post("/", categories.Create)
				r.Post("/reorder", categories.Reorder)
				r.Post("/bulk/toggle", categories.BulkToggle)
				r.Put("/{id}", categories.Update)
				r.Delete("/{id}", categories.Delete)
				r.Post("/{id}/enable", categories.Enable)
				r.Post("/{id}/disable", categories.Disable)
			})
		})
	})

	// Embedded admin single-page UI.
	if adminFS, err := fs.Sub(web.StaticFS, "static/admin"); err == nil {
		r.Handle("/admin/*", http.StripPrefix("/admin/", http.FileServer(http.FS(adminFS))))
		r.Get("/admin", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "/admin/", http.StatusMovedPermanently)
		})
	}

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
