// Package main is the entry point for the catadmin server. It loads
// configuration, connects to services, sets up routing, and starts the
// HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catadmin/internal/cache"
	"catadmin/internal/config"
	"catadmin/internal/database"
	"catadmin/internal/handlers"
	"catadmin/internal/notify"
	"catadmin/internal/router"
	"catadmin/internal/service"
	"catadmin/internal/session"
	"catadmin/internal/store"
)

func main() {
	// Structured text logger, debug level.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"store", cfg.StoreDriver,
	)

	// Connect to PostgreSQL. Users and sessions always need it; category
	// data can optionally live in memory (STORE_DRIVER=memory keeps
	// categories and content in process, for demos and throwaway envs).
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (cache front + session store).
	valkeyClient, err := cache.Connect(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Session store backed by Valkey. In non-development environments,
	// session cookies are marked Secure (HTTPS-only).
	sessionStore := session.NewStore(valkeyClient, !cfg.IsDev())

	// Category storage is selected here and nowhere else.
	var (
		categoryStore store.CategoryStore
		contentLedger store.ContentLedger
	)
	switch cfg.StoreDriver {
	case "memory":
		categoryStore = store.NewMemoryCategoryStore()
		contentLedger = store.NewMemoryContentLedger()
	default:
		categoryStore = store.NewPostgresCategoryStore(db)
		contentLedger = store.NewPostgresContentLedger(db)
	}
	userStore := store.NewUserStore(db)

	// Orchestrator: cache front, notification bus, and the stores.
	cacheStore := cache.NewStore(valkeyClient)
	bus := notify.NewBus()
	categoryService := service.NewCategoryService(categoryStore, contentLedger, cacheStore, bus)

	// HTTP surface.
	categoryHandlers := handlers.NewCategory(categoryService)
	authHandlers := handlers.NewAuth(sessionStore, userStore)
	r := router.New(sessionStore, categoryHandlers, authHandlers)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start the server in a goroutine so we can wait for signals.
	go func() {
		slog.Info("server listening", "addr", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM. In-flight requests (including
	// open SSE streams) get a short window to finish; closing the server
	// cancels their request contexts, which unsubscribes stream clients.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}
