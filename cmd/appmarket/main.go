// Package main is the entry point for the appmarket server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"appmarket/internal/cache"
	"appmarket/internal/config"
	"appmarket/internal/database"
	"appmarket/internal/genre"
	"appmarket/internal/handlers"
	"appmarket/internal/router"
	"appmarket/internal/session"
	"appmarket/internal/storage"
	"appmarket/internal/store"
)

func main() {
	// Structured logger, text output. Level stays at debug; the deploy
	// environment filters.
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
		"catalog_owner", cfg.CatalogOwner,
	)

	// Connect to PostgreSQL.
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

	// Connect to Valkey (Redis-compatible cache + session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Initialize session store backed by Valkey.
	// Outside development, mark session cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	appStore := store.NewAppStore(db)
	categoryStore := store.NewCategoryStore(db)

	// Connect to S3-compatible object storage (optional, uploads are
	// disabled without it).
	var storageClient *storage.Client
	if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage connected",
			"endpoint", cfg.S3Endpoint,
			"bucket", cfg.S3Bucket,
		)
	} else {
		slog.Warn("s3 storage not configured, image uploads disabled")
	}

	// The genre resolver unifies admin categories and the built-in
	// computed genres behind one lookup.
	resolver := genre.NewResolver(appStore, categoryStore, userStore,
		genre.Builtins(appStore, userStore))

	// Populated-genres snapshot: the catalog owner recomputes it every
	// ten seconds and mirrors it to Valkey so frontend processes can
	// serve it without touching the database.
	genreCache := cache.NewGenreCache(valkeyClient, cache.DefaultGenreTTL)
	populated := genre.NewPopulatedCache(resolver, genreCache)

	scheduler := cron.New()
	if cfg.CatalogOwner {
		if err := populated.Refresh(context.Background()); err != nil {
			slog.Warn("initial populated-genres refresh failed", "error", err)
		}
		_, err := scheduler.AddFunc("@every 10s", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
			defer cancel()
			if err := populated.Refresh(ctx); err != nil {
				slog.Warn("populated-genres refresh failed", "error", err)
			}
		})
		if err != nil {
			slog.Error("failed to schedule genre refresh", "error", err)
			os.Exit(1)
		}

		// Weekly install counters back the Popular This Week genre.
		_, err = scheduler.AddFunc("@weekly", func() {
			if err := appStore.ResetWeeklyCounts(); err != nil {
				slog.Warn("weekly install-count reset failed", "error", err)
			}
		})
		if err != nil {
			slog.Error("failed to schedule weekly reset", "error", err)
			os.Exit(1)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create handler groups with their dependencies.
	authHandlers := handlers.NewAuth(sessionStore, userStore)
	publicHandlers := handlers.NewPublic(resolver, appStore, populated, genreCache)
	appHandlers := handlers.NewApps(appStore, userStore)
	uploadHandlers := handlers.NewUploads(storageClient)
	adminHandlers := handlers.NewAdmin(appStore, categoryStore)

	// Set up the Chi router with all middleware and routes.
	r := router.New(sessionStore, authHandlers, publicHandlers, appHandlers, uploadHandlers, adminHandlers)

	// Create the HTTP server with sensible timeouts. Uploads can carry
	// multi-megabyte images, so the read timeout is generous.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
