// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the trip catalog API server.
// It loads configuration, wires storage and cache, sets up routing, and
// starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"tripcatalog/internal/cache"
	"tripcatalog/internal/catalog"
	"tripcatalog/internal/config"
	"tripcatalog/internal/database"
	"tripcatalog/internal/handlers"
	"tripcatalog/internal/middleware"
	"tripcatalog/internal/router"
	"tripcatalog/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

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

	var (
		packages catalog.PackageRepository
		posts    catalog.PostRepository
		checks   []router.HealthCheck
	)

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		packages = store.NewPackageStore(db)
		posts = store.NewPostStore(db)
		checks = append(checks, router.HealthCheck{Name: "postgres", Check: db.PingContext})
	default:
		slog.Warn("using in-memory store, data is lost on restart")
		packages = store.NewMemoryPackageStore()
		posts = store.NewMemoryPostStore()
	}

	// The result cache is optional: the catalog works without Valkey, it
	// just reads through to the store every time.
	var results catalog.ResultCache
	if cfg.ValkeyEnabled {
		client, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
		if err != nil {
			slog.Warn("valkey unavailable, query cache disabled", "error", err)
		} else {
			defer client.Close()
			results = cache.NewQueryCache(client, cfg.CacheTTL)
			checks = append(checks, router.HealthCheck{Name: "valkey", Check: pingValkey(client)})
		}
	}

	engine := catalog.NewEngine(packages, posts, results)
	admin := catalog.NewAdmin(packages, posts, results)

	if cfg.Seed {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := catalog.Seed(ctx, admin)
		cancel()
		if err != nil {
			slog.Error("failed to seed catalog", "error", err)
			os.Exit(1)
		}
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
	defer limiter.Stop()

	if cfg.AdminKeyHash == "" {
		slog.Warn("ADMIN_KEY_HASH not set, admin API is open in development and closed otherwise")
	}

	r := router.New(router.Options{
		Public:         handlers.NewPublic(engine, cfg.DefaultPageSize),
		Admin:          handlers.NewAdmin(admin, engine, cfg.DefaultPageSize),
		AdminKeyHash:   cfg.AdminKeyHash,
		AllowOpenAdmin: cfg.IsDev(),
		RateLimiter:    limiter,
		HealthChecks:   checks,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func pingValkey(client *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
