// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chains of the
// catalog API: a rate-limited public group and a key-guarded admin group.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"tripcatalog/internal/handlers"
	"tripcatalog/internal/middleware"
)

// HealthCheck probes one dependency for the health endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Options carries everything New wires together.
type Options struct {
	Public *handlers.Public
	Admin  *handlers.Admin

	// AdminKeyHash is the bcrypt hash of the admin API key. With an empty
	// hash the admin API is open only when AllowOpenAdmin is set.
	AdminKeyHash   string
	AllowOpenAdmin bool

	// RateLimiter guards the public API. Nil disables limiting.
	RateLimiter *middleware.RateLimiter

	HealthChecks []HealthCheck
}

// New creates the chi router with all middleware and route groups wired up.
func New(opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler(opts.HealthChecks))

	r.Route("/api", func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Middleware)
		}
		r.Get("/packages", opts.Public.Packages)
		r.Get("/packages/{slug}", opts.Public.Package)
		r.Get("/blog", opts.Public.Posts)
		r.Get("/blog/{slug}", opts.Public.Post)
	})

	r.Route("/admin/api", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(middleware.RequireAdminKey(opts.AdminKeyHash, opts.AllowOpenAdmin))

		r.Route("/packages", func(r chi.Router) {
			mountCollection(r, opts.Admin.Packages())
		})
		r.Route("/blog", func(r chi.Router) {
			mountCollection(r, opts.Admin.Posts())
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusNotFound, map[string]any{"success": false, "message": "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed, map[string]any{"success": false, "message": "method not allowed"})
	})

	return r
}

// mountCollection registers the admin routes of one collection. Static
// segments are registered before {id} so chi matches them first.
func mountCollection(r chi.Router, c handlers.Collection) {
	r.Get("/", c.List)
	r.Post("/", c.Create)
	r.Get("/next-order", c.NextOrder)
	r.Get("/order", c.Order)
	r.Put("/order", c.UpdateOrder)
	r.Patch("/visibility", c.SetVisibilityBulk)

	r.Get("/{id}", c.Get)
	r.Put("/{id}", c.Update)
	r.Delete("/{id}", c.Delete)
	r.Patch("/{id}/visibility", c.SetVisibility)
	r.Post("/{id}/move", c.Move)
}

// healthHandler reports "ok" when every check passes and "degraded" with
// a 503 otherwise.
func healthHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				results[c.Name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[c.Name] = "ok"
		}

		body := map[string]any{"status": "ok"}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		if len(results) > 0 {
			body["checks"] = results
		}
		writeStatus(w, status, body)
	}
}

func writeStatus(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
