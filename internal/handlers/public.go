// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the catalog API. Public
// handlers serve visible entries only; admin handlers drive the mutation
// workflow and see everything.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tripcatalog/internal/catalog"
)

// Public groups the read-only catalog endpoints.
type Public struct {
	engine       *catalog.Engine
	defaultLimit int
}

// NewPublic creates the public handler group. defaultLimit applies when a
// listing request sends no limit.
func NewPublic(engine *catalog.Engine, defaultLimit int) *Public {
	return &Public{engine: engine, defaultLimit: defaultLimit}
}

// Packages lists visible packages, filtered by category, search, duration
// and priceRange.
func (p *Public) Packages(w http.ResponseWriter, r *http.Request) {
	q := catalog.ParsePackageQuery(r.URL.Query(), p.defaultLimit)
	res, err := p.engine.Packages(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Package returns one visible package by slug.
func (p *Public) Package(w http.ResponseWriter, r *http.Request) {
	pkg, err := p.engine.PackageBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

// Posts lists visible blog posts, newest first.
func (p *Public) Posts(w http.ResponseWriter, r *http.Request) {
	q := catalog.ParsePostQuery(r.URL.Query(), p.defaultLimit)
	res, err := p.engine.Posts(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Post returns one visible blog post with its content rendered to HTML.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	post, err := p.engine.PostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}
