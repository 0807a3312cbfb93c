// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"tripcatalog/internal/catalog"
	"tripcatalog/internal/models"
	"tripcatalog/internal/normalize"
)

// Collection is the admin endpoint set of one catalog collection. The
// router mounts the same routes for packages and blog posts.
type Collection interface {
	List(w http.ResponseWriter, r *http.Request)
	NextOrder(w http.ResponseWriter, r *http.Request)
	Order(w http.ResponseWriter, r *http.Request)
	UpdateOrder(w http.ResponseWriter, r *http.Request)
	SetVisibilityBulk(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	SetVisibility(w http.ResponseWriter, r *http.Request)
	Move(w http.ResponseWriter, r *http.Request)
}

// Admin groups the admin API handlers.
type Admin struct {
	admin        *catalog.Admin
	engine       *catalog.Engine
	defaultLimit int
}

// NewAdmin creates the admin handler group. Listings go through the query
// engine with hidden entries included; everything else goes through the
// mutation workflow.
func NewAdmin(admin *catalog.Admin, engine *catalog.Engine, defaultLimit int) *Admin {
	return &Admin{admin: admin, engine: engine, defaultLimit: defaultLimit}
}

// Packages returns the package endpoints.
func (a *Admin) Packages() Collection {
	return &collection[models.Package, normalize.PackageInput]{
		name: "package",
		list: func(ctx context.Context, v url.Values) (any, error) {
			return a.engine.Packages(ctx, catalog.ParseAdminPackageQuery(v, a.defaultLimit))
		},
		validate:          validatePackageInput,
		id:                func(p *models.Package) uuid.UUID { return p.ID },
		get:               a.admin.Package,
		create:            a.admin.CreatePackage,
		update:            a.admin.UpdatePackage,
		remove:            a.admin.DeletePackage,
		setVisibility:     a.admin.SetPackageVisibility,
		setVisibilityBulk: a.admin.SetPackagesVisibility,
		updateOrder:       a.admin.UpdatePackageOrder,
		move:              a.admin.MovePackage,
		nextOrder:         a.admin.NextPackageOrder,
		order:             a.admin.PackageOrder,
	}
}

// Posts returns the blog post endpoints.
func (a *Admin) Posts() Collection {
	return &collection[models.BlogPost, normalize.PostInput]{
		name: "post",
		list: func(ctx context.Context, v url.Values) (any, error) {
			return a.engine.Posts(ctx, catalog.ParseAdminPostQuery(v, a.defaultLimit))
		},
		validate:          validatePostInput,
		id:                func(p *models.BlogPost) uuid.UUID { return p.ID },
		get:               a.admin.Post,
		create:            a.admin.CreatePost,
		update:            a.admin.UpdatePost,
		remove:            a.admin.DeletePost,
		setVisibility:     a.admin.SetPostVisibility,
		setVisibilityBulk: a.admin.SetPostsVisibility,
		updateOrder:       a.admin.UpdatePostOrder,
		move:              a.admin.MovePost,
		nextOrder:         a.admin.NextPostOrder,
		order:             a.admin.PostOrder,
	}
}

// collection adapts one collection's workflow methods to HTTP.
type collection[T, In any] struct {
	name              string
	list              func(context.Context, url.Values) (any, error)
	validate          func(In) error
	id                func(*T) uuid.UUID
	get               func(context.Context, uuid.UUID) (*T, error)
	create            func(context.Context, In) (*T, error)
	update            func(context.Context, uuid.UUID, In) (*T, error)
	remove            func(context.Context, uuid.UUID) error
	setVisibility     func(context.Context, uuid.UUID, bool) (bool, error)
	setVisibilityBulk func(context.Context, []uuid.UUID, bool) (models.BatchResult, error)
	updateOrder       func(context.Context, []models.OrderItem) (int, error)
	move              func(context.Context, uuid.UUID, int) (int, error)
	nextOrder         func(context.Context) (int, error)
	order             func(context.Context) ([]models.OrderItem, error)
}

// List returns one page of the collection, hidden entries included, sorted
// by the manual order unless sort=popular is sent.
func (c *collection[T, In]) List(w http.ResponseWriter, r *http.Request) {
	res, err := c.list(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// NextOrder reports the order a new entry would be appended at.
func (c *collection[T, In]) NextOrder(w http.ResponseWriter, r *http.Request) {
	n, err := c.nextOrder(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"order": n})
}

// Order returns the full (id, order) snapshot that admin UIs reorder
// against.
func (c *collection[T, In]) Order(w http.ResponseWriter, r *http.Request) {
	items, err := c.order(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// orderRequest is a renumber batch, sent either as a bare array or as
// {"items": [...]}.
type orderRequest struct {
	Items []models.OrderItem
}

func (o *orderRequest) UnmarshalJSON(b []byte) error {
	if t := bytes.TrimSpace(b); len(t) > 0 && t[0] == '[' {
		return json.Unmarshal(t, &o.Items)
	}
	var wrapped struct {
		Items []models.OrderItem `json:"items"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return err
	}
	o.Items = wrapped.Items
	return nil
}

// UpdateOrder persists a renumber batch computed by the client.
func (c *collection[T, In]) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := c.updateOrder(r.Context(), req.Items)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack{Success: true, Modified: count(n)})
}

type bulkVisibilityRequest struct {
	IDs       []uuid.UUID `json:"ids"`
	IsVisible *bool       `json:"isVisible"`
}

// SetVisibilityBulk shows or hides several entries at once. A 409 with
// counts means some ids were missing and the rest were still applied.
func (c *collection[T, In]) SetVisibilityBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkVisibilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.IsVisible == nil {
		writeError(w, r, &catalog.ValidationError{Field: "isVisible", Message: "is required"})
		return
	}
	res, err := c.setVisibilityBulk(r.Context(), req.IDs, *req.IsVisible)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack{
		Success:   true,
		Requested: count(res.Requested),
		Matched:   count(res.Matched),
		Modified:  count(res.Modified),
	})
}

// Create stores a new entry and answers 201 with its id.
func (c *collection[T, In]) Create(w http.ResponseWriter, r *http.Request) {
	var in In
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := c.validate(in); err != nil {
		writeError(w, r, err)
		return
	}
	v, err := c.create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ack{Success: true, ID: c.id(v).String(), Message: c.name + " created"})
}

// Get returns one entry by id, hidden or not.
func (c *collection[T, In]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := c.get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Update applies the fields present in the body.
func (c *collection[T, In]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in In
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := c.validate(in); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := c.update(r.Context(), id, in); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack{Success: true, ID: id.String(), Message: c.name + " updated"})
}

// Delete removes an entry for good.
func (c *collection[T, In]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := c.remove(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack{Success: true, ID: id.String(), Message: c.name + " deleted"})
}

type visibilityRequest struct {
	IsVisible *bool `json:"isVisible"`
}

// SetVisibility shows or hides one entry. modified is 0 when the entry
// already had the requested visibility.
func (c *collection[T, In]) SetVisibility(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req visibilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.IsVisible == nil {
		writeError(w, r, &catalog.ValidationError{Field: "isVisible", Message: "is required"})
		return
	}
	changed, err := c.setVisibility(r.Context(), id, *req.IsVisible)
	if err != nil {
		writeError(w, r, err)
		return
	}
	modified := 0
	if changed {
		modified = 1
	}
	writeJSON(w, http.StatusOK, ack{Success: true, ID: id.String(), Modified: count(modified)})
}

type moveRequest struct {
	Position *int `json:"position"`
}

// Move drags an entry to a 1-based position and renumbers the collection.
func (c *collection[T, In]) Move(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req moveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Position == nil {
		writeError(w, r, &catalog.ValidationError{Field: "position", Message: "is required"})
		return
	}
	n, err := c.move(r.Context(), id, *req.Position)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack{Success: true, ID: id.String(), Modified: count(n)})
}
