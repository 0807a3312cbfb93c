// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tripcatalog/internal/models"
	"tripcatalog/internal/ordering"
	"tripcatalog/internal/slug"
)

// Admin runs catalog mutations. Every successful write drops the public
// result cache so the next public read sees it.
type Admin struct {
	packages collection[models.Package, *models.Package]
	posts    collection[models.BlogPost, *models.BlogPost]
	cache    ResultCache
	now      func() time.Time
}

// Option configures an Admin.
type Option func(*Admin)

// WithClock replaces time.Now as the source of createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Admin) { a.now = now }
}

// NewAdmin creates the mutation workflow over the given stores. cache may
// be nil.
func NewAdmin(packages PackageRepository, posts PostRepository, cache ResultCache, opts ...Option) *Admin {
	if cache == nil {
		cache = noCache{}
	}
	a := &Admin{
		packages: collection[models.Package, *models.Package]{
			name:  "package",
			repo:  packages,
			slugs: slug.NewAllocator(packages, "package"),
		},
		posts: collection[models.BlogPost, *models.BlogPost]{
			name:  "post",
			repo:  posts,
			slugs: slug.NewAllocator(posts, "post"),
		},
		cache: cache,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Admin) invalidate(ctx context.Context) {
	a.cache.InvalidateAll(ctx)
}

// invalidateAfter drops the cache when err leaves something written.
func (a *Admin) invalidateAfter(ctx context.Context, err error) {
	var partial *PartialBatchFailure
	if err == nil || (errors.As(err, &partial) && partial.Modified > 0) {
		a.invalidate(ctx)
	}
}

type entityPtr[T any] interface {
	*T
	Base() *models.Entity
}

// collection is the mutation logic shared by packages and blog posts.
type collection[T any, P entityPtr[T]] struct {
	name  string
	repo  Repository[T]
	slugs *slug.Allocator
}

func (c collection[T, P]) get(ctx context.Context, id uuid.UUID) (*T, error) {
	v, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.name, err)
	}
	if v == nil {
		return nil, notFound(c.name, id)
	}
	return v, nil
}

// create allocates a slug and persists v. A unique-index rejection means
// another writer took the slug between probe and insert: the slug is
// allocated once more, and a second rejection is a ConflictError.
func (c collection[T, P]) create(ctx context.Context, v *T, requestedOrder int, now time.Time) error {
	b := P(v).Base()
	b.Order = requestedOrder
	b.CreatedAt = now
	b.UpdatedAt = now

	for attempt := 1; ; attempt++ {
		s, err := c.slugs.Allocate(ctx, b.Title, uuid.Nil)
		if err != nil {
			return fmt.Errorf("allocate %s slug: %w", c.name, err)
		}
		b.Slug = s

		err = c.repo.Create(ctx, v)
		if err == nil {
			return nil
		}
		if !errors.Is(err, models.ErrDuplicateSlug) {
			return fmt.Errorf("create %s: %w", c.name, err)
		}
		if attempt == 2 {
			return &ConflictError{Slug: s}
		}
		slog.Warn("slug taken at insert, reallocating", "entity", c.name, "slug", s)
	}
}

// update loads the entity, applies the change and writes it back. When
// retitled is set the slug is re-derived from the new title, keeping the
// current slug available to the entity itself.
func (c collection[T, P]) update(ctx context.Context, id uuid.UUID, apply func(*T), retitled bool, now time.Time) (*T, error) {
	v, err := c.get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(v)
	b := P(v).Base()
	b.UpdatedAt = now

	for attempt := 1; ; attempt++ {
		if retitled {
			s, err := c.slugs.Allocate(ctx, b.Title, id)
			if err != nil {
				return nil, fmt.Errorf("allocate %s slug: %w", c.name, err)
			}
			b.Slug = s
		}

		err := c.repo.Update(ctx, v)
		switch {
		case err == nil:
			return v, nil
		case errors.Is(err, models.ErrNotFound):
			return nil, notFound(c.name, id)
		case !errors.Is(err, models.ErrDuplicateSlug):
			return nil, fmt.Errorf("update %s: %w", c.name, err)
		case !retitled || attempt == 2:
			return nil, &ConflictError{Slug: b.Slug}
		}
		slog.Warn("slug taken at update, reallocating", "entity", c.name, "slug", b.Slug)
	}
}

func (c collection[T, P]) delete(ctx context.Context, id uuid.UUID) error {
	found, err := c.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", c.name, err)
	}
	if !found {
		return notFound(c.name, id)
	}
	return nil
}

// setVisibility reports whether the flag actually changed. Setting the
// current value writes nothing.
func (c collection[T, P]) setVisibility(ctx context.Context, id uuid.UUID, visible bool, now time.Time) (bool, error) {
	v, err := c.get(ctx, id)
	if err != nil {
		return false, err
	}
	if P(v).Base().IsVisible == visible {
		return false, nil
	}
	res, err := c.repo.SetVisibility(ctx, []uuid.UUID{id}, visible, now)
	if err != nil {
		return false, fmt.Errorf("set %s visibility: %w", c.name, err)
	}
	if res.Matched == 0 {
		return false, notFound(c.name, id)
	}
	return res.Modified > 0, nil
}

func (c collection[T, P]) setVisibilityBulk(ctx context.Context, ids []uuid.UUID, visible bool, now time.Time) (models.BatchResult, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return models.BatchResult{}, &ValidationError{Field: "ids", Message: "at least one id is required"}
	}
	res, err := c.repo.SetVisibility(ctx, ids, visible, now)
	if err != nil {
		return res, fmt.Errorf("set %s visibility: %w", c.name, err)
	}
	if res.Matched < res.Requested {
		return res, &PartialBatchFailure{Requested: res.Requested, Matched: res.Matched, Modified: res.Modified}
	}
	return res, nil
}

// updateOrder applies a renumber batch. Unknown ids abort the whole batch
// and a result that is not exactly 1..N is rejected.
func (c collection[T, P]) updateOrder(ctx context.Context, items []models.OrderItem, now time.Time) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	n, err := c.repo.Reorder(ctx, items, now)
	var missing *ordering.MissingError
	switch {
	case err == nil:
		return n, nil
	case errors.As(err, &missing):
		return 0, &PartialBatchFailure{Requested: len(items), Matched: missing.Matched}
	case errors.Is(err, ordering.ErrNotDense):
		return 0, &ValidationError{Field: "items", Message: err.Error()}
	}
	return 0, fmt.Errorf("reorder %s: %w", c.name, err)
}

// move puts id at the 1-based position and renumbers the collection.
func (c collection[T, P]) move(ctx context.Context, id uuid.UUID, position int, now time.Time) (int, error) {
	snap, err := c.orderSnapshot(ctx)
	if err != nil {
		return 0, err
	}
	ids := make([]uuid.UUID, len(snap))
	for i, it := range snap {
		ids[i] = it.ID
	}
	items, err := ordering.Reposition(ids, id, position-1)
	if err != nil {
		return 0, notFound(c.name, id)
	}
	return c.updateOrder(ctx, items, now)
}

func (c collection[T, P]) nextOrder(ctx context.Context) (int, error) {
	m, err := c.repo.MaxOrder(ctx)
	if err != nil {
		return 0, fmt.Errorf("max %s order: %w", c.name, err)
	}
	return ordering.Next(m), nil
}

func (c collection[T, P]) orderSnapshot(ctx context.Context) ([]models.OrderItem, error) {
	snap, err := c.repo.OrderSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s order snapshot: %w", c.name, err)
	}
	if snap == nil {
		snap = []models.OrderItem{}
	}
	return snap, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
