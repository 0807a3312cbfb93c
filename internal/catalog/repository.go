// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tripcatalog/internal/models"
)

// Repository is the storage contract shared by both collections. Stores
// own the order density rules: Create inserts or appends, Delete compacts,
// Reorder validates and applies a renumber batch atomically.
//
// Finders return (nil, nil) when nothing matches.
type Repository[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindBySlug(ctx context.Context, slug string) (*T, error)
	SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
	MaxOrder(ctx context.Context) (int, error)
	Create(ctx context.Context, v *T) error
	Update(ctx context.Context, v *T) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	SetVisibility(ctx context.Context, ids []uuid.UUID, visible bool, now time.Time) (models.BatchResult, error)
	OrderSnapshot(ctx context.Context) ([]models.OrderItem, error)
	Reorder(ctx context.Context, items []models.OrderItem, now time.Time) (int, error)
}

// PackageRepository stores travel packages.
type PackageRepository interface {
	Repository[models.Package]
	List(ctx context.Context, q models.PackageQuery) ([]models.Package, int, error)
}

// PostRepository stores blog posts.
type PostRepository interface {
	Repository[models.BlogPost]
	List(ctx context.Context, q models.PostQuery) ([]models.BlogPost, int, error)
}

// ResultCache caches public listing results. Entries are stored under the
// generation read before the store was queried; InvalidateAll starts a new
// generation, so a result loaded before a mutation can never be served after
// it. Implementations log their own failures; a miss is always safe.
type ResultCache interface {
	// Generation returns the current generation. ok is false when the cache
	// is unavailable, and callers then bypass it.
	Generation(ctx context.Context) (gen int64, ok bool)
	Get(ctx context.Context, gen int64, key string, dst any) bool
	Set(ctx context.Context, gen int64, key string, v any)
	InvalidateAll(ctx context.Context)
}

// noCache is used when no cache is configured.
type noCache struct{}

func (noCache) Generation(context.Context) (int64, bool)     { return 0, false }
func (noCache) Get(context.Context, int64, string, any) bool { return false }
func (noCache) Set(context.Context, int64, string, any)      {}
func (noCache) InvalidateAll(context.Context)                {}
