// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tripcatalog/internal/models"
	"tripcatalog/internal/ordering"
)

// entity is satisfied by *models.Package and *models.BlogPost.
type entity interface {
	Base() *models.Entity
}

// memCollection is an in-process collection with the same ordering and
// uniqueness rules as the SQL tables. The mutex plays the role of the
// advisory lock: every write is serialised.
type memCollection[T any, P interface {
	*T
	entity
}] struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*T
	clone func(*T) *T
}

func newMemCollection[T any, P interface {
	*T
	entity
}](clone func(*T) *T) *memCollection[T, P] {
	return &memCollection[T, P]{items: make(map[uuid.UUID]*T), clone: clone}
}

func base[T any, P interface {
	*T
	entity
}](v *T) *models.Entity {
	return P(v).Base()
}

func (c *memCollection[T, P]) list(match func(*T) bool, less func(a, b *T) bool, offset, limit int) ([]T, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var matched []*T
	for _, v := range c.items {
		if match(v) {
			matched = append(matched, v)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return less(matched[i], matched[j]) })

	total := len(matched)
	if offset >= total {
		return []T{}, total
	}
	out := make([]T, 0, min(max(limit, 0), total-offset))
	for i := offset; i < total && i-offset < limit; i++ {
		out = append(out, *c.clone(matched[i]))
	}
	return out, total
}

func (c *memCollection[T, P]) findByID(id uuid.UUID) *T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.items[id]; ok {
		return c.clone(v)
	}
	return nil
}

func (c *memCollection[T, P]) findBySlug(slug string) *T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, v := range c.items {
		if b := base[T, P](v); b.Slug == slug && b.IsVisible {
			return c.clone(v)
		}
	}
	return nil
}

func (c *memCollection[T, P]) slugExists(slug string, exclude uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for id, v := range c.items {
		if id != exclude && base[T, P](v).Slug == slug {
			return true
		}
	}
	return false
}

func (c *memCollection[T, P]) maxOrderLocked() int {
	m := 0
	for _, v := range c.items {
		m = max(m, base[T, P](v).Order)
	}
	return m
}

func (c *memCollection[T, P]) maxOrder() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxOrderLocked()
}

func (c *memCollection[T, P]) create(v *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b := base[T, P](v)
	for _, existing := range c.items {
		if base[T, P](existing).Slug == b.Slug {
			return models.ErrDuplicateSlug
		}
	}

	order, shift := ordering.InsertAt(c.maxOrderLocked(), b.Order)
	if shift {
		for _, existing := range c.items {
			if eb := base[T, P](existing); eb.Order >= order {
				eb.Order++
			}
		}
	}

	b.ID = uuid.New()
	b.Order = order
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
	c.items[b.ID] = c.clone(v)
	return nil
}

func (c *memCollection[T, P]) update(v *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b := base[T, P](v)
	existing, ok := c.items[b.ID]
	if !ok {
		return models.ErrNotFound
	}
	for id, other := range c.items {
		if id != b.ID && base[T, P](other).Slug == b.Slug {
			return models.ErrDuplicateSlug
		}
	}
	// Order, visibility and creation time are owned by their own operations.
	eb := base[T, P](existing)
	b.Order = eb.Order
	b.IsVisible = eb.IsVisible
	b.CreatedAt = eb.CreatedAt
	c.items[b.ID] = c.clone(v)
	return nil
}

func (c *memCollection[T, P]) delete(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.items[id]
	if !ok {
		return false
	}
	removed := base[T, P](v).Order
	delete(c.items, id)
	for _, other := range c.items {
		if ob := base[T, P](other); ob.Order > removed {
			ob.Order--
		}
	}
	return true
}

func (c *memCollection[T, P]) setVisibility(ids []uuid.UUID, visible bool, now time.Time) models.BatchResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := models.BatchResult{Requested: len(ids)}
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		v, ok := c.items[id]
		if !ok {
			continue
		}
		res.Matched++
		if b := base[T, P](v); b.IsVisible != visible {
			b.IsVisible = visible
			b.UpdatedAt = now
			res.Modified++
		}
	}
	return res
}

func (c *memCollection[T, P]) snapshot() []models.OrderItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *memCollection[T, P]) snapshotLocked() []models.OrderItem {
	out := make([]models.OrderItem, 0, len(c.items))
	for id, v := range c.items {
		out = append(out, models.OrderItem{ID: id, Order: base[T, P](v).Order})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (c *memCollection[T, P]) reorder(items []models.OrderItem, now time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := make(map[uuid.UUID]int, len(c.items))
	for id, v := range c.items {
		current[id] = base[T, P](v).Order
	}
	changes, err := ordering.Plan(current, items)
	if err != nil {
		return 0, err
	}
	for _, ch := range changes {
		b := base[T, P](c.items[ch.ID])
		b.Order = ch.Order
		b.UpdatedAt = now
	}
	return len(changes), nil
}

// containsFold reports whether needle occurs in any of the fields,
// ignoring case.
func containsFold(needle string, fields ...string) bool {
	needle = strings.ToLower(needle)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// lessPopular orders by rating desc, created desc, id asc.
func lessPopular(ra, rb float64, a, b *models.Entity) bool {
	if ra != rb {
		return ra > rb
	}
	return lessNewest(a, b)
}

// lessNewest orders by created desc, id asc.
func lessNewest(a, b *models.Entity) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}

// lessManual orders by order asc, id asc.
func lessManual(a, b *models.Entity) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	return a.ID.String() < b.ID.String()
}

// MemoryPackageStore keeps packages in process memory. It backs the
// "memory" store driver and the service tests.
type MemoryPackageStore struct {
	c *memCollection[models.Package, *models.Package]
}

// NewMemoryPackageStore returns an empty in-memory package store.
func NewMemoryPackageStore() *MemoryPackageStore {
	return &MemoryPackageStore{c: newMemCollection[models.Package, *models.Package](clonePackage)}
}

func clonePackage(p *models.Package) *models.Package {
	cp := *p
	cp.Highlights = append([]string{}, p.Highlights...)
	cp.Included = append([]models.IncludedItem{}, p.Included...)
	cp.Sights = append([]string{}, p.Sights...)
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		cp.OriginalPrice = &v
	}
	return &cp
}

func matchPackage(q models.PackageQuery) func(*models.Package) bool {
	return func(p *models.Package) bool {
		if !q.IncludeHidden && !p.IsVisible {
			return false
		}
		if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
			return false
		}
		if q.Search != "" && !containsFold(q.Search, p.Title, p.Location, p.Description) {
			return false
		}
		return q.Duration.Contains(p.Duration) && q.PriceRange.Contains(p.Price)
	}
}

// List returns one page of packages matching q, and the total match count.
func (s *MemoryPackageStore) List(_ context.Context, q models.PackageQuery) ([]models.Package, int, error) {
	less := func(a, b *models.Package) bool { return lessPopular(a.Rating, b.Rating, &a.Entity, &b.Entity) }
	if q.Sort == models.SortManual {
		less = func(a, b *models.Package) bool { return lessManual(&a.Entity, &b.Entity) }
	}
	items, total := s.c.list(matchPackage(q), less, q.Offset(), q.Limit)
	return items, total, nil
}

// FindByID returns the package or nil.
func (s *MemoryPackageStore) FindByID(_ context.Context, id uuid.UUID) (*models.Package, error) {
	return s.c.findByID(id), nil
}

// FindBySlug returns the visible package with the slug, or nil.
func (s *MemoryPackageStore) FindBySlug(_ context.Context, slug string) (*models.Package, error) {
	return s.c.findBySlug(slug), nil
}

// SlugExists implements slug.Checker.
func (s *MemoryPackageStore) SlugExists(_ context.Context, slug string, exclude uuid.UUID) (bool, error) {
	return s.c.slugExists(slug, exclude), nil
}

// MaxOrder returns the highest order in use, 0 when empty.
func (s *MemoryPackageStore) MaxOrder(context.Context) (int, error) {
	return s.c.maxOrder(), nil
}

// Create assigns id and order and stores p.
func (s *MemoryPackageStore) Create(_ context.Context, p *models.Package) error {
	return s.c.create(p)
}

// Update replaces the stored fields of p, except order and visibility.
func (s *MemoryPackageStore) Update(_ context.Context, p *models.Package) error {
	return s.c.update(p)
}

// Delete removes the package and closes the order gap.
func (s *MemoryPackageStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	return s.c.delete(id), nil
}

// SetVisibility sets isVisible on every listed package.
func (s *MemoryPackageStore) SetVisibility(_ context.Context, ids []uuid.UUID, visible bool, now time.Time) (models.BatchResult, error) {
	return s.c.setVisibility(ids, visible, now), nil
}

// OrderSnapshot returns every (id, order) pair sorted by order.
func (s *MemoryPackageStore) OrderSnapshot(context.Context) ([]models.OrderItem, error) {
	return s.c.snapshot(), nil
}

// Reorder applies a renumber batch atomically.
func (s *MemoryPackageStore) Reorder(_ context.Context, items []models.OrderItem, now time.Time) (int, error) {
	return s.c.reorder(items, now)
}

// MemoryPostStore keeps blog posts in process memory.
type MemoryPostStore struct {
	c *memCollection[models.BlogPost, *models.BlogPost]
}

// NewMemoryPostStore returns an empty in-memory blog post store.
func NewMemoryPostStore() *MemoryPostStore {
	return &MemoryPostStore{c: newMemCollection[models.BlogPost, *models.BlogPost](clonePost)}
}

func clonePost(p *models.BlogPost) *models.BlogPost {
	cp := *p
	cp.Tags = append([]string{}, p.Tags...)
	cp.ContentHTML = ""
	return &cp
}

func matchPost(q models.PostQuery) func(*models.BlogPost) bool {
	return func(p *models.BlogPost) bool {
		if !q.IncludeHidden && !p.IsVisible {
			return false
		}
		if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
			return false
		}
		return q.Search == "" || containsFold(q.Search, p.Title, p.Category, p.Excerpt)
	}
}

// List returns one page of posts matching q, and the total match count.
func (s *MemoryPostStore) List(_ context.Context, q models.PostQuery) ([]models.BlogPost, int, error) {
	less := func(a, b *models.BlogPost) bool { return lessNewest(&a.Entity, &b.Entity) }
	if q.Sort == models.SortManual {
		less = func(a, b *models.BlogPost) bool { return lessManual(&a.Entity, &b.Entity) }
	}
	items, total := s.c.list(matchPost(q), less, q.Offset(), q.Limit)
	return items, total, nil
}

// FindByID returns the post or nil.
func (s *MemoryPostStore) FindByID(_ context.Context, id uuid.UUID) (*models.BlogPost, error) {
	return s.c.findByID(id), nil
}

// FindBySlug returns the visible post with the slug, or nil.
func (s *MemoryPostStore) FindBySlug(_ context.Context, slug string) (*models.BlogPost, error) {
	return s.c.findBySlug(slug), nil
}

// SlugExists implements slug.Checker.
func (s *MemoryPostStore) SlugExists(_ context.Context, slug string, exclude uuid.UUID) (bool, error) {
	return s.c.slugExists(slug, exclude), nil
}

// MaxOrder returns the highest order in use, 0 when empty.
func (s *MemoryPostStore) MaxOrder(context.Context) (int, error) {
	return s.c.maxOrder(), nil
}

// Create assigns id and order and stores p.
func (s *MemoryPostStore) Create(_ context.Context, p *models.BlogPost) error {
	return s.c.create(p)
}

// Update replaces the stored fields of p, except order and visibility.
func (s *MemoryPostStore) Update(_ context.Context, p *models.BlogPost) error {
	return s.c.update(p)
}

// Delete removes the post and closes the order gap.
func (s *MemoryPostStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	return s.c.delete(id), nil
}

// SetVisibility sets isVisible on every listed post.
func (s *MemoryPostStore) SetVisibility(_ context.Context, ids []uuid.UUID, visible bool, now time.Time) (models.BatchResult, error) {
	return s.c.setVisibility(ids, visible, now), nil
}

// OrderSnapshot returns every (id, order) pair sorted by order.
func (s *MemoryPostStore) OrderSnapshot(context.Context) ([]models.OrderItem, error) {
	return s.c.snapshot(), nil
}

// Reorder applies a renumber batch atomically.
func (s *MemoryPostStore) Reorder(_ context.Context, items []models.OrderItem, now time.Time) (int, error) {
	return s.c.reorder(items, now)
}
