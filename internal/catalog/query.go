// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog holds the two halves of the travel catalog: Engine answers
// filtered, paginated listing queries and Admin runs every mutation through
// normalization, slug allocation and the dense ordering rules.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"tripcatalog/internal/markdown"
	"tripcatalog/internal/models"
)

const (
	// DefaultLimit is the page size used when a request does not name one.
	DefaultLimit = 12
	// MaxLimit caps the page size of every listing.
	MaxLimit = 100
	// maxSearchLen bounds the search term length.
	maxSearchLen = 100
)

// Engine answers catalog queries. Public queries only ever see visible
// entities and are served through the result cache when one is configured.
type Engine struct {
	packages PackageRepository
	posts    PostRepository
	cache    ResultCache
	render   func(string) (string, error)
}

// NewEngine creates a query engine. cache may be nil.
func NewEngine(packages PackageRepository, posts PostRepository, cache ResultCache) *Engine {
	if cache == nil {
		cache = noCache{}
	}
	return &Engine{packages: packages, posts: posts, cache: cache, render: markdown.ToHTML}
}

// ParsePackageQuery turns a flat query string into a public package query.
// Malformed values never fail: they fall back to "no filter" or to the
// paging defaults.
func ParsePackageQuery(v url.Values, defaultLimit int) models.PackageQuery {
	page, limit := parsePaging(v, defaultLimit)
	q := models.PackageQuery{
		Category: parseCategory(v.Get("category")),
		Search:   parseSearch(v.Get("search")),
		Page:     page,
		Limit:    limit,
		Sort:     models.SortPopular,
	}
	switch d := models.DurationBucket(strings.ToLower(strings.TrimSpace(v.Get("duration")))); d {
	case models.DurationShort, models.DurationMedium, models.DurationLong:
		q.Duration = d
	}
	switch r := models.PriceRange(strings.ToLower(strings.TrimSpace(v.Get("priceRange")))); r {
	case models.PriceBudget, models.PriceMid, models.PriceLuxury:
		q.PriceRange = r
	}
	return q
}

// ParseAdminPackageQuery is ParsePackageQuery for admin listings: hidden
// packages are included and the manual order is the default sort.
func ParseAdminPackageQuery(v url.Values, defaultLimit int) models.PackageQuery {
	q := ParsePackageQuery(v, defaultLimit)
	q.IncludeHidden = true
	q.Sort = parseAdminSort(v.Get("sort"))
	return q
}

// ParsePostQuery turns a flat query string into a public blog query.
func ParsePostQuery(v url.Values, defaultLimit int) models.PostQuery {
	page, limit := parsePaging(v, defaultLimit)
	return models.PostQuery{
		Category: parseCategory(v.Get("category")),
		Search:   parseSearch(v.Get("search")),
		Page:     page,
		Limit:    limit,
		Sort:     models.SortPopular,
	}
}

// ParseAdminPostQuery is ParsePostQuery for admin listings.
func ParseAdminPostQuery(v url.Values, defaultLimit int) models.PostQuery {
	q := ParsePostQuery(v, defaultLimit)
	q.IncludeHidden = true
	q.Sort = parseAdminSort(v.Get("sort"))
	return q
}

func parseAdminSort(s string) models.SortMode {
	if models.SortMode(strings.ToLower(strings.TrimSpace(s))) == models.SortPopular {
		return models.SortPopular
	}
	return models.SortManual
}

func parseCategory(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return ""
	}
	return s
}

func parseSearch(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxSearchLen {
		s = string(r[:maxSearchLen])
	}
	return s
}

// parsePaging reads page and limit. page < 1 or unparsable is 1. A missing
// or unparsable limit takes the default; anything else is clamped to
// [1, MaxLimit].
func parsePaging(v url.Values, defaultLimit int) (page, limit int) {
	page = 1
	if n, err := strconv.Atoi(strings.TrimSpace(v.Get("page"))); err == nil && n > 1 {
		page = n
	}
	limit = defaultLimit
	if n, err := strconv.Atoi(strings.TrimSpace(v.Get("limit"))); err == nil {
		limit = n
	}
	return page, clampLimit(limit)
}

func clampLimit(limit int) int {
	return min(max(limit, 1), MaxLimit)
}

// cachedRead serves key from the result cache, or loads it and caches the
// result under the generation observed before the load.
func cachedRead[T any](ctx context.Context, c ResultCache, key string, load func() (T, error)) (T, error) {
	gen, ok := c.Generation(ctx)
	if ok {
		var cached T
		if c.Get(ctx, gen, key, &cached) {
			return cached, nil
		}
	}
	v, err := load()
	if err == nil && ok {
		c.Set(ctx, gen, key, v)
	}
	return v, err
}

// Packages returns one page of packages.
func (e *Engine) Packages(ctx context.Context, q models.PackageQuery) (models.ListResult[models.Package], error) {
	q.Page = max(q.Page, 1)
	q.Limit = clampLimit(q.Limit)

	load := func() (models.ListResult[models.Package], error) {
		items, total, err := e.packages.List(ctx, q)
		if err != nil {
			return models.ListResult[models.Package]{}, fmt.Errorf("list packages: %w", err)
		}
		return models.NewListResult(items, total, q.Page, q.Limit), nil
	}
	if q.IncludeHidden {
		return load()
	}
	return cachedRead(ctx, e.cache, q.CacheKey(), load)
}

// Posts returns one page of blog posts.
func (e *Engine) Posts(ctx context.Context, q models.PostQuery) (models.ListResult[models.BlogPost], error) {
	q.Page = max(q.Page, 1)
	q.Limit = clampLimit(q.Limit)

	load := func() (models.ListResult[models.BlogPost], error) {
		items, total, err := e.posts.List(ctx, q)
		if err != nil {
			return models.ListResult[models.BlogPost]{}, fmt.Errorf("list posts: %w", err)
		}
		return models.NewListResult(items, total, q.Page, q.Limit), nil
	}
	if q.IncludeHidden {
		return load()
	}
	return cachedRead(ctx, e.cache, q.CacheKey(), load)
}

// PackageBySlug returns a visible package.
func (e *Engine) PackageBySlug(ctx context.Context, slug string) (*models.Package, error) {
	return cachedRead(ctx, e.cache, "package:"+slug, func() (*models.Package, error) {
		p, err := e.packages.FindBySlug(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("find package: %w", err)
		}
		if p == nil {
			return nil, &NotFoundError{Entity: "package", ID: slug}
		}
		return p, nil
	})
}

// PostBySlug returns a visible blog post with its Markdown content rendered
// to sanitized HTML in ContentHTML.
func (e *Engine) PostBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	return cachedRead(ctx, e.cache, "post:"+slug, func() (*models.BlogPost, error) {
		p, err := e.posts.FindBySlug(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("find post: %w", err)
		}
		if p == nil {
			return nil, &NotFoundError{Entity: "post", ID: slug}
		}
		if p.ContentHTML, err = e.render(p.Content); err != nil {
			return nil, fmt.Errorf("render post %s: %w", slug, err)
		}
		return p, nil
	})
}
