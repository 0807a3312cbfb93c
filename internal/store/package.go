// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tripcatalog/internal/models"
)

// PackageStore manages travel packages in PostgreSQL.
type PackageStore struct {
	db *sql.DB
	t  orderedTable
}

// NewPackageStore returns a new PackageStore.
func NewPackageStore(db *sql.DB) *PackageStore {
	return &PackageStore{db: db, t: orderedTable{db: db, table: "packages"}}
}

const packageColumns = `id, slug, title, category, sort_order, is_visible, created_at, updated_at,
	description, location, image, price, original_price, rating, reviews,
	duration, difficulty, highlights, included, sights, is_seasonal`

// scanPackage scans a row into a Package, decoding the JSONB list columns.
func scanPackage(scanner interface{ Scan(...any) error }) (*models.Package, error) {
	var (
		p                           models.Package
		original                    sql.NullFloat64
		highlights, included, sights []byte
	)
	err := scanner.Scan(
		&p.ID, &p.Slug, &p.Title, &p.Category, &p.Order, &p.IsVisible, &p.CreatedAt, &p.UpdatedAt,
		&p.Description, &p.Location, &p.Image, &p.Price, &original, &p.Rating, &p.Reviews,
		&p.Duration, &p.Difficulty, &highlights, &included, &sights, &p.IsSeasonal,
	)
	if err != nil {
		return nil, err
	}
	if original.Valid {
		v := original.Float64
		p.OriginalPrice = &v
	}
	if err := decodeList(highlights, &p.Highlights); err != nil {
		return nil, fmt.Errorf("decode highlights: %w", err)
	}
	if err := decodeList(included, &p.Included); err != nil {
		return nil, fmt.Errorf("decode included: %w", err)
	}
	if err := decodeList(sights, &p.Sights); err != nil {
		return nil, fmt.Errorf("decode sights: %w", err)
	}
	return &p, nil
}

// decodeList unmarshals a JSONB array, leaving an empty non-nil slice for
// NULL or empty input.
func decodeList[T any](raw []byte, dst *[]T) error {
	*dst = []T{}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// encodeList marshals a list for a JSONB column. Nil encodes as [].
func encodeList[T any](v []T) ([]byte, error) {
	if v == nil {
		v = []T{}
	}
	return json.Marshal(v)
}

// packageWhere translates the query filters into SQL conditions.
func packageWhere(q models.PackageQuery) *where {
	w := &where{}
	if !q.IncludeHidden {
		w.add("is_visible = TRUE")
	}
	if q.Category != "" {
		w.add("lower(category) = lower(?)", q.Category)
	}
	if q.Search != "" {
		pat := likePattern(q.Search)
		w.add("(title ILIKE ? OR location ILIKE ? OR description ILIKE ?)", pat, pat, pat)
	}
	if lo, hi, ok := q.Duration.Bounds(); ok {
		days := "substring(duration from '" + models.DurationDaysPattern + "')::int"
		w.add(days+" >= ?", lo)
		if hi > 0 {
			w.add(days+" <= ?", hi)
		}
	}
	switch q.PriceRange {
	case models.PriceBudget:
		w.add("price < ?", models.PriceMidLow)
	case models.PriceMid:
		w.add("price BETWEEN ? AND ?", models.PriceMidLow, models.PriceMidHigh)
	case models.PriceLuxury:
		w.add("price > ?", models.PriceMidHigh)
	}
	return w
}

// List returns one page of packages matching q, and the total match count.
func (s *PackageStore) List(ctx context.Context, q models.PackageQuery) ([]models.Package, int, error) {
	w := packageWhere(q)
	total, err := s.t.count(ctx, w)
	if err != nil {
		return nil, 0, err
	}
	if q.Offset() >= total {
		return nil, total, nil
	}

	orderBy := "rating DESC, created_at DESC, id"
	if q.Sort == models.SortManual {
		orderBy = "sort_order, id"
	}
	query := `SELECT ` + packageColumns + ` FROM packages` + w.String() +
		` ORDER BY ` + orderBy
	query += ` LIMIT ` + w.next(q.Limit) + ` OFFSET ` + w.next(q.Offset())

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	var items []models.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan package: %w", err)
		}
		items = append(items, *p)
	}
	return items, total, rows.Err()
}

// FindByID returns a package by its ID, hidden or not. Returns nil if not found.
func (s *PackageStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	p, err := scanPackage(s.db.QueryRowContext(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find package by id: %w", err)
	}
	return p, nil
}

// FindBySlug returns a visible package by slug. Returns nil if not found.
func (s *PackageStore) FindBySlug(ctx context.Context, slug string) (*models.Package, error) {
	p, err := scanPackage(s.db.QueryRowContext(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE slug = $1 AND is_visible = TRUE`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find package by slug: %w", err)
	}
	return p, nil
}

// SlugExists reports whether another package already uses the slug.
func (s *PackageStore) SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	return s.t.slugExists(ctx, slug, exclude)
}

// MaxOrder returns the highest sort_order in use, 0 when the table is empty.
func (s *PackageStore) MaxOrder(ctx context.Context) (int, error) {
	return s.t.maxOrder(ctx, s.db)
}

// Create inserts p. A requested order inside the current range shifts the
// rest down; anything else appends. ID and Order are set on p.
func (s *PackageStore) Create(ctx context.Context, p *models.Package) error {
	highlights, included, sights, err := encodePackageLists(p)
	if err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	id := uuid.New()

	order, err := s.t.insert(ctx, p.Order, func(tx *sql.Tx, order int) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO packages (`+packageColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			        $16, $17, $18, $19, $20, $21)`,
			id, p.Slug, p.Title, p.Category, order, p.IsVisible, p.CreatedAt, p.UpdatedAt,
			p.Description, p.Location, p.Image, p.Price, p.OriginalPrice, p.Rating, p.Reviews,
			p.Duration, p.Difficulty, highlights, included, sights, p.IsSeasonal,
		)
		return err
	})
	if err != nil {
		if err == models.ErrDuplicateSlug {
			return err
		}
		return fmt.Errorf("insert package: %w", err)
	}
	p.ID = id
	p.Order = order
	return nil
}

// Update writes the editable fields of p. Order, visibility and
// created_at are left as stored.
func (s *PackageStore) Update(ctx context.Context, p *models.Package) error {
	highlights, included, sights, err := encodePackageLists(p)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE packages SET slug = $1, title = $2, category = $3, description = $4,
		       location = $5, image = $6, price = $7, original_price = $8, rating = $9,
		       reviews = $10, duration = $11, difficulty = $12, highlights = $13,
		       included = $14, sights = $15, is_seasonal = $16, updated_at = $17
		WHERE id = $18`,
		p.Slug, p.Title, p.Category, p.Description,
		p.Location, p.Image, p.Price, p.OriginalPrice, p.Rating,
		p.Reviews, p.Duration, p.Difficulty, highlights,
		included, sights, p.IsSeasonal, p.UpdatedAt,
		p.ID,
	)
	if isUniqueViolation(err) {
		return models.ErrDuplicateSlug
	}
	if err != nil {
		return fmt.Errorf("update package: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func encodePackageLists(p *models.Package) (highlights, included, sights []byte, err error) {
	if highlights, err = encodeList(p.Highlights); err != nil {
		return nil, nil, nil, fmt.Errorf("encode highlights: %w", err)
	}
	if included, err = encodeList(p.Included); err != nil {
		return nil, nil, nil, fmt.Errorf("encode included: %w", err)
	}
	if sights, err = encodeList(p.Sights); err != nil {
		return nil, nil, nil, fmt.Errorf("encode sights: %w", err)
	}
	return highlights, included, sights, nil
}

// Delete removes a package and closes the gap it leaves in the order.
// Returns false if no such package exists.
func (s *PackageStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.t.delete(ctx, id)
}

// SetVisibility sets is_visible on every listed package.
func (s *PackageStore) SetVisibility(ctx context.Context, ids []uuid.UUID, visible bool, now time.Time) (models.BatchResult, error) {
	return s.t.setVisibility(ctx, ids, visible, now)
}

// OrderSnapshot returns every (id, order) pair sorted by order.
func (s *PackageStore) OrderSnapshot(ctx context.Context) ([]models.OrderItem, error) {
	return s.t.snapshot(ctx, s.db)
}

// Reorder applies a renumber batch in one transaction.
func (s *PackageStore) Reorder(ctx context.Context, items []models.OrderItem, now time.Time) (int, error) {
	return s.t.reorder(ctx, items, now)
}
