// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tripcatalog/internal/models"
)

// PostStore manages blog posts in PostgreSQL.
type PostStore struct {
	db *sql.DB
	t  orderedTable
}

// NewPostStore returns a new PostStore.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db, t: orderedTable{db: db, table: "blog_posts"}}
}

const postColumns = `id, slug, title, category, sort_order, is_visible, created_at, updated_at,
	excerpt, content, author, image, tags`

func scanPost(scanner interface{ Scan(...any) error }) (*models.BlogPost, error) {
	var (
		p    models.BlogPost
		tags []byte
	)
	err := scanner.Scan(
		&p.ID, &p.Slug, &p.Title, &p.Category, &p.Order, &p.IsVisible, &p.CreatedAt, &p.UpdatedAt,
		&p.Excerpt, &p.Content, &p.Author, &p.Image, &tags,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeList(tags, &p.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return &p, nil
}

func postWhere(q models.PostQuery) *where {
	w := &where{}
	if !q.IncludeHidden {
		w.add("is_visible = TRUE")
	}
	if q.Category != "" {
		w.add("lower(category) = lower(?)", q.Category)
	}
	if q.Search != "" {
		pat := likePattern(q.Search)
		w.add("(title ILIKE ? OR category ILIKE ? OR excerpt ILIKE ?)", pat, pat, pat)
	}
	return w
}

// List returns one page of posts matching q, and the total match count.
func (s *PostStore) List(ctx context.Context, q models.PostQuery) ([]models.BlogPost, int, error) {
	w := postWhere(q)
	total, err := s.t.count(ctx, w)
	if err != nil {
		return nil, 0, err
	}
	if q.Offset() >= total {
		return nil, total, nil
	}

	orderBy := "created_at DESC, id"
	if q.Sort == models.SortManual {
		orderBy = "sort_order, id"
	}
	query := `SELECT ` + postColumns + ` FROM blog_posts` + w.String() +
		` ORDER BY ` + orderBy
	query += ` LIMIT ` + w.next(q.Limit) + ` OFFSET ` + w.next(q.Offset())

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var items []models.BlogPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, total, rows.Err()
}

// FindByID returns a post by its ID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM blog_posts WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindBySlug returns a visible post by slug. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM blog_posts WHERE slug = $1 AND is_visible = TRUE`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// SlugExists reports whether another post already uses the slug.
func (s *PostStore) SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	return s.t.slugExists(ctx, slug, exclude)
}

// MaxOrder returns the highest sort_order in use, 0 when the table is empty.
func (s *PostStore) MaxOrder(ctx context.Context) (int, error) {
	return s.t.maxOrder(ctx, s.db)
}

// Create inserts p and sets its ID and Order.
func (s *PostStore) Create(ctx context.Context, p *models.BlogPost) error {
	tags, err := encodeList(p.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
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
			INSERT INTO blog_posts (`+postColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			id, p.Slug, p.Title, p.Category, order, p.IsVisible, p.CreatedAt, p.UpdatedAt,
			p.Excerpt, p.Content, p.Author, p.Image, tags,
		)
		return err
	})
	if err != nil {
		if err == models.ErrDuplicateSlug {
			return err
		}
		return fmt.Errorf("insert post: %w", err)
	}
	p.ID = id
	p.Order = order
	return nil
}

// Update writes the editable fields of p.
func (s *PostStore) Update(ctx context.Context, p *models.BlogPost) error {
	tags, err := encodeList(p.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE blog_posts SET slug = $1, title = $2, category = $3, excerpt = $4,
		       content = $5, author = $6, image = $7, tags = $8, updated_at = $9
		WHERE id = $10`,
		p.Slug, p.Title, p.Category, p.Excerpt,
		p.Content, p.Author, p.Image, tags, p.UpdatedAt,
		p.ID,
	)
	if isUniqueViolation(err) {
		return models.ErrDuplicateSlug
	}
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes a post and compacts the order.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.t.delete(ctx, id)
}

// SetVisibility sets is_visible on every listed post.
func (s *PostStore) SetVisibility(ctx context.Context, ids []uuid.UUID, visible bool, now time.Time) (models.BatchResult, error) {
	return s.t.setVisibility(ctx, ids, visible, now)
}

// OrderSnapshot returns every (id, order) pair sorted by order.
func (s *PostStore) OrderSnapshot(ctx context.Context) ([]models.OrderItem, error) {
	return s.t.snapshot(ctx, s.db)
}

// Reorder applies a renumber batch in one transaction.
func (s *PostStore) Reorder(ctx context.Context, items []models.OrderItem, now time.Time) (int, error) {
	return s.t.reorder(ctx, items, now)
}
