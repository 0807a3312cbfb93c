// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"tripcatalog/internal/models"
	"tripcatalog/internal/normalize"
)

func validatePost(in normalize.PostInput, create bool) error {
	if create || in.Title != nil {
		if in.Title == nil || normalize.Sanitize(*in.Title) == "" {
			return &ValidationError{Field: "title", Message: "is required"}
		}
	}
	if create || in.Content != nil {
		if in.Content == nil || normalize.Body(*in.Content) == "" {
			return &ValidationError{Field: "content", Message: "is required"}
		}
	}
	return nil
}

// Post returns any blog post by id, hidden or not.
func (a *Admin) Post(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	return a.posts.get(ctx, id)
}

// CreatePost validates and stores a new blog post.
func (a *Admin) CreatePost(ctx context.Context, in normalize.PostInput) (*models.BlogPost, error) {
	if err := validatePost(in, true); err != nil {
		return nil, err
	}
	p := normalize.NewPost()
	normalize.ApplyPost(in, p)
	if in.IsVisible != nil {
		p.IsVisible = *in.IsVisible
	}

	if err := a.posts.create(ctx, p, in.Order.Int(0), a.now()); err != nil {
		return nil, err
	}
	a.invalidate(ctx)
	slog.Info("post created", "id", p.ID, "slug", p.Slug, "order", p.Order)
	return p, nil
}

// UpdatePost applies the present fields of in.
func (a *Admin) UpdatePost(ctx context.Context, id uuid.UUID, in normalize.PostInput) (*models.BlogPost, error) {
	if err := validatePost(in, false); err != nil {
		return nil, err
	}
	now := a.now()
	p, err := a.posts.update(ctx, id, func(p *models.BlogPost) {
		normalize.ApplyPost(in, p)
	}, in.Title != nil, now)
	if err != nil {
		return nil, err
	}
	if in.IsVisible != nil && *in.IsVisible != p.IsVisible {
		if _, err := a.posts.setVisibility(ctx, id, *in.IsVisible, now); err != nil {
			return nil, err
		}
		p.IsVisible = *in.IsVisible
	}
	a.invalidate(ctx)
	slog.Info("post updated", "id", id, "slug", p.Slug)
	return p, nil
}

// DeletePost removes a blog post.
func (a *Admin) DeletePost(ctx context.Context, id uuid.UUID) error {
	if err := a.posts.delete(ctx, id); err != nil {
		return err
	}
	a.invalidate(ctx)
	slog.Info("post deleted", "id", id)
	return nil
}

// SetPostVisibility shows or hides one post.
func (a *Admin) SetPostVisibility(ctx context.Context, id uuid.UUID, visible bool) (bool, error) {
	changed, err := a.posts.setVisibility(ctx, id, visible, a.now())
	if err != nil {
		return false, err
	}
	if changed {
		a.invalidate(ctx)
	}
	return changed, nil
}

// SetPostsVisibility shows or hides many posts.
func (a *Admin) SetPostsVisibility(ctx context.Context, ids []uuid.UUID, visible bool) (models.BatchResult, error) {
	res, err := a.posts.setVisibilityBulk(ctx, ids, visible, a.now())
	a.invalidateAfter(ctx, err)
	return res, err
}

// UpdatePostOrder applies a renumber batch.
func (a *Admin) UpdatePostOrder(ctx context.Context, items []models.OrderItem) (int, error) {
	n, err := a.posts.updateOrder(ctx, items, a.now())
	if err == nil && n > 0 {
		a.invalidate(ctx)
	}
	return n, err
}

// MovePost drags a post to a 1-based position.
func (a *Admin) MovePost(ctx context.Context, id uuid.UUID, position int) (int, error) {
	n, err := a.posts.move(ctx, id, position, a.now())
	if err == nil && n > 0 {
		a.invalidate(ctx)
	}
	return n, err
}

// NextPostOrder returns the order a new post would be appended at.
func (a *Admin) NextPostOrder(ctx context.Context) (int, error) {
	return a.posts.nextOrder(ctx)
}

// PostOrder returns the current (id, order) pairs of the blog.
func (a *Admin) PostOrder(ctx context.Context) ([]models.OrderItem, error) {
	return a.posts.orderSnapshot(ctx)
}
