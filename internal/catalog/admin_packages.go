// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"tripcatalog/internal/models"
	"tripcatalog/internal/normalize"
)

// validatePackage checks required fields. On create every required field
// must be present; on update only the fields that were sent are checked.
func validatePackage(in normalize.PackageInput, create bool) error {
	if create || in.Title != nil {
		if in.Title == nil || normalize.Sanitize(*in.Title) == "" {
			return &ValidationError{Field: "title", Message: "is required"}
		}
	}
	if create || in.Price.Present {
		if !in.Price.Present || in.Price.Null {
			return &ValidationError{Field: "price", Message: "is required"}
		}
		if math.IsNaN(in.Price.Float(math.NaN())) {
			return &ValidationError{Field: "price", Message: "must be a number"}
		}
	}
	if create || in.Image != nil {
		if in.Image == nil || strings.TrimSpace(*in.Image) == "" {
			return &ValidationError{Field: "image", Message: "is required"}
		}
	}
	return nil
}

// Package returns any package by id, hidden or not.
func (a *Admin) Package(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	return a.packages.get(ctx, id)
}

// CreatePackage validates and normalizes in, then stores a new package.
// An order inside the current range inserts there; otherwise the package
// is appended.
func (a *Admin) CreatePackage(ctx context.Context, in normalize.PackageInput) (*models.Package, error) {
	if err := validatePackage(in, true); err != nil {
		return nil, err
	}
	p := normalize.NewPackage()
	normalize.ApplyPackage(in, p)
	if in.IsVisible != nil {
		p.IsVisible = *in.IsVisible
	}

	if err := a.packages.create(ctx, p, in.Order.Int(0), a.now()); err != nil {
		return nil, err
	}
	a.invalidate(ctx)
	slog.Info("package created", "id", p.ID, "slug", p.Slug, "order", p.Order)
	return p, nil
}

// UpdatePackage applies the present fields of in. A new title re-derives
// the slug. An order in the input is ignored; use UpdatePackageOrder or
// MovePackage.
func (a *Admin) UpdatePackage(ctx context.Context, id uuid.UUID, in normalize.PackageInput) (*models.Package, error) {
	if err := validatePackage(in, false); err != nil {
		return nil, err
	}
	now := a.now()
	p, err := a.packages.update(ctx, id, func(p *models.Package) {
		normalize.ApplyPackage(in, p)
	}, in.Title != nil, now)
	if err != nil {
		return nil, err
	}
	if in.IsVisible != nil && *in.IsVisible != p.IsVisible {
		if _, err := a.packages.setVisibility(ctx, id, *in.IsVisible, now); err != nil {
			return nil, err
		}
		p.IsVisible = *in.IsVisible
	}
	a.invalidate(ctx)
	slog.Info("package updated", "id", id, "slug", p.Slug)
	return p, nil
}

// DeletePackage removes a package and closes its gap in the order.
func (a *Admin) DeletePackage(ctx context.Context, id uuid.UUID) error {
	if err := a.packages.delete(ctx, id); err != nil {
		return err
	}
	a.invalidate(ctx)
	slog.Info("package deleted", "id", id)
	return nil
}

// SetPackageVisibility shows or hides one package and reports whether
// anything changed.
func (a *Admin) SetPackageVisibility(ctx context.Context, id uuid.UUID, visible bool) (bool, error) {
	changed, err := a.packages.setVisibility(ctx, id, visible, a.now())
	if err != nil {
		return false, err
	}
	if changed {
		a.invalidate(ctx)
	}
	return changed, nil
}

// SetPackagesVisibility shows or hides many packages. When some ids do not
// exist the rest are still applied and a PartialBatchFailure is returned.
func (a *Admin) SetPackagesVisibility(ctx context.Context, ids []uuid.UUID, visible bool) (models.BatchResult, error) {
	res, err := a.packages.setVisibilityBulk(ctx, ids, visible, a.now())
	a.invalidateAfter(ctx, err)
	return res, err
}

// UpdatePackageOrder applies a renumber batch and returns how many
// packages moved.
func (a *Admin) UpdatePackageOrder(ctx context.Context, items []models.OrderItem) (int, error) {
	n, err := a.packages.updateOrder(ctx, items, a.now())
	if err == nil && n > 0 {
		a.invalidate(ctx)
	}
	return n, err
}

// MovePackage drags a package to a 1-based position.
func (a *Admin) MovePackage(ctx context.Context, id uuid.UUID, position int) (int, error) {
	n, err := a.packages.move(ctx, id, position, a.now())
	if err == nil && n > 0 {
		a.invalidate(ctx)
	}
	return n, err
}

// NextPackageOrder returns the order a new package would be appended at.
func (a *Admin) NextPackageOrder(ctx context.Context) (int, error) {
	return a.packages.nextOrder(ctx)
}

// PackageOrder returns the current (id, order) pairs, sorted by order.
func (a *Admin) PackageOrder(ctx context.Context) ([]models.OrderItem, error) {
	return a.packages.orderSnapshot(ctx)
}
