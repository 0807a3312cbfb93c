// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// maxProbes bounds how many suffixes Allocate tries before giving up.
const maxProbes = 1000

// Checker reports whether a slug is already used by an entity other than
// exclude. Pass uuid.Nil to check against every entity.
type Checker interface {
	SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
}

// Allocator hands out slugs that are free at the moment of the probe. It
// does not reserve anything: two concurrent callers can receive the same
// slug, and the unique index on the collection decides which insert wins.
type Allocator struct {
	checker  Checker
	fallback string
}

// NewAllocator returns an Allocator probing through checker. fallback is the
// base used when a title produces an empty slug (e.g. "!!!").
func NewAllocator(checker Checker, fallback string) *Allocator {
	return &Allocator{checker: checker, fallback: fallback}
}

// Allocate returns base, base-1, base-2, … whichever is free first.
func (a *Allocator) Allocate(ctx context.Context, title string, exclude uuid.UUID) (string, error) {
	base := Generate(title)
	if base == "" {
		base = a.fallback
	}

	candidate := base
	for i := 1; i <= maxProbes; i++ {
		taken, err := a.checker.SlugExists(ctx, candidate, exclude)
		if err != nil {
			return "", fmt.Errorf("probe slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts", base, maxProbes)
}
