// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ordering maintains the dense display order of a collection: the
// order values of N entities are always exactly 1..N.
package ordering

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"tripcatalog/internal/models"
)

// ErrNotDense is returned when a renumber batch would leave gaps or
// duplicates in the order sequence, or names an id twice.
var ErrNotDense = errors.New("order must be a dense 1..N sequence")

// MissingError is returned when a renumber batch names entities that no
// longer exist. Nothing is written in that case.
type MissingError struct {
	IDs     []uuid.UUID
	Matched int
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%d of the reordered entities no longer exist", len(e.IDs))
}

// Next returns the order for a newly appended entity.
func Next(maxOrder int) int {
	if maxOrder < 0 {
		maxOrder = 0
	}
	return maxOrder + 1
}

// InsertAt resolves an explicitly requested order on create. A request
// inside 1..maxOrder inserts at that position and the caller must shift
// every entity at or after it by one; anything else appends.
func InsertAt(maxOrder, requested int) (order int, shift bool) {
	if requested >= 1 && requested <= maxOrder {
		return requested, true
	}
	return Next(maxOrder), false
}

// Reposition moves dragged to index target (0-based, clamped) in ids and
// returns the full list renumbered 1..N. This is the computation an admin UI
// performs after a drag gesture.
func Reposition(ids []uuid.UUID, dragged uuid.UUID, target int) ([]models.OrderItem, error) {
	rest := make([]uuid.UUID, 0, len(ids))
	found := false
	for _, id := range ids {
		if id == dragged {
			found = true
			continue
		}
		rest = append(rest, id)
	}
	if !found {
		return nil, &MissingError{IDs: []uuid.UUID{dragged}}
	}

	target = min(max(target, 0), len(rest))
	moved := make([]uuid.UUID, 0, len(ids))
	moved = append(moved, rest[:target]...)
	moved = append(moved, dragged)
	moved = append(moved, rest[target:]...)

	items := make([]models.OrderItem, len(moved))
	for i, id := range moved {
		items[i] = models.OrderItem{ID: id, Order: i + 1}
	}
	return items, nil
}

// Plan checks a renumber batch against the current id → order snapshot of
// the whole collection and returns the entries that actually change, sorted
// by their new order. The batch may be partial as long as the result is
// still dense.
func Plan(current map[uuid.UUID]int, items []models.OrderItem) ([]models.OrderItem, error) {
	seen := make(map[uuid.UUID]bool, len(items))
	var missing []uuid.UUID
	for _, it := range items {
		if seen[it.ID] {
			return nil, fmt.Errorf("%w: id %s listed twice", ErrNotDense, it.ID)
		}
		seen[it.ID] = true
		if _, ok := current[it.ID]; !ok {
			missing = append(missing, it.ID)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingError{IDs: missing, Matched: len(items) - len(missing)}
	}

	next := make(map[uuid.UUID]int, len(current))
	for id, o := range current {
		next[id] = o
	}
	for _, it := range items {
		next[it.ID] = it.Order
	}
	orders := make([]int, 0, len(next))
	for _, o := range next {
		orders = append(orders, o)
	}
	if !Dense(orders) {
		return nil, ErrNotDense
	}

	var changes []models.OrderItem
	for _, it := range items {
		if current[it.ID] != it.Order {
			changes = append(changes, it)
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Order < changes[j].Order })
	return changes, nil
}

// Dense reports whether orders is a permutation of 1..len(orders).
func Dense(orders []int) bool {
	seen := make([]bool, len(orders)+1)
	for _, o := range orders {
		if o < 1 || o > len(orders) || seen[o] {
			return false
		}
		seen[o] = true
	}
	return true
}
