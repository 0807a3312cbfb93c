// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError is returned when input is missing a required field or a
// field is malformed. Nothing has been written when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NotFoundError is returned when a mutation or lookup targets an entity
// that does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func notFound(entity string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id.String()}
}

// ConflictError is returned when a slug is still taken after the single
// retry that follows a unique-index rejection.
type ConflictError struct {
	Slug string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slug %q is already in use", e.Slug)
}

// PartialBatchFailure is returned when a batch write could not be applied
// to every requested id. Callers holding an optimistic copy of the
// collection should refetch it.
type PartialBatchFailure struct {
	Requested int
	Matched   int
	Modified  int
}

func (e *PartialBatchFailure) Error() string {
	return fmt.Sprintf("batch matched %d of %d entities (%d modified)",
		e.Matched, e.Requested, e.Modified)
}
