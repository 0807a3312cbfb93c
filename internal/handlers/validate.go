// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"unicode/utf8"

	"tripcatalog/internal/catalog"
	"tripcatalog/internal/normalize"
)

// Size limits for admin input. Required fields and value coercion are the
// catalog's business; these only keep oversized payloads out of storage.
const (
	maxTitleLen       = 300
	maxShortTextLen   = 300
	maxDescriptionLen = 5_000
	maxBodyLen        = 100_000
	maxURLLen         = 2_048
	maxListLen        = 50
	maxListItemLen    = 500
)

type lengthCheck struct {
	field string
	value *string
	limit int
}

func checkLengths(checks []lengthCheck) error {
	for _, c := range checks {
		if c.value != nil && utf8.RuneCountInString(*c.value) > c.limit {
			return &catalog.ValidationError{
				Field:   c.field,
				Message: fmt.Sprintf("is too long (max %d characters)", c.limit),
			}
		}
	}
	return nil
}

func checkList(field string, list *[]string) error {
	if list == nil {
		return nil
	}
	if len(*list) > maxListLen {
		return &catalog.ValidationError{Field: field, Message: fmt.Sprintf("has too many entries (max %d)", maxListLen)}
	}
	for _, s := range *list {
		if utf8.RuneCountInString(s) > maxListItemLen {
			return &catalog.ValidationError{Field: field, Message: fmt.Sprintf("entries are limited to %d characters", maxListItemLen)}
		}
	}
	return nil
}

// validatePackageInput checks package input sizes and returns the first
// violation.
func validatePackageInput(in normalize.PackageInput) error {
	err := checkLengths([]lengthCheck{
		{"title", in.Title, maxTitleLen},
		{"description", in.Description, maxDescriptionLen},
		{"location", in.Location, maxShortTextLen},
		{"image", in.Image, maxURLLen},
		{"duration", in.Duration, maxShortTextLen},
	})
	if err != nil {
		return err
	}
	if err := checkList("highlights", in.Highlights); err != nil {
		return err
	}
	if err := checkList("sights", in.Sights); err != nil {
		return err
	}
	if in.Included != nil && len(in.Included.Strings)+len(in.Included.Structured) > maxListLen {
		return &catalog.ValidationError{Field: "included", Message: fmt.Sprintf("has too many entries (max %d)", maxListLen)}
	}
	return nil
}

// validatePostInput checks blog post input sizes.
func validatePostInput(in normalize.PostInput) error {
	err := checkLengths([]lengthCheck{
		{"title", in.Title, maxTitleLen},
		{"excerpt", in.Excerpt, maxDescriptionLen},
		{"content", in.Content, maxBodyLen},
		{"author", in.Author, maxShortTextLen},
		{"image", in.Image, maxURLLen},
	})
	if err != nil {
		return err
	}
	return checkList("tags", in.Tags)
}
