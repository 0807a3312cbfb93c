// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings
// and allocation of slugs that are unique within a collection.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength caps a generated slug. It leaves room for the "-N" suffix the
// Allocator adds within the slug column width.
const MaxLength = 200

var (
	// nonAlphanumeric matches any run of characters that isn't a-z or 0-9.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
)

// Generate creates a URL-friendly slug of at most MaxLength characters.
// Example: "Côte d'Azur, 2026!" → "cote-d-azur-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(stripMarks(s)))
	result = strings.Trim(nonAlphanumeric.ReplaceAllString(result, "-"), "-")
	if len(result) > MaxLength {
		result = strings.TrimRight(result[:MaxLength], "-")
	}
	return result
}

// stripMarks removes diacritics by decomposing, dropping combining marks and
// recomposing. On a transform error the input is returned unchanged.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
