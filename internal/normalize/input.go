// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"tripcatalog/internal/models"
)

// LooseNumber accepts a JSON number, a numeric string, or null. Present is
// set whenever the key appeared in the document, so partial updates can tell
// "absent" from "sent as null" (Null).
type LooseNumber struct {
	Present bool
	Null    bool
	Raw     string
}

// Num builds a present LooseNumber from a float, mostly for callers that
// construct inputs in code.
func Num(v float64) LooseNumber {
	return LooseNumber{Present: true, Raw: strconv.FormatFloat(v, 'f', -1, 64)}
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *LooseNumber) UnmarshalJSON(b []byte) error {
	n.Present = true
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		n.Null = true
		n.Raw = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n.Raw = strings.TrimSpace(s)
		return nil
	}
	// Numbers, booleans and anything else are kept verbatim and parsed
	// leniently later.
	n.Raw = string(b)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n LooseNumber) MarshalJSON() ([]byte, error) {
	if !n.Present || n.Null {
		return []byte("null"), nil
	}
	return json.Marshal(n.Raw)
}

// Float parses the value, returning def when it is missing, null or not a
// finite number.
func (n LooseNumber) Float(def float64) float64 {
	if !n.Present || n.Null || n.Raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(n.Raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// Int parses the value and truncates toward zero.
func (n LooseNumber) Int(def int) int {
	f := n.Float(math.NaN())
	if math.IsNaN(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return def
	}
	return int(f)
}

// IncludedList is the tagged union StringList | StructuredList that admin
// forms send for "included" items. Exactly one of the two is set after
// decoding.
type IncludedList struct {
	Strings    []string
	Structured []models.IncludedItem
}

// UnmarshalJSON accepts either ["a","b"] or [{"icon":..,"title":..}], and
// also a mix of both.
func (l *IncludedList) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("included: expected a list: %w", err)
	}
	l.Strings, l.Structured = nil, nil

	allStrings := true
	for _, r := range raw {
		if t := bytes.TrimSpace(r); len(t) == 0 || t[0] != '"' {
			allStrings = false
			break
		}
	}
	if allStrings {
		l.Strings = make([]string, 0, len(raw))
		for _, r := range raw {
			var s string
			if err := json.Unmarshal(r, &s); err != nil {
				return fmt.Errorf("included: %w", err)
			}
			l.Strings = append(l.Strings, s)
		}
		return nil
	}

	l.Structured = make([]models.IncludedItem, 0, len(raw))
	for _, r := range raw {
		var item models.IncludedItem
		if t := bytes.TrimSpace(r); len(t) > 0 && t[0] == '"' {
			if err := json.Unmarshal(r, &item.Title); err != nil {
				return fmt.Errorf("included: %w", err)
			}
		} else if err := json.Unmarshal(r, &item); err != nil {
			return fmt.Errorf("included: %w", err)
		}
		l.Structured = append(l.Structured, item)
	}
	return nil
}

// Items returns the structured form. Plain strings become items with an
// empty icon and description. Titles are sanitized and blank items dropped.
func (l IncludedList) Items() []models.IncludedItem {
	out := make([]models.IncludedItem, 0, len(l.Strings)+len(l.Structured))
	for _, s := range l.Strings {
		if t := Sanitize(s); t != "" {
			out = append(out, models.IncludedItem{Title: t})
		}
	}
	for _, it := range l.Structured {
		item := models.IncludedItem{
			Icon:        Sanitize(it.Icon),
			Title:       Sanitize(it.Title),
			Description: Sanitize(it.Description),
		}
		if item.Title == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// PackageInput is the writable surface of a package as sent by admin
// tooling. Nil pointers and non-present numbers mean "leave unchanged".
type PackageInput struct {
	Title         *string       `json:"title"`
	Description   *string       `json:"description"`
	Location      *string       `json:"location"`
	Image         *string       `json:"image"`
	Category      *string       `json:"category"`
	Difficulty    *string       `json:"difficulty"`
	Duration      *string       `json:"duration"`
	Price         LooseNumber   `json:"price"`
	OriginalPrice LooseNumber   `json:"originalPrice"`
	Rating        LooseNumber   `json:"rating"`
	Reviews       LooseNumber   `json:"reviews"`
	Order         LooseNumber   `json:"order"`
	Highlights    *[]string     `json:"highlights"`
	Included      *IncludedList `json:"included"`
	Sights        *[]string     `json:"sights"`
	IsSeasonal    *bool         `json:"isSeasonal"`
	IsVisible     *bool         `json:"isVisible"`
}

// PostInput is the writable surface of a blog post.
type PostInput struct {
	Title     *string     `json:"title"`
	Excerpt   *string     `json:"excerpt"`
	Content   *string     `json:"content"`
	Author    *string     `json:"author"`
	Image     *string     `json:"image"`
	Category  *string     `json:"category"`
	Tags      *[]string   `json:"tags"`
	Order     LooseNumber `json:"order"`
	IsVisible *bool       `json:"isVisible"`
}
