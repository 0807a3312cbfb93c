// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package normalize turns loosely typed admin input into well-formed catalog
// fields. Everything here is a pure transform: no I/O, no clock.
//
// Validation is lenient on purpose. Unknown categories and difficulties map
// to a default instead of failing, and numbers that do not parse fall back to
// a caller-supplied default, so older admin forms keep working.
package normalize

import (
	"html"
	"math"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"tripcatalog/internal/models"
)

var (
	stripTags = bluemonday.StripTagsPolicy().AddSpaceWhenStrippingTag(true)

	whitespace = regexp.MustCompile(`\s+`)
)

// Sanitize strips all HTML tags, decodes entities back to text and collapses
// whitespace runs into single spaces.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	out := html.UnescapeString(stripTags.Sanitize(s))
	return strings.TrimSpace(whitespace.ReplaceAllString(out, " "))
}

// Body normalizes a Markdown body. Markdown is stored as written (escaping
// it here would break blockquotes and code spans); the markdown renderer
// sanitizes the HTML it produces instead.
func Body(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
}

// SanitizeList sanitizes every entry and drops the ones left empty.
func SanitizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := Sanitize(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ClampRating forces a rating into [0,5]. NaN becomes 0.
func ClampRating(r float64) float64 {
	if math.IsNaN(r) || r < 0 {
		return 0
	}
	if r > 5 {
		return 5
	}
	return r
}

// PackageCategory coerces a category against the package allow-list.
func PackageCategory(s string) string {
	return oneOf(s, models.PackageCategories, models.PackageCategoryStandard)
}

// BlogCategory coerces a category against the blog allow-list.
func BlogCategory(s string) string {
	return oneOf(s, models.BlogCategories, models.BlogCategoryTravelTips)
}

// Difficulty coerces a difficulty level, returning the canonical spelling.
func Difficulty(s string) string {
	return oneOf(s, models.Difficulties, models.DifficultyEasy)
}

// oneOf matches s case-insensitively against allowed and returns the
// allowed spelling, or def.
func oneOf(s string, allowed []string, def string) string {
	s = strings.TrimSpace(s)
	for _, a := range allowed {
		if strings.EqualFold(s, a) {
			return a
		}
	}
	return def
}

// ApplyPackage copies every present field of in onto dst, normalizing as it
// goes. Order and visibility are left to the caller because they are owned
// by the ordering workflow.
func ApplyPackage(in PackageInput, dst *models.Package) {
	if in.Title != nil {
		dst.Title = Sanitize(*in.Title)
	}
	if in.Description != nil {
		dst.Description = Sanitize(*in.Description)
	}
	if in.Location != nil {
		dst.Location = Sanitize(*in.Location)
	}
	if in.Image != nil {
		dst.Image = strings.TrimSpace(*in.Image)
	}
	if in.Category != nil {
		dst.Category = PackageCategory(*in.Category)
	}
	if in.Difficulty != nil {
		dst.Difficulty = Difficulty(*in.Difficulty)
	}
	if in.Duration != nil {
		dst.Duration = Sanitize(*in.Duration)
	}
	if in.Price.Present {
		dst.Price = math.Max(0, in.Price.Float(0))
	}
	if in.OriginalPrice.Present {
		if f := in.OriginalPrice.Float(math.NaN()); math.IsNaN(f) || f < 0 {
			dst.OriginalPrice = nil
		} else {
			dst.OriginalPrice = &f
		}
	}
	if in.Rating.Present {
		dst.Rating = ClampRating(in.Rating.Float(0))
	}
	if in.Reviews.Present {
		dst.Reviews = max(0, in.Reviews.Int(0))
	}
	if in.Highlights != nil {
		dst.Highlights = SanitizeList(*in.Highlights)
	}
	if in.Included != nil {
		dst.Included = in.Included.Items()
	}
	if in.Sights != nil {
		dst.Sights = SanitizeList(*in.Sights)
	}
	if in.IsSeasonal != nil {
		dst.IsSeasonal = *in.IsSeasonal
	}
}

// ApplyPost copies every present field of in onto dst.
func ApplyPost(in PostInput, dst *models.BlogPost) {
	if in.Title != nil {
		dst.Title = Sanitize(*in.Title)
	}
	if in.Excerpt != nil {
		dst.Excerpt = Sanitize(*in.Excerpt)
	}
	if in.Content != nil {
		dst.Content = Body(*in.Content)
	}
	if in.Author != nil {
		dst.Author = Sanitize(*in.Author)
	}
	if in.Image != nil {
		dst.Image = strings.TrimSpace(*in.Image)
	}
	if in.Category != nil {
		dst.Category = BlogCategory(*in.Category)
	}
	if in.Tags != nil {
		dst.Tags = SanitizeList(*in.Tags)
	}
}

// NewPackage returns a package with every defaulted field filled in, ready
// for ApplyPackage on create.
func NewPackage() *models.Package {
	return &models.Package{
		Entity:     models.Entity{Category: models.PackageCategoryStandard, IsVisible: true},
		Difficulty: models.DifficultyEasy,
		Highlights: []string{},
		Included:   []models.IncludedItem{},
		Sights:     []string{},
	}
}

// NewPost returns a blog post with defaults filled in.
func NewPost() *models.BlogPost {
	return &models.BlogPost{
		Entity: models.Entity{Category: models.BlogCategoryTravelTips, IsVisible: true},
		Tags:   []string{},
	}
}
