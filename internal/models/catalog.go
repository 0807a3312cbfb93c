// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by stores when a write targets a missing row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateSlug is returned by stores when the unique slug index rejects a write.
	ErrDuplicateSlug = errors.New("duplicate slug")
)

// Package categories. Anything else coerces to PackageCategoryStandard.
const (
	PackageCategoryStandard   = "standard"
	PackageCategoryFeatured   = "featured"
	PackageCategorySpecial    = "special"
	PackageCategoryLastMinute = "lastminute"
)

// PackageCategories lists the allowed package categories.
var PackageCategories = []string{
	PackageCategoryStandard,
	PackageCategoryFeatured,
	PackageCategorySpecial,
	PackageCategoryLastMinute,
}

// Blog categories. Anything else coerces to BlogCategoryTravelTips.
const (
	BlogCategoryTravelTips   = "travel-tips"
	BlogCategoryDestinations = "destinations"
	BlogCategoryCulture      = "culture"
	BlogCategoryFoodDrink    = "food-drink"
	BlogCategoryAdventure    = "adventure"
	BlogCategoryGuides       = "guides"
)

// BlogCategories lists the allowed blog post categories.
var BlogCategories = []string{
	BlogCategoryTravelTips,
	BlogCategoryDestinations,
	BlogCategoryCulture,
	BlogCategoryFoodDrink,
	BlogCategoryAdventure,
	BlogCategoryGuides,
}

// Package difficulty levels. Anything else coerces to DifficultyEasy.
const (
	DifficultyEasy        = "Easy"
	DifficultyModerate    = "Moderate"
	DifficultyChallenging = "Challenging"
)

// Difficulties lists the allowed difficulty levels.
var Difficulties = []string{DifficultyEasy, DifficultyModerate, DifficultyChallenging}

// Entity holds the fields shared by every catalog entry. Order is dense
// (1..N) within a collection and IsVisible gates public queries.
type Entity struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Order     int       `json:"order"`
	IsVisible bool      `json:"isVisible"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Base returns the shared entity fields. Package and BlogPost inherit it
// through embedding, which lets stores treat both collections alike.
func (e *Entity) Base() *Entity {
	return e
}

// IncludedItem is one "what's included" line of a package.
type IncludedItem struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Package is a bookable travel package.
type Package struct {
	Entity
	Description   string         `json:"description"`
	Location      string         `json:"location"`
	Image         string         `json:"image"`
	Price         float64        `json:"price"`
	OriginalPrice *float64       `json:"originalPrice"`
	Rating        float64        `json:"rating"`
	Reviews       int            `json:"reviews"`
	Duration      string         `json:"duration"`
	Difficulty    string         `json:"difficulty"`
	Highlights    []string       `json:"highlights"`
	Included      []IncludedItem `json:"included"`
	Sights        []string       `json:"sights"`
	IsSeasonal    bool           `json:"isSeasonal"`
}

// BlogPost is a blog article. ContentHTML is filled in on read and never stored.
type BlogPost struct {
	Entity
	Excerpt     string   `json:"excerpt"`
	Content     string   `json:"content"`
	ContentHTML string   `json:"contentHtml,omitempty"`
	Author      string   `json:"author"`
	Image       string   `json:"image"`
	Tags        []string `json:"tags"`
}

// OrderItem is one (id, order) pair of a renumber batch.
type OrderItem struct {
	ID    uuid.UUID `json:"id"`
	Order int       `json:"order"`
}

// BatchResult reports how a multi-row write went. Matched counts rows that
// exist; Modified counts rows whose value actually changed.
type BatchResult struct {
	Requested int `json:"requested"`
	Matched   int `json:"matched"`
	Modified  int `json:"modified"`
}
