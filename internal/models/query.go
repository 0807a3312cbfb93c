// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// SortMode selects the ordering of a listing.
type SortMode string

const (
	// SortPopular orders packages by rating desc, then newest first.
	// For blog posts it orders newest first.
	SortPopular SortMode = "popular"
	// SortManual orders by the admin-maintained order field.
	SortManual SortMode = "order"
)

// DurationBucket groups packages by trip length in days.
type DurationBucket string

const (
	DurationAny    DurationBucket = ""
	DurationShort  DurationBucket = "short"
	DurationMedium DurationBucket = "medium"
	DurationLong   DurationBucket = "long"
)

// Bounds returns the inclusive day range of the bucket. max == 0 means
// unbounded. ok is false for DurationAny and unknown buckets.
func (b DurationBucket) Bounds() (min, max int, ok bool) {
	switch b {
	case DurationShort:
		return 1, 7, true
	case DurationMedium:
		return 8, 14, true
	case DurationLong:
		return 15, 0, true
	}
	return 0, 0, false
}

// Contains reports whether the free-text duration falls into the bucket.
// Text without a leading number matches no bucket.
func (b DurationBucket) Contains(duration string) bool {
	min, max, ok := b.Bounds()
	if !ok {
		return true
	}
	days, parsed := DurationDays(duration)
	if !parsed {
		return false
	}
	return days >= min && (max == 0 || days <= max)
}

// DurationDaysPattern extracts the first integer of a duration text. The
// same expression is used in SQL so both stores bucket identically.
const DurationDaysPattern = `^\D*(\d{1,6})`

var durationDays = regexp.MustCompile(DurationDaysPattern)

// DurationDays parses the day count out of texts like "7 Days / 6 Nights".
func DurationDays(duration string) (int, bool) {
	m := durationDays.FindStringSubmatch(duration)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// PriceRange groups packages by price.
type PriceRange string

const (
	PriceAny    PriceRange = ""
	PriceBudget PriceRange = "budget"
	PriceMid    PriceRange = "mid"
	PriceLuxury PriceRange = "luxury"
)

// Price bucket edges. Mid is inclusive on both ends.
const (
	PriceMidLow  = 1500.0
	PriceMidHigh = 2500.0
)

// Contains reports whether price falls into the range.
func (r PriceRange) Contains(price float64) bool {
	switch r {
	case PriceBudget:
		return price < PriceMidLow
	case PriceMid:
		return price >= PriceMidLow && price <= PriceMidHigh
	case PriceLuxury:
		return price > PriceMidHigh
	}
	return true
}

// PackageQuery is a parsed package listing request.
type PackageQuery struct {
	Category      string
	Search        string
	Duration      DurationBucket
	PriceRange    PriceRange
	Page          int
	Limit         int
	IncludeHidden bool
	Sort          SortMode
}

// Offset returns the number of rows to skip.
func (q PackageQuery) Offset() int {
	return offset(q.Page, q.Limit)
}

// CacheKey returns a canonical string for the query.
func (q PackageQuery) CacheKey() string {
	return fmt.Sprintf("packages:c=%s:s=%s:d=%s:p=%s:pg=%d:l=%d:h=%t:o=%s",
		strings.ToLower(q.Category), strings.ToLower(q.Search),
		q.Duration, q.PriceRange, q.Page, q.Limit, q.IncludeHidden, q.Sort)
}

// PostQuery is a parsed blog listing request.
type PostQuery struct {
	Category      string
	Search        string
	Page          int
	Limit         int
	IncludeHidden bool
	Sort          SortMode
}

// Offset returns the number of rows to skip.
func (q PostQuery) Offset() int {
	return offset(q.Page, q.Limit)
}

// offset computes (page-1)*limit, saturating so that offset+limit never
// overflows. Any page that far out is past the end of every listing.
func offset(page, limit int) int {
	if page <= 1 || limit <= 0 {
		return 0
	}
	if page-1 > (math.MaxInt-limit)/limit {
		return math.MaxInt - limit
	}
	return (page - 1) * limit
}

// CacheKey returns a canonical string for the query.
func (q PostQuery) CacheKey() string {
	return fmt.Sprintf("posts:c=%s:s=%s:pg=%d:l=%d:h=%t:o=%s",
		strings.ToLower(q.Category), strings.ToLower(q.Search),
		q.Page, q.Limit, q.IncludeHidden, q.Sort)
}

// ListResult is one page of a listing.
type ListResult[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}

// NewListResult builds a page, computing TotalPages as ceil(total/limit).
// Items is never nil so it encodes as [].
func NewListResult[T any](items []T, total, page, limit int) ListResult[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return ListResult[T]{Items: items, Total: total, Page: page, TotalPages: totalPages}
}
