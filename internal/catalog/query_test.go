package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"tripcatalog/internal/models"
	"tripcatalog/internal/normalize"
	"tripcatalog/internal/store"
)

func TestParsePackageQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  models.PackageQuery
	}{
		{
			name:  "defaults",
			query: "",
			want:  models.PackageQuery{Page: 1, Limit: 12, Sort: models.SortPopular},
		},
		{
			name:  "all filters",
			query: "category=Featured&search=+rome+&duration=MEDIUM&priceRange=luxury&page=3&limit=20",
			want: models.PackageQuery{
				Category: "Featured", Search: "rome", Duration: models.DurationMedium,
				PriceRange: models.PriceLuxury, Page: 3, Limit: 20, Sort: models.SortPopular,
			},
		},
		{
			name:  "category all means no filter",
			query: "category=all",
			want:  models.PackageQuery{Page: 1, Limit: 12, Sort: models.SortPopular},
		},
		{
			name:  "unknown buckets are ignored",
			query: "duration=forever&priceRange=free",
			want:  models.PackageQuery{Page: 1, Limit: 12, Sort: models.SortPopular},
		},
		{
			name:  "bad paging falls back",
			query: "page=-4&limit=abc",
			want:  models.PackageQuery{Page: 1, Limit: 12, Sort: models.SortPopular},
		},
		{
			name:  "zero limit clamps to one",
			query: "limit=0",
			want:  models.PackageQuery{Page: 1, Limit: 1, Sort: models.SortPopular},
		},
		{
			name:  "huge limit clamps to max",
			query: "limit=5000",
			want:  models.PackageQuery{Page: 1, Limit: MaxLimit, Sort: models.SortPopular},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("ParseQuery: %v", err)
			}
			got := ParsePackageQuery(v, DefaultLimit)
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseAdminQueries(t *testing.T) {
	q := ParseAdminPackageQuery(url.Values{}, DefaultLimit)
	if !q.IncludeHidden || q.Sort != models.SortManual {
		t.Errorf("admin package query: %+v", q)
	}
	q = ParseAdminPackageQuery(url.Values{"sort": {"popular"}}, DefaultLimit)
	if q.Sort != models.SortPopular {
		t.Errorf("sort=popular: got %q", q.Sort)
	}

	pq := ParseAdminPostQuery(url.Values{"category": {"culture"}}, 5)
	if !pq.IncludeHidden || pq.Sort != models.SortManual || pq.Category != "culture" || pq.Limit != 5 {
		t.Errorf("admin post query: %+v", pq)
	}
}

func TestParsePostQuery_SearchTruncated(t *testing.T) {
	q := ParsePostQuery(url.Values{"search": {strings.Repeat("á", 150)}}, DefaultLimit)
	if n := len([]rune(q.Search)); n != maxSearchLen {
		t.Errorf("search length: got %d runes, want %d", n, maxSearchLen)
	}
}

// seedPackages creates packages with the given prices and ratings.
func seedPackages(t *testing.T, f *fixture, specs ...priced) []*models.Package {
	t.Helper()
	var out []*models.Package
	for i, s := range specs {
		in := pkgInput(fmt.Sprintf("Package %02d", i), s.price)
		in.Rating = normalize.Num(s.rating)
		out = append(out, f.mustCreatePackage(t, in))
	}
	return out
}

type priced struct {
	price  float64
	rating float64
}

func TestPackages_BudgetFilter(t *testing.T) {
	f := newFixture(t)
	seedPackages(t, f,
		priced{900, 4.1}, priced{1499.99, 4.9}, priced{1500, 5}, priced{3000, 4.5},
		priced{1200, 4.9}, priced{800, 3.0},
	)

	res, err := f.engine.Packages(context.Background(), ParsePackageQuery(url.Values{"priceRange": {"budget"}}, 10))
	if err != nil {
		t.Fatalf("Packages: %v", err)
	}
	if res.Total != 4 || len(res.Items) != 4 {
		t.Fatalf("got %d items, total %d, want 4", len(res.Items), res.Total)
	}
	for i, p := range res.Items {
		if p.Price >= models.PriceMidLow {
			t.Errorf("item %d price %v is not budget", i, p.Price)
		}
		if i == 0 {
			continue
		}
		prev := res.Items[i-1]
		if prev.Rating < p.Rating {
			t.Errorf("items %d/%d not sorted by rating: %v < %v", i-1, i, prev.Rating, p.Rating)
		}
		// Equal ratings: the newer one comes first.
		if prev.Rating == p.Rating && prev.CreatedAt.Before(p.CreatedAt) {
			t.Errorf("items %d/%d tie not broken by createdAt desc", i-1, i)
		}
	}
	// Two packages rated 4.9: 1200 was created later, so it leads.
	if res.Items[0].Price != 1200 || res.Items[1].Price != 1499.99 {
		t.Errorf("tie-break order: got %v then %v", res.Items[0].Price, res.Items[1].Price)
	}
}

func TestPackages_PriceAndDurationBuckets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	durations := []string{"3 Days", "7 Days / 6 Nights", "8 days", "Two weeks", "14 Days", "15 Days", "21 Days"}
	for i, d := range durations {
		in := pkgInput(fmt.Sprintf("Trip %d", i), 1500+float64(i)*500)
		in.Duration = str(d)
		f.mustCreatePackage(t, in)
	}

	tests := []struct {
		query string
		want  int
	}{
		{"duration=short", 2},
		{"duration=medium", 2},
		{"duration=long", 2},
		{"priceRange=mid", 3}, // 1500, 2000, 2500 inclusive
		{"priceRange=luxury", 4},
		{"priceRange=budget", 0},
		{"duration=long&priceRange=luxury", 2},
	}
	for _, tt := range tests {
		v, _ := url.ParseQuery(tt.query)
		res, err := f.engine.Packages(ctx, ParsePackageQuery(v, 50))
		if err != nil {
			t.Fatalf("%s: %v", tt.query, err)
		}
		if res.Total != tt.want {
			t.Errorf("%s: total %d, want %d", tt.query, res.Total, tt.want)
		}
	}
}

func TestPackages_SearchAndCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := pkgInput("Roman Holiday", 1000)
	in.Category = str("featured")
	f.mustCreatePackage(t, in)

	in = pkgInput("Alpine Lakes", 1000)
	in.Location = str("Lake Como, Italy")
	f.mustCreatePackage(t, in)

	in = pkgInput("Desert Nights", 1000)
	in.Description = str("Camp under the stars of ROME's distant cousin, Wadi Rum.")
	f.mustCreatePackage(t, in)

	tests := []struct {
		query string
		want  int
	}{
		{"search=rom", 2},
		{"search=ITALY", 1},
		{"search=100%25", 0},
		{"category=FEATURED", 1},
		{"category=featured&search=alpine", 0},
	}
	for _, tt := range tests {
		v, _ := url.ParseQuery(tt.query)
		res, err := f.engine.Packages(ctx, ParsePackageQuery(v, 50))
		if err != nil {
			t.Fatalf("%s: %v", tt.query, err)
		}
		if res.Total != tt.want {
			t.Errorf("%s: total %d, want %d", tt.query, res.Total, tt.want)
		}
	}
}

func TestPackages_PaginationConsistency(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := range 23 {
		f.mustCreatePackage(t, pkgInput(fmt.Sprintf("Trip %02d", i), float64(500+i*100)))
	}

	for _, limit := range []int{1, 5, 7, 10, 23, 100} {
		seen := map[string]bool{}
		sum := 0
		first, err := f.engine.Packages(ctx, models.PackageQuery{Page: 1, Limit: limit})
		if err != nil {
			t.Fatalf("Packages: %v", err)
		}
		if want := (first.Total + limit - 1) / limit; first.TotalPages != want {
			t.Errorf("limit %d: totalPages %d, want %d", limit, first.TotalPages, want)
		}
		for page := 1; page <= first.TotalPages; page++ {
			res, err := f.engine.Packages(ctx, models.PackageQuery{Page: page, Limit: limit})
			if err != nil {
				t.Fatalf("Packages: %v", err)
			}
			sum += len(res.Items)
			for _, p := range res.Items {
				if seen[p.Slug] {
					t.Errorf("limit %d: %s appears on two pages", limit, p.Slug)
				}
				seen[p.Slug] = true
			}
		}
		if sum != first.Total {
			t.Errorf("limit %d: items across pages %d, total %d", limit, sum, first.Total)
		}
	}
}

func TestPackages_PagePastEnd(t *testing.T) {
	f := newFixture(t)
	for i := range 12 {
		f.mustCreatePackage(t, pkgInput(fmt.Sprintf("Trip %d", i), 100))
	}

	res, err := f.engine.Packages(context.Background(), ParsePackageQuery(url.Values{"page": {"5"}, "limit": {"10"}}, DefaultLimit))
	if err != nil {
		t.Fatalf("Packages: %v", err)
	}
	if len(res.Items) != 0 || res.Total != 12 || res.TotalPages != 2 || res.Page != 5 {
		t.Errorf("got items=%d total=%d totalPages=%d page=%d", len(res.Items), res.Total, res.TotalPages, res.Page)
	}
	data, _ := json.Marshal(res)
	if !strings.Contains(string(data), `"items":[]`) {
		t.Errorf("empty page should encode items as []: %s", data)
	}
}

func TestListings_HugePageIsEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := range 3 {
		f.mustCreatePackage(t, pkgInput(fmt.Sprintf("Trip %d", i), 100))
	}
	v := url.Values{"page": {"4611686018427387905"}, "limit": {"2"}}

	pkgs, err := f.engine.Packages(ctx, ParsePackageQuery(v, DefaultLimit))
	if err != nil {
		t.Fatalf("Packages: %v", err)
	}
	if len(pkgs.Items) != 0 || pkgs.Total != 3 || pkgs.TotalPages != 2 {
		t.Errorf("packages: items=%d total=%d totalPages=%d", len(pkgs.Items), pkgs.Total, pkgs.TotalPages)
	}

	posts, err := f.engine.Posts(ctx, ParsePostQuery(v, DefaultLimit))
	if err != nil {
		t.Fatalf("Posts: %v", err)
	}
	if len(posts.Items) != 0 || posts.Total != 0 {
		t.Errorf("posts: items=%d total=%d", len(posts.Items), posts.Total)
	}
}

func TestPackages_VisibilityFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := pkgInput("Secret Island", 1000)
	in.Category = str("special")
	in.IsVisible = boolPtr(false)
	hidden := f.mustCreatePackage(t, in)
	f.mustCreatePackage(t, pkgInput("Open Island", 1000))

	public, err := f.engine.Packages(ctx, ParsePackageQuery(url.Values{"category": {"special"}, "search": {"island"}}, 10))
	if err != nil {
		t.Fatalf("Packages: %v", err)
	}
	for _, p := range public.Items {
		if p.ID == hidden.ID {
			t.Error("hidden package in public listing")
		}
	}
	if public.Total != 0 {
		t.Errorf("public total: got %d, want 0", public.Total)
	}

	admin, err := f.engine.Packages(ctx, ParseAdminPackageQuery(url.Values{"category": {"special"}}, 10))
	if err != nil {
		t.Fatalf("Packages: %v", err)
	}
	if admin.Total != 1 || admin.Items[0].ID != hidden.ID {
		t.Errorf("admin listing should include the hidden package: %+v", admin)
	}

	if _, err := f.engine.PackageBySlug(ctx, hidden.Slug); err == nil {
		t.Error("hidden package reachable by slug")
	}
}

func TestPackageBySlug(t *testing.T) {
	f := newFixture(t)
	p := f.mustCreatePackage(t, pkgInput("Sardinia Escape", 1500))

	got, err := f.engine.PackageBySlug(context.Background(), "sardinia-escape")
	if err != nil {
		t.Fatalf("PackageBySlug: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("ID: got %s, want %s", got.ID, p.ID)
	}

	_, err = f.engine.PackageBySlug(context.Background(), "nowhere")
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.ID != "nowhere" {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, in := range []normalize.PostInput{
		{Title: str("Old Post"), Content: str("old"), Category: str("culture")},
		{Title: str("Hidden Post"), Content: str("hidden"), IsVisible: boolPtr(false)},
		{Title: str("New Post"), Content: str("# Hello\n\n<script>x()</script>"), Excerpt: str("Fresh from Culture week")},
	} {
		if _, err := f.admin.CreatePost(ctx, in); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
	}

	res, err := f.engine.Posts(ctx, ParsePostQuery(url.Values{}, 10))
	if err != nil {
		t.Fatalf("Posts: %v", err)
	}
	if res.Total != 2 || res.Items[0].Title != "New Post" || res.Items[1].Title != "Old Post" {
		t.Errorf("public posts newest first: %+v", res.Items)
	}

	res, _ = f.engine.Posts(ctx, ParsePostQuery(url.Values{"search": {"culture"}}, 10))
	if res.Total != 2 {
		t.Errorf("search over category and excerpt: total %d, want 2", res.Total)
	}

	res, _ = f.engine.Posts(ctx, ParseAdminPostQuery(url.Values{}, 10))
	if res.Total != 3 || res.Items[0].Title != "Old Post" {
		t.Errorf("admin posts in manual order: %+v", res.Items)
	}

	post, err := f.engine.PostBySlug(ctx, "new-post")
	if err != nil {
		t.Fatalf("PostBySlug: %v", err)
	}
	if !strings.Contains(post.ContentHTML, `<h1 id="hello">Hello</h1>`) {
		t.Errorf("ContentHTML: %q", post.ContentHTML)
	}
	if strings.Contains(post.ContentHTML, "<script") {
		t.Errorf("ContentHTML not sanitized: %q", post.ContentHTML)
	}

	if _, err := f.engine.PostBySlug(ctx, "hidden-post"); err == nil {
		t.Error("hidden post reachable by slug")
	}
}

// mapCache is an in-process ResultCache storing JSON by generation like
// the Valkey cache.
type mapCache struct {
	gen     int64
	entries map[string][]byte
	hits    int
}

func (c *mapCache) Generation(context.Context) (int64, bool) { return c.gen, true }

func (c *mapCache) Get(_ context.Context, gen int64, key string, dst any) bool {
	data, ok := c.entries[fmt.Sprintf("%d:%s", gen, key)]
	if !ok {
		return false
	}
	c.hits++
	return json.Unmarshal(data, dst) == nil
}

func (c *mapCache) Set(_ context.Context, gen int64, key string, v any) {
	data, _ := json.Marshal(v)
	c.entries[fmt.Sprintf("%d:%s", gen, key)] = data
}

func (c *mapCache) InvalidateAll(context.Context) {
	c.gen++
	clear(c.entries)
}

// interleavedPackages runs afterList once, between the store read and the
// engine's cache write.
type interleavedPackages struct {
	*store.MemoryPackageStore
	afterList func()
}

func (s *interleavedPackages) List(ctx context.Context, q models.PackageQuery) ([]models.Package, int, error) {
	items, total, err := s.MemoryPackageStore.List(ctx, q)
	if s.afterList != nil {
		hook := s.afterList
		s.afterList = nil
		hook()
	}
	return items, total, err
}

func TestEngine_InvalidationDuringReadIsNotCached(t *testing.T) {
	packages := &interleavedPackages{MemoryPackageStore: store.NewMemoryPackageStore()}
	posts := store.NewMemoryPostStore()
	cache := &mapCache{entries: map[string][]byte{}}
	admin := NewAdmin(packages, posts, cache)
	engine := NewEngine(packages, posts, cache)
	ctx := context.Background()

	p, err := admin.CreatePackage(ctx, pkgInput("Soon Hidden", 100))
	if err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}

	packages.afterList = func() {
		if _, err := admin.SetPackageVisibility(ctx, p.ID, false); err != nil {
			t.Errorf("SetPackageVisibility: %v", err)
		}
	}
	q := ParsePackageQuery(url.Values{}, 10)
	if _, err := engine.Packages(ctx, q); err != nil {
		t.Fatalf("Packages: %v", err)
	}

	res, err := engine.Packages(ctx, q)
	if err != nil {
		t.Fatalf("Packages: %v", err)
	}
	if res.Total != 0 || len(res.Items) != 0 {
		t.Errorf("hidden package served from cache: %+v", res)
	}
}

func TestEngine_CacheReadThroughAndInvalidation(t *testing.T) {
	packages, posts := store.NewMemoryPackageStore(), store.NewMemoryPostStore()
	cache := &mapCache{entries: map[string][]byte{}}
	admin := NewAdmin(packages, posts, cache)
	engine := NewEngine(packages, posts, cache)
	ctx := context.Background()

	if _, err := admin.CreatePackage(ctx, pkgInput("Cached Trip", 100)); err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}

	q := ParsePackageQuery(url.Values{}, 10)
	first, _ := engine.Packages(ctx, q)
	second, _ := engine.Packages(ctx, q)
	if cache.hits != 1 {
		t.Errorf("hits: got %d, want 1", cache.hits)
	}
	if second.Total != first.Total || second.Items[0].Slug != "cached-trip" {
		t.Errorf("cached result differs: %+v", second)
	}

	// Admin reads bypass the cache.
	if _, err := engine.Packages(ctx, ParseAdminPackageQuery(url.Values{}, 10)); err != nil {
		t.Fatalf("admin Packages: %v", err)
	}
	if cache.hits != 1 {
		t.Errorf("admin read hit the cache")
	}

	if _, err := admin.CreatePackage(ctx, pkgInput("Second Trip", 100)); err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}
	third, _ := engine.Packages(ctx, q)
	if third.Total != 2 {
		t.Errorf("after mutation: total %d, want 2", third.Total)
	}
}
