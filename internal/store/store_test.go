// store_test.go provides a shared test database helper for the store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"tripcatalog/internal/catalog"
	"tripcatalog/internal/database"
	"tripcatalog/internal/models"
	"tripcatalog/internal/normalize"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "tripcatalog")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "tripcatalog")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database, runs migrations and
// empties the catalog tables. If the database is unavailable, the test is
// skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	if _, err := db.Exec(`TRUNCATE packages, blog_posts`); err != nil {
		db.Close()
		t.Fatalf("truncate: %v", err)
	}
	t.Cleanup(func() {
		db.Exec(`TRUNCATE packages, blog_posts`)
		db.Close()
	})
	return db
}

func TestPackageStore_DenseOrderIntegration(t *testing.T) {
	db := testDB(t)
	s := NewPackageStore(db)
	ctx := context.Background()

	for _, title := range []string{"Crete", "Malta", "Madeira"} {
		p := &models.Package{
			Entity:   models.Entity{Slug: title, Title: title, Category: models.PackageCategoryStandard, IsVisible: true},
			Duration: "7 Days",
			Price:    1200,
		}
		if err := s.Create(ctx, p); err != nil {
			t.Fatalf("Create %s: %v", title, err)
		}
	}

	// Insert at the front shifts the rest.
	front := &models.Package{Entity: models.Entity{Slug: "azores", Title: "Azores", Order: 1, IsVisible: true}}
	if err := s.Create(ctx, front); err != nil {
		t.Fatalf("Create azores: %v", err)
	}
	assertDense(t, s, 4)

	if found, err := s.Delete(ctx, front.ID); err != nil || !found {
		t.Fatalf("Delete: found=%t err=%v", found, err)
	}
	assertDense(t, s, 3)

	dup := &models.Package{Entity: models.Entity{Slug: "Crete", Title: "Crete"}}
	if err := s.Create(ctx, dup); err != models.ErrDuplicateSlug {
		t.Fatalf("expected ErrDuplicateSlug, got %v", err)
	}
	assertDense(t, s, 3)

	items, total, err := s.List(ctx, models.PackageQuery{
		Duration: models.DurationShort, PriceRange: models.PriceBudget, Page: 1, Limit: 10,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Errorf("List: got %d items, total %d, want 3/3", len(items), total)
	}
}

// TestMaxLengthInputIntegration stores input at every admin size limit,
// twice, so the second entry carries a suffixed slug.
func TestMaxLengthInputIntegration(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	admin := catalog.NewAdmin(NewPackageStore(db), NewPostStore(db), nil)

	title := strings.Repeat("x", 300)
	short := strings.Repeat("d", 300)
	image := "/media/long.jpg"

	var slugs []string
	for range 2 {
		p, err := admin.CreatePackage(ctx, normalize.PackageInput{
			Title:    &title,
			Price:    normalize.Num(900),
			Image:    &image,
			Duration: &short,
			Location: &short,
		})
		if err != nil {
			t.Fatalf("CreatePackage: %v", err)
		}
		slugs = append(slugs, p.Slug)

		content := "Body"
		post, err := admin.CreatePost(ctx, normalize.PostInput{
			Title:   &title,
			Content: &content,
			Author:  &short,
		})
		if err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
		if post.Author != short {
			t.Errorf("author truncated to %d characters", len(post.Author))
		}
	}
	if slugs[1] != slugs[0]+"-1" {
		t.Errorf("second slug: got %q, want %q", slugs[1], slugs[0]+"-1")
	}
}

func assertDense(t *testing.T, s *PackageStore, n int) {
	t.Helper()
	snap, err := s.OrderSnapshot(context.Background())
	if err != nil {
		t.Fatalf("OrderSnapshot: %v", err)
	}
	if len(snap) != n {
		t.Fatalf("snapshot: got %d rows, want %d", len(snap), n)
	}
	for i, it := range snap {
		if it.Order != i+1 {
			t.Errorf("row %d: order %d, want %d", i, it.Order, i+1)
		}
	}
}
