package slug

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// takenSlugs is a Checker backed by a map of slug → owner.
type takenSlugs map[string]uuid.UUID

func (t takenSlugs) SlugExists(_ context.Context, s string, exclude uuid.UUID) (bool, error) {
	owner, ok := t[s]
	if !ok {
		return false, nil
	}
	return exclude == uuid.Nil || owner != exclude, nil
}

type failingChecker struct{}

func (failingChecker) SlugExists(context.Context, string, uuid.UUID) (bool, error) {
	return false, errors.New("db down")
}

func TestAllocate(t *testing.T) {
	self := uuid.New()
	tests := []struct {
		name    string
		taken   takenSlugs
		title   string
		exclude uuid.UUID
		want    string
	}{
		{"free base", takenSlugs{}, "Sardinia Escape", uuid.Nil, "sardinia-escape"},
		{"first suffix", takenSlugs{"sardinia-escape": uuid.New()}, "Sardinia Escape", uuid.Nil, "sardinia-escape-1"},
		{
			name:  "skips used suffixes",
			taken: takenSlugs{"sardinia-escape": uuid.New(), "sardinia-escape-1": uuid.New(), "sardinia-escape-2": uuid.New()},
			title: "Sardinia Escape",
			want:  "sardinia-escape-3",
		},
		{"own slug is free to itself", takenSlugs{"sardinia-escape": self}, "Sardinia Escape", self, "sardinia-escape"},
		{"fallback for empty base", takenSlugs{}, "!!!", uuid.Nil, "package"},
		{"fallback suffixed", takenSlugs{"package": uuid.New()}, "", uuid.Nil, "package-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAllocator(tt.taken, "package")
			got, err := a.Allocate(context.Background(), tt.title, tt.exclude)
			if err != nil {
				t.Fatalf("Allocate: %v", err)
			}
			if got != tt.want {
				t.Errorf("Allocate(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestAllocate_LongTitleSuffixFits(t *testing.T) {
	title := strings.Repeat("x", 300)
	base := Generate(title)
	a := NewAllocator(takenSlugs{base: uuid.New()}, "package")

	got, err := a.Allocate(context.Background(), title, uuid.Nil)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if got != base+"-1" {
		t.Errorf("Allocate = %q, want %q", got, base+"-1")
	}
	if len(got) > MaxLength+len("-1000") {
		t.Errorf("slug length %d exceeds the suffix headroom", len(got))
	}
}

func TestAllocate_CheckerError(t *testing.T) {
	a := NewAllocator(failingChecker{}, "post")
	if _, err := a.Allocate(context.Background(), "Anything", uuid.Nil); err == nil {
		t.Fatal("expected error from failing checker")
	}
}
