package slug

import (
	"strings"
	"testing"
)

// TestGenerate exercises the slug generator with typical package and post
// titles, punctuation, accented characters and edge cases.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Normal titles ---
		{
			name:  "simple two words",
			input: "Sardinia Escape",
			want:  "sardinia-escape",
		},
		{
			name:  "title with year",
			input: "Iceland Ring Road 2026",
			want:  "iceland-ring-road-2026",
		},
		{
			name:  "already lowercase",
			input: "already lowercase",
			want:  "already-lowercase",
		},
		{
			name:  "single word",
			input: "Patagonia",
			want:  "patagonia",
		},

		// --- Punctuation becomes a single hyphen ---
		{
			name:  "punctuation marks",
			input: "Rome, Florence & Venice!",
			want:  "rome-florence-venice",
		},
		{
			name:  "apostrophe splits words",
			input: "Côte d'Azur",
			want:  "cote-d-azur",
		},
		{
			name:  "slashes",
			input: "7 Days / 6 Nights",
			want:  "7-days-6-nights",
		},
		{
			name:  "parentheses and brackets",
			input: "Safari (Kenya) [Premium]",
			want:  "safari-kenya-premium",
		},
		{
			name:  "dotted version",
			input: "Tour 2.0",
			want:  "tour-2-0",
		},

		// --- Diacritics ---
		{
			name:  "french accents stripped",
			input: "Crème Brûlée à Paris",
			want:  "creme-brulee-a-paris",
		},
		{
			name:  "german umlauts stripped",
			input: "Über die Brücke",
			want:  "uber-die-brucke",
		},
		{
			name:  "spanish tilde",
			input: "Año Nuevo en España",
			want:  "ano-nuevo-en-espana",
		},
		{
			name:  "non latin dropped",
			input: "Tokyo 東京 Nights",
			want:  "tokyo-nights",
		},

		// --- Whitespace and hyphens ---
		{
			name:  "leading and trailing spaces",
			input: "  hello world  ",
			want:  "hello-world",
		},
		{
			name:  "tabs and newlines",
			input: "hello\tworld\nagain",
			want:  "hello-world-again",
		},
		{
			name:  "multiple hyphens collapsed",
			input: "hello---world",
			want:  "hello-world",
		},
		{
			name:  "hyphens and spaces mixed",
			input: "  --hello -- world--  ",
			want:  "hello-world",
		},

		// --- Edge cases ---
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only special characters",
			input: "!@#$%^&*()",
			want:  "",
		},
		{
			name:  "single character",
			input: "A",
			want:  "a",
		},
		{
			name:  "date-like string",
			input: "2026-02-25",
			want:  "2026-02-25",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerate_Idempotent verifies that generating a slug from an already
// valid slug produces the same result.
func TestGenerate_Idempotent(t *testing.T) {
	for _, s := range []string{"sardinia-escape", "tour-2026", "a", "123"} {
		t.Run(s, func(t *testing.T) {
			if got := Generate(s); got != s {
				t.Errorf("Generate(%q) = %q, want idempotent result %q", s, got, s)
			}
		})
	}
}

func TestGenerate_Truncates(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"single long word", strings.Repeat("a", 300)},
		{"words ending on a separator", strings.Repeat("ab ", 100)},
		{"accented", strings.Repeat("é", 300)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if len(got) > MaxLength {
				t.Errorf("len = %d, want <= %d", len(got), MaxLength)
			}
			if strings.HasSuffix(got, "-") || strings.HasPrefix(got, "-") {
				t.Errorf("slug %q has a stray hyphen", got)
			}
		})
	}
}
