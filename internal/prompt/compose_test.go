package prompt

import (
	"strings"
	"testing"

	"hof-narrator/internal/player"
	"hof-narrator/internal/search"
)

func TestTokenBudget(t *testing.T) {
	cases := []struct {
		length int
		want   int
	}{
		// 400 chars -> 100 estimated tokens -> round(160) = 160
		{length: 400, want: 160},
		// 8000 chars -> 2000 estimated -> 3200 would exceed the cap
		{length: 8000, want: 2000},
		// 401 chars -> ceil = 101 -> round(161.6) = 162
		{length: 401, want: 162},
		{length: 0, want: 0},
	}

	for _, tc := range cases {
		text := strings.Repeat("x", tc.length)
		if got := TokenBudget(text); got != tc.want {
			t.Errorf("TokenBudget(len %d) = %d, want %d", tc.length, got, tc.want)
		}
	}
}

func TestCitationBlock(t *testing.T) {
	results := []search.Result{
		{ID: 1, Title: "Mike Trout", Snippet: "center fielder", URL: "https://example.com/1"},
		{ID: 2, Title: "HOF tracker", Snippet: "probability models", URL: "https://example.com/2"},
	}

	block := CitationBlock(results)

	if !strings.HasPrefix(block, "Web search results:\n\n") {
		t.Fatalf("missing header: %q", block)
	}
	if !strings.Contains(block, `[1] "Mike Trout. center fielder"`) {
		t.Fatalf("missing first citation: %q", block)
	}
	if !strings.Contains(block, "URL: https://example.com/2") {
		t.Fatalf("missing second url: %q", block)
	}

	// An empty search still produces the header so the template reads
	// sensibly.
	if got := CitationBlock(nil); got != "Web search results:\n\n" {
		t.Fatalf("unexpected empty block: %q", got)
	}
}

func TestFootnoteBlock(t *testing.T) {
	results := []search.Result{
		{ID: 1, Title: "Mike Trout", URL: "https://example.com/1"},
		{ID: 2, Title: "HOF tracker", URL: "https://example.com/2"},
	}

	block := FootnoteBlock(results)
	want := "1. Mike Trout: https://example.com/1\n2. HOF tracker: https://example.com/2\n"
	if block != want {
		t.Fatalf("footnotes = %q, want %q", block, want)
	}

	if got := FootnoteBlock(nil); got != "" {
		t.Fatalf("expected empty footnotes, got %q", got)
	}
}

func TestCompose(t *testing.T) {
	q := player.Query{
		FullPlayerName:        "Mike Trout",
		YearsPlayed:           12,
		HR:                    368,
		TotalPlayerAwards:     21,
		HallOfFameProbability: 0.9945,
	}

	citations := CitationBlock([]search.Result{
		{ID: 1, Title: "Trout", Snippet: "stats", URL: "https://example.com"},
	})

	text, budget := Compose(q, citations, "9/1/2026")

	if !strings.HasPrefix(text, citations) {
		t.Fatal("prompt must start with the citation block")
	}
	if !strings.Contains(text, "The current date is 9/1/2026.") {
		t.Fatalf("missing date sentence: %q", text)
	}
	if !strings.Contains(text, "induction for Mike Trout as 99.45%.") {
		t.Fatalf("missing formatted probability: %q", text)
	}
	if !strings.Contains(text, "Mike Trout has played baseball for 12 years.") {
		t.Fatalf("missing years sentence: %q", text)
	}

	if want := TokenBudget(text); budget != want {
		t.Fatalf("budget = %d, want %d", budget, want)
	}
	if budget <= 0 {
		t.Fatalf("budget must be positive, got %d", budget)
	}
}

func TestComposeDeterministic(t *testing.T) {
	q := player.Query{FullPlayerName: "Babe Ruth", YearsPlayed: 22, HallOfFameProbability: 1}

	a, na := Compose(q, "Web search results:\n\n", "1/2/2024")
	b, nb := Compose(q, "Web search results:\n\n", "1/2/2024")
	if a != b || na != nb {
		t.Fatal("Compose must be deterministic for identical inputs")
	}
}
