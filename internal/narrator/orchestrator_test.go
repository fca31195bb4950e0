package narrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"hof-narrator/internal/cache"
	"hof-narrator/internal/llm"
	"hof-narrator/internal/player"
	"hof-narrator/internal/search"
)

type mockSearcher struct {
	results []search.Result
	err     error
	calls   int
}

func (m *mockSearcher) Search(_ context.Context, _ string, _ int) ([]search.Result, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockSearcher) Ping(_ context.Context) error { return nil }

type mockCompleter struct {
	text  string
	err   error
	calls int
	last  *llm.CompletionRequest
}

func (m *mockCompleter) Complete(_ context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.calls++
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	return &llm.CompletionResponse{Text: m.text}, nil
}

// fixedPicker always selects the same index.
type fixedPicker struct{ idx int }

func (p fixedPicker) Pick(n int) int {
	if p.idx >= n {
		return n - 1
	}
	return p.idx
}

func troutQuery() player.Query {
	return player.Query{
		FullPlayerName:        "Mike Trout",
		YearsPlayed:           12,
		HR:                    368,
		TotalPlayerAwards:     21,
		HallOfFameProbability: 0.99,
	}
}

func sampleResults() []search.Result {
	return []search.Result{
		{ID: 1, Title: "Mike Trout", Snippet: "career stats", URL: "https://example.com/trout"},
		{ID: 2, Title: "HOF odds", Snippet: "projection", URL: "https://example.com/odds"},
	}
}

func newOrchestrator(store cache.Store, s search.Searcher, c llm.Client) *Orchestrator {
	return New(Config{
		Store:     store,
		Searcher:  s,
		Completer: c,
		Picker:    fixedPicker{},
		Now:       func() time.Time { return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC) },
	})
}

func TestGenerateMissThenHit(t *testing.T) {
	store := cache.NewMemoryStore()
	searcher := &mockSearcher{results: sampleResults()}
	completer := &mockCompleter{text: "A detailed case for Mike Trout."}

	o := newOrchestrator(store, searcher, completer)
	ctx := context.Background()
	q := troutQuery()

	got, err := o.Generate(ctx, q)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(got, "A detailed case for Mike Trout.") {
		t.Fatalf("generated text missing: %q", got)
	}
	if !strings.Contains(got, "1. Mike Trout: https://example.com/trout") {
		t.Fatalf("footnotes missing: %q", got)
	}
	if searcher.calls != 1 || completer.calls != 1 {
		t.Fatalf("expected one call each, got search=%d completion=%d", searcher.calls, completer.calls)
	}

	// Second request must short-circuit on the narrative cache.
	again, err := o.Generate(ctx, q)
	if err != nil {
		t.Fatalf("Generate (cached): %v", err)
	}
	if again != got {
		t.Fatalf("cached narrative differs:\n got %q\nwant %q", again, got)
	}
	if searcher.calls != 1 || completer.calls != 1 {
		t.Fatalf("cache hit must not call upstreams, got search=%d completion=%d", searcher.calls, completer.calls)
	}
}

func TestGeneratePromptCarriesCitationsAndBudget(t *testing.T) {
	store := cache.NewMemoryStore()
	searcher := &mockSearcher{results: sampleResults()}
	completer := &mockCompleter{text: "text"}

	o := newOrchestrator(store, searcher, completer)

	if _, err := o.Generate(context.Background(), troutQuery()); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if completer.last == nil {
		t.Fatal("completion request never sent")
	}
	p := completer.last.Prompt
	if !strings.HasPrefix(p, "Web search results:") {
		t.Fatalf("prompt missing citation block: %q", p)
	}
	if !strings.Contains(p, "The current date is 9/1/2026.") {
		t.Fatalf("prompt missing injected date: %q", p)
	}
	if completer.last.MaxTokens <= 0 || completer.last.MaxTokens > 2000 {
		t.Fatalf("token budget out of range: %d", completer.last.MaxTokens)
	}
}

func TestGenerateUsesSearchCache(t *testing.T) {
	store := cache.NewMemoryStore()
	searcher := &mockSearcher{results: sampleResults()}
	completer := &mockCompleter{text: "variant"}

	o := newOrchestrator(store, searcher, completer)
	ctx := context.Background()
	q := troutQuery()

	// Seed the search cache only; the narrative cache stays empty.
	if err := cache.NewSearchResults(store).Put(ctx, q, q.SearchString(), sampleResults()); err != nil {
		t.Fatalf("seed search cache: %v", err)
	}

	if _, err := o.Generate(ctx, q); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if searcher.calls != 0 {
		t.Fatalf("search cache hit must skip upstream search, got %d calls", searcher.calls)
	}
	if completer.calls != 1 {
		t.Fatalf("expected one completion call, got %d", completer.calls)
	}
}

func TestGenerateCacheBypass(t *testing.T) {
	store := cache.NewMemoryStore()
	store.SetHealthy(false)

	searcher := &mockSearcher{results: sampleResults()}
	completer := &mockCompleter{text: "fresh"}

	o := newOrchestrator(store, searcher, completer)

	got, err := o.Generate(context.Background(), troutQuery())
	if err != nil {
		t.Fatalf("Generate with unreachable cache: %v", err)
	}
	if !strings.HasPrefix(got, "fresh") {
		t.Fatalf("unexpected text: %q", got)
	}
	if searcher.calls != 1 || completer.calls != 1 {
		t.Fatalf("bypass must use upstreams, got search=%d completion=%d", searcher.calls, completer.calls)
	}

	// No write may have been attempted while the backend was down.
	store.SetHealthy(true)
	if store.Len() != 0 {
		t.Fatalf("expected no cache writes during bypass, found %d entries", store.Len())
	}
}

func TestGenerateSearchFailureNoCacheWrite(t *testing.T) {
	store := cache.NewMemoryStore()
	searcher := &mockSearcher{err: errors.New("provider down")}
	completer := &mockCompleter{text: "unused"}

	o := newOrchestrator(store, searcher, completer)

	_, err := o.Generate(context.Background(), troutQuery())
	if !errors.Is(err, ErrSearchUpstream) {
		t.Fatalf("expected ErrSearchUpstream, got %v", err)
	}
	if completer.calls != 0 {
		t.Fatalf("completion must not run after search failure, got %d calls", completer.calls)
	}
	if store.Len() != 0 {
		t.Fatalf("failed search must not write to cache, found %d entries", store.Len())
	}
}

func TestGenerateCompletionFailureNoNarrativeWrite(t *testing.T) {
	store := cache.NewMemoryStore()
	searcher := &mockSearcher{results: sampleResults()}
	completer := &mockCompleter{err: errors.New("completion down")}

	o := newOrchestrator(store, searcher, completer)
	ctx := context.Background()
	q := troutQuery()

	_, err := o.Generate(ctx, q)
	if !errors.Is(err, ErrCompletionUpstream) {
		t.Fatalf("expected ErrCompletionUpstream, got %v", err)
	}

	// Search results were fetched successfully, so they are cached;
	// the narrative list must stay empty.
	narratives, err := cache.NewNarratives(store).List(ctx, q)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(narratives) != 0 {
		t.Fatalf("failed completion must not persist a narrative, found %d", len(narratives))
	}

	cached, err := cache.NewSearchResults(store).Get(ctx, q, q.SearchString())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(cached) != len(sampleResults()) {
		t.Fatalf("successful search should have been cached, got %d results", len(cached))
	}
}

func TestGeneratePicksAmongVariants(t *testing.T) {
	store := cache.NewMemoryStore()
	ctx := context.Background()
	q := troutQuery()

	narratives := cache.NewNarratives(store)
	for _, text := range []string{"variant-0", "variant-1", "variant-2"} {
		if err := narratives.Add(ctx, q, text); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	for idx := 0; idx < 3; idx++ {
		o := New(Config{
			Store:     store,
			Searcher:  &mockSearcher{},
			Completer: &mockCompleter{},
			Picker:    fixedPicker{idx: idx},
		})

		got, err := o.Generate(ctx, q)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		// Memory store preserves append order, so the index maps directly.
		want := []string{"variant-0", "variant-1", "variant-2"}[idx]
		if got != want {
			t.Fatalf("picker index %d returned %q, want %q", idx, got, want)
		}
	}
}

func TestGenerateEmptySearchStillCompletes(t *testing.T) {
	store := cache.NewMemoryStore()
	searcher := &mockSearcher{results: nil}
	completer := &mockCompleter{text: "no sources found"}

	o := newOrchestrator(store, searcher, completer)

	got, err := o.Generate(context.Background(), troutQuery())
	if err != nil {
		t.Fatalf("Generate with empty search: %v", err)
	}
	if got != "no sources found" {
		t.Fatalf("empty search must not append footnotes: %q", got)
	}
	if !strings.Contains(completer.last.Prompt, "Web search results:") {
		t.Fatalf("prompt must keep the header even with no hits: %q", completer.last.Prompt)
	}
}
