package cache

import (
	"context"
	"reflect"
	"testing"

	"hof-narrator/internal/player"
	"hof-narrator/internal/search"
)

func testQuery() player.Query {
	return player.Query{
		FullPlayerName:        "Hank Aaron",
		YearsPlayed:           23,
		HR:                    755,
		TotalPlayerAwards:     47,
		HallOfFameProbability: 1,
	}
}

func TestSearchResultsRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	c := NewSearchResults(store)
	ctx := context.Background()

	q := testQuery()
	s := q.SearchString()

	got, err := c.Get(ctx, q, s)
	if err != nil {
		t.Fatalf("Get before Put failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result before Put, got %d", len(got))
	}

	want := []search.Result{
		{ID: 1, Title: "Hank Aaron", Snippet: "Hall of Famer", URL: "https://example.com/aaron"},
		{ID: 2, Title: "755 home runs", Snippet: "career record", URL: "https://example.com/hr"},
	}
	if err := c.Put(ctx, q, s, want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err = c.Get(ctx, q, s)
	if err != nil {
		t.Fatalf("Get after Put failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestSearchResultsCorruptEntryIsMiss(t *testing.T) {
	store := NewMemoryStore()
	c := NewSearchResults(store)
	ctx := context.Background()

	q := testQuery()
	s := q.SearchString()

	if err := store.Set(ctx, SearchResultsKey(q, s), []byte("{not json")); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	got, err := c.Get(ctx, q, s)
	if err != nil {
		t.Fatalf("corrupt entry must not error: %v", err)
	}
	if got != nil {
		t.Fatalf("corrupt entry must read as miss, got %+v", got)
	}
}

func TestSearchResultsDistinctQueriesIsolated(t *testing.T) {
	store := NewMemoryStore()
	c := NewSearchResults(store)
	ctx := context.Background()

	q1 := testQuery()
	q2 := testQuery()
	q2.HR = 756

	if err := c.Put(ctx, q1, q1.SearchString(), []search.Result{{ID: 1, Title: "a"}}); err != nil {
		t.Fatalf("Put q1: %v", err)
	}

	got, err := c.Get(ctx, q2, q2.SearchString())
	if err != nil {
		t.Fatalf("Get q2: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("q2 unexpectedly hit q1's entry: %+v", got)
	}
}
