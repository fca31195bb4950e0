package search

import (
	"context"
	"errors"
	"fmt"
)

// ErrSchema signals the provider answered with a payload that does not match
// the expected web-search contract.
var ErrSchema = errors.New("search: response missing expected fields")

// Result is one web-search hit. ID is 1-based and assigned at collection
// time; it is stable only within a single response and exists so citations
// and footnotes can refer to the same ordinal.
type Result struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// AuditString is the canonical per-result string fed into the sequence hash
// used to audit cached result sets.
func (r Result) AuditString() string {
	return fmt.Sprintf("%d|%s|%s|%s", r.ID, r.Title, r.Snippet, r.URL)
}

// Searcher is the upstream web-search contract the orchestrator depends on.
type Searcher interface {
	// Search runs the query and returns up to count hits, possibly none.
	Search(ctx context.Context, query string, count int) ([]Result, error)
	// Ping probes provider reachability for the health report.
	Ping(ctx context.Context) error
}
