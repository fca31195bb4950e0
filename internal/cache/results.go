package cache

import (
	"context"
	"encoding/json"

	"hof-narrator/internal/player"
	"hof-narrator/internal/search"
	"hof-narrator/pkg/logging/logging"

	"go.uber.org/zap"
)

// SearchResults is the read-through cache of web-search hits, keyed per
// (player, search string) pair.
type SearchResults struct {
	store Store
}

func NewSearchResults(store Store) *SearchResults {
	return &SearchResults{store: store}
}

// Get returns the cached hits for the pair, or nil on a miss. A corrupt or
// schema-mismatched entry is logged and treated as a miss; an empty cached
// set is indistinguishable from no entry, which callers accept.
func (c *SearchResults) Get(ctx context.Context, q player.Query, searchString string) ([]search.Result, error) {
	key := SearchResultsKey(q, searchString)

	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var results []search.Result
	if err := json.Unmarshal(raw, &results); err != nil {
		// Corrupt entry: fall through to upstream, never fail the request.
		logging.L(ctx).Warn("corrupt search cache entry, treating as miss",
			zap.String("cache_key", key),
			zap.Error(err),
		)
		return nil, nil
	}

	return results, nil
}

// Put overwrites the entry for the pair (last-write-wins, no merge). The
// order-sensitive sequence hash of the stored set is logged so a changed
// result set for the same key can be spotted in the audit trail.
func (c *SearchResults) Put(ctx context.Context, q player.Query, searchString string, results []search.Result) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return err
	}

	key := SearchResultsKey(q, searchString)
	if err := c.store.Set(ctx, key, raw); err != nil {
		return err
	}

	audit := make([]string, 0, len(results))
	for _, r := range results {
		audit = append(audit, r.AuditString())
	}
	logging.L(ctx).Info("search results cached",
		zap.String("cache_key", key),
		zap.Int("results", len(results)),
		zap.Int32("sequence_hash", SequenceHash(audit)),
	)

	return nil
}
