// Package narrator composes the end-to-end decision flow: narrative cache,
// search cache, upstream search, prompt composition, completion, and
// persistence of the generated text.
package narrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"hof-narrator/internal/cache"
	"hof-narrator/internal/llm"
	"hof-narrator/internal/metrics"
	"hof-narrator/internal/player"
	"hof-narrator/internal/prompt"
	"hof-narrator/internal/search"
	"hof-narrator/pkg/logging/logging"
)

// Sentinel errors distinguishing which upstream failed. Handlers map both to
// a generic failure response; the distinction is for logs and tests.
var (
	ErrSearchUpstream     = errors.New("narrator: web search failed")
	ErrCompletionUpstream = errors.New("narrator: completion failed")
)

// searchResultCount is how many web hits we request per search.
const searchResultCount = 8

type Config struct {
	Store     cache.Store
	Searcher  search.Searcher
	Completer llm.Client

	Picker Picker           // defaults to the time-seeded picker
	Now    func() time.Time // defaults to time.Now
}

// Orchestrator drives one request through the cache-or-fetch pipeline.
// Caching is a performance optimization: when the backend is unreachable the
// whole flow still runs against the upstreams alone.
type Orchestrator struct {
	store     cache.Store
	results   *cache.SearchResults
	narrative *cache.Narratives
	searcher  search.Searcher
	completer llm.Client
	picker    Picker
	now       func() time.Time

	// flight collapses concurrent upstream searches for the same key so a
	// burst of misses for one player costs a single provider call.
	flight singleflight.Group
}

func New(cfg Config) *Orchestrator {
	picker := cfg.Picker
	if picker == nil {
		picker = NewTimePicker()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Orchestrator{
		store:     cfg.Store,
		results:   cache.NewSearchResults(cfg.Store),
		narrative: cache.NewNarratives(cfg.Store),
		searcher:  cfg.Searcher,
		completer: cfg.Completer,
		picker:    picker,
		now:       now,
	}
}

// Generate returns narrative text for the player: a cached variant when one
// exists, otherwise freshly generated text with its footnote block, persisted
// for next time. Cache writes happen only after the corresponding upstream
// call succeeded.
func (o *Orchestrator) Generate(ctx context.Context, q player.Query) (string, error) {
	logger := logging.L(ctx).With(zap.String("player", q.FullPlayerName))

	cacheOK := cache.Connected(ctx, o.store)
	if !cacheOK {
		metrics.CacheBypassTotal.Inc()
		logger.Warn("cache backend unreachable, bypassing caches")
	}

	if cacheOK {
		if text, ok := o.cachedNarrative(ctx, q, logger); ok {
			return text, nil
		}
	}

	results, err := o.searchResults(ctx, q, cacheOK, logger)
	if err != nil {
		return "", err
	}

	citations := prompt.CitationBlock(results)
	footnotes := prompt.FootnoteBlock(results)
	text, maxTokens := prompt.Compose(q, citations, o.now().Format("1/2/2006"))

	resp, err := o.completer.Complete(ctx, &llm.CompletionRequest{
		Prompt:    text,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionUpstream, err)
	}

	narrative := resp.Text
	if footnotes != "" {
		narrative = narrative + "\n\n" + footnotes
	}

	if cacheOK {
		if err := o.narrative.Add(ctx, q, narrative); err != nil {
			// Persistence is best-effort; the generated text still ships.
			logger.Warn("failed to cache narrative", zap.Error(err))
		}
	}

	return narrative, nil
}

// cachedNarrative returns one stored variant, picked uniformly at random,
// when any exist.
func (o *Orchestrator) cachedNarrative(ctx context.Context, q player.Query, logger *zap.Logger) (string, bool) {
	narratives, err := o.narrative.List(ctx, q)
	if err != nil {
		logger.Warn("narrative cache read failed, treating as miss", zap.Error(err))
		return "", false
	}
	if len(narratives) == 0 {
		return "", false
	}

	metrics.NarrativeHitsTotal.Inc()
	picked := o.picker.Pick(len(narratives))
	logger.Info("narrative cache hit",
		zap.Int("variants", len(narratives)),
		zap.Int("picked", picked),
	)
	return narratives[picked].Text, true
}

// searchResults reads through the search cache to the upstream provider. An
// empty set is a legitimate outcome and is not distinguishable from a miss.
func (o *Orchestrator) searchResults(ctx context.Context, q player.Query, cacheOK bool, logger *zap.Logger) ([]search.Result, error) {
	searchString := q.SearchString()

	if cacheOK {
		cached, err := o.results.Get(ctx, q, searchString)
		if err != nil {
			logger.Warn("search cache read failed, treating as miss", zap.Error(err))
		} else if len(cached) > 0 {
			metrics.SearchHitsTotal.Inc()
			logger.Info("search cache hit", zap.Int("results", len(cached)))
			return cached, nil
		}
	}

	key := cache.SearchResultsKey(q, searchString)
	fetched, err, shared := o.flight.Do(key, func() (interface{}, error) {
		results, err := o.searcher.Search(ctx, searchString, searchResultCount)
		if err != nil {
			return nil, err
		}

		if cacheOK {
			if err := o.results.Put(ctx, q, searchString, results); err != nil {
				logger.Warn("failed to cache search results", zap.Error(err))
			}
		}
		return results, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUpstream, err)
	}

	results := fetched.([]search.Result)
	logger.Info("search fetched from upstream",
		zap.Int("results", len(results)),
		zap.Bool("shared_flight", shared),
	)
	return results, nil
}
