package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"hof-narrator/internal/cache"
	"hof-narrator/internal/search"
)

// HealthReporter holds everything the GET health report probes.
type HealthReporter struct {
	Store cache.Store
	// Searcher is pinged live on every report.
	Searcher search.Searcher
	// CompletionKeyPresent records whether a completion credential was
	// configured. Presence only; the key is never validated upstream here.
	CompletionKeyPresent bool
}

const probeTimeout = 3 * time.Second

// Report handles GET on the narrative endpoint: a plain-text status of the
// function itself, the cache backend, the search provider, and the
// completion credential.
func (h *HallOfFameHandler) Report(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	cacheStatus := "unreachable"
	if cache.Connected(ctx, h.Health.Store) {
		cacheStatus = "reachable"
	}

	searchStatus := "unreachable"
	if h.Health.Searcher != nil && h.Health.Searcher.Ping(ctx) == nil {
		searchStatus = "reachable"
	}

	credentialStatus := "missing"
	if h.Health.CompletionKeyPresent {
		credentialStatus = "present"
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "api: working\ncache: %s\nsearch-provider: %s\ncompletion-credentials: %s\n",
		cacheStatus, searchStatus, credentialStatus)
}
