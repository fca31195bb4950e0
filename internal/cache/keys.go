package cache

import (
	"fmt"

	"hof-narrator/internal/player"
)

// Namespaces separating the two kinds of cached entries.
const (
	nsSearchResults = "WebSearchResults"
	nsNarratives    = "HallOfFameNarratives"
)

// DeterministicHash returns a stable 32-bit hash over the UTF-8 bytes of s.
// The runtime's map hash is seeded per process, so cache keys must never be
// built from it; this polynomial hash yields the same value in every process
// and on every run. Collisions are possible but negligible for our key space
// (distinct player fingerprints already separate most keys).
func DeterministicHash(s string) int32 {
	h1 := int32(5381)
	h2 := int32(5381)

	b := []byte(s)
	for i := 0; i < len(b); i += 2 {
		h1 = (h1<<5 + h1) ^ int32(b[i])
		if i+1 < len(b) {
			h2 = (h2<<5 + h2) ^ int32(b[i+1])
		}
	}

	return h1 + h2*1566083941
}

// SequenceHash combines the hashes of items order-sensitively. Used to audit
// cached result sets: a changed, reordered, or truncated collection produces
// a different value. Not part of key derivation.
func SequenceHash(items []string) int32 {
	h := int32(17)
	for _, item := range items {
		h = h*31 + DeterministicHash(item)
	}
	return h
}

// key builds the composite cache key <namespace>:<fingerprint>-<hash>.
// The same (namespace, query, searchString) triple always yields the same
// key.
func key(namespace string, q player.Query, searchString string) string {
	return fmt.Sprintf("%s:%s-%d", namespace, q.Fingerprint(), DeterministicHash(searchString))
}

// SearchResultsKey returns the cache key for the web-search entry of a
// (query, search string) pair.
func SearchResultsKey(q player.Query, searchString string) string {
	return key(nsSearchResults, q, searchString)
}

// NarrativesKey returns the cache key for the narrative list of a query.
func NarrativesKey(q player.Query) string {
	return key(nsNarratives, q, q.SearchString())
}
