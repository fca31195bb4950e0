package cache

import (
	"context"
	"errors"
)

// ErrUnavailable signals the cache backend cannot be reached. Callers treat
// it as a reason to bypass caching, never as a request failure.
var ErrUnavailable = errors.New("cache: backend unavailable")

// Store is the key-value abstraction over the cache backend.
// Implemented by the memory store (dev) and the Redis store (prod).
//
// String values (Get/Set) hold the serialized search-result collections.
// List values (Append/GetList) hold accumulated narrative variants; Append
// must be atomic on the backend so concurrent writers never lose an entry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Append(ctx context.Context, key string, value []byte) error
	GetList(ctx context.Context, key string) ([][]byte, error)
	Ping(ctx context.Context) error
}

// Connected is the health probe gating every cache interaction. It reports
// false instead of failing when the backend is down or s is nil.
func Connected(ctx context.Context, s Store) bool {
	if s == nil {
		return false
	}
	return s.Ping(ctx) == nil
}
