package cache

import (
	"context"
	"sync"
)

// MemoryStore is the in-process Store used for development and tests.
// The single mutex also serializes Append per process, mirroring the
// atomicity the Redis list push provides.
type MemoryStore struct {
	mu      sync.RWMutex
	values  map[string][]byte
	lists   map[string][][]byte
	healthy bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:  make(map[string][]byte),
		lists:   make(map[string][][]byte),
		healthy: true,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.healthy {
		return nil, false, ErrUnavailable
	}
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(v), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.healthy {
		return ErrUnavailable
	}
	s.values[key] = cloneBytes(value)
	return nil
}

func (s *MemoryStore) Append(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.healthy {
		return ErrUnavailable
	}
	s.lists[key] = append(s.lists[key], cloneBytes(value))
	return nil
}

func (s *MemoryStore) GetList(_ context.Context, key string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.healthy {
		return nil, ErrUnavailable
	}
	list := s.lists[key]
	out := make([][]byte, 0, len(list))
	for _, v := range list {
		out = append(out, cloneBytes(v))
	}
	return out, nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.healthy {
		return ErrUnavailable
	}
	return nil
}

// SetHealthy flips the simulated backend availability. Tests use it to
// exercise the cache-bypass path without a real backend outage.
func (s *MemoryStore) SetHealthy(healthy bool) {
	s.mu.Lock()
	s.healthy = healthy
	s.mu.Unlock()
}

// Len returns the number of string entries plus list entries, for tests.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values) + len(s.lists)
}

// Clear removes everything. Useful for tests or manual resets.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.values = make(map[string][]byte)
	s.lists = make(map[string][][]byte)
	s.mu.Unlock()
}

// cloneBytes decouples stored values from caller buffers.
func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
