// Package cache stores serialized normalization results by key.
package cache

import (
	"context"
	"fmt"
	"sync"
)

// Cache is a key/value store for encoded results. Implementations are safe
// for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// DefaultMaxEntries bounds a Memory cache created with a non-positive size.
const DefaultMaxEntries = 10000

// Memory is a bounded in-process cache. When full, the oldest entry is evicted.
type Memory struct {
	mu    sync.Mutex
	max   int
	items map[string][]byte
	order []string
}

// NewMemory returns a memory cache holding at most maxEntries values.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Memory{max: maxEntries, items: make(map[string][]byte)}
}

// Get returns a copy of the stored value.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Put stores a copy of value. Rewriting a key keeps its eviction slot.
func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[key]; !ok {
		if len(m.order) >= m.max {
			oldest := m.order[0]
			m.order = m.order[1:]
			delete(m.items, oldest)
		}
		m.order = append(m.order, key)
	}
	m.items[key] = append([]byte(nil), value...)
	return nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Open builds the cache named by backend: "memory", "sqlite" or "none"/"".
// A nil Cache with a nil error means caching is disabled.
func Open(backend, path string, maxEntries int) (Cache, error) {
	switch backend {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemory(maxEntries), nil
	case "sqlite":
		if path == "" {
			return nil, fmt.Errorf("open cache: sqlite backend needs a path")
		}
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("open cache: unknown backend %q", backend)
	}
}
