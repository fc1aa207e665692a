package cache

import (
	"sync"
	"time"
)

// entry holds a cached payload and the time it was stored.
type entry struct {
	value    interface{}
	storedAt time.Time
}

// Store is a process-local TTL cache. Stale entries are treated as absent and
// overwritten by the next Set; there is no eviction sweep. Both the Steam
// leaderboard and the per-term search results live here.
type Store struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

// New creates a store whose entries expire after ttl.
func New(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// NewWithClock creates a store with an injected clock. Used in tests.
func NewWithClock(ttl time.Duration, now func() time.Time) *Store {
	s := New(ttl)
	s.now = now
	return s
}

// Get returns the cached value for key if it is still fresh.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.now().Sub(e.storedAt) >= s.ttl {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, overwriting any previous entry.
func (s *Store) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value, storedAt: s.now()}
}

// Len reports the number of entries held, fresh or stale.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
