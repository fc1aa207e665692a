package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStore_GetSet(t *testing.T) {
	s := New(5 * time.Minute)

	_, ok := s.Get("missing")
	assert.False(t, ok)

	s.Set("key", "value")
	v, ok := s.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "value", v)
}

func TestStore_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := NewWithClock(5*time.Minute, clock)

	s.Set("key", 42)

	now = now.Add(4 * time.Minute)
	v, ok := s.Get("key")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	// Exactly at TTL the entry is stale.
	now = now.Add(1 * time.Minute)
	_, ok = s.Get("key")
	assert.False(t, ok)

	// A stale entry is overwritten in place, not deleted.
	assert.Equal(t, 1, s.Len())
	s.Set("key", 43)
	v, ok = s.Get("key")
	assert.True(t, ok)
	assert.Equal(t, 43, v)
	assert.Equal(t, 1, s.Len())
}

func TestStore_IndependentKeys(t *testing.T) {
	s := New(time.Minute)
	s.Set("a", 1)
	s.Set("b", 2)

	v, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	v, ok = s.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}
