package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/theirongolddev/finburn/internal/model"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int](2, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a") // a is now most recent
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRUExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRU[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	c.Set("j", "w")
	now = now.Add(30 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Zero(t, c.Len())
}

func TestLRUOverwriteDeletePurge(t *testing.T) {
	c := NewLRU[int](0, 0) // clamps to one entry
	c.Set("a", 1)
	c.Set("a", 2)
	v, _ := c.Get("a")
	assert.Equal(t, 2, v)

	c.Delete("a")
	assert.Zero(t, c.Len())

	c.Set("b", 1)
	c.Purge()
	assert.Zero(t, c.Len())
}

func TestSnapshots(t *testing.T) {
	s := NewSnapshots(4, time.Hour)
	s.Put("key", model.MetricsSnapshot{Granularity: model.Weekly})
	got, ok := s.Get("key")
	assert.True(t, ok)
	assert.Equal(t, model.Weekly, got.Granularity)
}
