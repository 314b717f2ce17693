package pipeline

import (
	"sync"
	"testing"

	"github.com/theirongolddev/finburn/internal/model"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string]model.MetricsSnapshot
	puts int
}

func (c *mapCache) Get(key string) (model.MetricsSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.data[key]
	return s, ok
}

func (c *mapCache) Put(key string, snap model.MetricsSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[string]model.MetricsSnapshot)
	}
	c.data[key] = snap
	c.puts++
}

func TestMemoizer(t *testing.T) {
	cache := &mapCache{}
	m := &Memoizer{Engine: testEngine(), Cache: cache}
	txs := []model.TransactionRecord{tx("2024/03/01", 10, "A")}

	first, hit := m.ComputeMetrics("v1", txs, nil, nil)
	if hit {
		t.Fatal("first call reported a cache hit")
	}
	second, hit := m.ComputeMetrics("v1", nil, nil, nil)
	if !hit {
		t.Fatal("second call with same version missed the cache")
	}
	if second.Financial.TotalRevenue != first.Financial.TotalRevenue {
		t.Errorf("cached TotalRevenue = %v, want %v", second.Financial.TotalRevenue, first.Financial.TotalRevenue)
	}

	if _, hit := m.ComputeMetrics("v2", txs, nil, nil); hit {
		t.Error("new dataset version should miss")
	}
	if _, hit := m.ComputeMetrics("v1", txs, nil, mustRange(t, "2024/03/01", "2024/03/02")); hit {
		t.Error("different range should miss")
	}
	if cache.puts != 3 {
		t.Errorf("puts = %d, want 3", cache.puts)
	}

	if _, hit := m.ComputeMetrics("", txs, nil, nil); hit {
		t.Error("empty version must bypass the cache")
	}
}

func TestMemoKey(t *testing.T) {
	m := &Memoizer{Engine: testEngine()}
	if got, want := m.MemoKey("abc", nil), "abc|all|calendar||2024/03"; got != want {
		t.Errorf("MemoKey = %q, want %q", got, want)
	}
	rng := &model.DateRange{Start: "2024/01/01", End: "2024/01/31"}
	if got, want := m.MemoKey("abc", rng), "abc|2024/01/01-2024/01/31|calendar||2024/03"; got != want {
		t.Errorf("MemoKey = %q, want %q", got, want)
	}
}
