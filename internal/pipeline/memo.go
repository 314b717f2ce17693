package pipeline

import (
	"strings"

	"github.com/theirongolddev/finburn/internal/datekey"
	"github.com/theirongolddev/finburn/internal/model"
)

// SnapshotCache stores computed snapshots by key. Implementations must be safe
// for concurrent use when the Memoizer is shared.
type SnapshotCache interface {
	Get(key string) (model.MetricsSnapshot, bool)
	Put(key string, snap model.MetricsSnapshot)
}

// Memoizer wraps an Engine with an injected snapshot cache. The engine stays
// stateless; invalidation happens by changing the dataset version.
type Memoizer struct {
	Engine *Engine
	Cache  SnapshotCache
}

// MemoKey identifies a snapshot. The month of now is included because the
// calendar growth window and the default series both move with the clock.
func (m *Memoizer) MemoKey(version string, rng *model.DateRange) string {
	e := m.engine()
	var b strings.Builder
	b.WriteString(version)
	b.WriteByte('|')
	if rng != nil {
		b.WriteString(string(rng.Start))
		b.WriteByte('-')
		b.WriteString(string(rng.End))
	} else {
		b.WriteString("all")
	}
	b.WriteByte('|')
	b.WriteString(string(e.window()))
	b.WriteByte('|')
	b.WriteString(string(e.Granularity))
	b.WriteByte('|')
	b.WriteString(datekey.FromTime(e.now().Local()).Month())
	return b.String()
}

// ComputeMetrics returns the cached snapshot for (version, rng) or computes
// and stores it. hit reports whether the cache answered.
func (m *Memoizer) ComputeMetrics(version string, txs []model.TransactionRecord, exps []model.ExpenseRecord, rng *model.DateRange) (snap model.MetricsSnapshot, hit bool) {
	if m.Cache == nil || version == "" {
		return m.engine().ComputeMetrics(txs, exps, rng), false
	}

	key := m.MemoKey(version, rng)
	if snap, ok := m.Cache.Get(key); ok {
		return snap, true
	}
	snap = m.engine().ComputeMetrics(txs, exps, rng)
	m.Cache.Put(key, snap)
	return snap, false
}

// ComputeWindow is the memoized form of Engine.ComputeWindow.
func (m *Memoizer) ComputeWindow(version string, txs []model.TransactionRecord, exps []model.ExpenseRecord, rng *model.DateRange) (snap model.MetricsSnapshot, hit bool) {
	if m.Cache == nil || version == "" {
		return m.engine().ComputeWindow(txs, exps, rng), false
	}

	key := m.MemoKey(version, rng) + "|window"
	if snap, ok := m.Cache.Get(key); ok {
		return snap, true
	}
	snap = m.engine().ComputeWindow(txs, exps, rng)
	m.Cache.Put(key, snap)
	return snap, false
}

func (m *Memoizer) engine() *Engine {
	if m.Engine == nil {
		return DefaultEngine
	}
	return m.Engine
}
