package source

import "strings"

// Kind tells the parser which record shape a file holds.
type Kind string

const (
	KindTransactions Kind = "transactions"
	KindExpenses     Kind = "expenses"
	// KindMixed files carry {"transactions": [...], "expenses": [...]} envelopes.
	KindMixed Kind = "mixed"
)

// DiscoveredFile represents a JSON or JSONL export found during directory scanning.
type DiscoveredFile struct {
	Path string
	Kind Kind
	Name string // path relative to the data directory
}

// Record is one loosely typed input object with lower-cased keys.
type Record map[string]any

// NewRecord lower-cases the keys of raw. When several keys fold to the same
// name, an already lower-case key wins, then the lexicographically smallest.
func NewRecord(raw map[string]any) Record {
	r := make(Record, len(raw))
	from := make(map[string]string, len(raw))
	for k, v := range raw {
		lk := strings.ToLower(strings.TrimSpace(k))
		if prev, dup := from[lk]; dup && !preferKey(k, prev, lk) {
			continue
		}
		from[lk] = k
		r[lk] = v
	}
	return r
}

// preferKey reports whether candidate should replace current for folded name lk.
func preferKey(candidate, current, lk string) bool {
	ce, cu := strings.TrimSpace(candidate) == lk, strings.TrimSpace(current) == lk
	if ce != cu {
		return ce
	}
	return candidate < current
}
