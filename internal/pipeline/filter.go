package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/finburn/internal/datekey"
	"github.com/theirongolddev/finburn/internal/model"
)

// FilterByRange returns the records dated inside rng. A nil range returns the
// inputs unchanged; otherwise undated records are dropped.
func FilterByRange(txs []model.TransactionRecord, exps []model.ExpenseRecord, rng *model.DateRange) ([]model.TransactionRecord, []model.ExpenseRecord) {
	if rng == nil {
		return txs, exps
	}

	var outTx []model.TransactionRecord
	for _, t := range txs {
		if rng.Contains(t.OccurredOn) {
			outTx = append(outTx, t)
		}
	}
	var outExp []model.ExpenseRecord
	for _, e := range exps {
		if rng.Contains(e.OccurredOn) {
			outExp = append(outExp, e)
		}
	}
	return outTx, outExp
}

// FilterBySource returns transactions whose source contains the substring.
func FilterBySource(txs []model.TransactionRecord, source string) []model.TransactionRecord {
	if source == "" {
		return txs
	}
	var result []model.TransactionRecord
	for _, t := range txs {
		if containsIgnoreCase(t.Source, source) {
			result = append(result, t)
		}
	}
	return result
}

// FilterByAccountingType returns expenses classified as t.
func (e *Engine) FilterByAccountingType(exps []model.ExpenseRecord, t model.AccountingType) []model.ExpenseRecord {
	if t == "" {
		return exps
	}
	c := e.classifier()
	var result []model.ExpenseRecord
	for _, x := range exps {
		if c.Classify(x).AccountingType == t {
			result = append(result, x)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// LastDays returns the n-day range ending on now's local day, or nil when n <= 0.
func LastDays(now time.Time, n int) *model.DateRange {
	if n <= 0 {
		return nil
	}
	end := datekey.FromTime(now.Local())
	return &model.DateRange{Start: end.AddDays(-(n - 1)), End: end}
}

// ResolveRange turns from/to strings into a range. With neither set it falls
// back to the trailing days window; from without to ends today.
func ResolveRange(from, to string, days int, now time.Time) (*model.DateRange, error) {
	if from == "" && to == "" {
		return LastDays(now, days), nil
	}
	if from == "" {
		return nil, errors.New("to requires from")
	}
	start, ok := datekey.Normalize(from)
	if !ok {
		return nil, fmt.Errorf("invalid from %q", from)
	}
	end := datekey.FromTime(now.Local())
	if to != "" {
		if end, ok = datekey.Normalize(to); !ok {
			return nil, fmt.Errorf("invalid to %q", to)
		}
	}
	return &model.DateRange{Start: start, End: end}, nil
}
