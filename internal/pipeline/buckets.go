package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finburn/internal/datekey"
	"github.com/theirongolddev/finburn/internal/model"
)

// defaultTrailingMonths is the window used when no range is supplied.
const defaultTrailingMonths = 12

// DefaultWindow returns the trailing twelve calendar months ending with now's month.
func DefaultWindow(now time.Time) model.DateRange {
	cur := datekey.FromTime(now.Local()).FirstOfMonth()
	return model.DateRange{
		Start: cur.AddMonths(-(defaultTrailingMonths - 1)),
		End:   cur.AddMonths(1).AddDays(-1),
	}
}

// BucketKey maps a day key onto the bucket key for g.
func BucketKey(k datekey.Key, g model.Granularity) string {
	if k.IsZero() {
		return ""
	}
	switch g {
	case model.Daily:
		return string(k)
	case model.Weekly:
		return string(k.Monday())
	default:
		return k.Month()
	}
}

// BucketLabel is the short display label for a bucket starting on day k.
func BucketLabel(k datekey.Key, g model.Granularity) string {
	t := k.Time()
	if t.IsZero() {
		return ""
	}
	if g == model.Monthly {
		return t.Format("01/2006")
	}
	return t.Format("02/01")
}

// BucketKeys returns the contiguous ascending bucket start days spanning rng.
func BucketKeys(rng model.DateRange, g model.Granularity) []datekey.Key {
	if rng.Start.IsZero() || rng.End.IsZero() || rng.End.Before(rng.Start) {
		return nil
	}

	var keys []datekey.Key
	switch g {
	case model.Daily:
		for d := rng.Start; !d.After(rng.End); d = d.AddDays(1) {
			keys = append(keys, d)
		}
	case model.Weekly:
		for d := rng.Start.Monday(); !d.After(rng.End); d = d.AddDays(7) {
			keys = append(keys, d)
		}
	default:
		last := rng.End.FirstOfMonth()
		for d := rng.Start.FirstOfMonth(); !d.After(last); d = d.AddMonths(1) {
			keys = append(keys, d)
		}
	}
	return keys
}

// AggregateBuckets builds every bucket for rng (or the trailing twelve months
// when rng is nil) and then folds in records whose date maps onto one of them.
// Undated or out-of-window records are skipped. The result is never sparse.
func AggregateBuckets(
	txs []model.TransactionRecord,
	exps []model.ExpenseRecord,
	rng *model.DateRange,
	g model.Granularity,
	now time.Time,
) []model.TimeBucket {
	window := DefaultWindow(now)
	if r := usableRange(rng); r != nil {
		window = *r
	}
	if g == "" {
		g = SelectGranularity(rng)
	}

	starts := BucketKeys(window, g)
	buckets := make([]model.TimeBucket, len(starts))
	index := make(map[string]int, len(starts))
	revenue := make([]decimal.Decimal, len(starts))
	expense := make([]decimal.Decimal, len(starts))
	for i, k := range starts {
		key := BucketKey(k, g)
		buckets[i] = model.TimeBucket{Key: key, Label: BucketLabel(k, g)}
		index[key] = i
	}

	for _, t := range txs {
		if i, ok := index[BucketKey(t.OccurredOn, g)]; ok {
			revenue[i] = revenue[i].Add(t.Amount)
		}
	}
	for _, e := range exps {
		if i, ok := index[BucketKey(e.OccurredOn, g)]; ok {
			expense[i] = expense[i].Add(e.Amount)
		}
	}

	for i := range buckets {
		buckets[i].Revenue = revenue[i].InexactFloat64()
		buckets[i].Expense = expense[i].InexactFloat64()
	}
	return buckets
}
