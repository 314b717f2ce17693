// Package pipeline turns parsed records into time-bucketed financial metrics.
package pipeline

import (
	"github.com/theirongolddev/finburn/internal/datekey"
	"github.com/theirongolddev/finburn/internal/model"
)

// Span limits (inclusive day counts) for choosing a granularity.
const (
	maxDailySpan  = 31
	maxWeeklySpan = 90
)

// SelectGranularity picks the bucket size for rng. The span counts both end
// days, so 2024/01/01..2024/01/31 is 31 days (daily) and ..2024/02/01 is 32
// (weekly). No range reports monthly;
// an inverted range reports daily and aggregates to an empty series.
func SelectGranularity(rng *model.DateRange) model.Granularity {
	rng = usableRange(rng)
	if rng == nil {
		return model.Monthly
	}
	days := datekey.DaysBetween(rng.Start, rng.End) + 1
	switch {
	case days <= maxDailySpan:
		return model.Daily
	case days <= maxWeeklySpan:
		return model.Weekly
	default:
		return model.Monthly
	}
}

// usableRange returns nil when either end of rng is missing or unparsable,
// so such ranges behave like "no range".
func usableRange(rng *model.DateRange) *model.DateRange {
	if rng == nil || rng.Start.IsZero() || rng.End.IsZero() {
		return nil
	}
	return rng
}

// ParseGranularity accepts "daily", "weekly", "monthly" or "" (auto).
func ParseGranularity(s string) (model.Granularity, bool) {
	switch model.Granularity(s) {
	case model.Daily, model.Weekly, model.Monthly:
		return model.Granularity(s), true
	case "", "auto":
		return "", true
	}
	return "", false
}
