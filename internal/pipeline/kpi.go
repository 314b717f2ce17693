package pipeline

import (
	"math"

	"github.com/theirongolddev/finburn/internal/datekey"
	"github.com/theirongolddev/finburn/internal/model"
)

// daysPerMonth normalizes a daily burn rate to a month.
const daysPerMonth = 30

// ElapsedDays returns the day count used for per-day rates. A range gives its
// inclusive length; otherwise the inclusive span between the earliest and
// latest dated records. Fewer than two distinct dates, or an inverted range,
// count as a single day.
func ElapsedDays(rng *model.DateRange, txs []model.TransactionRecord, exps []model.ExpenseRecord) int {
	if r := usableRange(rng); r != nil {
		return max(datekey.DaysBetween(r.Start, r.End)+1, 1)
	}

	var lo, hi datekey.Key
	observe := func(k datekey.Key) {
		if k.IsZero() {
			return
		}
		if lo == "" || k.Before(lo) {
			lo = k
		}
		if hi == "" || k.After(hi) {
			hi = k
		}
	}
	for _, t := range txs {
		observe(t.OccurredOn)
	}
	for _, e := range exps {
		observe(e.OccurredOn)
	}
	if lo == "" || lo == hi {
		return 1
	}
	return datekey.DaysBetween(lo, hi) + 1
}

// ComputeKPIs derives per-day rates and runway. Runway is +Inf when the
// business is cash-positive and 0 when there is a loss but no measured burn.
func ComputeKPIs(totals model.Totals, elapsedDays int) model.KPIs {
	days := max(elapsedDays, 1)

	k := model.KPIs{
		RevenuePerDay: finite(totals.Revenue / float64(days)),
		BurnRate:      finite(totals.Expenses / float64(days)),
		ElapsedDays:   days,
	}
	k.MonthlyBurnRate = k.BurnRate * daysPerMonth

	switch {
	case totals.NetProfit >= 0:
		k.Runway = model.InfiniteRunway
	case k.MonthlyBurnRate == 0:
		k.Runway = 0
	default:
		k.Runway = model.Runway(finite(math.Abs(totals.NetProfit) / k.MonthlyBurnRate))
	}
	return k
}

// finite replaces NaN and infinities with 0.
func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ratio returns num/den, or 0 when den is zero.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return finite(num / den)
}
