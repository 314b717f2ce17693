package pipeline

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finburn/internal/datekey"
	"github.com/theirongolddev/finburn/internal/model"
)

// stableBand is the +/- percentage within which a change reports as stable.
const stableBand = 5.0

// TrendWindow selects how the current and previous growth periods are chosen.
type TrendWindow string

const (
	// WindowCalendar compares the wall-clock current month with the previous month,
	// regardless of the requested range.
	WindowCalendar TrendWindow = "calendar"
	// WindowRange compares the requested range with the equal-length window
	// immediately before it. Without a usable range it behaves like WindowCalendar.
	WindowRange TrendWindow = "range"
)

// ParseTrendWindow validates a configured window name. Empty means calendar.
func ParseTrendWindow(s string) (TrendWindow, error) {
	switch TrendWindow(s) {
	case "", WindowCalendar:
		return WindowCalendar, nil
	case WindowRange:
		return WindowRange, nil
	}
	return "", fmt.Errorf("unknown trend window %q (want %q or %q)", s, WindowCalendar, WindowRange)
}

// CompareGrowth returns the percentage change from previous to current.
// A zero baseline yields a neutral rate of 0. Negative baselines divide by
// their magnitude so an improving loss reads as growth.
func CompareGrowth(current, previous float64) model.Growth {
	g := model.Growth{Current: current, Previous: previous, Direction: model.Stable}
	if previous == 0 {
		return g
	}
	rate := (current - previous) / math.Abs(previous) * 100
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return g
	}
	g.Rate = rate
	switch {
	case rate > stableBand:
		g.Direction = model.Up
	case rate < -stableBand:
		g.Direction = model.Down
	}
	return g
}

// GrowthWindows returns the current and previous comparison periods.
func GrowthWindows(w TrendWindow, rng *model.DateRange, now time.Time) (model.DateRange, model.DateRange) {
	if w == WindowRange {
		if r := usableRange(rng); r != nil && r.Valid() {
			n := r.Days()
			prev := model.DateRange{Start: r.Start.AddDays(-n), End: r.Start.AddDays(-1)}
			return *r, prev
		}
	}

	first := datekey.FromTime(now.Local()).FirstOfMonth()
	cur := model.DateRange{Start: first, End: first.AddMonths(1).AddDays(-1)}
	prev := model.DateRange{Start: first.AddMonths(-1), End: first.AddDays(-1)}
	return cur, prev
}

type periodTotals struct {
	revenue  decimal.Decimal
	expenses decimal.Decimal
	count    int
}

func totalsWithin(txs []model.TransactionRecord, exps []model.ExpenseRecord, rng model.DateRange) periodTotals {
	var p periodTotals
	for _, t := range txs {
		if rng.Contains(t.OccurredOn) {
			p.revenue = p.revenue.Add(t.Amount)
			p.count++
		}
	}
	for _, e := range exps {
		if rng.Contains(e.OccurredOn) {
			p.expenses = p.expenses.Add(e.Amount)
		}
	}
	return p
}

// ComputeGrowth compares revenue, expenses, profit and transaction count
// between the two periods.
func ComputeGrowth(txs []model.TransactionRecord, exps []model.ExpenseRecord, cur, prev model.DateRange) model.GrowthSummary {
	c := totalsWithin(txs, exps, cur)
	p := totalsWithin(txs, exps, prev)

	return model.GrowthSummary{
		RevenueGrowth:     CompareGrowth(c.revenue.InexactFloat64(), p.revenue.InexactFloat64()),
		ExpenseGrowth:     CompareGrowth(c.expenses.InexactFloat64(), p.expenses.InexactFloat64()),
		ProfitGrowth:      CompareGrowth(c.revenue.Sub(c.expenses).InexactFloat64(), p.revenue.Sub(p.expenses).InexactFloat64()),
		TransactionGrowth: CompareGrowth(float64(c.count), float64(p.count)),
		Current:           &cur,
		Previous:          &prev,
	}
}
