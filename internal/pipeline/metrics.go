package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finburn/internal/classify"
	"github.com/theirongolddev/finburn/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Engine computes metric snapshots. The zero value uses the built-in
// classifier, wall-clock time and the calendar growth window. An Engine holds
// no mutable state and may be shared between goroutines.
type Engine struct {
	Classifier *classify.Classifier
	Now        func() time.Time
	Window     TrendWindow
	// Granularity forces the series bucket size; empty selects from the range.
	Granularity model.Granularity
}

// DefaultEngine is used by the package-level ComputeMetrics.
var DefaultEngine = &Engine{}

// ComputeMetrics computes a snapshot with DefaultEngine.
func ComputeMetrics(txs []model.TransactionRecord, exps []model.ExpenseRecord, rng *model.DateRange) model.MetricsSnapshot {
	return DefaultEngine.ComputeMetrics(txs, exps, rng)
}

func (e *Engine) classifier() *classify.Classifier {
	if e == nil || e.Classifier == nil {
		return classify.Default()
	}
	return e.Classifier
}

func (e *Engine) now() time.Time {
	if e == nil || e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Engine) window() TrendWindow {
	if e == nil || e.Window == "" {
		return WindowCalendar
	}
	return e.Window
}

func (e *Engine) granularity(rng *model.DateRange) model.Granularity {
	if e != nil && e.Granularity != "" {
		return e.Granularity
	}
	return SelectGranularity(rng)
}

// ClassifyAll classifies every expense in input order.
func (e *Engine) ClassifyAll(exps []model.ExpenseRecord) []model.Classification {
	c := e.classifier()
	out := make([]model.Classification, len(exps))
	for i, x := range exps {
		out[i] = c.Classify(x)
	}
	return out
}

// ComputeMetrics returns the full snapshot for the inputs. Totals and
// breakdowns cover every record passed in; rng only shapes the series, the
// growth window (in range mode) and the elapsed-day count. Callers wanting
// range-filtered totals use FilterByRange first.
func (e *Engine) ComputeMetrics(txs []model.TransactionRecord, exps []model.ExpenseRecord, rng *model.DateRange) model.MetricsSnapshot {
	now := e.now()
	classes := e.ClassifyAll(exps)

	revenue, totalRevenue := summarizeRevenue(txs)
	costs, ct := summarizeCosts(exps, classes, len(txs))
	totalExpenses := ct.total

	net := totalRevenue.Sub(totalExpenses)
	gross := totalRevenue.Sub(ct.cogs)
	operating := gross.Sub(ct.opex)

	snap := model.MetricsSnapshot{
		Financial: model.FinancialSummary{
			TotalRevenue:  totalRevenue.InexactFloat64(),
			TotalExpenses: totalExpenses.InexactFloat64(),
			NetProfit:     net.InexactFloat64(),
			ProfitMargin:  percent(net, totalRevenue),
			GrossProfit:   gross.InexactFloat64(),
			GrossMargin:   percent(gross, totalRevenue),
		},
		Revenue: revenue,
		Costs:   costs,
		Efficiency: model.Efficiency{
			CostEfficiencyRatio: percent(totalExpenses, totalRevenue),
			ProductivityIndex:   ratio(totalRevenue.InexactFloat64(), totalExpenses.InexactFloat64()),
		},
		CashFlow: model.CashFlow{
			NetCashFlow:       net.InexactFloat64(),
			OperatingCashFlow: operating.InexactFloat64(),
			FreeCashFlow:      operating.Sub(ct.nonRelated).InexactFloat64(),
		},
	}

	cur, prev := GrowthWindows(e.window(), rng, now)
	snap.Growth = ComputeGrowth(txs, exps, cur, prev)

	snap.KPIs = ComputeKPIs(model.Totals{
		Revenue:   snap.Financial.TotalRevenue,
		Expenses:  snap.Financial.TotalExpenses,
		NetProfit: snap.Financial.NetProfit,
	}, ElapsedDays(rng, txs, exps))

	snap.Granularity = e.granularity(rng)
	snap.Series = AggregateBuckets(txs, exps, rng, snap.Granularity, now)
	return snap
}

// percent returns num/den*100, or 0 when den is zero.
func percent(num, den decimal.Decimal) float64 {
	if den.IsZero() {
		return 0
	}
	return finite(num.Mul(hundred).Div(den).InexactFloat64())
}

// ComputeWindow computes metrics for the records inside rng. Growth is
// compared against the full history so the previous period survives the filter.
func (e *Engine) ComputeWindow(txs []model.TransactionRecord, exps []model.ExpenseRecord, rng *model.DateRange) model.MetricsSnapshot {
	ftx, fex := FilterByRange(txs, exps, rng)
	snap := e.ComputeMetrics(ftx, fex, rng)
	cur, prev := GrowthWindows(e.window(), rng, e.now())
	snap.Growth = ComputeGrowth(txs, exps, cur, prev)
	return snap
}
