package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finburn/internal/datekey"
	"github.com/theirongolddev/finburn/internal/model"
)

// DefaultSource labels transactions without a product or source name.
const DefaultSource = "Other"

// summarizeRevenue groups transactions by source (descending, ties in
// first-seen order) and by day.
func summarizeRevenue(txs []model.TransactionRecord) (model.RevenueSummary, decimal.Decimal) {
	var total decimal.Decimal
	order := make([]string, 0)
	bySource := make(map[string]*sourceSum)
	byDay := make(map[datekey.Key]decimal.Decimal)

	for _, t := range txs {
		total = total.Add(t.Amount)

		name := t.Source
		if name == "" {
			name = DefaultSource
		}
		s, ok := bySource[name]
		if !ok {
			s = &sourceSum{}
			bySource[name] = s
			order = append(order, name)
		}
		s.amount = s.amount.Add(t.Amount)
		s.count++

		if !t.OccurredOn.IsZero() {
			byDay[t.OccurredOn] = byDay[t.OccurredOn].Add(t.Amount)
		}
	}

	rows := make([]model.SourceAmount, 0, len(order))
	for _, name := range order {
		s := bySource[name]
		rows = append(rows, model.SourceAmount{Source: name, Amount: s.amount.InexactFloat64(), Count: s.count})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Amount > rows[j].Amount
	})

	period := make(map[datekey.Key]float64, len(byDay))
	for k, v := range byDay {
		period[k] = v.InexactFloat64()
	}

	var aov float64
	if len(txs) > 0 {
		aov = total.Div(decimal.NewFromInt(int64(len(txs)))).InexactFloat64()
	}

	return model.RevenueSummary{
		BySource:          rows,
		ByPeriod:          period,
		AverageOrderValue: aov,
		TotalTransactions: len(txs),
	}, total
}

type sourceSum struct {
	amount decimal.Decimal
	count  int
}
