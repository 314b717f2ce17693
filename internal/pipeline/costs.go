package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finburn/internal/model"
)

// summarizeCosts aggregates classified expenses by category and accounting
// type. classes[i] is the classification of exps[i]. Zero-sum categories are
// dropped; the rest sort descending with ties in first-seen order.
func summarizeCosts(exps []model.ExpenseRecord, classes []model.Classification, txCount int) (model.CostSummary, costTotals) {
	var total, cogs, opex, nonRelated decimal.Decimal
	order := make([]string, 0)
	byCategory := make(map[string]*categorySum)

	for i, e := range exps {
		total = total.Add(e.Amount)

		c := classes[i]
		switch c.AccountingType {
		case model.COGS:
			cogs = cogs.Add(e.Amount)
		case model.NonRelated:
			nonRelated = nonRelated.Add(e.Amount)
		default:
			opex = opex.Add(e.Amount)
		}

		row, ok := byCategory[c.Category]
		if !ok {
			row = &categorySum{accountingType: c.AccountingType}
			byCategory[c.Category] = row
			order = append(order, c.Category)
		}
		row.amount = row.amount.Add(e.Amount)
	}

	rows := make([]model.CategoryAmount, 0, len(order))
	for _, name := range order {
		row := byCategory[name]
		if row.amount.IsZero() {
			continue
		}
		rows = append(rows, model.CategoryAmount{
			Category:       name,
			AccountingType: row.accountingType,
			Amount:         row.amount.InexactFloat64(),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Amount > rows[j].Amount
	})

	var perTx float64
	if txCount > 0 {
		perTx = total.Div(decimal.NewFromInt(int64(txCount))).InexactFloat64()
	}

	return model.CostSummary{
		ByCategory:          rows,
		Operating:           opex.InexactFloat64(),
		CostOfRevenue:       cogs.InexactFloat64(),
		CostPerTransaction:  perTx,
		TotalExpenseRecords: len(exps),
		AccountingBreakdown: model.AccountingBreakdown{
			COGS:       cogs.InexactFloat64(),
			OPEX:       opex.InexactFloat64(),
			NonRelated: nonRelated.InexactFloat64(),
		},
	}, costTotals{total: total, cogs: cogs, opex: opex, nonRelated: nonRelated}
}

type categorySum struct {
	accountingType model.AccountingType
	amount         decimal.Decimal
}

// costTotals keeps exact sums for the cash flow arithmetic.
type costTotals struct {
	total      decimal.Decimal
	cogs       decimal.Decimal
	opex       decimal.Decimal
	nonRelated decimal.Decimal
}
