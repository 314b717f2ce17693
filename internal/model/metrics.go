package model

import (
	"encoding/json"

	"github.com/theirongolddev/finburn/internal/datekey"
)

// MetricsSnapshot is the composed result of one ComputeMetrics call.
type MetricsSnapshot struct {
	Financial  FinancialSummary `json:"financial"`
	Revenue    RevenueSummary   `json:"revenue"`
	Costs      CostSummary      `json:"costs"`
	Growth     GrowthSummary    `json:"growth"`
	Efficiency Efficiency       `json:"efficiency"`
	CashFlow   CashFlow         `json:"cashFlow"`
	KPIs       KPIs             `json:"kpis"`

	Granularity Granularity  `json:"granularity"`
	Series      []TimeBucket `json:"series"`
}

// FinancialSummary holds the top-level totals and margins.
type FinancialSummary struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalExpenses float64 `json:"totalExpenses"`
	NetProfit     float64 `json:"netProfit"`
	ProfitMargin  float64 `json:"profitMargin"`
	GrossProfit   float64 `json:"grossProfit"`
	GrossMargin   float64 `json:"grossMargin"`
}

// SourceAmount is one row of the revenue-by-source breakdown.
type SourceAmount struct {
	Source string  `json:"source"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// RevenueSummary breaks revenue down by source and day.
type RevenueSummary struct {
	BySource          []SourceAmount          `json:"bySource"`
	ByPeriod          map[datekey.Key]float64 `json:"byPeriod"`
	AverageOrderValue float64                 `json:"averageOrderValue"`
	TotalTransactions int                     `json:"totalTransactions"`
}

// CategoryAmount is one row of the cost-by-category breakdown.
type CategoryAmount struct {
	Category       string         `json:"category"`
	AccountingType AccountingType `json:"accountingType"`
	Amount         float64        `json:"amount"`
}

// AccountingBreakdown always carries all three accounting types.
type AccountingBreakdown struct {
	COGS       float64 `json:"COGS"`
	OPEX       float64 `json:"OPEX"`
	NonRelated float64 `json:"NON_RELATED"`
}

// Get returns the amount recorded for t. Unknown types read as OPEX.
func (b AccountingBreakdown) Get(t AccountingType) float64 {
	switch t {
	case COGS:
		return b.COGS
	case NonRelated:
		return b.NonRelated
	}
	return b.OPEX
}

// CostSummary breaks expenses down by category and accounting type.
type CostSummary struct {
	ByCategory          []CategoryAmount    `json:"byCategory"`
	Operating           float64             `json:"operating"`
	CostOfRevenue       float64             `json:"costOfRevenue"`
	CostPerTransaction  float64             `json:"costPerTransaction"`
	AccountingBreakdown AccountingBreakdown `json:"accountingBreakdown"`
	TotalExpenseRecords int                 `json:"totalExpenseRecords"`
}

// Direction is the trend of a compared metric.
type Direction string

const (
	Up     Direction = "up"
	Down   Direction = "down"
	Stable Direction = "stable"
)

// Growth is a period-over-period comparison of a single metric.
// Rate is (Current-Previous)/|Previous|*100, so against a negative baseline
// a smaller loss reads as Up (-50 after -100 is +50%). A zero Previous gives
// Rate 0 and Stable.
type Growth struct {
	Rate      float64   `json:"rate"`
	Direction Direction `json:"direction"`
	Current   float64   `json:"current"`
	Previous  float64   `json:"previous"`
}

// GrowthSummary compares the current window with the previous one.
type GrowthSummary struct {
	RevenueGrowth     Growth     `json:"revenueGrowth"`
	ExpenseGrowth     Growth     `json:"expenseGrowth"`
	ProfitGrowth      Growth     `json:"profitGrowth"`
	TransactionGrowth Growth     `json:"transactionGrowth"`
	Current           *DateRange `json:"currentWindow,omitempty"`
	Previous          *DateRange `json:"previousWindow,omitempty"`
}

// Efficiency holds cost-vs-revenue ratios.
type Efficiency struct {
	CostEfficiencyRatio float64 `json:"costEfficiencyRatio"`
	ProductivityIndex   float64 `json:"productivityIndex"`
}

// CashFlow holds the three cash flow views.
type CashFlow struct {
	NetCashFlow       float64 `json:"netCashFlow"`
	OperatingCashFlow float64 `json:"operatingCashFlow"`
	FreeCashFlow      float64 `json:"freeCashFlow"`
}

// TimeBucket is one period of a contiguous series. Profit is derived.
type TimeBucket struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
	Expense float64 `json:"expense"`
}

// Profit returns revenue minus expense.
func (b TimeBucket) Profit() float64 {
	return b.Revenue - b.Expense
}

// MarshalJSON adds the derived profit field.
func (b TimeBucket) MarshalJSON() ([]byte, error) {
	type plain TimeBucket
	return json.Marshal(struct {
		plain
		Profit float64 `json:"profit"`
	}{plain(b), b.Profit()})
}
