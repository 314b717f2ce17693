package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/model"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Financial summary with KPIs and growth",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	r, err := buildReport(cmd.Context(), nil)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(r.snap)
	}
	if r.empty() {
		printNoData()
		return nil
	}

	s := r.snap
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("FINANCIAL SUMMARY  %s", rangeLabel(r.rng))))
	fmt.Println()

	rows := [][]string{
		{"Revenue", cli.FormatMoney(s.Financial.TotalRevenue)},
		{"Expenses", cli.FormatMoney(s.Financial.TotalExpenses)},
		{"Net Profit", cli.RenderSigned(cli.FormatMoney(s.Financial.NetProfit), s.Financial.NetProfit)},
		{"Profit Margin", cli.FormatPercent(s.Financial.ProfitMargin)},
		{"Gross Profit", cli.FormatMoney(s.Financial.GrossProfit)},
		{"Gross Margin", cli.FormatPercent(s.Financial.GrossMargin)},
		{"---"},
		{"Transactions", cli.FormatNumber(int64(s.Revenue.TotalTransactions))},
		{"Avg Order Value", cli.FormatMoney(s.Revenue.AverageOrderValue)},
		{"Expense Records", cli.FormatNumber(int64(s.Costs.TotalExpenseRecords))},
		{"Cost/Transaction", cli.FormatMoney(s.Costs.CostPerTransaction)},
		{"---"},
		{"Revenue/day", cli.FormatMoney(s.KPIs.RevenuePerDay)},
		{"Burn/day", cli.FormatMoney(s.KPIs.BurnRate)},
		{"Burn/month", cli.FormatMoney(s.KPIs.MonthlyBurnRate)},
		{"Runway", cli.FormatRunway(s.KPIs.Runway)},
		{"Elapsed Days", cli.FormatNumber(int64(s.KPIs.ElapsedDays))},
		{"---"},
		{"Operating Cash Flow", cli.RenderSigned(cli.FormatMoney(s.CashFlow.OperatingCashFlow), s.CashFlow.OperatingCashFlow)},
		{"Free Cash Flow", cli.RenderSigned(cli.FormatMoney(s.CashFlow.FreeCashFlow), s.CashFlow.FreeCashFlow)},
		{"Cost Efficiency", cli.FormatPercent(s.Efficiency.CostEfficiencyRatio)},
		{"Productivity Index", fmt.Sprintf("%.2fx", s.Efficiency.ProductivityIndex)},
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))
	fmt.Println()

	fmt.Print(renderGrowthTable(s.Growth))
	return nil
}

func renderGrowthTable(g model.GrowthSummary) string {
	title := "Growth"
	if g.Current != nil && g.Previous != nil {
		title = fmt.Sprintf("Growth  %s..%s vs %s..%s", g.Current.Start, g.Current.End, g.Previous.Start, g.Previous.End)
	}

	row := func(name string, m model.Growth, money bool) []string {
		cur, prev := cli.FormatNumber(int64(m.Current)), cli.FormatNumber(int64(m.Previous))
		if money {
			cur, prev = cli.FormatMoney(m.Current), cli.FormatMoney(m.Previous)
		}
		return []string{name, cur, prev, cli.RenderSigned(cli.FormatGrowth(m), m.Rate)}
	}

	return cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{"Metric", "Current", "Previous", "Change"},
		Rows: [][]string{
			row("Revenue", g.RevenueGrowth, true),
			row("Expenses", g.ExpenseGrowth, true),
			row("Net Profit", g.ProfitGrowth, true),
			row("Transactions", g.TransactionGrowth, false),
		},
	})
}
