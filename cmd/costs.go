package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/finburn/internal/classify"
	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/model"
)

var flagCostType string

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Cost breakdown by category and accounting type",
	RunE:  runCosts,
}

func init() {
	costsCmd.Flags().StringVarP(&flagCostType, "type", "t", "", "Only show one accounting type: COGS, OPEX or NON_RELATED")
	rootCmd.AddCommand(costsCmd)
}

func runCosts(cmd *cobra.Command, _ []string) error {
	var only model.AccountingType
	if flagCostType != "" {
		t, ok := classify.ParseAccountingType(flagCostType)
		if !ok {
			return fmt.Errorf("unknown accounting type %q", flagCostType)
		}
		only = t
	}

	r, err := buildReport(cmd.Context(), nil)
	if err != nil {
		return err
	}

	costs := r.snap.Costs
	if only != "" {
		exps := r.engine.FilterByAccountingType(r.data.Expenses, only)
		costs = r.engine.ComputeWindow(r.txs, exps, r.rng).Costs
	}
	if flagJSON {
		return printJSON(costs)
	}
	if costs.TotalExpenseRecords == 0 {
		fmt.Println("\n  No expenses in the selected range.")
		return nil
	}

	title := "COST BREAKDOWN"
	if only != "" {
		title += "  " + string(only)
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  %s", title, rangeLabel(r.rng))))
	fmt.Println()

	ab := costs.AccountingBreakdown
	total := ab.COGS + ab.OPEX + ab.NonRelated

	typeRows := make([][]string, 0, len(model.AccountingTypes)+2)
	for _, t := range model.AccountingTypes {
		typeRows = append(typeRows, []string{t.Label(), string(t), cli.FormatMoney(ab.Get(t)), share(ab.Get(t), total)})
	}
	typeRows = append(typeRows, []string{cli.Separator}, []string{"TOTAL", "", cli.FormatMoney(total), ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "By Accounting Type",
		Headers: []string{"Type", "Code", "Amount", "Share"},
		Rows:    typeRows,
		Align:   []cli.Align{cli.AlignLeft, cli.AlignLeft},
	}))

	catRows := make([][]string, 0, len(costs.ByCategory))
	for _, c := range costs.ByCategory {
		catRows = append(catRows, []string{c.Category, string(c.AccountingType), cli.FormatMoney(c.Amount), share(c.Amount, total)})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "By Category",
		Headers: []string{"Category", "Type", "Amount", "Share"},
		Rows:    catRows,
		Align:   []cli.Align{cli.AlignLeft, cli.AlignLeft},
	}))

	fmt.Printf("  Cost of revenue: %s   Operating: %s   Per transaction: %s\n\n",
		cli.FormatMoney(costs.CostOfRevenue),
		cli.FormatMoney(costs.Operating),
		cli.FormatMoney(costs.CostPerTransaction))

	if only != "" {
		return nil
	}

	g := r.snap.Growth.ExpenseGrowth
	if g.Current > 0 || g.Previous > 0 {
		peak := max(g.Current, g.Previous)
		fmt.Printf("  Period Comparison  %s\n", cli.FormatGrowth(g))
		fmt.Println(cli.RenderHorizontalBar("Current ", g.Current, peak, 30))
		fmt.Println(cli.RenderHorizontalBar("Previous", g.Previous, peak, 30))
		fmt.Println()
	}
	return nil
}

func share(v, total float64) string {
	if total <= 0 {
		return ""
	}
	return cli.FormatPercent(v / total * 100)
}
