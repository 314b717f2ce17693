package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/model"
	"github.com/theirongolddev/finburn/internal/pipeline"
)

var flagGranularity string

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Revenue, expense and profit per period",
	RunE:  runTrend,
}

func init() {
	trendCmd.Flags().StringVarP(&flagGranularity, "granularity", "g", "", "Bucket size: daily, weekly or monthly (default by range length)")
	rootCmd.AddCommand(trendCmd)
}

func runTrend(cmd *cobra.Command, _ []string) error {
	g, ok := pipeline.ParseGranularity(flagGranularity)
	if !ok {
		return fmt.Errorf("unknown granularity %q", flagGranularity)
	}

	r, err := buildReport(cmd.Context(), func(e *pipeline.Engine) {
		if g != "" {
			e.Granularity = g
		}
	})
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(struct {
			Granularity model.Granularity  `json:"granularity"`
			Series      []model.TimeBucket `json:"series"`
		}{r.snap.Granularity, r.snap.Series})
	}
	if r.empty() {
		printNoData()
		return nil
	}

	series := r.snap.Series
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s TREND  %s", granularityTitle(r.snap.Granularity), rangeLabel(r.rng))))
	fmt.Println()

	rows := make([][]string, 0, len(series)+2)
	var totRev, totExp float64
	for _, b := range series {
		totRev += b.Revenue
		totExp += b.Expense
		rows = append(rows, []string{
			b.Label,
			cli.FormatMoney(b.Revenue),
			cli.FormatMoney(b.Expense),
			cli.RenderSigned(cli.FormatMoney(b.Profit()), b.Profit()),
		})
	}
	rows = append(rows, []string{cli.Separator}, []string{
		"Total",
		cli.FormatMoney(totRev),
		cli.FormatMoney(totExp),
		cli.RenderSigned(cli.FormatMoney(totRev-totExp), totRev-totExp),
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Period", "Revenue", "Expenses", "Profit"},
		Rows:    rows,
	}))

	if len(series) > 1 {
		rev := make([]float64, len(series))
		profit := make([]float64, len(series))
		for i, b := range series {
			rev[i] = b.Revenue
			profit[i] = b.Profit()
		}
		fmt.Println()
		fmt.Printf("  Revenue  %s\n", cli.RenderSparkline(rev))
		fmt.Printf("  Profit   %s\n", cli.RenderSparkline(profit))
	}
	return nil
}

func granularityTitle(g model.Granularity) string {
	switch g {
	case model.Weekly:
		return "WEEKLY"
	case model.Monthly:
		return "MONTHLY"
	}
	return "DAILY"
}
