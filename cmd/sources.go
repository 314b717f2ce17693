package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/finburn/internal/cli"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Revenue breakdown by product or source",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	r, err := buildReport(cmd.Context(), nil)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(r.snap.Revenue.BySource)
	}
	if len(r.snap.Revenue.BySource) == 0 {
		fmt.Println("\n  No revenue in the selected range.")
		return nil
	}

	rev := r.snap.Revenue
	total := r.snap.Financial.TotalRevenue

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("REVENUE BY SOURCE  %s", rangeLabel(r.rng))))
	fmt.Println()

	rows := make([][]string, 0, len(rev.BySource))
	for _, s := range rev.BySource {
		share := 0.0
		if total > 0 {
			share = s.Amount / total * 100
		}
		avg := 0.0
		if s.Count > 0 {
			avg = s.Amount / float64(s.Count)
		}
		rows = append(rows, []string{
			s.Source,
			cli.FormatMoney(s.Amount),
			cli.FormatPercent(share),
			cli.FormatNumber(int64(s.Count)),
			cli.FormatMoney(avg),
		})
	}
	rows = append(rows, []string{cli.Separator}, []string{
		"Total",
		cli.FormatMoney(total),
		cli.FormatPercent(100),
		cli.FormatNumber(int64(rev.TotalTransactions)),
		cli.FormatMoney(rev.AverageOrderValue),
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Source", "Revenue", "Share", "Orders", "AOV"},
		Rows:    rows,
	}))

	top := rev.BySource
	if len(top) > 8 {
		top = top[:8]
	}
	labelW := 0
	for _, s := range top {
		labelW = max(labelW, len([]rune(s.Source)))
	}
	fmt.Println()
	for _, s := range top {
		fmt.Println(cli.RenderHorizontalBar(fmt.Sprintf("%-*s", labelW, s.Source), s.Amount, top[0].Amount, 30))
	}
	return nil
}
