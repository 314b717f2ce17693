package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/model"
	"github.com/theirongolddev/finburn/internal/pipeline"
)

var (
	flagClassifyCategory string
	flagClassifyType     string
	flagClassifyName     string
)

var classifyCmd = &cobra.Command{
	Use:   "classify [expense type text...]",
	Short: "Show how expenses are classified",
	Long: "With arguments, classify one ad-hoc expense and print the matching rule.\n" +
		"Without arguments, summarize which rules classified the loaded expenses.",
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVar(&flagClassifyCategory, "category", "", "Raw category of the ad-hoc expense")
	classifyCmd.Flags().StringVar(&flagClassifyType, "accounting-type", "", "Pre-assigned accounting type of the ad-hoc expense")
	classifyCmd.Flags().StringVar(&flagClassifyName, "standard-name", "", "Standard name of the ad-hoc expense")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	eng := appCfg.Engine()

	if len(args) > 0 || flagClassifyCategory != "" || flagClassifyName != "" {
		e := model.ExpenseRecord{
			RawType:        strings.Join(args, " "),
			RawCategory:    flagClassifyCategory,
			AccountingType: flagClassifyType,
			StandardName:   flagClassifyName,
		}
		c := eng.ClassifyAll([]model.ExpenseRecord{e})[0]
		if flagJSON {
			return printJSON(c)
		}
		fmt.Printf("  Type:     %s (%s)\n", c.AccountingType, c.AccountingType.Label())
		fmt.Printf("  Category: %s\n", c.Category)
		fmt.Printf("  Rule:     %s\n", c.Rule)
		return nil
	}

	r, err := buildReport(cmd.Context(), nil)
	if err != nil {
		return err
	}
	_, exps := pipeline.FilterByRange(nil, r.data.Expenses, r.rng)
	rows := summarizeRules(exps, eng.ClassifyAll(exps))
	if flagJSON {
		return printJSON(rows)
	}
	if len(rows) == 0 {
		fmt.Println("\n  No expenses in the selected range.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("CLASSIFICATION  %s", rangeLabel(r.rng))))
	fmt.Println()

	tableRows := make([][]string, 0, len(rows))
	for _, row := range rows {
		tableRows = append(tableRows, []string{
			row.Rule,
			string(row.AccountingType),
			row.Category,
			cli.FormatNumber(int64(row.Count)),
			cli.FormatMoney(row.Amount),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Rule", "Type", "Category", "Records", "Amount"},
		Rows:    tableRows,
		Align:   []cli.Align{cli.AlignLeft, cli.AlignLeft, cli.AlignLeft},
	}))
	return nil
}

// ruleUsage is one row of the classification summary.
type ruleUsage struct {
	Rule           string               `json:"rule"`
	AccountingType model.AccountingType `json:"accountingType"`
	Category       string               `json:"category"`
	Count          int                  `json:"count"`
	Amount         float64              `json:"amount"`
}

// summarizeRules groups classified expenses by rule, type and category,
// largest amount first.
func summarizeRules(exps []model.ExpenseRecord, classes []model.Classification) []ruleUsage {
	index := make(map[model.Classification]int)
	var rows []ruleUsage
	for i, c := range classes {
		idx, ok := index[c]
		if !ok {
			idx = len(rows)
			index[c] = idx
			rows = append(rows, ruleUsage{Rule: c.Rule, AccountingType: c.AccountingType, Category: c.Category})
		}
		rows[idx].Count++
		rows[idx].Amount += exps[i].Amount.InexactFloat64()
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Amount > rows[j].Amount })
	return rows
}
