package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/model"
	"github.com/theirongolddev/finburn/internal/tui/components"
	"github.com/theirongolddev/finburn/internal/tui/theme"
)

// maxCategoryRows caps the category card so it fits a normal terminal.
const maxCategoryRows = 12

func (a App) renderCostsTab(cw int) string {
	t := theme.Active
	s := a.snap
	costs := s.Costs
	total := s.Financial.TotalExpenses
	var b strings.Builder

	cards := []components.Metric{
		{
			Label:   "Expenses",
			Value:   cli.FormatMoney(total),
			Delta:   cli.FormatGrowth(s.Growth.ExpenseGrowth) + " vs prev",
			Trend:   s.Growth.ExpenseGrowth.Direction,
			Inverse: true,
		},
		{
			Label: "Cost of Revenue",
			Value: cli.FormatMoney(costs.CostOfRevenue),
			Delta: cli.FormatPercent(s.Financial.GrossMargin) + " gross margin",
		},
		{
			Label: "Operating",
			Value: cli.FormatMoney(costs.Operating),
		},
		{
			Label: "Cost / Transaction",
			Value: cli.FormatMoney(costs.CostPerTransaction),
			Delta: fmt.Sprintf("%s records", cli.FormatNumber(int64(costs.TotalExpenseRecords))),
		},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	share := func(v float64) float64 {
		if total <= 0 {
			return 0
		}
		return v / total
	}

	labelW := 22
	if a.isCompactLayout() {
		labelW = 14
	}

	typeBody := func(w int) string {
		barW := max(10, components.CardInnerWidth(w)-labelW-8-14)
		lines := make([]string, 0, len(model.AccountingTypes))
		for _, at := range model.AccountingTypes {
			v := costs.AccountingBreakdown.Get(at)
			lines = append(lines, components.ShareBar(at.Label(), share(v), cli.FormatMoney(v), t.ForType(at), labelW, barW))
		}
		return strings.Join(lines, "\n")
	}

	catBody := func(w int) string {
		if len(costs.ByCategory) == 0 {
			return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No expenses in range.")
		}
		barW := max(10, components.CardInnerWidth(w)-labelW-8-14)
		rows := costs.ByCategory
		hidden := 0
		if len(rows) > maxCategoryRows {
			hidden = len(rows) - maxCategoryRows
			rows = rows[:maxCategoryRows]
		}
		lines := make([]string, 0, len(rows)+1)
		for _, c := range rows {
			lines = append(lines, components.ShareBar(c.Category, share(c.Amount), cli.FormatMoney(c.Amount), t.ForType(c.AccountingType), labelW, barW))
		}
		if hidden > 0 {
			lines = append(lines, lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
				Render(fmt.Sprintf("+%d more categories", hidden)))
		}
		return strings.Join(lines, "\n")
	}

	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("By Accounting Type", typeBody(cw), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("By Category", catBody(cw), cw))
		return b.String()
	}

	halves := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		components.ContentCard("By Accounting Type", typeBody(halves[0]), halves[0]),
		components.ContentCard("By Category", catBody(halves[1]), halves[1]),
	}))
	return b.String()
}
