package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/tui/components"
	"github.com/theirongolddev/finburn/internal/tui/theme"
)

func (a App) renderTrendTab(cw int) string {
	t := theme.Active
	series := a.snap.Series
	var b strings.Builder

	if len(series) == 0 {
		return components.ContentCard("Trend", "No buckets in range.", cw)
	}

	revenue := make([]float64, len(series))
	expense := make([]float64, len(series))
	profit := make([]float64, len(series))
	labels := make([]string, len(series))
	for i, bk := range series {
		revenue[i] = bk.Revenue
		expense[i] = bk.Expense
		profit[i] = bk.Profit()
		labels[i] = bk.Label
	}

	chartH := 8
	if a.isCompactLayout() {
		chartH = 6
	}
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Expenses by %s", granularityNoun(a.snap.Granularity)),
		components.BarChart(expense, labels, t.Orange, components.CardInnerWidth(cw), chartH),
		cw,
	))
	b.WriteString("\n")

	// Sparklines card
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)
	var spark strings.Builder
	spark.WriteString(labelStyle.Render(fmt.Sprintf("%-8s", "Revenue")) + spaceStyle.Render(" ") + components.Sparkline(revenue, t.Blue))
	spark.WriteString("\n")
	spark.WriteString(labelStyle.Render(fmt.Sprintf("%-8s", "Expense")) + spaceStyle.Render(" ") + components.Sparkline(expense, t.Orange))
	spark.WriteString("\n")
	spark.WriteString(labelStyle.Render(fmt.Sprintf("%-8s", "Profit")) + spaceStyle.Render(" ") + components.Sparkline(profit, t.Green))
	b.WriteString(components.ContentCard("Shape", spark.String(), cw))
	b.WriteString("\n")

	b.WriteString(components.ContentCard("Buckets", a.renderSeriesTable(cw), cw))
	return b.String()
}

// renderSeriesTable lists the most recent buckets that fit, newest last.
func (a App) renderSeriesTable(cw int) string {
	t := theme.Active
	series := a.snap.Series

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	const colW = 16
	labelW := max(10, min(24, components.CardInnerWidth(cw)-3*colW))

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s%*s%*s%*s", labelW, "Period", colW, "Revenue", colW, "Expense", colW, "Profit")))
	b.WriteString("\n")

	maxRows := 12
	start := max(0, len(series)-maxRows)
	if start > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("… %d earlier", start)))
		b.WriteString("\n")
	}
	for i := start; i < len(series); i++ {
		bk := series[i]
		p := bk.Profit()
		b.WriteString(rowStyle.Render(fmt.Sprintf("%-*s%*s%*s", labelW, truncStr(bk.Label, labelW),
			colW, cli.FormatMoney(bk.Revenue), colW, cli.FormatMoney(bk.Expense))))
		b.WriteString(lipgloss.NewStyle().Foreground(t.Signed(p)).Background(t.Surface).
			Render(fmt.Sprintf("%*s", colW, cli.FormatMoney(p))))
		if i < len(series)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
