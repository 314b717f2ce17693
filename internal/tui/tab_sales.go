package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/tui/components"
	"github.com/theirongolddev/finburn/internal/tui/theme"
)

// sourceColors cycles through for the per-source bars.
func sourceColors(t theme.Theme) []lipgloss.Color {
	return []lipgloss.Color{t.Blue, t.Cyan, t.Green, t.Yellow, t.Magenta, t.Orange}
}

func (a App) renderSalesTab(cw int) string {
	t := theme.Active
	s := a.snap
	rev := s.Revenue
	var b strings.Builder

	cards := []components.Metric{
		{
			Label: "Transactions",
			Value: cli.FormatNumber(int64(rev.TotalTransactions)),
			Delta: cli.FormatGrowth(s.Growth.TransactionGrowth) + " vs prev",
			Trend: s.Growth.TransactionGrowth.Direction,
		},
		{
			Label: "Avg Order Value",
			Value: cli.FormatMoney(rev.AverageOrderValue),
		},
		{
			Label: "Revenue / Day",
			Value: cli.FormatMoney(s.KPIs.RevenuePerDay),
			Delta: fmt.Sprintf("over %d days", s.KPIs.ElapsedDays),
		},
		{
			Label: "Sources",
			Value: cli.FormatNumber(int64(len(rev.BySource))),
		},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	if len(rev.BySource) == 0 {
		b.WriteString(components.ContentCard("Revenue by Source", "No transactions in range.", cw))
		return b.String()
	}

	innerW := components.CardInnerWidth(cw)
	labelW := 18
	if a.isCompactLayout() {
		labelW = 12
	}
	// label + space + bar + space + "100%" + 2 spaces + amount
	barW := max(10, innerW-labelW-8-16)

	total := s.Financial.TotalRevenue
	colors := sourceColors(t)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var body strings.Builder
	for i, src := range rev.BySource {
		share := 0.0
		if total > 0 {
			share = src.Amount / total
		}
		amount := fmt.Sprintf("%s  %s", cli.FormatMoney(src.Amount), mutedStyle.Render(fmt.Sprintf("%d orders", src.Count)))
		body.WriteString(components.ShareBar(truncStr(src.Source, labelW), share, amount, colors[i%len(colors)], labelW, barW))
		if i < len(rev.BySource)-1 {
			body.WriteString("\n")
		}
	}
	b.WriteString(components.ContentCard("Revenue by Source", body.String(), cw))
	return b.String()
}
