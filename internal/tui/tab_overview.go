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

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	s := a.snap
	g := s.Growth
	var b strings.Builder

	// Row 1: headline metric cards
	cards := []components.Metric{
		{
			Label: "Revenue",
			Value: cli.FormatMoney(s.Financial.TotalRevenue),
			Delta: cli.FormatGrowth(g.RevenueGrowth) + " vs prev",
			Trend: g.RevenueGrowth.Direction,
		},
		{
			Label:   "Expenses",
			Value:   cli.FormatMoney(s.Financial.TotalExpenses),
			Delta:   cli.FormatGrowth(g.ExpenseGrowth) + " vs prev",
			Trend:   g.ExpenseGrowth.Direction,
			Inverse: true,
		},
		{
			Label: "Net Profit",
			Value: cli.FormatMoney(s.Financial.NetProfit),
			Delta: cli.FormatPercent(s.Financial.ProfitMargin) + " margin",
			Trend: g.ProfitGrowth.Direction,
		},
		{
			Label: "Runway",
			Value: cli.FormatRunway(s.KPIs.Runway),
			Delta: cli.FormatMoney(s.KPIs.MonthlyBurnRate) + "/mo burn",
		},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	// Row 2: revenue per bucket
	if len(s.Series) > 0 {
		vals := make([]float64, len(s.Series))
		labels := make([]string, len(s.Series))
		for i, bk := range s.Series {
			vals[i] = bk.Revenue
			labels[i] = bk.Label
		}
		chartH := 10
		if a.isCompactLayout() {
			chartH = 7
		}
		b.WriteString(components.ContentCard(
			fmt.Sprintf("Revenue by %s", granularityNoun(s.Granularity)),
			components.BarChart(vals, labels, t.Blue, components.CardInnerWidth(cw), chartH),
			cw,
		))
		b.WriteString("\n")
	}

	// Row 3: cash flow + growth, side by side unless compact
	cashBody := a.renderCashFlow(cw)
	growthBody := a.renderGrowthCompare()
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Cash Flow", cashBody, cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard(growthTitle(g), growthBody, cw))
	} else {
		halves := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			components.ContentCard("Cash Flow", cashBody, halves[0]),
			components.ContentCard(growthTitle(g), growthBody, halves[1]),
		}))
	}
	return b.String()
}

func (a App) renderCashFlow(cw int) string {
	t := theme.Active
	s := a.snap

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)
	value := func(v float64) string {
		return lipgloss.NewStyle().Foreground(t.Signed(v)).Background(t.Surface).Bold(true).Render(cli.FormatMoney(v))
	}

	rows := []struct {
		label string
		v     float64
	}{
		{"Net cash flow", s.CashFlow.NetCashFlow},
		{"Operating cash flow", s.CashFlow.OperatingCashFlow},
		{"Free cash flow", s.CashFlow.FreeCashFlow},
		{"Gross profit", s.Financial.GrossProfit},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-20s", r.label)))
		b.WriteString(spaceStyle.Render(" "))
		b.WriteString(value(r.v))
		b.WriteString("\n")
	}

	ratio := 0.0
	if s.Financial.TotalRevenue > 0 {
		ratio = s.Financial.TotalExpenses / s.Financial.TotalRevenue
	}
	barW := max(10, min(30, components.CardInnerWidth(cw/2)-30))
	b.WriteString("\n")
	b.WriteString(components.RatioBar("Cost / revenue", ratio, barW))
	return b.String()
}

func (a App) renderGrowthCompare() string {
	t := theme.Active
	g := a.snap.Growth

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	row := func(name string, m model.Growth, inverse bool, money bool) string {
		color := t.TextMuted
		switch {
		case m.Direction == model.Up && !inverse, m.Direction == model.Down && inverse:
			color = t.Green
		case m.Direction == model.Up, m.Direction == model.Down:
			color = t.Red
		}
		cur := cli.FormatNumber(int64(m.Current))
		if money {
			cur = cli.FormatCompact(m.Current)
		}
		return labelStyle.Render(fmt.Sprintf("%-14s", name)) +
			valueStyle.Render(fmt.Sprintf("%10s", cur)) +
			spaceStyle.Render("  ") +
			lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(cli.FormatGrowth(m))
	}

	return strings.Join([]string{
		row("Revenue", g.RevenueGrowth, false, true),
		row("Expenses", g.ExpenseGrowth, true, true),
		row("Net profit", g.ProfitGrowth, false, true),
		row("Transactions", g.TransactionGrowth, false, false),
	}, "\n")
}

func growthTitle(g model.GrowthSummary) string {
	if g.Previous == nil {
		return "Growth"
	}
	return fmt.Sprintf("Growth vs %s..%s", g.Previous.Start, g.Previous.End)
}

func granularityNoun(g model.Granularity) string {
	switch g {
	case model.Weekly:
		return "Week"
	case model.Monthly:
		return "Month"
	}
	return "Day"
}
