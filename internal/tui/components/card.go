// Package components provides reusable TUI widgets for the finburn dashboard.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/finburn/internal/model"
	"github.com/theirongolddev/finburn/internal/tui/theme"
)

// LayoutRow distributes totalWidth into n widths that sum to exactly totalWidth.
// First items absorb the remainder from integer division.
func LayoutRow(totalWidth, n int) []int {
	if n <= 0 {
		return nil
	}
	base := totalWidth / n
	remainder := totalWidth % n
	widths := make([]int, n)
	for i := range widths {
		widths[i] = base
		if i < remainder {
			widths[i]++
		}
	}
	return widths
}

// Metric is one headline number with an optional trend line beneath it.
type Metric struct {
	Label string
	Value string
	Delta string
	Trend model.Direction // colors Delta; empty renders it dim
	// Inverse marks metrics where going up is bad, such as expenses.
	Inverse bool
}

func (m Metric) deltaColor() lipgloss.Color {
	t := theme.Active
	up, down := t.Green, t.Red
	if m.Inverse {
		up, down = down, up
	}
	switch m.Trend {
	case model.Up:
		return up
	case model.Down:
		return down
	case model.Stable:
		return t.TextMuted
	}
	return t.TextDim
}

// MetricCard renders a small metric card. outerWidth includes the border.
func MetricCard(m Metric, outerWidth int) string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		BorderBackground(t.Background).
		Background(t.Surface).
		Width(max(10, outerWidth-2)).
		Padding(0, 1)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	deltaStyle := lipgloss.NewStyle().Foreground(m.deltaColor()).Background(t.Surface)

	content := labelStyle.Render(m.Label) + "\n" + valueStyle.Render(m.Value)
	if m.Delta != "" {
		content += "\n" + deltaStyle.Render(m.Delta)
	}
	return cardStyle.Render(content)
}

// MetricCardRow renders a row of metric cards that sum to totalWidth.
func MetricCardRow(metrics []Metric, totalWidth int) string {
	if len(metrics) == 0 {
		return ""
	}
	widths := LayoutRow(totalWidth, len(metrics))
	cards := make([]string, len(metrics))
	for i, m := range metrics {
		cards[i] = MetricCard(m, widths[i])
	}
	return CardRow(cards)
}

// ContentCard renders a bordered content card with an optional title.
// outerWidth controls the total rendered width including border.
func ContentCard(title, body string, outerWidth int) string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		BorderBackground(t.Background).
		Background(t.Surface).
		Width(max(10, outerWidth-2)).
		Padding(0, 1)

	titleStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	content := ""
	if title != "" {
		content = titleStyle.Render(title) + "\n"
	}
	content += body
	return cardStyle.Render(content)
}

// CardRow joins pre-rendered cards horizontally. Shorter cards are padded
// with background-filled lines so the row has no unstyled gaps.
func CardRow(cards []string) string {
	var present []string
	maxH := 0
	for _, c := range cards {
		if c == "" {
			continue
		}
		present = append(present, c)
		maxH = max(maxH, lipgloss.Height(c))
	}
	if len(present) == 0 {
		return ""
	}

	fill := lipgloss.NewStyle().Background(theme.Active.Background)
	for i, c := range present {
		if h := lipgloss.Height(c); h < maxH {
			blank := fill.Render(strings.Repeat(" ", lipgloss.Width(c)))
			present[i] = c + strings.Repeat("\n"+blank, maxH-h)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, present...)
}

// CardInnerWidth returns the usable text width inside a ContentCard
// given its outer width (subtracts border + padding).
func CardInnerWidth(outerWidth int) int {
	return max(10, outerWidth-4)
}
