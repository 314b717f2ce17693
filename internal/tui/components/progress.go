package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/finburn/internal/tui/theme"
)

// ProgressBar renders a loading bar with percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := min(width, int(pct*float64(width)))

	barColor := t.Cyan
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))
	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// ColorForRatio maps a cost-to-revenue ratio (0..1+) to green, yellow, orange
// or red as costs approach revenue.
func ColorForRatio(ratio float64) lipgloss.Color {
	t := theme.Active
	switch {
	case ratio >= 0.9:
		return t.Red
	case ratio >= 0.7:
		return t.Orange
	case ratio >= 0.5:
		return t.Yellow
	default:
		return t.Green
	}
}

// ShareBar renders "label ████░░ 42%  amount" for one slice of a total.
func ShareBar(label string, share float64, amount string, color lipgloss.Color, labelW, barWidth int) string {
	t := theme.Active
	share = clamp01(share)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	amountStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncate(label, labelW))) +
		spaceStyle.Render(" ") +
		bar.ViewAs(share) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", share*100)) +
		spaceStyle.Render("  ") +
		amountStyle.Render(amount)
}

// RatioBar renders a cost-to-revenue gauge colored by ColorForRatio.
func RatioBar(label string, ratio float64, barWidth int) string {
	t := theme.Active
	color := ColorForRatio(ratio)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(label) +
		spaceStyle.Render(" ") +
		bar.ViewAs(clamp01(ratio)) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%.0f%%", ratio*100))
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
