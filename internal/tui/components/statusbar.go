package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/finburn/internal/tui/theme"
)

// StatusInfo is what the status bar reports about the loaded dataset.
type StatusInfo struct {
	LoadTime    time.Duration
	Files       int
	Skipped     int // malformed records plus unreadable files
	Refreshing  bool
	AutoRefresh bool
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	left := base.Render(" [?]help  [d]ays  [g]ranularity  [r]efresh  [q]uit")

	var right []string
	if info.Skipped > 0 {
		right = append(right, warn.Render(fmt.Sprintf("%d skipped", info.Skipped)))
	}
	switch {
	case info.Refreshing:
		right = append(right, accent.Render("refreshing..."))
	case info.AutoRefresh:
		right = append(right, accent.Render("auto"))
	}
	right = append(right, base.Render(fmt.Sprintf("%d files  %.1fs ", info.Files, info.LoadTime.Seconds())))
	rightStr := strings.Join(right, base.Render("  "))

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(rightStr))
	bar := left + base.Render(strings.Repeat(" ", padding)) + rightStr

	return lipgloss.NewStyle().Background(t.Surface).Width(width).MaxWidth(width).Render(bar)
}
