package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	positiveStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	negativeStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Separator is a row value that renders as a horizontal rule.
const Separator = "---"

// Align is a column alignment.
type Align int

const (
	// AlignAuto left-aligns the first column and right-aligns the rest.
	AlignAuto Align = iota
	AlignLeft
	AlignRight
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int   // optional column widths, auto-calculated if nil
	Align   []Align // optional per-column alignment
}

func (t Table) align(col int) Align {
	if col < len(t.Align) && t.Align[col] != AlignAuto {
		return t.Align[col]
	}
	if col == 0 {
		return AlignLeft
	}
	return AlignRight
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// pad fits cell into w display columns.
func pad(cell string, w int, a Align) string {
	gap := w - lipgloss.Width(cell)
	if gap <= 0 {
		return " " + cell + " "
	}
	if a == AlignRight {
		return " " + strings.Repeat(" ", gap) + cell + " "
	}
	return " " + cell + strings.Repeat(" ", gap) + " "
}

func rule(b *strings.Builder, widths []int, left, mid, right string) {
	b.WriteString(dimStyle.Render(left))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render(mid))
		}
	}
	b.WriteString(dimStyle.Render(right))
	b.WriteString("\n")
}

// RenderTable renders a bordered table with headers and rows.
// A row holding only Separator renders as a rule.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	for _, row := range t.Rows {
		numCols = max(numCols, len(row))
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], lipgloss.Width(h))
		}
		for _, row := range t.Rows {
			if isSeparator(row) {
				continue
			}
			for i, cell := range row {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule(&b, widths, "╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			h := ""
			if i < len(t.Headers) {
				h = t.Headers[i]
			}
			b.WriteString(headerStyle.Render(pad(h, widths[i], t.align(i))))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
		rule(&b, widths, "├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if isSeparator(row) {
			rule(&b, widths, "├", "┼", "┤")
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle.Render(pad(cell, widths[i], t.align(i))))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
	}

	rule(&b, widths, "╰", "┴", "╯")

	return b.String()
}

func isSeparator(row []string) bool {
	return len(row) == 1 && row[0] == Separator
}

// RenderSigned colors an already formatted value by the sign of v.
func RenderSigned(s string, v float64) string {
	switch {
	case v > 0:
		return positiveStyle.Render(s)
	case v < 0:
		return negativeStyle.Render(s)
	}
	return mutedStyle.Render(s)
}

// RenderProgressBar renders a simple text progress bar.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}

	pct := min(float64(current)/float64(total), 1)
	filled := min(int(pct*float64(width)), width)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s/%s",
		mutedStyle.Render(bar),
		FormatNumber(int64(current)),
		FormatNumber(int64(total)),
	)
}

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline generates a unicode block sparkline scaled between the
// series minimum and maximum, so negative values still plot.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo > 0 {
		lo = 0
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(sparkBlocks)-1))
		idx = max(0, min(idx, len(sparkBlocks)-1))
		b.WriteRune(sparkBlocks[idx])
	}

	return b.String()
}

// RenderHorizontalBar renders "label  ████ value" with the bar scaled to maxValue.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 || value <= 0 {
		return fmt.Sprintf("  %s  %s", label, FormatMoney(value))
	}
	barLen := max(0, min(int(value/maxValue*float64(maxWidth)), maxWidth))
	bar := strings.Repeat("█", barLen)
	return fmt.Sprintf("  %s  %s %s", label, positiveStyle.Render(bar), FormatMoney(value))
}
