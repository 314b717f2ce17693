package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline scaled between the series minimum
// (or zero) and maximum, so loss periods still plot.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface)
	return style.Render(cli.RenderSparkline(values))
}

// BarChart renders a bar chart with a y-axis and sparse x labels.
// Negative values draw as empty columns.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	step := chartTickStep(peak)
	maxIntervals := max(2, height/2)
	for int(math.Ceil(peak/step)) > maxIntervals {
		step *= 2
	}
	ceiling := math.Ceil(peak/step) * step
	intervals := max(1, int(math.Round(ceiling/step)))
	rowsPerTick := max(2, height/intervals)
	chartH := rowsPerTick * intervals

	yLabelW := max(4, len(cli.FormatCompact(ceiling))+1)
	ticks := make(map[int]string, intervals)
	for i := 1; i <= intervals; i++ {
		ticks[i*rowsPerTick] = cli.FormatCompact(step * float64(i))
	}

	chartW := max(5, width-yLabelW-1)
	values, labels, barW, gap := fitBars(values, labels, chartW)
	n := len(values)
	axisLen := n*barW + max(0, n-1)*gap

	bg := lipgloss.NewStyle().Background(t.Surface)
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	partial := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		top := ceiling * float64(row) / float64(chartH)
		bottom := ceiling * float64(row-1) / float64(chartH)

		barColor := color
		if float64(row)/float64(chartH) > 0.8 {
			barColor = t.AccentBright
		}
		barStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", yLabelW, ticks[row])))
		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(bg.Render(strings.Repeat(" ", gap)))
			}
			switch {
			case v >= top:
				b.WriteString(barStyle.Render(strings.Repeat("█", barW)))
			case v > bottom:
				idx := min(8, max(1, int((v-bottom)/(top-bottom)*8)))
				b.WriteString(barStyle.Render(strings.Repeat(string(partial[idx]), barW)))
			default:
				b.WriteString(bg.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s└%s", yLabelW, "0", strings.Repeat("─", axisLen))))

	if len(labels) == n && n > 0 {
		b.WriteString("\n")
		b.WriteString(bg.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(axisLabels(labels, barW+gap, axisLen)))
	}
	return b.String()
}

// fitBars picks bar and gap widths for n bars in chartW columns, sampling the
// series down when even two-column bars would not fit.
func fitBars(values []float64, labels []string, chartW int) ([]float64, []string, int, int) {
	n := len(values)
	if n == 1 {
		return values, labels, min(6, chartW), 0
	}
	barW := (chartW - (n - 1)) / n
	if barW >= 2 {
		return values, labels, min(6, barW), 1
	}

	keep := max(2, (chartW+1)/3)
	sampled := make([]float64, keep)
	var sampledLabels []string
	if len(labels) == n {
		sampledLabels = make([]string, keep)
	}
	for i := range sampled {
		src := i * (n - 1) / (keep - 1)
		sampled[i] = values[src]
		if sampledLabels != nil {
			sampledLabels[i] = labels[src]
		}
	}
	return sampled, sampledLabels, 2, 1
}

// axisLabels places labels under their bars, skipping any that would overlap
// the previous one. The last label is always attempted.
func axisLabels(labels []string, pitch, axisLen int) string {
	buf := []rune(strings.Repeat(" ", axisLen))
	lastEnd := -1
	place := func(i int) {
		lbl := []rune(labels[i])
		pos := i * pitch
		if pos+len(lbl) > axisLen {
			pos = axisLen - len(lbl)
		}
		if pos <= lastEnd || pos < 0 {
			return
		}
		copy(buf[pos:], lbl)
		lastEnd = pos + len(lbl)
	}

	stride := max(1, (len(labels)*8)/(axisLen+1))
	for i := 0; i < len(labels)-1; i += stride {
		place(i)
	}
	place(len(labels) - 1)
	return strings.TrimRight(string(buf), " ")
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}
