package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderTable_AlignsWideRunes(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Category", "Amount"},
		Rows: [][]string{
			{"Chi phí vận hành", "1.000 ₫"},
			{Separator},
			{"Ads", "25.000.000 ₫"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	want := lipgloss.Width(lines[0])
	for i, l := range lines {
		if w := lipgloss.Width(l); w != want {
			t.Errorf("line %d width = %d, want %d: %q", i, w, want, l)
		}
	}
	if !strings.Contains(lines[4], "├") {
		t.Errorf("separator row = %q", lines[4])
	}
	if !strings.Contains(lines[3], "      1.000 ₫ ") {
		t.Errorf("amount not right aligned: %q", lines[3])
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Errorf("RenderTable(empty) = %q", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline(nil); got != "" {
		t.Errorf("RenderSparkline(nil) = %q", got)
	}
	if got := RenderSparkline([]float64{0, 7}); got != "▁█" {
		t.Errorf("RenderSparkline(0,7) = %q", got)
	}
	if got := RenderSparkline([]float64{-10, 0, 10}); got != "▁▄█" {
		t.Errorf("RenderSparkline(-10,0,10) = %q", got)
	}
	if got := RenderSparkline([]float64{0, 0}); got != "▁▁" {
		t.Errorf("RenderSparkline(flat) = %q", got)
	}
}

func TestRenderHorizontalBar(t *testing.T) {
	defer SetCurrency("")
	got := RenderHorizontalBar("Ads", 50, 100, 10)
	if strings.Count(got, "█") != 5 {
		t.Errorf("bar = %q, want 5 blocks", got)
	}
	if strings.Contains(RenderHorizontalBar("None", 0, 100, 10), "█") {
		t.Error("zero value rendered a bar")
	}
}

func TestRenderProgressBar(t *testing.T) {
	if got := RenderProgressBar(1, 0, 10); got != "" {
		t.Errorf("zero total = %q", got)
	}
	got := RenderProgressBar(5, 10, 10)
	if !strings.Contains(got, "5/10") || strings.Count(got, "█") != 5 {
		t.Errorf("RenderProgressBar = %q", got)
	}
}
