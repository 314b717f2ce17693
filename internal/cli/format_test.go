package cli

import (
	"math"
	"strings"
	"testing"

	"github.com/theirongolddev/finburn/internal/model"
)

func TestFormatMoney(t *testing.T) {
	defer SetCurrency("")

	tests := []struct {
		currency string
		in       float64
		want     string
	}{
		{"VND", 0, "0 ₫"},
		{"VND", 999, "999 ₫"},
		{"VND", 1234567, "1.234.567 ₫"},
		{"VND", -15300000, "-15.300.000 ₫"},
		{"VND", 1234.6, "1.235 ₫"},
		{"usd", 1234.5, "$1,234.50"},
		{"USD", -0.5, "-$0.50"},
		{"EUR", 1000, "1.000,00 €"},
		{"GBP", 12, "12.00 GBP"},
	}
	for _, tt := range tests {
		SetCurrency(tt.currency)
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%s %v) = %q, want %q", tt.currency, tt.in, got, tt.want)
		}
	}

	SetCurrency("")
	if got := FormatMoney(math.NaN()); got != "-" {
		t.Errorf("FormatMoney(NaN) = %q, want -", got)
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1234, "1.2K"},
		{15_300_000, "15.3M"},
		{-2_100_000_000, "-2.1B"},
	}
	for _, tt := range tests {
		if got := FormatCompact(tt.in); got != tt.want {
			t.Errorf("FormatCompact(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{123, "123"},
		{1234, "1,234"},
		{1234567, "1,234,567"},
		{-9876543, "-9,876,543"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercentAndGrowth(t *testing.T) {
	if got := FormatPercent(12.345); got != "12.3%" {
		t.Errorf("FormatPercent = %q", got)
	}
	if got := FormatPercent(math.Inf(1)); got != "-" {
		t.Errorf("FormatPercent(Inf) = %q", got)
	}

	tests := []struct {
		g    model.Growth
		want string
	}{
		{model.Growth{Rate: 25, Direction: model.Up}, "▲ +25.0%"},
		{model.Growth{Rate: -10, Direction: model.Down}, "▼ -10.0%"},
		{model.Growth{Rate: 0, Direction: model.Stable}, "→ 0.0%"},
	}
	for _, tt := range tests {
		if got := FormatGrowth(tt.g); got != tt.want {
			t.Errorf("FormatGrowth(%+v) = %q, want %q", tt.g, got, tt.want)
		}
	}
}

func TestFormatRunway(t *testing.T) {
	if got := FormatRunway(model.InfiniteRunway); got != "∞" {
		t.Errorf("FormatRunway(inf) = %q", got)
	}
	if got := FormatRunway(3.25); got != "3.2 mo" && got != "3.3 mo" {
		t.Errorf("FormatRunway(3.25) = %q", got)
	}
	if got := FormatRunway(0); got != "0 mo" {
		t.Errorf("FormatRunway(0) = %q", got)
	}
}

func TestFormatDelta(t *testing.T) {
	defer SetCurrency("")
	SetCurrency("VND")
	if got := FormatDelta(1500, 1000); got != "+500 ₫" {
		t.Errorf("FormatDelta up = %q", got)
	}
	if got := FormatDelta(1000, 1500); !strings.HasPrefix(got, "-500") {
		t.Errorf("FormatDelta down = %q", got)
	}
}
