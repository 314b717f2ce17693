// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/theirongolddev/finburn/internal/model"
)

// currency controls FormatMoney. VND uses "." grouping and no fraction.
var currency = "VND"

// SetCurrency selects the currency used by FormatMoney. Empty resets to VND.
func SetCurrency(code string) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = "VND"
	}
	currency = code
}

// FormatMoney formats an amount in the active currency.
// e.g., VND 1234567 -> "1.234.567 ₫", USD 1234.5 -> "$1,234.50"
func FormatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	switch currency {
	case "VND":
		return group(int64(math.Round(v)), '.') + " ₫"
	case "USD":
		return signed(v, func(a float64) string { return "$" + groupFraction(a, ',', '.') })
	case "EUR":
		return signed(v, func(a float64) string { return groupFraction(a, '.', ',') + " €" })
	default:
		return signed(v, func(a float64) string { return groupFraction(a, ',', '.') + " " + currency })
	}
}

func signed(v float64, f func(float64) string) string {
	if v < 0 {
		return "-" + f(-v)
	}
	return f(v)
}

func groupFraction(v float64, thousands, decimal byte) string {
	cents := int64(math.Round(v * 100))
	return fmt.Sprintf("%s%c%02d", group(cents/100, thousands), decimal, cents%100)
}

// FormatCompact formats an amount with a short suffix.
// e.g., 1234 -> "1.2K", 15300000 -> "15.3M", 2100000000 -> "2.1B"
func FormatCompact(v float64) string {
	abs := math.Abs(v)

	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", v/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	default:
		return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return group(n, ',')
}

func group(n int64, sep byte) string {
	if n < 0 {
		return "-" + group(-n, sep)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(sep)
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a value already expressed in percent, e.g. 12.345 -> "12.3%".
func FormatPercent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", p)
}

// FormatGrowth renders a growth rate with a sign and direction arrow.
func FormatGrowth(g model.Growth) string {
	arrow := "→"
	switch g.Direction {
	case model.Up:
		arrow = "▲"
	case model.Down:
		arrow = "▼"
	}
	sign := ""
	if g.Rate > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s %s%.1f%%", arrow, sign, g.Rate)
}

// FormatRunway renders months of runway; infinite runway prints as ∞.
func FormatRunway(r model.Runway) string {
	if r.IsInfinite() {
		return "∞"
	}
	if r <= 0 {
		return "0 mo"
	}
	return fmt.Sprintf("%.1f mo", float64(r))
}

// FormatDelta formats the change between two amounts with an explicit sign.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatMoney(delta)
	}
	return "-" + FormatMoney(-delta)
}
