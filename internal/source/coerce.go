package source

import (
	stdjson "encoding/json"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ToDecimal coerces a loosely typed amount. Strings may carry currency
// symbols and either "." or "," as thousands separator ("1.500.000 ₫",
// "$1,234.50", "1.234,5"). A lone separator followed by exactly three digits
// is read as a thousands separator. Unusable input returns (0, false).
func ToDecimal(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return val, true
	case stdjson.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return ToDecimal(val.String())
		}
		return d, true
	case float64:
		return decimal.NewFromFloat(val), true
	case float32:
		return decimal.NewFromFloat32(val), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case int32:
		return decimal.NewFromInt32(val), true
	case string:
		return parseAmount(val)
	}
	return decimal.Zero, false
}

func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			negative = !negative
		case r == '+' && b.Len() == 0:
		case unicode.IsSpace(r), unicode.IsLetter(r), unicode.Is(unicode.Sc, r), r == '\'':
			// currency codes, symbols, grouping spaces
		default:
			return decimal.Zero, false
		}
	}

	digits := normalizeSeparators(b.String())
	if digits == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// normalizeSeparators rewrites s to use "." as the only decimal separator.
func normalizeSeparators(s string) string {
	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case dots > 0 && commas > 0:
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	case dots > 1:
		return strings.ReplaceAll(s, ".", "")
	case commas > 1:
		return strings.ReplaceAll(s, ",", "")
	case dots == 1:
		if isThousandsGroup(s, ".") {
			return strings.ReplaceAll(s, ".", "")
		}
		return s
	case commas == 1:
		if isThousandsGroup(s, ",") {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.ReplaceAll(s, ",", ".")
	}
	return s
}

func isThousandsGroup(s, sep string) bool {
	i := strings.Index(s, sep)
	head, tail := s[:i], s[i+1:]
	return len(tail) == 3 && head != "" && head != "0" && len(head) <= 3
}

// ToString renders a loosely typed scalar as trimmed text.
func ToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case stdjson.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}
