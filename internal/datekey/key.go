// Package datekey normalizes heterogeneous date values into sortable day keys.
package datekey

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Layout is the canonical key layout. Keys compare lexicographically in date order.
const Layout = "2006/01/02"

const (
	monthLayout   = "2006/01"
	compactLayout = "20060102"
)

// Key is a canonical calendar day in yyyy/mm/dd form. The zero value means "no date".
type Key string

// zonedLayouts carry an explicit offset; parsed values are moved to the local zone.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05Z0700",
	time.RFC1123Z,
	time.RFC1123,
}

// localLayouts have no zone and are read as local wall-clock time.
// Day-first locale forms are tried before month-first ones.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006/01/02 15:04:05",
	"2006/1/2 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"2/1/2006 15:04:05",
	"15:04:05 2/1/2006",
	"15:04:05, 2/1/2006",
	"2/1/2006, 15:04:05",
	"02-01-2006",
	"2-1-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon Jan 2 2006",
}

// Normalize converts v into a canonical Key. It accepts ISO-8601 timestamps,
// slash-delimited dates, day-first locale strings, time.Time values and Unix
// epochs (seconds or milliseconds). Eight-digit numbers and digit strings are
// read as yyyymmdd. Unusable input returns ("", false).
func Normalize(v any) (Key, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case Key:
		if _, ok := val.date(); ok {
			return val, true
		}
		return "", false
	case time.Time:
		if val.IsZero() {
			return "", false
		}
		return FromTime(val.Local()), true
	case *time.Time:
		if val == nil || val.IsZero() {
			return "", false
		}
		return FromTime(val.Local()), true
	case string:
		return parseString(val)
	case json.Number:
		if n, err := val.Float64(); err == nil {
			return fromNumber(n)
		}
		return parseString(val.String())
	case float64:
		return fromNumber(val)
	case float32:
		return fromNumber(float64(val))
	case int:
		return fromNumber(float64(val))
	case int64:
		return fromNumber(float64(val))
	case int32:
		return fromNumber(float64(val))
	}
	return "", false
}

// MustParse returns the key for a yyyy/mm/dd string and panics on invalid input.
// Intended for tests and constant tables.
func MustParse(s string) Key {
	k, ok := parseString(s)
	if !ok {
		panic("datekey: invalid date " + strconv.Quote(s))
	}
	return k
}

// FromTime returns the key for t's calendar day in t's own location.
func FromTime(t time.Time) Key {
	return Key(t.Format(Layout))
}

func parseString(s string) (Key, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	if isAllDigits(s) && len(s) == 8 {
		return fromCompact(s)
	}
	if isAllDigits(s) && len(s) >= 9 {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return "", false
		}
		return fromEpoch(n)
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t.Local()), true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return FromTime(t), true
		}
	}
	return "", false
}

// fromNumber reads whole eight-digit values as yyyymmdd and anything else as an epoch.
func fromNumber(n float64) (Key, bool) {
	if n >= 1e7 && n < 1e8 && n == math.Trunc(n) {
		return fromCompact(strconv.FormatInt(int64(n), 10))
	}
	return fromEpoch(n)
}

// fromCompact parses a yyyymmdd string, rejecting impossible dates.
func fromCompact(s string) (Key, bool) {
	t, err := time.ParseInLocation(compactLayout, s, time.Local)
	if err != nil {
		return "", false
	}
	return FromTime(t), true
}

// fromEpoch treats values above 1e11 as milliseconds.
func fromEpoch(n float64) (Key, bool) {
	if n <= 0 || n != n {
		return "", false
	}
	var t time.Time
	if n > 1e11 {
		t = time.UnixMilli(int64(n))
	} else {
		t = time.Unix(int64(n), 0)
	}
	if t.Year() > 9999 {
		return "", false
	}
	return FromTime(t.Local()), true
}

func isAllDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// date parses the key as a UTC midnight, which keeps day arithmetic free of DST shifts.
func (k Key) date() (time.Time, bool) {
	if k == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(Layout, string(k))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsZero reports whether k holds no usable date.
func (k Key) IsZero() bool {
	_, ok := k.date()
	return !ok
}

// String implements fmt.Stringer.
func (k Key) String() string { return string(k) }

// Time returns local midnight of the key's day, or the zero time.
func (k Key) Time() time.Time {
	t, ok := k.date()
	if !ok {
		return time.Time{}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// Month returns the yyyy/mm prefix, or "" for an empty key.
func (k Key) Month() string {
	t, ok := k.date()
	if !ok {
		return ""
	}
	return t.Format(monthLayout)
}

// AddDays returns the key n days after k.
func (k Key) AddDays(n int) Key {
	t, ok := k.date()
	if !ok {
		return ""
	}
	return Key(t.AddDate(0, 0, n).Format(Layout))
}

// Monday returns the Monday of the ISO week containing k.
func (k Key) Monday() Key {
	t, ok := k.date()
	if !ok {
		return ""
	}
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return Key(t.AddDate(0, 0, -offset).Format(Layout))
}

// FirstOfMonth returns the first day of k's month.
func (k Key) FirstOfMonth() Key {
	t, ok := k.date()
	if !ok {
		return ""
	}
	return Key(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).Format(Layout))
}

// Before reports whether k sorts strictly before other.
func (k Key) Before(other Key) bool { return string(k) < string(other) }

// After reports whether k sorts strictly after other.
func (k Key) After(other Key) bool { return string(k) > string(other) }

// DaysBetween returns the number of calendar days from a to b (negative when b < a).
// Either key being empty yields 0.
func DaysBetween(a, b Key) int {
	ta, ok1 := a.date()
	tb, ok2 := b.date()
	if !ok1 || !ok2 {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}

// MonthsBetween returns whole calendar months from a's month to b's month.
func MonthsBetween(a, b Key) int {
	ta, ok1 := a.date()
	tb, ok2 := b.date()
	if !ok1 || !ok2 {
		return 0
	}
	return (tb.Year()-ta.Year())*12 + int(tb.Month()) - int(ta.Month())
}

// AddMonths returns the first day of the month n months after k's month.
func (k Key) AddMonths(n int) Key {
	t, ok := k.date()
	if !ok {
		return ""
	}
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Key(first.AddDate(0, n, 0).Format(Layout))
}
