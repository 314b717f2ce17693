package datekey

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	local := time.Date(2024, 3, 5, 14, 30, 0, 0, time.Local)

	tests := []struct {
		name string
		in   any
		want Key
		ok   bool
	}{
		{"slash", "2024/01/15", "2024/01/15", true},
		{"slash unpadded", "2024/1/5", "2024/01/05", true},
		{"iso date", "2024-01-15", "2024/01/15", true},
		{"iso local datetime", "2024-01-15T10:20:30", "2024/01/15", true},
		{"iso fraction", "2024-01-15T10:20:30.123456", "2024/01/15", true},
		{"day first", "15/01/2024", "2024/01/15", true},
		{"day first unpadded", "5/1/2024", "2024/01/05", true},
		{"vi locale string", "14:30:00 5/3/2024", "2024/03/05", true},
		{"padded whitespace", "  2024/01/15 ", "2024/01/15", true},
		{"time value", local, "2024/03/05", true},
		{"time pointer", &local, "2024/03/05", true},
		{"epoch millis", local.UnixMilli(), "2024/03/05", true},
		{"epoch seconds", float64(local.Unix()), "2024/03/05", true},
		{"epoch json number", json.Number("1709649000000"), FromTime(time.UnixMilli(1709649000000).Local()), true},
		{"compact int", 20240115, "2024/01/15", true},
		{"compact float", float64(20240115), "2024/01/15", true},
		{"compact json number", json.Number("20240115"), "2024/01/15", true},
		{"compact string", "20240115", "2024/01/15", true},
		{"compact impossible month", 20241315, "", false},
		{"compact impossible string", "20240230", "", false},
		{"empty", "", "", false},
		{"garbage", "not a date", "", false},
		{"impossible day", "2024/02/30", "", false},
		{"nil", nil, "", false},
		{"nil pointer", (*time.Time)(nil), "", false},
		{"zero time", time.Time{}, "", false},
		{"negative epoch", -5, "", false},
		{"bool", true, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeZonedConvertsToLocal(t *testing.T) {
	in := "2024-01-15T23:30:00Z"
	parsed, _ := time.Parse(time.RFC3339, in)
	got, ok := Normalize(in)
	assert.True(t, ok)
	assert.Equal(t, FromTime(parsed.Local()), got)
}

func TestKeyArithmetic(t *testing.T) {
	k := MustParse("2024/02/28")

	assert.Equal(t, Key("2024/03/01"), k.AddDays(2)) // leap year
	assert.Equal(t, "2024/02", k.Month())
	assert.Equal(t, Key("2024/02/01"), k.FirstOfMonth())
	assert.Equal(t, Key("2024/04/01"), k.AddMonths(2))
	assert.Equal(t, Key("2023/12/01"), k.AddMonths(-2))
	assert.Equal(t, Key("2024/02/26"), k.Monday())
	assert.Equal(t, Key("2024/02/26"), MustParse("2024/03/03").Monday()) // Sunday
	assert.Equal(t, Key("2024/03/04"), MustParse("2024/03/04").Monday())

	assert.Equal(t, 9, DaysBetween("2024/01/01", "2024/01/10"))
	assert.Equal(t, -9, DaysBetween("2024/01/10", "2024/01/01"))
	assert.Equal(t, 0, DaysBetween("", "2024/01/01"))
	assert.Equal(t, 14, MonthsBetween("2023/01/31", "2024/03/01"))

	assert.True(t, Key("").IsZero())
	assert.True(t, Key("2024/13/01").IsZero())
	assert.Equal(t, time.Date(2024, 2, 28, 0, 0, 0, 0, time.Local), k.Time())
	assert.True(t, k.Before("2024/03/01"))
	assert.True(t, k.After("2024/01/31"))
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("nope") })
}
