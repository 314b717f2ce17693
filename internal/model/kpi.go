package model

import (
	"encoding/json"
	"math"
)

// runwayInfinity is the JSON form of an unbounded runway.
const runwayInfinity = "Infinity"

// Totals are the inputs of the KPI calculation.
type Totals struct {
	Revenue   float64
	Expenses  float64
	NetProfit float64
}

// KPIs holds per-day rates and runway.
type KPIs struct {
	RevenuePerDay   float64 `json:"revenuePerDay"`
	BurnRate        float64 `json:"burnRate"`
	MonthlyBurnRate float64 `json:"monthlyBurnRate"`
	Runway          Runway  `json:"runway"`
	ElapsedDays     int     `json:"elapsedDays"`
}

// Runway is months of operation left at the current burn. +Inf means cash-positive.
type Runway float64

// InfiniteRunway is the sentinel for a profitable business.
var InfiniteRunway = Runway(math.Inf(1))

// MarshalJSON encodes +Inf as the string "Infinity".
func (r Runway) MarshalJSON() ([]byte, error) {
	if r.IsInfinite() {
		return json.Marshal(runwayInfinity)
	}
	return json.Marshal(float64(r))
}

// UnmarshalJSON accepts a number or the "Infinity" sentinel.
func (r *Runway) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == runwayInfinity {
			*r = InfiniteRunway
			return nil
		}
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = Runway(f)
	return nil
}

// IsInfinite reports whether r is the cash-positive sentinel.
func (r Runway) IsInfinite() bool {
	return math.IsInf(float64(r), 1)
}
