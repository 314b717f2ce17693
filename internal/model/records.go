// Package model defines domain types for finburn records and metrics.
package model

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finburn/internal/datekey"
)

// TransactionRecord represents one completed sale.
type TransactionRecord struct {
	ID         string
	OccurredOn datekey.Key // empty when the source date was unusable
	Amount     decimal.Decimal
	Source     string // canonical product/software name, "Other" when absent
	FilePath   string
}

// ExpenseRecord represents one cost entry.
type ExpenseRecord struct {
	ID             string
	OccurredOn     datekey.Key
	Amount         decimal.Decimal
	RawType        string
	RawCategory    string
	AccountingType string // pre-assigned token, possibly empty or unknown
	StandardName   string
	FilePath       string
}

// AccountingType partitions expenses for reporting.
type AccountingType string

const (
	COGS       AccountingType = "COGS"
	OPEX       AccountingType = "OPEX"
	NonRelated AccountingType = "NON_RELATED"
)

// AccountingTypes lists every known type in display order.
var AccountingTypes = []AccountingType{COGS, OPEX, NonRelated}

// Known reports whether t is one of the three accounting types.
func (t AccountingType) Known() bool {
	switch t {
	case COGS, OPEX, NonRelated:
		return true
	}
	return false
}

// Label returns the human-readable name used in tables.
func (t AccountingType) Label() string {
	switch t {
	case COGS:
		return "Cost of goods"
	case OPEX:
		return "Operating"
	case NonRelated:
		return "Non-business"
	}
	return string(t)
}

// Classification is the accounting type and display category assigned to one expense.
type Classification struct {
	AccountingType AccountingType `json:"accountingType"`
	Category       string         `json:"category"`
	Rule           string         `json:"rule"`
}

// DateRange is an inclusive span of day keys. A nil *DateRange means "no range".
type DateRange struct {
	Start datekey.Key `json:"start"`
	End   datekey.Key `json:"end"`
}

// Valid reports whether both ends parse and Start <= End.
func (r *DateRange) Valid() bool {
	if r == nil || r.Start.IsZero() || r.End.IsZero() {
		return false
	}
	return !r.End.Before(r.Start)
}

// Contains reports whether k falls inside the range. A nil range contains every dated key.
func (r *DateRange) Contains(k datekey.Key) bool {
	if k.IsZero() {
		return false
	}
	if r == nil {
		return true
	}
	return !k.Before(r.Start) && !k.After(r.End)
}

// Days returns the inclusive day count, or 0 for an inverted or unusable range.
func (r *DateRange) Days() int {
	if !r.Valid() {
		return 0
	}
	return datekey.DaysBetween(r.Start, r.End) + 1
}

// Granularity is the bucket size of a series.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)
