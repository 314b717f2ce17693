package pipeline

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finburn/internal/datekey"
	"github.com/theirongolddev/finburn/internal/model"
)

// fixedNow is a Wednesday in mid-March 2024.
var fixedNow = time.Date(2024, 3, 13, 12, 0, 0, 0, time.Local)

func testEngine() *Engine {
	return &Engine{Now: func() time.Time { return fixedNow }}
}

func mustRange(t *testing.T, start, end string) *model.DateRange {
	t.Helper()
	return &model.DateRange{Start: datekey.MustParse(start), End: datekey.MustParse(end)}
}

func tx(date string, amount int64, src string) model.TransactionRecord {
	var k datekey.Key
	if date != "" {
		k = datekey.MustParse(date)
	}
	return model.TransactionRecord{OccurredOn: k, Amount: decimal.NewFromInt(amount), Source: src}
}

func exp(date string, amount int64, rawType, accType string) model.ExpenseRecord {
	var k datekey.Key
	if date != "" {
		k = datekey.MustParse(date)
	}
	return model.ExpenseRecord{OccurredOn: k, Amount: decimal.NewFromInt(amount), RawType: rawType, AccountingType: accType}
}
