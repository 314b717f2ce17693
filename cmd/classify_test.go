package cmd

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/finburn/internal/model"
)

func TestSummarizeRules(t *testing.T) {
	exp := func(amount int64) model.ExpenseRecord {
		return model.ExpenseRecord{Amount: decimal.NewFromInt(amount)}
	}
	ads := model.Classification{AccountingType: model.OPEX, Category: "Marketing", Rule: "marketing"}
	stock := model.Classification{AccountingType: model.COGS, Category: "Goods", Rule: "inventory"}

	rows := summarizeRules(
		[]model.ExpenseRecord{exp(100), exp(500), exp(250)},
		[]model.Classification{ads, stock, ads},
	)

	require.Len(t, rows, 2)
	assert.Equal(t, "inventory", rows[0].Rule)
	assert.Equal(t, 500.0, rows[0].Amount)
	assert.Equal(t, 1, rows[0].Count)
	assert.Equal(t, "marketing", rows[1].Rule)
	assert.Equal(t, 350.0, rows[1].Amount)
	assert.Equal(t, 2, rows[1].Count)
}

func TestSummarizeRulesEmpty(t *testing.T) {
	if rows := summarizeRules(nil, nil); len(rows) != 0 {
		t.Errorf("summarizeRules(nil) = %v, want empty", rows)
	}
}

func TestShare(t *testing.T) {
	tests := []struct {
		v, total float64
		want     string
	}{
		{25, 100, "25.0%"},
		{10, 0, ""},
	}
	for _, tt := range tests {
		if got := share(tt.v, tt.total); got != tt.want {
			t.Errorf("share(%v, %v) = %q, want %q", tt.v, tt.total, got, tt.want)
		}
	}
}
