package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/finburn/internal/datekey"
)

// writeExport creates a temp file with the given contents and returns a DiscoveredFile for it.
func writeExport(t *testing.T, kind Kind, name string, lines ...string) DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return DiscoveredFile{Path: path, Kind: kind, Name: name}
}

func TestParseFile_TransactionArray(t *testing.T) {
	df := writeExport(t, KindTransactions, "transactions.json", `[
		{"id":"t1","date":"2024/01/15","amount":1000000,"standardName":"Canva Pro"},
		{"createdAt":"2024-01-16T08:00:00","revenue":"2.000.000 ₫","softwareName":"Figma"},
		{"occurredOn":"16/01/2024","total":"abc","name":"Raw name"},
		{"date":"2024/01/17","price":-5},
		"not an object"
	]`)

	result := ParseFile(df)
	require.NoError(t, result.Err)
	require.Len(t, result.Transactions, 4)
	assert.Equal(t, 4, result.Records)
	assert.Equal(t, 3, result.ParseErrors) // bad amount, negative amount, non-object

	first := result.Transactions[0]
	assert.Equal(t, "t1", first.ID)
	assert.Equal(t, datekey.Key("2024/01/15"), first.OccurredOn)
	assert.True(t, decimal.NewFromInt(1_000_000).Equal(first.Amount))
	assert.Equal(t, "Canva Pro", first.Source)

	second := result.Transactions[1]
	assert.Equal(t, "transactions.json#2", second.ID)
	assert.True(t, decimal.NewFromInt(2_000_000).Equal(second.Amount))
	assert.Equal(t, "Figma", second.Source)
	assert.Equal(t, df.Path, second.FilePath)

	third := result.Transactions[2]
	assert.True(t, third.Amount.IsZero())
	assert.Equal(t, "Raw name", third.Source)
	assert.Equal(t, datekey.Key("2024/01/16"), third.OccurredOn)

	fourth := result.Transactions[3]
	assert.True(t, fourth.Amount.IsZero(), "negative sale clamped to zero")
	assert.Equal(t, DefaultSource, fourth.Source)
}

func TestParseFile_ExpenseEnvelope(t *testing.T) {
	df := writeExport(t, KindExpenses, "expenses.json",
		`{"success": true, "data": [`,
		`  {"Date":"2024/02/01","Cost":"1,500.50","Type":"Quảng cáo","Category":"Facebook","AccountingType":"OPEX"},`,
		`  {"expenseDate":"2024/02/02","amount":200,"standardName":"Adobe"}`,
		`]}`)

	result := ParseFile(df)
	require.NoError(t, result.Err)
	require.Len(t, result.Expenses, 2)
	assert.Zero(t, result.ParseErrors)

	e := result.Expenses[0]
	assert.Equal(t, "Quảng cáo", e.RawType)
	assert.Equal(t, "Facebook", e.RawCategory)
	assert.Equal(t, "OPEX", e.AccountingType)
	assert.Equal(t, "1500.5", e.Amount.String())
	assert.Equal(t, "Adobe", result.Expenses[1].StandardName)
}

func TestParseFile_JSONL(t *testing.T) {
	df := writeExport(t, KindTransactions, "transactions.jsonl",
		`{"date":"2024/03/01","amount":10}`,
		``,
		`{broken`,
		`{"date":"2024/03/02","amount":"20"}`,
	)

	result := ParseFile(df)
	require.NoError(t, result.Err)
	assert.Len(t, result.Transactions, 2)
	assert.Equal(t, 1, result.ParseErrors)
}

func TestParseFile_MixedEnvelope(t *testing.T) {
	df := writeExport(t, KindMixed, "export.json", `{
		"transactions": [{"date":"2024/03/01","amount":10}],
		"expenses": [{"date":"2024/03/01","amount":4,"type":"rent"}]
	}`)

	result := ParseFile(df)
	require.NoError(t, result.Err)
	assert.Len(t, result.Transactions, 1)
	assert.Len(t, result.Expenses, 1)
}

func TestParseFile_MixedRowsGuessKind(t *testing.T) {
	df := writeExport(t, KindMixed, "export.jsonl",
		`{"date":"2024/03/01","amount":10,"productName":"A"}`,
		`{"date":"2024/03/01","amount":4,"accountingType":"COGS"}`,
	)

	result := ParseFile(df)
	require.NoError(t, result.Err)
	assert.Len(t, result.Transactions, 1)
	assert.Len(t, result.Expenses, 1)
}

func TestParseFile_SingleObjectAndMissingDate(t *testing.T) {
	df := writeExport(t, KindTransactions, "transactions.json", `{"amount": 5}`)

	result := ParseFile(df)
	require.NoError(t, result.Err)
	require.Len(t, result.Transactions, 1)
	assert.True(t, result.Transactions[0].OccurredOn.IsZero())
	assert.Equal(t, 1, result.ParseErrors)
}

func TestParseFile_Errors(t *testing.T) {
	if r := ParseFile(DiscoveredFile{Path: filepath.Join(t.TempDir(), "missing.json")}); r.Err == nil {
		t.Error("expected error for missing file")
	}

	df := writeExport(t, KindTransactions, "transactions.json", `[{"amount": 1}`)
	if r := ParseFile(df); r.Err == nil {
		t.Error("expected error for truncated array")
	}

	df = writeExport(t, KindTransactions, "transactions.json", `amount,date`)
	if r := ParseFile(df); r.Err == nil {
		t.Error("expected error for CSV input")
	}

	df = writeExport(t, KindTransactions, "transactions.json", "")
	r := ParseFile(df)
	if r.Err != nil || r.Records != 0 {
		t.Errorf("empty file: err=%v records=%d", r.Err, r.Records)
	}
}

func TestToDecimal(t *testing.T) {
	tests := []struct {
		in   any
		want string
		ok   bool
	}{
		{"1.500.000", "1500000", true},
		{"1.500", "1500", true},
		{"1.5", "1.5", true},
		{"0.500", "0.5", true},
		{"1,234.50", "1234.5", true},
		{"1.234,5", "1234.5", true},
		{"12,5", "12.5", true},
		{"1,500", "1500", true},
		{"$ 99", "99", true},
		{"250.000 VND", "250000", true},
		{"-42", "-42", true},
		{"(42)", "-42", true},
		{"", "0", false},
		{"abc", "0", false},
		{"1/2", "0", false},
		{12.25, "12.25", true},
		{int64(7), "7", true},
		{true, "0", false},
		{nil, "0", false},
	}
	for _, tt := range tests {
		got, ok := ToDecimal(tt.in)
		if ok != tt.ok || got.String() != tt.want {
			t.Errorf("ToDecimal(%#v) = %s, %v; want %s, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFieldResolvePrecedence(t *testing.T) {
	r := NewRecord(map[string]any{
		"Name":         "raw",
		"standardName": "  ",
		"softwareName": "Canonical",
	})
	assert.Equal(t, "Canonical", TransactionFields.Source.String(r))

	r = NewRecord(map[string]any{"AMOUNT": 3})
	v, ok := TransactionFields.Amount.Resolve(r)
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestNewRecordCaseCollisions(t *testing.T) {
	for range 50 {
		r := NewRecord(map[string]any{"Amount": "100", "amount": "999", "AMOUNT": "5"})
		if got := r["amount"]; got != "999" {
			t.Fatalf("amount = %v, want 999 (lower-case key wins)", got)
		}

		r = NewRecord(map[string]any{"Amount": "100", "AMOUNT": "5", " amount ": "7"})
		if got := r["amount"]; got != "7" {
			t.Fatalf("amount = %v, want 7 (trimmed lower-case key wins)", got)
		}

		r = NewRecord(map[string]any{"Amount": "100", "AMOUNT": "5"})
		if got := r["amount"]; got != "5" {
			t.Fatalf("amount = %v, want 5 (smallest key wins)", got)
		}
	}
}
