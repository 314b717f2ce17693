// Package source discovers and parses transaction and expense exports.
package source

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finburn/internal/datekey"
	"github.com/theirongolddev/finburn/internal/model"
)

var json = jsoniter.Config{
	UseNumber:              true,
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// DefaultSource labels transactions with no product or source field.
const DefaultSource = "Other"

// envelopeKeys hold record arrays inside a top-level object, in lookup order.
var envelopeKeys = []string{"data", "items", "records", "rows", "results"}

// ParseResult holds the output of parsing a single export file.
type ParseResult struct {
	Transactions []model.TransactionRecord
	Expenses     []model.ExpenseRecord
	Records      int
	ParseErrors  int
	Err          error
}

// ParseFile reads a JSON array, a {"data": [...]} envelope, a mixed
// {"transactions": [...], "expenses": [...]} envelope or a JSONL file.
// Malformed records still yield a record with neutral defaults and are
// counted in ParseErrors; lines that are not JSON objects are skipped and
// counted.
func ParseFile(df DiscoveredFile) ParseResult {
	data, err := os.ReadFile(df.Path)
	if err != nil {
		return ParseResult{Err: errors.Wrapf(err, "reading %s", df.Path)}
	}
	return ParseBytes(df, data)
}

// ParseBytes parses data as if it were the contents of df.
func ParseBytes(df DiscoveredFile, data []byte) ParseResult {
	p := &parser{file: df}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return p.result
	}

	switch trimmed[0] {
	case '[':
		var rows []jsoniter.RawMessage
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			p.result.Err = errors.Wrapf(err, "decoding %s", df.Path)
			return p.result
		}
		p.rows(df.Kind, rows)
	case '{':
		var obj map[string]jsoniter.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err == nil {
			p.object(obj)
			return p.result
		}
		p.lines(data)
	default:
		p.result.Err = errors.Errorf("%s: not a JSON export", df.Path)
	}
	return p.result
}

type parser struct {
	file   DiscoveredFile
	index  int
	result ParseResult
}

// object handles a whole-file object: an envelope when it carries a known
// array key, otherwise a single record.
func (p *parser) object(obj map[string]jsoniter.RawMessage) {
	lowered := make(map[string]jsoniter.RawMessage, len(obj))
	for k, v := range obj {
		lowered[lowerKey(k)] = v
	}

	found := false
	for _, kind := range []Kind{KindTransactions, KindExpenses} {
		if raw, ok := lowered[string(kind)]; ok && isArray(raw) {
			var rows []jsoniter.RawMessage
			if err := json.Unmarshal(raw, &rows); err == nil {
				p.rows(kind, rows)
				found = true
			}
		}
	}
	if found {
		return
	}

	for _, key := range envelopeKeys {
		if raw, ok := lowered[key]; ok && isArray(raw) {
			var rows []jsoniter.RawMessage
			if err := json.Unmarshal(raw, &rows); err == nil {
				p.rows(p.file.Kind, rows)
				return
			}
		}
	}

	p.one(p.file.Kind, obj)
}

func (p *parser) one(kind Kind, obj map[string]jsoniter.RawMessage) {
	raw := make(map[string]any, len(obj))
	for k, v := range obj {
		var val any
		if err := json.Unmarshal(v, &val); err == nil {
			raw[k] = val
		}
	}
	p.add(kind, NewRecord(raw))
}

func (p *parser) rows(kind Kind, rows []jsoniter.RawMessage) {
	for _, row := range rows {
		var raw map[string]any
		if err := json.Unmarshal(row, &raw); err != nil || raw == nil {
			p.result.ParseErrors++
			continue
		}
		p.add(kind, NewRecord(raw))
	}
}

// lines parses JSONL, one object per line.
func (p *parser) lines(data []byte) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var raw map[string]any
		if err := json.Unmarshal(line, &raw); err != nil || raw == nil {
			p.result.ParseErrors++
			continue
		}
		p.add(p.file.Kind, NewRecord(raw))
	}
	if err := scanner.Err(); err != nil {
		p.result.Err = errors.Wrapf(err, "scanning %s", p.file.Path)
	}
}

func (p *parser) add(kind Kind, r Record) {
	p.index++
	p.result.Records++

	if kind == KindMixed {
		kind = guessKind(r)
	}
	if kind == KindExpenses {
		e, ok := ToExpense(r)
		if !ok {
			p.result.ParseErrors++
		}
		if e.ID == "" {
			e.ID = p.fallbackID()
		}
		e.FilePath = p.file.Path
		p.result.Expenses = append(p.result.Expenses, e)
		return
	}

	t, ok := ToTransaction(r)
	if !ok {
		p.result.ParseErrors++
	}
	if t.ID == "" {
		t.ID = p.fallbackID()
	}
	t.FilePath = p.file.Path
	p.result.Transactions = append(p.result.Transactions, t)
}

func (p *parser) fallbackID() string {
	name := p.file.Name
	if name == "" {
		name = p.file.Path
	}
	return fmt.Sprintf("%s#%d", name, p.index)
}

// guessKind treats records carrying any expense-only field as expenses.
func guessKind(r Record) Kind {
	for _, f := range []Field{ExpenseFields.RawType, ExpenseFields.AccountingType, ExpenseFields.RawCategory} {
		if _, ok := f.Resolve(r); ok {
			return KindExpenses
		}
	}
	if _, ok := r["cost"]; ok {
		return KindExpenses
	}
	return KindTransactions
}

// ToTransaction maps r onto a transaction. ok is false when the date or amount
// was missing or unusable, or the amount was negative (clamped to zero).
func ToTransaction(r Record) (model.TransactionRecord, bool) {
	f := TransactionFields
	t := model.TransactionRecord{
		ID:     f.ID.String(r),
		Source: f.Source.String(r),
	}
	if t.Source == "" {
		t.Source = DefaultSource
	}

	ok := true
	if v, found := f.OccurredOn.Resolve(r); found {
		t.OccurredOn, ok = datekey.Normalize(v)
	} else {
		ok = false
	}

	amount, amountOK := resolveAmount(f.Amount, r)
	if amount.IsNegative() {
		amount, amountOK = decimal.Zero, false
	}
	t.Amount = amount
	return t, ok && amountOK
}

// ToExpense maps r onto an expense. ok is false when the date or amount was
// missing or unusable.
func ToExpense(r Record) (model.ExpenseRecord, bool) {
	f := ExpenseFields
	e := model.ExpenseRecord{
		ID:             f.ID.String(r),
		RawType:        f.RawType.String(r),
		RawCategory:    f.RawCategory.String(r),
		AccountingType: f.AccountingType.String(r),
		StandardName:   f.StandardName.String(r),
	}

	ok := true
	if v, found := f.OccurredOn.Resolve(r); found {
		e.OccurredOn, ok = datekey.Normalize(v)
	} else {
		ok = false
	}

	amount, amountOK := resolveAmount(f.Amount, r)
	e.Amount = amount
	return e, ok && amountOK
}

func resolveAmount(f Field, r Record) (decimal.Decimal, bool) {
	v, found := f.Resolve(r)
	if !found {
		return decimal.Zero, false
	}
	return ToDecimal(v)
}

func lowerKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

func isArray(raw jsoniter.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
