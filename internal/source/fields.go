package source

import "strings"

// Field is one logical input field and the raw keys accepted for it, in
// precedence order.
type Field struct {
	Name    string
	Aliases []string
}

// Resolve returns the first alias whose value is present and non-empty.
func (f Field) Resolve(r Record) (any, bool) {
	for _, a := range f.Aliases {
		v, ok := r[strings.ToLower(a)]
		if !ok || isEmpty(v) {
			continue
		}
		return v, true
	}
	return nil, false
}

// String resolves f and coerces the value to trimmed text.
func (f Field) String(r Record) string {
	v, ok := f.Resolve(r)
	if !ok {
		return ""
	}
	return ToString(v)
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}

// TransactionFields are the accepted aliases per logical transaction field.
var TransactionFields = struct {
	ID, OccurredOn, Amount, Source Field
}{
	ID:         Field{"id", []string{"id", "_id", "transactionId", "orderId", "code"}},
	OccurredOn: Field{"occurredOn", []string{"occurredOn", "date", "transactionDate", "orderDate", "createdAt", "created_at", "timestamp", "time"}},
	Amount:     Field{"amount", []string{"amount", "revenue", "total", "totalAmount", "price", "value"}},
	Source:     Field{"source", []string{"standardName", "softwareName", "productName", "product", "name", "source"}},
}

// ExpenseFields are the accepted aliases per logical expense field.
var ExpenseFields = struct {
	ID, OccurredOn, Amount, RawType, RawCategory, AccountingType, StandardName Field
}{
	ID:             Field{"id", []string{"id", "_id", "expenseId", "code"}},
	OccurredOn:     Field{"occurredOn", []string{"occurredOn", "date", "expenseDate", "createdAt", "created_at", "timestamp", "time"}},
	Amount:         Field{"amount", []string{"amount", "cost", "total", "value", "price"}},
	RawType:        Field{"rawType", []string{"type", "expenseType", "rawType", "kind"}},
	RawCategory:    Field{"rawCategory", []string{"category", "subCategory", "subcategory", "rawCategory"}},
	AccountingType: Field{"accountingType", []string{"accountingType", "accounting_type", "accountType"}},
	StandardName:   Field{"standardName", []string{"standardName", "standard_name", "canonicalName"}},
}
