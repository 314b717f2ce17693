package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theirongolddev/finburn/internal/model"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "chi phi van hanh", Fold("  Chi phí   Vận hành "))
	assert.Equal(t, "khong lien quan", Fold("Không liên quan"))
	assert.Equal(t, "dien thoai", Fold("Điện thoại"))
	assert.Equal(t, "", Fold(""))
}

func TestParseAccountingType(t *testing.T) {
	tests := []struct {
		in   string
		want model.AccountingType
		ok   bool
	}{
		{"COGS", model.COGS, true},
		{"opex", model.OPEX, true},
		{"NON_RELATED", model.NonRelated, true},
		{"Giá vốn", model.COGS, true},
		{"Chi phí vận hành", model.OPEX, true},
		{"Không liên quan", model.NonRelated, true},
		{"capex", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseAccountingType(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestClassifyChain(t *testing.T) {
	c := Default()

	tests := []struct {
		name string
		in   model.ExpenseRecord
		want model.Classification
	}{
		{
			name: "preassigned with standard name",
			in:   model.ExpenseRecord{AccountingType: "COGS", StandardName: "Adobe"},
			want: model.Classification{AccountingType: model.COGS, Category: "Adobe", Rule: "preassigned"},
		},
		{
			name: "preassigned alias without category",
			in:   model.ExpenseRecord{AccountingType: "Không liên quan"},
			want: model.Classification{AccountingType: model.NonRelated, Category: CategoryPersonal, Rule: "preassigned"},
		},
		{
			name: "preassigned derives category from same-type keyword",
			in:   model.ExpenseRecord{AccountingType: "Giá vốn", RawType: "Bản quyền phần mềm"},
			want: model.Classification{AccountingType: model.COGS, Category: CategoryLicense, Rule: "preassigned"},
		},
		{
			name: "preassigned ignores other-type keyword",
			in:   model.ExpenseRecord{AccountingType: "OPEX", RawType: "shopee"},
			want: model.Classification{AccountingType: model.OPEX, Category: CategoryOther, Rule: "preassigned"},
		},
		{
			name: "unknown preassigned falls through",
			in:   model.ExpenseRecord{AccountingType: "capex", RawType: "Quảng cáo Facebook"},
			want: model.Classification{AccountingType: model.OPEX, Category: CategoryMarketing, Rule: "opex-marketing"},
		},
		{
			name: "standard name infers type",
			in:   model.ExpenseRecord{StandardName: "JetBrains", RawCategory: "software"},
			want: model.Classification{AccountingType: model.COGS, Category: "JetBrains", Rule: "standard-name"},
		},
		{
			name: "standard name defaults to opex",
			in:   model.ExpenseRecord{StandardName: "Misc"},
			want: model.Classification{AccountingType: model.OPEX, Category: "Misc", Rule: "standard-name"},
		},
		{
			name: "personal marker",
			in:   model.ExpenseRecord{RawType: "Chi tiêu cá nhân", RawCategory: "software"},
			want: model.Classification{AccountingType: model.NonRelated, Category: CategoryPersonal, Rule: "personal"},
		},
		{
			name: "personal marker only in type",
			in:   model.ExpenseRecord{RawCategory: "personal"},
			want: model.Classification{AccountingType: model.OPEX, Category: CategoryOther, Rule: "fallback"},
		},
		{
			name: "license beats software",
			in:   model.ExpenseRecord{RawType: "Software license"},
			want: model.Classification{AccountingType: model.COGS, Category: CategoryLicense, Rule: "cogs-license"},
		},
		{
			name: "marketplace",
			in:   model.ExpenseRecord{RawCategory: "Nhập hàng Lazada"},
			want: model.Classification{AccountingType: model.COGS, Category: CategoryGoods, Rule: "cogs-goods"},
		},
		{
			name: "operations",
			in:   model.ExpenseRecord{RawType: "Tiền thuê văn phòng"},
			want: model.Classification{AccountingType: model.OPEX, Category: CategoryOperations, Rule: "opex-operations"},
		},
		{
			name: "token must start a word",
			in:   model.ExpenseRecord{RawType: "downloads"},
			want: model.Classification{AccountingType: model.OPEX, Category: CategoryOther, Rule: "fallback"},
		},
		{
			name: "empty record",
			in:   model.ExpenseRecord{},
			want: model.Classification{AccountingType: model.OPEX, Category: CategoryOther, Rule: "fallback"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.in))
		})
	}
}

func TestClassifyTotality(t *testing.T) {
	c := Default()
	inputs := []model.ExpenseRecord{
		{},
		{AccountingType: "???", RawType: "\x00\xff"},
		{StandardName: "   "},
		{RawType: "Đ", RawCategory: "ĐĐĐ"},
	}
	for _, in := range inputs {
		got := c.Classify(in)
		assert.True(t, got.AccountingType.Known(), "%+v", in)
		assert.NotEmpty(t, got.Category, "%+v", in)
	}
}

func TestUserKeywordsRunBeforeBuiltins(t *testing.T) {
	c := New(Keyword{
		Name:     "cloud",
		Tokens:   []string{"Amazon Web Services"},
		Type:     model.OPEX,
		Category: "Cloud",
	}, Keyword{Name: "empty"})

	got := c.Classify(model.ExpenseRecord{RawType: "amazon web services"})
	assert.Equal(t, model.Classification{AccountingType: model.OPEX, Category: "Cloud", Rule: "user:cloud"}, got)

	got = c.Classify(model.ExpenseRecord{RawType: "amazon order"})
	assert.Equal(t, CategoryGoods, got.Category)

	names := make([]string, 0)
	for _, r := range c.Rules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"preassigned", "standard-name", "user:cloud", "personal",
		"cogs-license", "cogs-software", "cogs-goods",
		"opex-marketing", "opex-operations", "fallback",
	}, names)
}

func TestEachBuiltinRuleIndependently(t *testing.T) {
	for _, k := range builtinKeywords {
		t.Run(k.Name, func(t *testing.T) {
			in := NewInput(model.ExpenseRecord{RawType: k.Tokens[0]})
			assert.True(t, k.Rule().Match(in))
			res := k.Rule().Result(in)
			assert.Equal(t, k.Type, res.AccountingType)
			assert.Equal(t, k.Category, res.Category)
		})
	}
}
