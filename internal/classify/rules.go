package classify

import (
	"strings"

	"github.com/theirongolddev/finburn/internal/model"
)

// builtinKeywords are evaluated in order after any user keywords.
// Tokens are stored folded.
var builtinKeywords = []Keyword{
	{
		Name:     "personal",
		Field:    FieldType,
		Tokens:   []string{"ca nhan", "personal", "lifestyle", "doi song", "sinh hoat", "gia dinh", "private"},
		Type:     model.NonRelated,
		Category: CategoryPersonal,
	},
	{
		Name:     "cogs-license",
		Field:    FieldAny,
		Tokens:   []string{"license", "licence", "ban quyen", "giay phep"},
		Type:     model.COGS,
		Category: CategoryLicense,
	},
	{
		Name:     "cogs-software",
		Field:    FieldAny,
		Tokens:   []string{"software", "phan mem", "saas", "plugin", "app store"},
		Type:     model.COGS,
		Category: CategorySoftware,
	},
	{
		Name:  "cogs-goods",
		Field: FieldAny,
		Tokens: []string{
			"goods", "hang hoa", "nhap hang", "inventory", "marketplace",
			"shopee", "lazada", "tiki", "amazon", "alibaba", "taobao", "ebay", "etsy",
		},
		Type:     model.COGS,
		Category: CategoryGoods,
	},
	{
		Name:     "opex-marketing",
		Field:    FieldAny,
		Tokens:   []string{"marketing", "quang cao", "ads", "advertis", "seo", "promotion", "khuyen mai"},
		Type:     model.OPEX,
		Category: CategoryMarketing,
	},
	{
		Name:  "opex-operations",
		Field: FieldAny,
		Tokens: []string{
			"van hanh", "operation", "rent", "thue", "salary", "luong", "utilit",
			"dien", "nuoc", "internet", "office", "van phong", "hosting", "server", "domain", "ten mien",
		},
		Type:     model.OPEX,
		Category: CategoryOperations,
	},
}

// accountingAliases maps folded tokens to accounting types.
var accountingAliases = map[string]model.AccountingType{
	"cogs":               model.COGS,
	"gia von":            model.COGS,
	"gia von hang ban":   model.COGS,
	"cost of goods":      model.COGS,
	"cost of goods sold": model.COGS,
	"opex":               model.OPEX,
	"chi phi van hanh":   model.OPEX,
	"chi phi hoat dong":  model.OPEX,
	"operating":          model.OPEX,
	"operating expense":  model.OPEX,
	"non_related":        model.NonRelated,
	"non related":        model.NonRelated,
	"non-related":        model.NonRelated,
	"nonrelated":         model.NonRelated,
	"khong lien quan":    model.NonRelated,
	"non-business":       model.NonRelated,
}

// ParseAccountingType resolves a pre-assigned token, ignoring case and diacritics.
func ParseAccountingType(s string) (model.AccountingType, bool) {
	f := Fold(s)
	if f == "" {
		return "", false
	}
	if t, ok := accountingAliases[f]; ok {
		return t, true
	}
	if t, ok := accountingAliases[strings.ReplaceAll(f, "_", " ")]; ok {
		return t, true
	}
	return "", false
}
