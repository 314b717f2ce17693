// Package classify assigns accounting types and display categories to expenses.
package classify

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/theirongolddev/finburn/internal/model"
)

// Display categories produced by the built-in rules.
const (
	CategoryPersonal   = "Personal"
	CategoryLicense    = "License Cost"
	CategorySoftware   = "Software Cost"
	CategoryGoods      = "Goods Cost"
	CategoryMarketing  = "Marketing"
	CategoryOperations = "Operations"
	CategoryOther      = "Other"
)

// Input is an expense with its text fields folded once for matching.
type Input struct {
	Record       model.ExpenseRecord
	Type         string // folded RawType
	Category     string // folded RawCategory
	Text         string // folded RawType and RawCategory together
	StandardName string // trimmed, original casing
	Preassigned  model.AccountingType
}

// NewInput prepares e for rule evaluation.
func NewInput(e model.ExpenseRecord) Input {
	in := Input{
		Record:       e,
		Type:         Fold(e.RawType),
		Category:     Fold(e.RawCategory),
		StandardName: strings.TrimSpace(e.StandardName),
	}
	in.Text = strings.TrimSpace(in.Type + " | " + in.Category)
	in.Preassigned, _ = ParseAccountingType(e.AccountingType)
	return in
}

// Rule is one step of the classification chain. The first rule whose Match
// returns true decides the result.
type Rule struct {
	Name   string
	Match  func(Input) bool
	Result func(Input) model.Classification
}

// Field selects which folded text a Keyword inspects.
type Field string

const (
	FieldType     Field = "type"
	FieldCategory Field = "category"
	FieldAny      Field = "any"
)

// Keyword is a data-driven rule: any token found in the selected field
// assigns Type and Category.
type Keyword struct {
	Name     string
	Field    Field
	Tokens   []string
	Type     model.AccountingType
	Category string
}

func (k Keyword) text(in Input) string {
	switch k.Field {
	case FieldType:
		return in.Type
	case FieldCategory:
		return in.Category
	}
	return in.Text
}

// Matches reports whether any token occurs at a word start in the selected field.
func (k Keyword) Matches(in Input) bool {
	text := k.text(in)
	for _, tok := range k.Tokens {
		if hasToken(text, tok) {
			return true
		}
	}
	return false
}

// Rule converts k into a chain step.
func (k Keyword) Rule() Rule {
	return Rule{
		Name:  k.Name,
		Match: k.Matches,
		Result: func(Input) model.Classification {
			return model.Classification{AccountingType: k.Type, Category: k.Category, Rule: k.Name}
		},
	}
}

// Classifier evaluates an ordered rule chain. It is immutable after construction
// and safe for concurrent use.
type Classifier struct {
	rules    []Rule
	keywords []Keyword
}

var defaultClassifier = New()

// Default returns a classifier with only the built-in rules.
func Default() *Classifier { return defaultClassifier }

// New builds the chain: preassigned, standard-name, then user keywords ahead of
// the built-in personal/COGS/OPEX keywords, ending in the OPEX fallback.
func New(user ...Keyword) *Classifier {
	c := &Classifier{}
	for _, k := range user {
		if k.Name == "" {
			k.Name = "user"
		} else if !strings.HasPrefix(k.Name, "user:") {
			k.Name = "user:" + k.Name
		}
		if !k.Type.Known() {
			k.Type = model.OPEX
		}
		if k.Field == "" {
			k.Field = FieldAny
		}
		k.Tokens = foldTokens(k.Tokens)
		if len(k.Tokens) == 0 {
			continue
		}
		if strings.TrimSpace(k.Category) == "" {
			k.Category = CategoryOther
		}
		c.keywords = append(c.keywords, k)
	}
	c.keywords = append(c.keywords, builtinKeywords...)

	c.rules = append(c.rules, c.preassignedRule(), c.standardNameRule())
	for _, k := range c.keywords {
		c.rules = append(c.rules, k.Rule())
	}
	c.rules = append(c.rules, fallbackRule)
	return c
}

// Rules returns a copy of the chain in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify resolves e to exactly one accounting type and a non-empty category.
func (c *Classifier) Classify(e model.ExpenseRecord) model.Classification {
	in := NewInput(e)
	for _, r := range c.rules {
		if r.Match(in) {
			res := r.Result(in)
			if !res.AccountingType.Known() {
				res.AccountingType = model.OPEX
			}
			if res.Category == "" {
				res.Category = CategoryOther
			}
			if res.Rule == "" {
				res.Rule = r.Name
			}
			return res
		}
	}
	return fallbackRule.Result(in)
}

// keyword returns the first keyword rule matching in, optionally restricted to one type.
func (c *Classifier) keyword(in Input, only model.AccountingType) (Keyword, bool) {
	for _, k := range c.keywords {
		if only != "" && k.Type != only {
			continue
		}
		if k.Matches(in) {
			return k, true
		}
	}
	return Keyword{}, false
}

func (c *Classifier) preassignedRule() Rule {
	return Rule{
		Name:  "preassigned",
		Match: func(in Input) bool { return in.Preassigned != "" },
		Result: func(in Input) model.Classification {
			res := model.Classification{AccountingType: in.Preassigned, Rule: "preassigned"}
			switch {
			case in.StandardName != "":
				res.Category = in.StandardName
			default:
				if k, ok := c.keyword(in, in.Preassigned); ok {
					res.Category = k.Category
				} else {
					res.Category = defaultCategory(in.Preassigned)
				}
			}
			return res
		},
	}
}

func (c *Classifier) standardNameRule() Rule {
	return Rule{
		Name:  "standard-name",
		Match: func(in Input) bool { return in.StandardName != "" },
		Result: func(in Input) model.Classification {
			res := model.Classification{AccountingType: model.OPEX, Category: in.StandardName, Rule: "standard-name"}
			if k, ok := c.keyword(in, ""); ok {
				res.AccountingType = k.Type
			}
			return res
		},
	}
}

var fallbackRule = Rule{
	Name:  "fallback",
	Match: func(Input) bool { return true },
	Result: func(Input) model.Classification {
		return model.Classification{AccountingType: model.OPEX, Category: CategoryOther, Rule: "fallback"}
	},
}

func defaultCategory(t model.AccountingType) string {
	switch t {
	case model.NonRelated:
		return CategoryPersonal
	case model.COGS:
		return CategoryGoods
	}
	return CategoryOther
}

// hasToken reports whether tok occurs in text starting at a word boundary.
func hasToken(text, tok string) bool {
	if tok == "" || text == "" {
		return false
	}
	for i := 0; i <= len(text)-len(tok); {
		j := strings.Index(text[i:], tok)
		if j < 0 {
			return false
		}
		pos := i + j
		if pos == 0 {
			return true
		}
		prev, _ := utf8.DecodeLastRuneInString(text[:pos])
		if !unicode.IsLetter(prev) && !unicode.IsDigit(prev) {
			return true
		}
		i = pos + 1
	}
	return false
}

func foldTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if f := Fold(t); f != "" {
			out = append(out, f)
		}
	}
	return out
}
