package table

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Operator is a filter comparison.
type Operator string

const (
	OpContains   Operator = "contains"
	OpEquals     Operator = "equals"
	OpStartsWith Operator = "startsWith"
	OpEndsWith   Operator = "endsWith"
)

// Operators lists the operators in editor order.
var Operators = []Operator{OpContains, OpEquals, OpStartsWith, OpEndsWith}

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	return slices.Contains(Operators, op)
}

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Valid reports whether o is asc or desc.
func (o Order) Valid() bool {
	return o == Asc || o == Desc
}

// FilterRule narrows the rows to those whose field matches value.
type FilterRule struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// SortRule orders rows by one field.
type SortRule struct {
	Field string `json:"field"`
	Order Order  `json:"order"`
}

// Match reports whether s passes the rule. Comparison ignores case, an
// empty value matches everything and an unknown operator passes.
func (r FilterRule) Match(s string) bool {
	if r.Value == "" {
		return true
	}
	s = strings.ToLower(s)
	v := strings.ToLower(r.Value)

	switch r.Operator {
	case OpContains:
		return strings.Contains(s, v)
	case OpEquals:
		return s == v
	case OpStartsWith:
		return strings.HasPrefix(s, v)
	case OpEndsWith:
		return strings.HasSuffix(s, v)
	default:
		return true
	}
}

// Filter returns the rows passing every rule, in their original order.
func Filter[T any](rows []T, rules []FilterRule) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if matchesAll(row, rules) {
			out = append(out, row)
		}
	}
	return out
}

func matchesAll(row any, rules []FilterRule) bool {
	for _, r := range rules {
		if r.Value == "" {
			continue
		}
		v, _ := FieldValue(row, r.Field)
		if !r.Match(FieldString(v)) {
			return false
		}
	}
	return true
}

// Sort orders rows in place with one stable comparator that evaluates
// rules in declared order: the first rule is the primary key and each later
// rule only breaks ties left by the earlier ones. Fields compare by their
// string form, ignoring case.
func Sort[T any](rows []T, rules []SortRule) {
	if len(rules) == 0 || len(rows) < 2 {
		return
	}

	// Precompute keys so the comparator does no reflection.
	keys := make([][]string, len(rows))
	idx := make([]int, len(rows))
	for i, row := range rows {
		idx[i] = i
		k := make([]string, len(rules))
		for j, r := range rules {
			v, _ := FieldValue(row, r.Field)
			k[j] = FieldString(v)
		}
		keys[i] = k
	}

	col := collate.New(language.English, collate.IgnoreCase)
	slices.SortStableFunc(idx, func(a, b int) int {
		for j, r := range rules {
			c := col.CompareString(keys[a][j], keys[b][j])
			if r.Order == Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})

	sorted := make([]T, len(rows))
	for i, j := range idx {
		sorted[i] = rows[j]
	}
	copy(rows, sorted)
}
