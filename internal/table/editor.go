package table

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

var (
	ErrNoColumns       = errors.New("no columns to choose from")
	ErrIndexOutOfRange = errors.New("rule index out of range")
	ErrUnknownField    = errors.New("unknown column")
	ErrInvalidOperator = errors.New("invalid filter operator")
	ErrInvalidOrder    = errors.New("invalid sort order")
)

// FilterPatch holds the fields of a filter rule to change; nil fields are
// kept.
type FilterPatch struct {
	Field    *string
	Operator *Operator
	Value    *string
}

// SortPatch holds the fields of a sort rule to change.
type SortPatch struct {
	Field *string
	Order *Order
}

// FilterEditor edits the filter rules of a provider. Every edit is applied
// to the provider at once, so the table previews it live; Apply persists
// explicitly and is what the panel's Apply button calls.
type FilterEditor[T any] struct {
	provider *Provider[T]
	columns  []ColumnOption
}

// NewFilterEditor binds an editor to p offering the given columns.
func NewFilterEditor[T any](p *Provider[T], columns []ColumnOption) *FilterEditor[T] {
	return &FilterEditor[T]{provider: p, columns: columns}
}

// Rules returns the current filter rules.
func (e *FilterEditor[T]) Rules() []FilterRule { return e.provider.State().Filters }

// Columns returns the selectable columns.
func (e *FilterEditor[T]) Columns() []ColumnOption { return e.columns }

// Add appends a rule on the first column using "contains" and no value.
func (e *FilterEditor[T]) Add(ctx context.Context) error {
	if len(e.columns) == 0 {
		return ErrNoColumns
	}
	rules := append(e.Rules(), FilterRule{Field: e.columns[0].ID, Operator: OpContains})
	return e.provider.SetFilters(ctx, rules)
}

// Update merges patch into the rule at index i.
func (e *FilterEditor[T]) Update(ctx context.Context, i int, patch FilterPatch) error {
	rules := e.Rules()
	if i < 0 || i >= len(rules) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}

	r := rules[i]
	if patch.Field != nil {
		if !hasColumn(e.columns, *patch.Field) {
			return fmt.Errorf("%w: %q", ErrUnknownField, *patch.Field)
		}
		r.Field = *patch.Field
	}
	if patch.Operator != nil {
		if !patch.Operator.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidOperator, *patch.Operator)
		}
		r.Operator = *patch.Operator
	}
	if patch.Value != nil {
		r.Value = *patch.Value
	}

	rules[i] = r
	return e.provider.Update(ctx, func(s *State) {
		s.Filters = rules
		s.Page = 1
	})
}

// Remove deletes the rule at index i.
func (e *FilterEditor[T]) Remove(ctx context.Context, i int) error {
	rules := e.Rules()
	if i < 0 || i >= len(rules) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return e.provider.Update(ctx, func(s *State) {
		s.Filters = slices.Delete(rules, i, i+1)
		s.Page = 1
	})
}

// Reset removes every filter rule. Sorts are untouched.
func (e *FilterEditor[T]) Reset(ctx context.Context) error {
	return e.provider.Update(ctx, func(s *State) {
		s.Filters = nil
		s.Page = 1
	})
}

// Apply persists the rules.
func (e *FilterEditor[T]) Apply(ctx context.Context) error {
	return e.provider.Apply(ctx)
}

// SortEditor edits the sort rules of a provider, previewing live like
// FilterEditor.
type SortEditor[T any] struct {
	provider *Provider[T]
	columns  []ColumnOption
}

// NewSortEditor binds an editor to p offering the given columns.
func NewSortEditor[T any](p *Provider[T], columns []ColumnOption) *SortEditor[T] {
	return &SortEditor[T]{provider: p, columns: columns}
}

// Rules returns the current sort rules.
func (e *SortEditor[T]) Rules() []SortRule { return e.provider.State().Sorts }

// Columns returns the selectable columns.
func (e *SortEditor[T]) Columns() []ColumnOption { return e.columns }

// Add appends an ascending rule on the first column.
func (e *SortEditor[T]) Add(ctx context.Context) error {
	if len(e.columns) == 0 {
		return ErrNoColumns
	}
	rules := append(e.Rules(), SortRule{Field: e.columns[0].ID, Order: Asc})
	return e.provider.SetSorts(ctx, rules)
}

// Update merges patch into the rule at index i.
func (e *SortEditor[T]) Update(ctx context.Context, i int, patch SortPatch) error {
	rules := e.Rules()
	if i < 0 || i >= len(rules) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}

	r := rules[i]
	if patch.Field != nil {
		if !hasColumn(e.columns, *patch.Field) {
			return fmt.Errorf("%w: %q", ErrUnknownField, *patch.Field)
		}
		r.Field = *patch.Field
	}
	if patch.Order != nil {
		if !patch.Order.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidOrder, *patch.Order)
		}
		r.Order = *patch.Order
	}

	rules[i] = r
	return e.provider.SetSorts(ctx, rules)
}

// Remove deletes the rule at index i.
func (e *SortEditor[T]) Remove(ctx context.Context, i int) error {
	rules := e.Rules()
	if i < 0 || i >= len(rules) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return e.provider.SetSorts(ctx, slices.Delete(rules, i, i+1))
}

// Reset removes every sort rule. Filters are untouched.
func (e *SortEditor[T]) Reset(ctx context.Context) error {
	return e.provider.SetSorts(ctx, nil)
}

// Apply persists the rules.
func (e *SortEditor[T]) Apply(ctx context.Context) error {
	return e.provider.Apply(ctx)
}

func hasColumn(cols []ColumnOption, id string) bool {
	return slices.ContainsFunc(cols, func(c ColumnOption) bool { return c.ID == id })
}
