package table

import (
	"context"
	"errors"
	"testing"
)

func editorColumns() []ColumnOption {
	return Options(threeColumns())
}

func TestFilterEditor(t *testing.T) {
	ctx := context.Background()
	states := newMemStates()
	p := mustProvider(t, Config{Key: "users", Store: states}, people())
	e := NewFilterEditor(p, editorColumns())

	if err := e.Add(ctx); err != nil {
		t.Fatal(err)
	}
	rules := e.Rules()
	if len(rules) != 1 || rules[0] != (FilterRule{Field: "id", Operator: OpContains}) {
		t.Fatalf("Add() rules = %+v", rules)
	}

	field, value := "name", "ALI"
	if err := e.Update(ctx, 0, FilterPatch{Field: &field, Value: &value}); err != nil {
		t.Fatal(err)
	}
	if got := ids(p.View()); !equalInts(got, []int{1, 3}) {
		t.Errorf("live preview ids = %v, want [1 3]", got)
	}
	if _, ok := states.saved["users"]; !ok {
		t.Error("edit should persist immediately")
	}

	op := OpEquals
	if err := e.Update(ctx, 0, FilterPatch{Operator: &op}); err != nil {
		t.Fatal(err)
	}
	if len(p.View()) != 0 {
		t.Errorf("equals ALI should match nothing, got %v", ids(p.View()))
	}

	if err := e.Remove(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if len(e.Rules()) != 0 || len(p.View()) != 4 {
		t.Errorf("after Remove rules=%v view=%v", e.Rules(), ids(p.View()))
	}
}

func TestFilterEditor_Errors(t *testing.T) {
	ctx := context.Background()
	p := mustProvider(t, Config{}, people())
	e := NewFilterEditor(p, editorColumns())
	e.Add(ctx)

	bad := Operator("like")
	unknown := "salary"
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"index too high", e.Update(ctx, 1, FilterPatch{}), ErrIndexOutOfRange},
		{"negative index", e.Remove(ctx, -1), ErrIndexOutOfRange},
		{"invalid operator", e.Update(ctx, 0, FilterPatch{Operator: &bad}), ErrInvalidOperator},
		{"unknown field", e.Update(ctx, 0, FilterPatch{Field: &unknown}), ErrUnknownField},
		{"no columns", NewFilterEditor(p, nil).Add(ctx), ErrNoColumns},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, tt.err, tt.want)
		}
	}

	if r := e.Rules()[0]; r.Operator != OpContains || r.Field != "id" {
		t.Errorf("failed updates modified the rule: %+v", r)
	}
}

func TestSortEditor(t *testing.T) {
	ctx := context.Background()
	p := mustProvider(t, Config{}, people())
	e := NewSortEditor(p, editorColumns())

	e.Add(ctx)
	e.Add(ctx)
	if rules := e.Rules(); len(rules) != 2 || rules[0] != (SortRule{Field: "id", Order: Asc}) {
		t.Fatalf("Add() rules = %+v", rules)
	}

	name, desc := "name", Desc
	if err := e.Update(ctx, 0, SortPatch{Field: &name}); err != nil {
		t.Fatal(err)
	}
	if err := e.Update(ctx, 1, SortPatch{Order: &desc}); err != nil {
		t.Fatal(err)
	}
	if got := ids(p.View()); !equalInts(got, []int{3, 1, 2, 4}) {
		t.Errorf("name asc, id desc ids = %v", got)
	}

	bad := Order("sideways")
	if err := e.Update(ctx, 0, SortPatch{Order: &bad}); !errors.Is(err, ErrInvalidOrder) {
		t.Errorf("invalid order error = %v", err)
	}

	if err := e.Remove(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if got := ids(p.View()); !equalInts(got, []int{4, 3, 2, 1}) {
		t.Errorf("id desc ids = %v", got)
	}
}

func TestEditors_ResetOnlyTheirKind(t *testing.T) {
	ctx := context.Background()
	p := mustProvider(t, Config{}, people())
	filters := NewFilterEditor(p, editorColumns())
	sorts := NewSortEditor(p, editorColumns())

	filters.Add(ctx)
	sorts.Add(ctx)

	if err := filters.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if len(filters.Rules()) != 0 || len(sorts.Rules()) != 1 {
		t.Errorf("filter reset: filters=%d sorts=%d", len(filters.Rules()), len(sorts.Rules()))
	}

	filters.Add(ctx)
	if err := sorts.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if len(filters.Rules()) != 1 || len(sorts.Rules()) != 0 {
		t.Errorf("sort reset: filters=%d sorts=%d", len(filters.Rules()), len(sorts.Rules()))
	}
}

func TestEditor_ApplyPersists(t *testing.T) {
	ctx := context.Background()
	states := newMemStates()
	p := mustProvider(t, Config{Key: "tasks", Store: states}, people())

	if err := NewSortEditor(p, editorColumns()).Apply(ctx); err != nil {
		t.Fatal(err)
	}
	if states.saves != 1 {
		t.Errorf("saves = %d, want 1", states.saves)
	}
}
