package table

import "testing"

func TestFilterRule_Match(t *testing.T) {
	tests := []struct {
		name string
		rule FilterRule
		in   string
		want bool
	}{
		{"contains", FilterRule{Operator: OpContains, Value: "LIC"}, "alice", true},
		{"contains miss", FilterRule{Operator: OpContains, Value: "bob"}, "alice", false},
		{"equals ignores case", FilterRule{Operator: OpEquals, Value: "ALICE"}, "alice", true},
		{"equals partial", FilterRule{Operator: OpEquals, Value: "ali"}, "alice", false},
		{"startsWith", FilterRule{Operator: OpStartsWith, Value: "Al"}, "alice", true},
		{"startsWith miss", FilterRule{Operator: OpStartsWith, Value: "ce"}, "alice", false},
		{"endsWith", FilterRule{Operator: OpEndsWith, Value: "CE"}, "alice", true},
		{"empty value passes", FilterRule{Operator: OpEquals, Value: ""}, "anything", true},
		{"unknown operator passes", FilterRule{Operator: "regex", Value: "zzz"}, "alice", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Match(tt.in); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		rules []FilterRule
		want  []int
	}{
		{"no rules", nil, []int{2, 1, 3, 4}},
		{"single rule", []FilterRule{{Field: "name", Operator: OpEquals, Value: "alice"}}, []int{1, 3}},
		{"rules are ANDed", []FilterRule{
			{Field: "name", Operator: OpEquals, Value: "alice"},
			{Field: "email", Operator: OpEndsWith, Value: ".org"},
		}, []int{3}},
		{"empty value ignored", []FilterRule{
			{Field: "name", Operator: OpContains, Value: ""},
			{Field: "email", Operator: OpContains, Value: "example"},
		}, []int{2, 1, 4}},
		{"nil field is empty string", []FilterRule{{Field: "role", Operator: OpContains, Value: "a"}}, []int{2, 1, 4}},
		{"missing field never matches", []FilterRule{{Field: "nope", Operator: OpContains, Value: "x"}}, []int{}},
		{"numeric field", []FilterRule{{Field: "id", Operator: OpEquals, Value: "4"}}, []int{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(people(), tt.rules))
			if !equalInts(got, tt.want) {
				t.Errorf("Filter() ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		name  string
		rules []SortRule
		want  []int
	}{
		{"no rules keeps order", nil, []int{2, 1, 3, 4}},
		{"name asc is stable and ignores case", []SortRule{{Field: "name", Order: Asc}}, []int{1, 3, 2, 4}},
		{"name desc", []SortRule{{Field: "name", Order: Desc}}, []int{4, 2, 1, 3}},
		{"first rule is primary", []SortRule{{Field: "name", Order: Asc}, {Field: "id", Order: Desc}}, []int{3, 1, 2, 4}},
		{"id asc", []SortRule{{Field: "id", Order: Asc}}, []int{1, 2, 3, 4}},
		{"nil sorts first", []SortRule{{Field: "role", Order: Asc}, {Field: "id", Order: Asc}}, []int{3, 2, 1, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := people()
			Sort(rows, tt.rules)
			if got := ids(rows); !equalInts(got, tt.want) {
				t.Errorf("Sort() ids = %v, want %v", got, tt.want)
			}
		})
	}
}

// Adding a tiebreaker must not change the primary order.
func TestSort_TiebreakerDoesNotBecomePrimary(t *testing.T) {
	rows := []person{
		{ID: 1, Name: "zed"},
		{ID: 2, Name: "amy"},
		{ID: 3, Name: "amy"},
	}

	Sort(rows, []SortRule{{Field: "name", Order: Asc}, {Field: "id", Order: Asc}})

	if got := ids(rows); !equalInts(got, []int{2, 3, 1}) {
		t.Errorf("ids = %v, want [2 3 1] (primarily by name)", got)
	}
}

func TestOperatorAndOrderValid(t *testing.T) {
	for _, op := range Operators {
		if !op.Valid() {
			t.Errorf("%q should be valid", op)
		}
	}
	if Operator("like").Valid() {
		t.Error(`"like" should be invalid`)
	}
	if !Asc.Valid() || !Desc.Valid() || Order("up").Valid() {
		t.Error("order validity wrong")
	}
}

func BenchmarkFilterSort(b *testing.B) {
	rows := make([]person, 1000)
	for i := range rows {
		rows[i] = person{ID: i, Name: Caption("user_" + string(rune('a'+i%26))), Email: "u@example.com"}
	}
	filters := []FilterRule{{Field: "email", Operator: OpEndsWith, Value: ".com"}}
	sorts := []SortRule{{Field: "name", Order: Asc}, {Field: "id", Order: Desc}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out := Filter(rows, filters)
		Sort(out, sorts)
	}
}
