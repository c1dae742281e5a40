package table

import (
	"context"
	"testing"
)

type person struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Role          *string `json:"role"`
	CreatedByName string  `json:"created_by_name"`
}

func strPtr(s string) *string { return &s }

func people() []person {
	return []person{
		{ID: 2, Name: "Bob", Email: "bob@example.com", Role: strPtr("admin")},
		{ID: 1, Name: "alice", Email: "alice@example.com", Role: strPtr("trainee")},
		{ID: 3, Name: "Alice", Email: "alice@school.org"},
		{ID: 4, Name: "carol", Email: "carol@example.com", Role: strPtr("trainee")},
	}
}

func ids(rows []person) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// memStates is a StateStore that records calls.
type memStates struct {
	saved  map[string]State
	saves  int
	clears int
}

func newMemStates() *memStates {
	return &memStates{saved: map[string]State{}}
}

func (m *memStates) Load(_ context.Context, key string) (State, bool, error) {
	s, ok := m.saved[key]
	return s, ok, nil
}

func (m *memStates) Save(_ context.Context, key string, s State) error {
	m.saves++
	m.saved[key] = s
	return nil
}

func (m *memStates) Clear(_ context.Context, key string) error {
	m.clears++
	delete(m.saved, key)
	return nil
}

func mustProvider(t *testing.T, cfg Config, data []person) *Provider[person] {
	t.Helper()
	p, err := NewProvider(context.Background(), cfg, data)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	return p
}
