package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := s.Set(ctx, "a", []byte("one"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "one" {
		t.Errorf("Get() = %q, want %q", got, "one")
	}

	if err := s.Set(ctx, "a", []byte("two"), 0); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	got, _ = s.Get(ctx, "a")
	if string(got) != "two" {
		t.Errorf("Get() after overwrite = %q, want %q", got, "two")
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete(never-set) error = %v, want nil", err)
	}

	for _, k := range []string{"table:s1:users", "table:s1:subject-tasks:4", "table:s10:users"} {
		if err := s.Set(ctx, k, []byte("{}"), 0); err != nil {
			t.Fatalf("Set(%s) error = %v", k, err)
		}
	}
	if err := s.DeletePrefix(ctx, "table:s1:"); err != nil {
		t.Fatalf("DeletePrefix() error = %v", err)
	}
	for _, k := range []string{"table:s1:users", "table:s1:subject-tasks:4"} {
		if _, err := s.Get(ctx, k); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%s) after DeletePrefix error = %v, want ErrNotFound", k, err)
		}
	}
	if _, err := s.Get(ctx, "table:s10:users"); err != nil {
		t.Errorf("DeletePrefix removed a key of another scope: %v", err)
	}

	if err := s.Set(ctx, "short", []byte("x"), 20*time.Millisecond); err != nil {
		t.Fatalf("Set() with ttl error = %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := s.Get(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after expiry error = %v, want ErrNotFound", err)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory(0)
	defer m.Close()
	exerciseStore(t, m)
}

func TestMemory_Sweep(t *testing.T) {
	m := NewMemory(0)
	defer m.Close()
	ctx := context.Background()

	_ = m.Set(ctx, "old", []byte("x"), time.Millisecond)
	_ = m.Set(ctx, "keep", []byte("y"), 0)

	m.sweep(time.Now().Add(time.Second))

	if m.Len() != 1 {
		t.Errorf("Len() after sweep = %d, want 1", m.Len())
	}
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	m := NewMemory(0)
	defer m.Close()
	ctx := context.Background()

	_ = m.Set(ctx, "k", []byte("abc"), 0)
	got, _ := m.Get(ctx, "k")
	got[0] = 'z'

	again, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value mutated through Get result: %q", again)
	}
}

func TestMemory_CloseIdempotent(t *testing.T) {
	m := NewMemory(time.Millisecond)
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestBolt(t *testing.T) {
	b, err := NewBolt(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("NewBolt() error = %v", err)
	}
	defer b.Close()
	exerciseStore(t, b)
}

func TestBolt_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	b, err := NewBolt(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Set(ctx, "sorts", []byte(`[{"column":"name"}]`), time.Hour); err != nil {
		t.Fatal(err)
	}
	b.Close()

	b, err = NewBolt(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	got, err := b.Get(ctx, "sorts")
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if string(got) != `[{"column":"name"}]` {
		t.Errorf("Get() = %s", got)
	}
}

func TestJSONHelpers(t *testing.T) {
	type state struct {
		Page     int `json:"page"`
		PageSize int `json:"pageSize"`
	}

	m := NewMemory(0)
	defer m.Close()
	ctx := context.Background()

	if err := SetJSON(ctx, m, "s", state{Page: 2, PageSize: 10}, 0); err != nil {
		t.Fatal(err)
	}
	got, err := GetJSON[state](ctx, m, "s")
	if err != nil {
		t.Fatal(err)
	}
	if got.Page != 2 || got.PageSize != 10 {
		t.Errorf("GetJSON() = %+v", got)
	}

	_ = m.Set(ctx, "bad", []byte("{"), 0)
	if _, err := GetJSON[state](ctx, m, "bad"); err == nil {
		t.Error("GetJSON() on invalid JSON expected error")
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{[]string{"session", "abc"}, "session:abc"},
		{[]string{"table", "abc", "users"}, "table:abc:users"},
		{[]string{"solo"}, "solo"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := Key(tt.parts...); got != tt.want {
			t.Errorf("Key(%v) = %q, want %q", tt.parts, got, tt.want)
		}
	}
}
