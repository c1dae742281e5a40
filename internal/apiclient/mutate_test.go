package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
)

type roleResponse struct {
	User struct {
		ID   int    `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
}

func TestMutator_ServerMessage(t *testing.T) {
	c := pageServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"Invalid role"}`))
	})

	m := NewMutator[roleResponse](c)
	_, err := m.Mutate(context.Background(), "/api/admin/users/1/role", http.MethodPut, map[string]string{"role": "owner"}, Options{})

	if err == nil || err.Error() != "Invalid role" {
		t.Fatalf("Mutate() error = %v, want %q", err, "Invalid role")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnprocessableEntity {
		t.Errorf("error = %#v, want *APIError with status 422", err)
	}

	st := m.State()
	if st.Err == nil || st.Err.Error() != "Invalid role" {
		t.Errorf("state.Err = %v", st.Err)
	}
	if st.Loading {
		t.Error("state.Loading = true after failure")
	}
}

func TestMutator_ErrorFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"error field", http.StatusBadRequest, `{"error":"name is required"}`, "name is required"},
		{"not json", http.StatusInternalServerError, `<html>oops</html>`, "HTTP/500: Internal Server Error"},
		{"empty json", http.StatusForbidden, `{}`, "HTTP/403: Forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := pageServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := NewMutator[struct{}](c).Mutate(context.Background(), "/x", http.MethodPost, nil, Options{})
			if err == nil || err.Error() != tt.want {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestMutator_SendsJSONBody(t *testing.T) {
	c := pageServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer t" {
			t.Errorf("Authorization = %q", auth)
		}
		body, _ := io.ReadAll(r.Body)
		var in map[string]string
		if err := json.Unmarshal(body, &in); err != nil || in["role"] != "admin" {
			t.Errorf("body = %s", body)
		}
		w.Write([]byte(`{"user":{"id":1,"role":"admin"}}`))
	})

	m := NewMutator[roleResponse](c)
	got, err := m.Mutate(context.Background(), "/api/admin/users/1/role", http.MethodPut, map[string]string{"role": "admin"}, Options{})
	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}
	if got.User.Role != "admin" {
		t.Errorf("result = %+v", got)
	}
	st := m.State()
	if st.Data == nil || st.Data.User.ID != 1 || st.Err != nil {
		t.Errorf("state = %+v", st)
	}
}

func TestMutator_EmptyBody(t *testing.T) {
	c := pageServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	got, err := NewMutator[roleResponse](c).Mutate(context.Background(), "/api/admin/users/1", http.MethodDelete, nil, Options{})
	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}
	if got.User.ID != 0 {
		t.Errorf("want zero value, got %+v", got)
	}
}

func TestMutator_RejectsGet(t *testing.T) {
	m := NewMutator[struct{}](New("http://unused.invalid"))
	if _, err := m.Mutate(context.Background(), "/x", http.MethodGet, nil, Options{}); err == nil {
		t.Fatal("Mutate(GET) expected error")
	}
	if m.State().Err == nil {
		t.Error("rejected method should be recorded in state")
	}
}

func TestMutator_ClearsErrorOnNextCall(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	c := pageServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{}`))
	})

	m := NewMutator[struct{}](c)
	m.Mutate(context.Background(), "/x", http.MethodPost, nil, Options{})
	if m.State().Err == nil {
		t.Fatal("expected error")
	}
	fail.Store(false)
	if _, err := m.Mutate(context.Background(), "/x", http.MethodPost, nil, Options{}); err != nil {
		t.Fatal(err)
	}
	if m.State().Err != nil {
		t.Errorf("state.Err = %v after success", m.State().Err)
	}
}
