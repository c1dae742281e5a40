package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type testPage struct {
	CurrentPage int `json:"current_page"`
}

func pageServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithTokenSource(StaticToken("t")))
}

func TestFetcher_Success(t *testing.T) {
	c := pageServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer t" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"current_page":1}`))
	})

	f := NewFetcher[testPage](c)
	defer f.Close()

	st, err := f.Fetch(context.Background(), "/api/admin/users?page=1", Options{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if st.Err != nil {
		t.Fatalf("state.Err = %v", st.Err)
	}
	if st.Loading {
		t.Error("state.Loading = true after Fetch")
	}
	if st.Data == nil || st.Data.CurrentPage != 1 {
		t.Errorf("state.Data = %+v", st.Data)
	}
}

func TestFetcher_RapidPaginationCompletesOnce(t *testing.T) {
	var served atomic.Int32
	c := pageServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "3" {
			<-r.Context().Done()
			return
		}
		served.Add(1)
		w.Write([]byte(`{"current_page":3}`))
	})

	var settled atomic.Int32
	var settleErr atomic.Value
	f := NewFetcher[testPage](c, OnSettle(func(url string, err error) {
		settled.Add(1)
		if err != nil {
			settleErr.Store(err)
		}
	}))
	defer f.Close()

	ctx := context.Background()
	f.Load(ctx, "/api/admin/users?page=1", Options{})
	f.Load(ctx, "/api/admin/users?page=2", Options{})
	f.Load(ctx, "/api/admin/users?page=3", Options{})

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := f.Wait(waitCtx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	st := f.State()
	if st.Err != nil {
		t.Errorf("state.Err = %v, want nil", st.Err)
	}
	if st.Data == nil || st.Data.CurrentPage != 3 {
		t.Fatalf("state.Data = %+v, want page 3", st.Data)
	}
	if got := settled.Load(); got != 1 {
		t.Errorf("settled %d times, want 1", got)
	}
	if v := settleErr.Load(); v != nil {
		t.Errorf("settle error = %v", v)
	}
	if got := served.Load(); got != 1 {
		t.Errorf("served %d responses, want 1", got)
	}
}

func TestFetcher_SameKeyIsNoop(t *testing.T) {
	var hits atomic.Int32
	c := pageServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"current_page":1}`))
	})

	f := NewFetcher[testPage](c)
	defer f.Close()

	ctx := context.Background()
	opts := Options{Headers: map[string]string{"X-A": "1"}}
	f.Fetch(ctx, "/u?page=1", opts)
	f.Fetch(ctx, "/u?page=1", Options{Headers: map[string]string{"X-A": "1"}})

	if got := hits.Load(); got != 1 {
		t.Errorf("hits = %d, want 1", got)
	}

	f.Fetch(ctx, "/u?page=1", Options{Headers: map[string]string{"X-A": "2"}})
	if got := hits.Load(); got != 2 {
		t.Errorf("changed options should refetch, hits = %d", got)
	}
}

func TestFetcher_HTTPError(t *testing.T) {
	c := pageServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	f := NewFetcher[testPage](c)
	defer f.Close()

	st, _ := f.Fetch(context.Background(), "/api/admin/users", Options{})

	var reqErr *RequestError
	if !errors.As(st.Err, &reqErr) {
		t.Fatalf("state.Err = %v, want *RequestError", st.Err)
	}
	if st.Err.Error() != "HTTP error: Internal Server Error" {
		t.Errorf("Err = %q", st.Err.Error())
	}
}

func TestFetcher_ParseError(t *testing.T) {
	c := pageServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	})

	f := NewFetcher[testPage](c)
	defer f.Close()

	st, _ := f.Fetch(context.Background(), "/api/admin/users", Options{})

	var parseErr *ParseError
	if !errors.As(st.Err, &parseErr) {
		t.Fatalf("state.Err = %v, want *ParseError", st.Err)
	}
}

func TestFetcher_KeepsDataOnLaterError(t *testing.T) {
	var fail atomic.Bool
	c := pageServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"current_page":1}`))
	})

	f := NewFetcher[testPage](c)
	defer f.Close()

	ctx := context.Background()
	f.Fetch(ctx, "/u", Options{})
	fail.Store(true)
	if err := f.Refetch(ctx); err != nil {
		t.Fatal(err)
	}

	st := f.State()
	if st.Err == nil {
		t.Error("expected error after failing refetch")
	}
	if st.Data == nil || st.Data.CurrentPage != 1 {
		t.Errorf("previous data should be kept, got %+v", st.Data)
	}
	if st.DataURL != "/u" || st.DataFor("/u") == nil {
		t.Errorf("DataURL = %q, want /u", st.DataURL)
	}
}

func TestFetcher_DataForOtherURLAfterError(t *testing.T) {
	c := pageServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"current_page":1}`))
	})

	f := NewFetcher[testPage](c)
	defer f.Close()

	ctx := context.Background()
	f.Fetch(ctx, "/u?page=1", Options{})
	st, err := f.Fetch(ctx, "/u?page=2", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if st.Err == nil {
		t.Fatal("expected error for page 2")
	}
	if st.URL != "/u?page=2" || st.DataURL != "/u?page=1" {
		t.Errorf("URL = %q, DataURL = %q", st.URL, st.DataURL)
	}
	if st.DataFor("/u?page=2") != nil {
		t.Error("page 1 data must not be served for page 2")
	}
}

func TestFetcher_RefetchSetsLoading(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	c := pageServer(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) > 1 {
			<-release
		}
		w.Write([]byte(`{"current_page":1}`))
	})

	f := NewFetcher[testPage](c)
	defer f.Close()

	ctx := context.Background()
	f.Fetch(ctx, "/u", Options{})

	errc := make(chan error, 1)
	go func() { errc <- f.Refetch(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for hits.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !f.State().Loading {
		t.Error("Loading = false during refetch")
	}
	close(release)

	if err := <-errc; err != nil {
		t.Fatalf("Refetch() error = %v", err)
	}
	if f.State().Loading {
		t.Error("Loading = true after refetch")
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("hits = %d, want 2", got)
	}
}

func TestFetcher_CloseSuppressesError(t *testing.T) {
	started := make(chan struct{})
	c := pageServer(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	})

	f := NewFetcher[testPage](c)
	f.Load(context.Background(), "/u", Options{})
	<-started
	f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	st := f.State()
	if st.Err != nil {
		t.Errorf("closed fetcher recorded error %v", st.Err)
	}
	if st.Loading {
		t.Error("Loading = true after Close")
	}
}

func TestFetcher_ParentCancelAllowsRetry(t *testing.T) {
	var hits atomic.Int32
	c := pageServer(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			<-r.Context().Done()
			return
		}
		json.NewEncoder(w).Encode(testPage{CurrentPage: 2})
	})

	f := NewFetcher[testPage](c)
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := f.Fetch(ctx, "/u?page=2", Options{}); err == nil {
		t.Fatal("Fetch() expected deadline error")
	}
	st, err := f.Fetch(context.Background(), "/u?page=2", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if st.Err != nil || st.Data == nil || st.Data.CurrentPage != 2 {
		t.Errorf("retry state = %+v", st)
	}
}
