package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveUpstream(t *testing.T) {
	m := New()
	m.ObserveUpstream("GET", "/api/admin/users", "2xx", 10*time.Millisecond)
	m.ObserveUpstream("GET", "/api/admin/users", "2xx", 5*time.Millisecond)
	m.ObserveUpstream("PATCH", "/api/admin/users/{id}/role", "4xx", time.Millisecond)

	if got := testutil.ToFloat64(m.upstreamCalls.WithLabelValues("GET", "/api/admin/users", "2xx")); got != 2 {
		t.Errorf("GET users 2xx count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.upstreamCalls.WithLabelValues("PATCH", "/api/admin/users/{id}/role", "4xx")); got != 1 {
		t.Errorf("PATCH role 4xx count = %v, want 1", got)
	}
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{200: "2xx", 204: "2xx", 404: "4xx", 422: "4xx", 502: "5xx"}
	for code, want := range tests {
		if got := StatusClass(code); got != want {
			t.Errorf("StatusClass(%d) = %q, want %q", code, got, want)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveHTTP("/users", "GET", 200, time.Millisecond)
	m.ObserveUpstream("GET", "/api/admin/users", "2xx", time.Millisecond)
	m.CacheHit()
	m.CacheMiss()
	m.Superseded()
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveHTTP("/users", "GET", 200, time.Millisecond)
	m.CacheMiss()
	m.Superseded()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{
		"admindash_http_requests_total",
		"admindash_query_cache_lookups_total",
		"admindash_fetch_superseded_total",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
