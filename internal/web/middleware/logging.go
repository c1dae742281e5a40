// Package middleware provides HTTP middleware for the dashboard server.
package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/admindash/internal/logging"
)

// Observer receives one observation per served request.
type Observer interface {
	ObserveHTTP(route, method string, status int, elapsed time.Duration)
}

// Logger logs every request with its status and timing and reports it to
// obs, which may be nil.
//
// Log fields:
//   - method, path and route (the chi pattern, e.g. /users/{id})
//   - status and duration_ms
//   - ip (RemoteAddr as rewritten by TrustedRealIP)
//   - htmx when the request came from an hx-* attribute
//
// Server errors are logged at warn level.
func Logger(obs Observer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			route := routePattern(r)
			if obs != nil {
				obs.ObserveHTTP(route, r.Method, ww.status, elapsed)
			}

			logger := logging.FromContext(r.Context())
			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", ww.status,
				"duration_ms", elapsed.Milliseconds(),
				"ip", r.RemoteAddr,
			}
			if r.Header.Get("HX-Request") == "true" {
				args = append(args, "htmx", true)
			}

			if ww.status >= http.StatusInternalServerError {
				logger.Warn("request", args...)
				return
			}
			logger.Info("request", args...)
		})
	}
}

// routePattern is the matched chi pattern, read after routing completed.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}
	return rctx.RoutePattern()
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
