// Package web provides the HTTP server and handlers of the admin dashboard.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/admindash/internal/auth"
	"github.com/JonMunkholm/admindash/internal/config"
	"github.com/JonMunkholm/admindash/internal/core"
	"github.com/JonMunkholm/admindash/internal/metrics"
	"github.com/JonMunkholm/admindash/internal/store"
	"github.com/JonMunkholm/admindash/internal/web/middleware"
	"github.com/JonMunkholm/admindash/internal/web/templates"
)

//go:embed static
var staticFiles embed.FS

// Deps are the collaborators of a Server.
type Deps struct {
	Config   *config.Config
	Service  *core.Service
	Sessions *auth.Manager
	Store    store.Store
	Metrics  *metrics.Metrics // optional
}

// Server is the HTTP server of the dashboard.
type Server struct {
	cfg      *config.Config
	service  *core.Service
	sessions *auth.Manager
	store    store.Store
	metrics  *metrics.Metrics
	validate *core.Validator
	fetchers *fetcherRegistry
	tables   map[string]tableView
	loc      *time.Location

	limiters []*rateLimiter
	router   *chi.Mux
	server   *http.Server
	started  time.Time
}

// NewServer creates a Server and registers its session teardown with the
// session manager.
func NewServer(d Deps) *Server {
	s := &Server{
		cfg:      d.Config,
		service:  d.Service,
		sessions: d.Sessions,
		store:    d.Store,
		metrics:  d.Metrics,
		validate: core.NewValidator(),
		fetchers: newFetcherRegistry(d.Config.Table.FetcherIdleTimeout),
		loc:      time.Local,
		router:   chi.NewRouter(),
		started:  time.Now(),
	}
	s.tables = s.tableViews()
	s.sessions.OnTeardown(s.teardownSession)

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger(s.metrics))
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))

	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		limiter := s.newLimiter(s.cfg.Rate.RequestsPerMinute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.With(middleware.APIKeyAuth(s.cfg.Security.MetricsKeys)).Handle("/metrics", s.metrics.Handler())
	}

	// Session lifecycle
	s.router.Get("/login", s.handleLoginPage)
	login := s.router.With()
	if s.cfg.Rate.Enabled {
		login = s.router.With(s.newLimiter(s.cfg.Rate.LoginLimit).middleware)
	}
	login.Post("/login", s.handleLogin)
	s.router.Post("/logout", s.handleLogout)

	// Pages
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})
	s.router.Get("/dashboard", s.withSession(s.handleDashboard))

	s.router.Route("/users", func(r chi.Router) {
		r.Get("/", s.withSession(s.handleUsers))
		r.Get("/{id}", s.withSession(s.handleUser))
		r.Post("/{id}", s.withSession(s.handleUpdateUser))
		r.Post("/{id}/delete", s.withSession(s.handleDeleteUser))
	})

	s.router.Route("/subjects", func(r chi.Router) {
		r.Get("/", s.withSession(s.handleSubjects))
		r.Post("/", s.withSession(s.handleCreateSubject))
		r.Get("/{id}", s.withSession(s.handleSubject))
		r.Post("/{id}", s.withSession(s.handleUpdateSubject))
		r.Post("/{id}/delete", s.withSession(s.handleDeleteSubject))
	})

	s.router.Route("/tasks", func(r chi.Router) {
		r.Get("/", s.withSession(s.handleTasks))
		r.Post("/", s.withSession(s.handleCreateTask))
		r.Get("/new", s.withSession(s.handleNewTask))
		r.Get("/{id}", s.withSession(s.handleTask))
		r.Post("/{id}", s.withSession(s.handleUpdateTask))
		r.Post("/{id}/delete", s.withSession(s.handleDeleteTask))
	})

	s.router.Get("/settings", s.withSession(s.handleSettings))
	s.router.Post("/settings", s.withSession(s.handleUpdateSettings))

	// Rule editors of the data tables
	s.router.Post("/tables/{view}/{kind}/{action}", s.withSession(s.handleTableRules))
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, l := range s.limiters {
		l.stop()
	}
	s.fetchers.Close()

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// handleHealth reports liveness and the mutation slots in use.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	}
	if l := s.service.Limiter(); l != nil {
		body["mutations"] = l.Status()
	}
	writeJSON(w, body)
}

// securityHeaders adds security headers to all responses. htmx is loaded
// from unpkg; avatars may be served from any https origin.
func securityHeaders(csp bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if csp {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self'")
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) newLimiter(perMinute int) *rateLimiter {
	l := newRateLimiter(perMinute, time.Minute)
	s.limiters = append(s.limiters, l)
	return l
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
	done     chan struct{}
	once     sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every window until stopped.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
		}
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1,
			lastReset: time.Now(),
		}
		return true
	}

	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware rate limits by client IP. RemoteAddr has already been
// rewritten by TrustedRealIP for proxied requests.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}

		if !rl.allow(ip) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))
			if isHTMX(r) {
				triggerToast(w, newToast(templates.ToastError, "Too many requests", "Please wait a moment and try again."))
			}
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	slog.Warn("http error", "status", status, "message", message)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, message)
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
