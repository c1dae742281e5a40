// Package config provides centralized configuration management for the dashboard.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	API      APIConfig
	Auth     AuthConfig
	Store    StoreConfig
	Table    TableConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 15s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// APIConfig describes the upstream admin API the dashboard drives.
type APIConfig struct {
	// BaseURL is the admin API origin, e.g. https://api.example.com (required)
	BaseURL string `env:"ADMIN_API_URL" envAlt:"API_BASE_URL" required:"true"`

	// Token is the bearer token attached to every upstream request
	Token string `env:"API_TOKEN" envAlt:"ADMIN_BEARER_TOKEN"`

	// Timeout bounds a single upstream request (default: 15s)
	Timeout time.Duration `env:"API_TIMEOUT" default:"15s"`

	// PrefetchNext warms the cache with the next page of list views (default: true)
	PrefetchNext bool `env:"API_PREFETCH_NEXT" default:"true"`

	// CacheTTL is how long a cached GET response is served (default: 30s)
	CacheTTL time.Duration `env:"API_CACHE_TTL" default:"30s"`

	// MaxConcurrentMutations bounds the writes in flight to the API (default: 8)
	MaxConcurrentMutations int `env:"API_MAX_CONCURRENT_MUTATIONS" default:"8"`

	// MutationWait is how long a write waits for a free slot (default: 10s)
	MutationWait time.Duration `env:"API_MUTATION_WAIT" default:"10s"`
}

// AuthConfig holds the operator account and session cookie settings.
type AuthConfig struct {
	// AdminEmail is the login email of the operator account (required)
	AdminEmail string `env:"ADMIN_EMAIL" required:"true"`

	// AdminPasswordHash is the bcrypt hash of the operator password (required)
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH" required:"true"`

	// SessionTTL is how long a dashboard session lives (default: 12h)
	SessionTTL time.Duration `env:"SESSION_TTL" default:"12h"`

	// CookieName is the session cookie name (default: admindash_session)
	CookieName string `env:"SESSION_COOKIE_NAME" default:"admindash_session"`

	// CookieSecure marks the session cookie Secure (default: false)
	CookieSecure bool `env:"SESSION_COOKIE_SECURE" default:"false"`
}

// StoreConfig selects and configures the key/value backend used for
// sessions, table state, flash messages and the query cache.
type StoreConfig struct {
	// Backend is one of: memory, redis, bolt, postgres (default: memory)
	Backend string `env:"STORE_BACKEND" default:"memory"`

	// RedisAddr is host:port of the redis server (default: localhost:6379)
	RedisAddr string `env:"REDIS_ADDR" default:"localhost:6379"`

	// RedisPassword is the optional redis password
	RedisPassword string `env:"REDIS_PASSWORD"`

	// RedisDB is the redis database number (default: 0)
	RedisDB int `env:"REDIS_DB" default:"0"`

	// BoltPath is the bbolt database file (default: data/dashboard.db)
	BoltPath string `env:"BOLT_PATH" default:"data/dashboard.db"`

	// DatabaseURL is the PostgreSQL connection string for the postgres backend
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of postgres connections (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// SweepInterval is how often the memory backend drops expired keys (default: 1m)
	SweepInterval time.Duration `env:"STORE_SWEEP_INTERVAL" default:"1m"`
}

// TableConfig holds data table defaults.
type TableConfig struct {
	// DefaultPageSize is the initial rows per page (default: 5)
	DefaultPageSize int `env:"TABLE_DEFAULT_PAGE_SIZE" default:"5"`

	// FetcherIdleTimeout drops per-session fetchers unused for this long (default: 30m)
	FetcherIdleTimeout time.Duration `env:"TABLE_FETCHER_IDLE_TIMEOUT" default:"30m"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// LoginLimit is login attempts per minute per IP (default: 10)
	LoginLimit int `env:"RATE_LIMIT_LOGIN" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// MetricsKeys are accepted in X-API-Key on /metrics; empty leaves it open
	MetricsKeys []string `env:"METRICS_API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
