package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/admindash/internal/apiclient"
	"github.com/JonMunkholm/admindash/internal/auth"
	"github.com/JonMunkholm/admindash/internal/config"
	"github.com/JonMunkholm/admindash/internal/core"
	"github.com/JonMunkholm/admindash/internal/logging"
	"github.com/JonMunkholm/admindash/internal/metrics"
	"github.com/JonMunkholm/admindash/internal/store"
	"github.com/JonMunkholm/admindash/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"api", cfg.API.BaseURL,
		"store", cfg.Store.Backend,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	if info := auth.InspectToken(cfg.API.Token); info.Expired(time.Now()) {
		slog.Warn("API token has expired; upstream calls will be rejected", "expired_at", info.ExpiresAt)
	}

	// Key/value store for sessions, table state, flashes and the query cache
	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	m := metrics.New()

	client := apiclient.New(cfg.API.BaseURL,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithMetrics(m),
		apiclient.WithTokenSource(apiclient.StaticToken(cfg.API.Token)),
	)
	cache := apiclient.NewQueryCache(st, cfg.API.CacheTTL, m)
	limiter := core.NewMutationLimiter(cfg.API.MaxConcurrentMutations, cfg.API.MutationWait)
	service := core.NewService(client, cache, core.NewActivity(st, 0)).WithLimiter(limiter)
	sessions := auth.NewManager(st, cfg.Auth, cfg.API.Token)

	server := web.NewServer(web.Deps{
		Config:   cfg,
		Service:  service,
		Sessions: sessions,
		Store:    st,
		Metrics:  m,
	})

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let writes already sent to the API settle before closing listeners
		if active := limiter.Active(); active > 0 {
			slog.Info("waiting for mutations to finish", "active", active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("mutations still in flight at shutdown", "active", limiter.Active(), "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	// Start server (uses addr from config internally)
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
