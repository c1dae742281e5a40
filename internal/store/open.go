package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/admindash/internal/config"
)

// Open builds the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		slog.Info("using memory store", "sweep_interval", cfg.SweepInterval)
		return NewMemory(cfg.SweepInterval), nil
	case "redis":
		slog.Info("using redis store", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case "bolt":
		slog.Info("using bolt store", "path", cfg.BoltPath)
		return NewBolt(cfg.BoltPath)
	case "postgres":
		slog.Info("using postgres store", "max_conns", cfg.MaxConns)
		return NewPostgres(ctx, cfg.DatabaseURL, cfg.MaxConns)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
