package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/procspec/internal/config"
	"github.com/JonMunkholm/procspec/internal/logging"
	"github.com/JonMunkholm/procspec/internal/storage"
	"github.com/JonMunkholm/procspec/internal/web"
	"github.com/joho/godotenv"
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

	logging.Setup(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	backend, _, err := storage.Detect(cfg.Database.URL)
	if err != nil {
		slog.Error("invalid database url", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	startCtx, cancel := context.WithTimeout(ctx, cfg.Database.ProbeTimeout)
	store, err := storage.Open(startCtx, cfg.Database.URL, storage.Options{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "backend", backend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if cfg.Database.AutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			slog.Error("failed to create schema", "error", err)
			os.Exit(1)
		}
	}

	if n, err := store.Count(ctx); err == nil {
		slog.Info("connected to database", "backend", backend, "processors", n)
	}

	server := web.NewServer(store, cfg)

	// Run returns only after in-flight requests have drained, so the
	// deferred store.Close never cuts off an upload mid-transaction.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		slog.Error("server stopped", "error", err)
		stop()
		store.Close()
		os.Exit(1)
	}
	slog.Info("server stopped")
}
