// Package main runs the mise-api worker: it migrates the database, wires the
// recipe services to the background job scheduler and serves a small ops
// router until it receives SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/mise-api/internal/config"
	"github.com/phrazzld/mise-api/internal/platform/logger"
	"github.com/phrazzld/mise-api/internal/platform/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("mise-api: %v", err)
	}
}

// run loads configuration, opens every external dependency and blocks until
// the process is asked to stop.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"redis_lock", cfg.Redis.Enabled())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg.Database, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database", "error", err)
		}
	}()

	if err := postgres.Migrate(ctx, db, appLogger); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	ext, err := newExternals(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := ext.close(); err != nil {
			appLogger.Error("failed to close redis client", "error", err)
		}
	}()

	app, err := newApplication(cfg, appLogger, db, ext)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	return app.Run(ctx)
}
