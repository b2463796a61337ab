// Package main runs the viva API server: the oral-exam HTTP API, the
// background debrief runner and the optional language model proxy.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/viva-api/internal/config"
	"github.com/phrazzld/viva-api/internal/platform/logger"
	"github.com/phrazzld/viva-api/internal/platform/postgres"
)

func main() {
	migrate := flag.String("migrate", "",
		"run a migration command ("+strings.Join(postgres.MigrationCommands, ", ")+") and exit")
	configDir := flag.String("config-dir", ".", "directory searched for config.yaml")
	flag.Parse()

	if err := run(*configDir, *migrate); err != nil {
		log.Fatalf("viva-api: %v", err)
	}
}

func run(configDir, migrate string) error {
	cfg, err := config.LoadFrom(configDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("llm_provider", cfg.LLM.Provider))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			l.Error("error closing database connection", "error", err)
		}
	}()

	if migrate != "" {
		return postgres.Migrate(ctx, db, migrate, l)
	}

	app, err := newApplication(ctx, cfg, l, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

func openDatabase(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
