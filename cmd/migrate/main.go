package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/straye-as/sales-assistant-api/internal/config"
	"github.com/straye-as/sales-assistant-api/internal/logger"
	"github.com/straye-as/sales-assistant-api/migrations"
	"go.uber.org/zap"
)

const usage = "usage: migrate [up|up-by-one|down|redo|reset|status|version|create <name>]"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Migration error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := os.Args[1:]
	if len(args) == 0 {
		return fmt.Errorf(usage)
	}
	command, arguments := args[0], args[1:]

	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// create writes new files next to the sources and needs no database
	if command == "create" {
		if len(arguments) == 0 {
			return fmt.Errorf("create requires a migration name")
		}
		if err := goose.Create(nil, "./migrations", arguments[0], "sql"); err != nil {
			return fmt.Errorf("failed to create migration: %w", err)
		}
		log.Info("Migration created", zap.String("name", arguments[0]))
		return nil
	}

	ctx := context.Background()
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	log = log.With(zap.String("command", command), zap.String("database", cfg.Database.Name))

	switch command {
	case "up":
		err = goose.UpContext(ctx, db, ".")
	case "up-by-one":
		err = goose.UpByOneContext(ctx, db, ".")
	case "down":
		err = goose.DownContext(ctx, db, ".")
	case "redo":
		err = goose.RedoContext(ctx, db, ".")
	case "reset":
		err = goose.ResetContext(ctx, db, ".")
	case "status":
		err = goose.StatusContext(ctx, db, ".")
	case "version":
		err = goose.VersionContext(ctx, db, ".")
	default:
		return fmt.Errorf("unknown command %q, %s", command, usage)
	}
	if err != nil {
		return fmt.Errorf("migrate %s failed: %w", command, err)
	}

	log.Info("Migration command completed")
	return nil
}
