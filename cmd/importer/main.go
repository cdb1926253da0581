package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kupimoda/catalog-importer/internal/app"
	"github.com/kupimoda/catalog-importer/internal/config"
	"github.com/kupimoda/catalog-importer/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// Load .env when present; in production everything comes from the
	// real environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Source files on the command line override IMPORT_SOURCES.
	if args := os.Args[1:]; len(args) > 0 {
		cfg.SourceFiles = args
	}
	if len(cfg.SourceFiles) == 0 {
		return errors.New("no source files: pass them as arguments or set IMPORT_SOURCES")
	}

	log := logger.New("catalog-importer", cfg.LogLevel)
	log.Info("starting catalog import",
		slog.String("environment", cfg.Environment),
		slog.Any("sources", cfg.SourceFiles),
		slog.String("image_policy", cfg.ImagePolicy),
	)

	// Cancel the batch on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}

	summary, err := application.Run(ctx)
	if err != nil {
		return fmt.Errorf("run import: %w", err)
	}

	log.Info("catalog import complete",
		slog.Int("total", summary.Total),
		slog.Int("imported", summary.Imported),
		slog.Int("failed", summary.Failed),
	)
	return nil
}
