package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/example/hostelhunt/internal/bot"
	"github.com/example/hostelhunt/internal/database"
	"github.com/example/hostelhunt/internal/excel"
	"github.com/example/hostelhunt/internal/hunt"
	"github.com/example/hostelhunt/internal/receipt"
	"github.com/example/hostelhunt/internal/scheduler"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

func main() {
	importPath := flag.String("import", "", "import tokens from an .xlsx, .csv or <colour>_tokens.txt file and exit")
	category := flag.String("category", "", "category for imported rows that have none")
	flag.Parse()

	// .env is optional, real environment variables take precedence
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	var dbCfg database.Config
	if err := env.Parse(&dbCfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse database config: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Connect(dbCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	store := database.NewStore(db)

	if *importPath != "" {
		logger := newLogger(slog.LevelInfo)
		if err := runImport(store, *importPath, *category, logger); err != nil {
			logger.Error("import failed", "error", err)
			db.Close()
			os.Exit(1)
		}
		return
	}

	cfg, err := bot.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		db.Close()
		os.Exit(1)
	}
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, db, store, logger); err != nil {
		logger.Error("bot stopped with error", "error", err)
		db.Close()
		os.Exit(1)
	}
	logger.Info("bot stopped successfully")
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
	}))
}

func run(cfg bot.Config, db *sqlx.DB, store *database.Store, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog := hunt.NewCatalog(store, cfg.TokenRefreshInterval)
	svc := hunt.NewService(store, catalog, receipt.NewHasher(), cfg.Hunt())

	b, err := bot.New(cfg, svc, logger)
	if err != nil {
		return err
	}

	sched := scheduler.New(catalog, store.Tokens, cfg.TokenRefreshInterval, logger)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	logger.Info("bot starting, press Ctrl+C to stop", "database", db.DriverName())
	err = b.Start(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runImport(store *database.Store, path, category string, logger *slog.Logger) error {
	config := excel.DefaultImportConfig()
	config.FilePath = path
	config.Category = category

	result, err := excel.ImportTokens(context.Background(), store.Tokens, config)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		logger.Warn("row skipped", "reason", msg)
	}
	logger.Info("import finished",
		"file", path,
		"processed", result.TotalProcessed,
		"created", result.Created,
		"updated", result.Updated,
		"errors", len(result.Errors),
	)
	return nil
}
