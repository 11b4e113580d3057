// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command bootstrap seeds an empty category taxonomy from a CSV export.
//
// # Usage
//
//	bootstrap -file categories.csv [-language fra]
//
// The export needs a "category" column and usually a "sub_category" column.
// Only DATABASE_URL is required; the schema is migrated before seeding.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/taibuivan/etalage/internal/core/category"
	"github.com/taibuivan/etalage/internal/platform/constants"
	"github.com/taibuivan/etalage/internal/platform/migration"
	pgstore "github.com/taibuivan/etalage/internal/platform/postgres"
)

// bootstrapConfig is the subset of the server configuration the seeder reads.
type bootstrapConfig struct {
	DatabaseURL     string `env:"DATABASE_URL,required"`
	MigrationPath   string `env:"MIGRATION_PATH"`
	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"fra"`
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("app", constants.AppName+"-bootstrap"))

	file := flag.String("file", "", "CSV export with category,sub_category columns")
	language := flag.String("language", "", "ISO 639 language of the category names (defaults to DEFAULT_LANGUAGE)")
	flag.Parse()

	if err := run(log, *file, *language); err != nil {
		log.Error("bootstrap_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(log *slog.Logger, file, language string) error {
	if file == "" {
		return errors.New("missing -file")
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg := &bootstrapConfig{}
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("failed to parse environment variables: %w", err)
	}

	export, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open export: %w", err)
	}
	defer export.Close()

	rows, err := category.ReadTreeCSV(export)
	if err != nil {
		return err
	}

	context, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := migration.RunUp(cfg.DatabaseURL, migration.Source(cfg.MigrationPath), log); err != nil {
		return err
	}

	pool, err := pgstore.NewPool(context, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	service := category.NewService(category.NewPostgresRepository(pool), cfg.DefaultLanguage, log)

	roots, err := service.Bootstrap(context, rows, language)
	if err != nil {
		return err
	}

	children := 0
	for _, root := range roots {
		children += len(root.Children)
	}

	log.Info("categories_bootstrapped",
		slog.String("file", file),
		slog.Int("rows", len(rows)),
		slog.Int("roots", len(roots)),
		slog.Int("sub_categories", children),
	)
	return nil
}
