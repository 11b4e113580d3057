// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package migration brings the catalog schema up to date with golang-migrate
before the API or the bootstrap command touch the database.

The SQL files are embedded in the binary (see data/migrations). Setting
MIGRATION_PATH replaces them with a directory on disk, which is how schema
changes are tried out locally without rebuilding.
*/
package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Registers the "pgx5" database scheme.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/taibuivan/etalage/data/migrations"
)

// Source picks the migration files: the directory at override when set,
// the embedded catalog schema otherwise.
func Source(override string) fs.FS {
	if strings.TrimSpace(override) == "" {
		return migrations.FS
	}
	return os.DirFS(override)
}

/*
RunUp applies every pending UP migration found in files.

A database left dirty by a failed run is reported and never touched again
automatically: the catalog tables carry stock and sales, so forcing a version
is an operator decision.

Parameters:
  - dsn: string (postgres:// URL, rewritten for the pgx/v5 driver)
  - files: fs.FS (root holding the numbered .sql files)
  - logger: *slog.Logger

Returns:
  - error: Source, connection, dirty state or statement failures
*/
func RunUp(dsn string, files fs.FS, logger *slog.Logger) error {
	source, err := iofs.New(files, ".")
	if err != nil {
		return fmt.Errorf("migration: failed to open source: %w", err)
	}

	migrator, err := migrate.NewWithSourceInstance("iofs", source, Pgx5URL(dsn))
	if err != nil {
		return fmt.Errorf("migration: failed to connect: %w", err)
	}
	defer closeMigrator(migrator, logger)

	migrator.Log = slogAdapter{logger: logger}

	from, dirty, err := migrator.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		from = 0
	case err != nil:
		return fmt.Errorf("migration: failed to read version: %w", err)
	case dirty:
		return fmt.Errorf("migration: schema is dirty at version %d", from)
	}

	err = migrator.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("catalog_schema_current", slog.Uint64("version", uint64(from)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration: up from version %d failed: %w", from, err)
	}

	to, _, _ := migrator.Version()
	logger.Info("catalog_schema_migrated",
		slog.Uint64("from_version", uint64(from)),
		slog.Uint64("to_version", uint64(to)),
	)

	return nil
}

// Pgx5URL rewrites a postgres:// or postgresql:// DSN to the pgx5:// scheme
// expected by the golang-migrate pgx/v5 driver. Other inputs are returned as is.
func Pgx5URL(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

func closeMigrator(migrator *migrate.Migrate, logger *slog.Logger) {
	sourceErr, databaseErr := migrator.Close()
	if err := errors.Join(sourceErr, databaseErr); err != nil {
		logger.Warn("migration_close_failed", slog.Any("error", err))
	}
}

// slogAdapter satisfies migrate.Logger. Statement chatter goes to debug.
type slogAdapter struct {
	logger *slog.Logger
}

func (adapter slogAdapter) Printf(format string, args ...any) {
	adapter.logger.Debug("migration_progress", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (adapter slogAdapter) Verbose() bool {
	return false
}
