// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/etalage/internal/platform/migration"
)

/*
TestPgx5URL checks the scheme rewrite required by the pgx/v5 migrate driver.
*/
func TestPgx5URL(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{"postgres_scheme", "postgres://u:p@db:5432/shop", "pgx5://u:p@db:5432/shop"},
		{"postgresql_scheme", "postgresql://u:p@db/shop?sslmode=disable", "pgx5://u:p@db/shop?sslmode=disable"},
		{"already_pgx5", "pgx5://db/shop", "pgx5://db/shop"},
		{"keyword_dsn_untouched", "host=db dbname=shop", "host=db dbname=shop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, migration.Pgx5URL(tt.dsn))
		})
	}
}

/*
TestSource falls back to the embedded schema and honours a directory override.
*/
func TestSource(t *testing.T) {
	t.Run("embedded", func(t *testing.T) {
		names, err := fs.Glob(migration.Source(""), "*.up.sql")
		require.NoError(t, err)
		assert.Contains(t, names, "000001_catalog.up.sql")
	})

	t.Run("override", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "000002_trial.up.sql"), []byte("SELECT 1;"), 0o600))

		names, err := fs.Glob(migration.Source(dir), "*.up.sql")
		require.NoError(t, err)
		assert.Equal(t, []string{"000002_trial.up.sql"}, names)
	})
}
