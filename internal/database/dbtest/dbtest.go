// Package dbtest provides an in-memory SQLite database carrying the
// application schema, for repository and service tests.
package dbtest

import (
	"io/fs"
	"sort"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/mindspace/mindspace-backend/internal/database"
)

// Open returns a fresh migrated database that is closed when the test ends.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	// Every pooled connection would otherwise see its own empty :memory: database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	files, err := fs.Glob(database.MigrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	sort.Strings(files)

	for _, name := range files {
		body, err := fs.ReadFile(database.MigrationsFS, name)
		require.NoError(t, err)
		if strings.TrimSpace(string(body)) == "" {
			continue
		}
		_, err = db.Exec(string(body))
		require.NoError(t, err, "applying %s", name)
	}

	return db
}
