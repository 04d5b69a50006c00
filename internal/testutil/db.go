package testutil

import (
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/joestump/shelf/internal/db"
	_ "modernc.org/sqlite"
)

// NewTestDB opens an in-memory SQLite DB and runs all goose migrations.
func NewTestDB(t testing.TB) *sqlx.DB {
	t.Helper()

	// A named shared-cache memory database lets every pool connection see the
	// same data. Subtest names contain slashes, which sqlite would read as a
	// path, so they are flattened.
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := "file:" + name + "?mode=memory&cache=shared&_pragma=busy_timeout(5000)"
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if err := db.Up(conn, "sqlite3"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return conn
}
