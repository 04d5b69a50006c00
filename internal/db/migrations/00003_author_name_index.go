package migrations

// Case-insensitive author name lookups need an expression index on
// sqlite and postgres. MySQL's default collation already compares
// case-insensitively, and expression indexes there need 8.0.13+, so a plain
// index on name is enough.

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upAuthorNameIndex, downAuthorNameIndex)
}

func upAuthorNameIndex(ctx context.Context, tx *sql.Tx) error {
	stmt := `CREATE INDEX idx_authors_name_lower ON authors (LOWER(name))`
	if dialect == "mysql" {
		stmt = `CREATE INDEX idx_authors_name_lower ON authors (name)`
	}
	_, err := tx.ExecContext(ctx, stmt)
	return err
}

func downAuthorNameIndex(ctx context.Context, tx *sql.Tx) error {
	stmt := `DROP INDEX idx_authors_name_lower`
	if dialect == "mysql" {
		stmt = `DROP INDEX idx_authors_name_lower ON authors`
	}
	_, err := tx.ExecContext(ctx, stmt)
	return err
}
