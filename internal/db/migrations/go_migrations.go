// Package migrations holds the schema for the catalog. Plain SQL files cover
// statements every supported database accepts; Go migrations cover the rest.
package migrations

// dialect is set by the parent db package before migrations are applied.
var dialect string

// SetDialect configures the SQL dialect for Go migrations.
// Must be called before goose.Up. Valid values: "sqlite3", "postgres", "mysql".
func SetDialect(d string) {
	dialect = d
}
