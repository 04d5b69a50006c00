package store

import (
	"errors"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a requested row does not exist, or exists
	// outside the owner filter the caller supplied.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert or update violates a unique key
	// (books.isbn, users.email).
	ErrDuplicate = errors.New("duplicate key")
)

// newID returns a time-ordered UUIDv7 so that id order follows creation order.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// isUniqueConstraintError checks whether err indicates a unique constraint violation.
// Works across SQLite, PostgreSQL, and MySQL.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // SQLite & PostgreSQL
		strings.Contains(msg, "duplicate key") || // PostgreSQL
		strings.Contains(msg, "duplicate entry") // MySQL
}

// containsPattern builds a lowercase "%term%" pattern for
// `LOWER(col) LIKE ? ESCAPE '!'`. LIKE wildcards are escaped with '!' so the
// same ESCAPE clause works on every supported database (MySQL treats a bare
// backslash specially).
//
// SQLite's LOWER folds only ASCII, so every non-ASCII rune becomes a
// single-character wildcard. The pattern then matches a superset of the
// rows, and callers recheck with containsFold.
func containsPattern(term string) string {
	var b strings.Builder
	b.WriteByte('%')
	for _, r := range strings.ToLower(term) {
		switch {
		case r > unicode.MaxASCII:
			b.WriteByte('_')
		case r == '!' || r == '%' || r == '_':
			b.WriteByte('!')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('%')
	return b.String()
}

// containsFold reports whether s contains term, ignoring Unicode case.
func containsFold(s, term string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(term))
}

// likeExpr is the column expression shared by every substring match.
func likeExpr(col string) string {
	return "LOWER(" + col + ") LIKE ? ESCAPE '!'"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
