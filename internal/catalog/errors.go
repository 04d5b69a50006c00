package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joestump/shelf/internal/access"
	"github.com/joestump/shelf/internal/store"
)

var (
	// ErrInvalidID is returned when a path id is not a well-formed identifier.
	ErrInvalidID = store.ErrInvalidID

	// ErrValidation is returned for missing required fields, mutually
	// exclusive query parameters and malformed favorite book lists.
	ErrValidation = errors.New("validation failed")

	// ErrUnresolved matches every *UnresolvedError.
	ErrUnresolved = errors.New("unresolved reference")

	// ErrNotFound is returned when a row does not exist or lies outside the
	// caller's scope.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write would duplicate a unique key.
	ErrConflict = errors.New("conflict")

	// ErrForbidden is returned when the caller lacks the admin role.
	ErrForbidden = access.ErrForbidden

	// ErrUnauthenticated is returned when an operation has no caller.
	ErrUnauthenticated = access.ErrUnauthenticated
)

// UnresolvedError names the referenced ids that did not resolve to a row.
type UnresolvedError struct {
	Kind string // "author" or "book"
	IDs  []string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved %s ids: %s", e.Kind, strings.Join(e.IDs, ", "))
}

func (e *UnresolvedError) Is(target error) bool {
	return target == ErrUnresolved
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// checkID wraps store.ValidateID so callers see which kind of id was bad.
func checkID(kind, id string) error {
	if err := store.ValidateID(id); err != nil {
		return fmt.Errorf("%s id %q: %w", kind, id, err)
	}
	return nil
}
