package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidID is returned when an identifier does not have the store's
// identifier format. Such an id can never resolve to a row.
var ErrInvalidID = errors.New("invalid id")

// ValidateID checks that id is a canonical UUID string.
func ValidateID(id string) error {
	if len(id) != 36 {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
