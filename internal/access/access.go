// Package access decides which rows a caller may see or change.
//
// Authors and books are readable by any authenticated caller and writable
// only by admins. Favorites are private to their owner unless the caller is
// an admin; a favorite outside the caller's scope is reported as missing,
// never as forbidden.
package access

import (
	"errors"
	"slices"
	"time"
)

// RoleAdmin is the only privileged role.
const RoleAdmin = "admin"

var (
	// ErrForbidden is returned when the caller lacks the role an operation needs.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthenticated is returned when there is no caller to scope.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Caller is the authenticated identity attached to a request.
type Caller struct {
	ID        string
	Email     string
	Roles     []string
	ExpiresAt time.Time
}

// IsAdmin reports whether the caller holds the admin role.
func (c *Caller) IsAdmin() bool {
	return c != nil && slices.Contains(c.Roles, RoleAdmin)
}

// Scope restricts favorite reads and writes. Build one with Resolve; the zero
// value allows nothing.
type Scope struct {
	Admin   bool
	OwnerID string
}

// Resolve computes the favorite scope for a caller.
func Resolve(c *Caller) (Scope, error) {
	if c == nil || c.ID == "" {
		return Scope{}, ErrUnauthenticated
	}
	if c.IsAdmin() {
		return Scope{Admin: true}, nil
	}
	return Scope{OwnerID: c.ID}, nil
}

// OwnerFilter is the owner id to pass to the store: empty for admins, which
// the store reads as "any owner".
func (s Scope) OwnerFilter() string {
	if s.Admin {
		return ""
	}
	return s.OwnerID
}

// Allows reports whether a favorite owned by ownerID is inside the scope.
func (s Scope) Allows(ownerID string) bool {
	return s.Admin || (s.OwnerID != "" && s.OwnerID == ownerID)
}

// AuthorizeMutation reports whether c may change a favorite owned by ownerID.
func AuthorizeMutation(c *Caller, ownerID string) bool {
	scope, err := Resolve(c)
	return err == nil && scope.Allows(ownerID)
}

// RequireAdmin returns ErrForbidden unless c is an admin. Author and book
// writes call it before touching the store.
func RequireAdmin(c *Caller) error {
	if !c.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
