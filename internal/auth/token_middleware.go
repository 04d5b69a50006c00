package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/joestump/shelf/internal/store"
)

// UserLookup finds the user a token was issued to.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*store.User, error)
}

// BearerTokenMiddleware authenticates requests via a JWT bearer token.
type BearerTokenMiddleware struct {
	issuer *TokenIssuer
	users  UserLookup
}

// NewBearerTokenMiddleware creates a new BearerTokenMiddleware.
func NewBearerTokenMiddleware(issuer *TokenIssuer, users UserLookup) *BearerTokenMiddleware {
	return &BearerTokenMiddleware{issuer: issuer, users: users}
}

// Authenticate is an http.Handler middleware that extracts and validates a Bearer token.
// WHEN valid and the user still exists: injects the *access.Caller into context.
// Roles come from the token; id and email from the stored user.
// WHEN missing/invalid/expired or the user is gone: returns 401.
func (m *BearerTokenMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			writeUnauthorized(w)
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if raw == "" {
			writeUnauthorized(w)
			return
		}

		caller, err := m.issuer.Verify(raw)
		if err != nil {
			writeUnauthorized(w)
			return
		}

		user, err := m.users.GetByID(r.Context(), caller.ID)
		if err != nil {
			writeUnauthorized(w)
			return
		}
		caller.ID = user.ID
		caller.Email = user.Email

		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

// writeUnauthorized writes a 401 JSON response.
func writeUnauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: message, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
