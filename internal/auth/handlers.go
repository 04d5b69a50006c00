package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/joestump/shelf/internal/metrics"
	"github.com/joestump/shelf/internal/store"
)

// Accounts is the user storage the login handlers need.
type Accounts interface {
	UserLookup
	Create(ctx context.Context, email, passwordHash string, roles []string) (*store.User, error)
	GetByEmail(ctx context.Context, email string) (*store.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// Handlers serves signup, login and password change.
type Handlers struct {
	users      Accounts
	issuer     *TokenIssuer
	signups    *clientLimiter
	logins     *clientLimiter
	bcryptCost int
	log        *zap.Logger
}

// HandlersConfig tunes the login handlers.
type HandlersConfig struct {
	// LoginsPerMinute and LoginBurst bound the login attempts of each
	// client. Signups are bounded separately with the same values.
	LoginsPerMinute int
	LoginBurst      int
	BcryptCost      int
}

// NewHandlers creates a new Handlers with the given dependencies. A
// non-positive LoginsPerMinute disables throttling.
func NewHandlers(users Accounts, issuer *TokenIssuer, cfg HandlersConfig, log *zap.Logger) *Handlers {
	limit := rate.Inf
	if cfg.LoginsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.LoginsPerMinute))
	}
	return &Handlers{
		users:      users,
		issuer:     issuer,
		signups:    newClientLimiter(limit, cfg.LoginBurst),
		logins:     newClientLimiter(limit, cfg.LoginBurst),
		bcryptCost: cfg.BcryptCost,
		log:        log,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type signupResponse struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// Signup registers a user with the "user" role.
// POST /login/signup
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	if !h.signups.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, "too many attempts", "RATE_LIMITED")
		return
	}
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	hash, err := HashPassword(creds.Password, h.bcryptCost)
	if err != nil {
		h.internalError(w, "hash password", err)
		return
	}
	u, err := h.users.Create(r.Context(), creds.Email, hash, []string{store.RoleUser})
	if errors.Is(err, store.ErrDuplicate) {
		writeError(w, http.StatusConflict, "email already signed up", "CONFLICT")
		return
	}
	if err != nil {
		h.internalError(w, "create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, signupResponse{ID: u.ID, Email: u.Email, Roles: u.Roles})
}

// Login exchanges an email and password for a bearer token.
// POST /login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if !h.logins.Allow(clientKey(r)) {
		metrics.LoginAttemptsTotal.WithLabelValues("rate_limited").Inc()
		writeError(w, http.StatusTooManyRequests, "too many attempts", "RATE_LIMITED")
		return
	}
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	u, err := h.users.GetByEmail(r.Context(), creds.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.internalError(w, "get user", err)
		return
	}
	if u == nil || !CheckPassword(u.PasswordHash, creds.Password) {
		metrics.LoginAttemptsTotal.WithLabelValues("failed").Inc()
		writeError(w, http.StatusUnauthorized, "invalid email or password", "UNAUTHORIZED")
		return
	}

	token, exp, err := h.issuer.Issue(u)
	if err != nil {
		h.internalError(w, "issue token", err)
		return
	}
	metrics.LoginAttemptsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: exp})
}

// ChangePassword replaces the caller's password. Must run behind
// BearerTokenMiddleware.
// POST /login/password
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller := CallerFromContext(r.Context())
	if caller == nil {
		writeUnauthorized(w)
		return
	}
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "BAD_REQUEST")
		return
	}
	if err := ValidatePassword(body.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return
	}

	hash, err := HashPassword(body.Password, h.bcryptCost)
	if err != nil {
		h.internalError(w, "hash password", err)
		return
	}
	err = h.users.UpdatePassword(r.Context(), caller.ID, hash)
	if errors.Is(err, store.ErrNotFound) {
		writeUnauthorized(w)
		return
	}
	if err != nil {
		h.internalError(w, "update password", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "BAD_REQUEST")
		return c, false
	}
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if c.Email == "" || c.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required", "BAD_REQUEST")
		return c, false
	}
	if err := ValidatePassword(c.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return c, false
	}
	return c, true
}

func (h *Handlers) internalError(w http.ResponseWriter, op string, err error) {
	h.log.Error("login handler failed", zap.String("op", op), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
}
