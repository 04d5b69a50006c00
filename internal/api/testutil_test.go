package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/joestump/shelf/internal/api"
	"github.com/joestump/shelf/internal/auth"
	"github.com/joestump/shelf/internal/catalog"
	"github.com/joestump/shelf/internal/store"
	"github.com/joestump/shelf/internal/testutil"
)

// testEnv holds the router and stores for API integration tests.
type testEnv struct {
	Router    http.Handler
	Users     *store.UserStore
	Authors   *store.AuthorStore
	Books     *store.BookStore
	Favorites *store.FavoriteStore
	Issuer    *auth.TokenIssuer
}

// newTestEnv creates an in-memory SQLite test database, runs migrations,
// and wires up the full router with real stores.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	env := &testEnv{
		Users:     store.NewUserStore(db),
		Authors:   store.NewAuthorStore(db),
		Books:     store.NewBookStore(db),
		Favorites: store.NewFavoriteStore(db),
		Issuer:    auth.NewTokenIssuer("test-secret", time.Hour),
	}
	log := zap.NewNop()
	env.Router = api.NewRouter(api.Deps{
		Catalog:    catalog.NewService(env.Authors, env.Books, env.Favorites, log),
		BearerAuth: auth.NewBearerTokenMiddleware(env.Issuer, env.Users),
		Login:      auth.NewHandlers(env.Users, env.Issuer, auth.HandlersConfig{BcryptCost: 4, LoginBurst: 1}, log),
		Log:        log,
		Ping:       db.PingContext,
	})
	return env
}

// seedUser creates a user with the given roles and returns a bearer token for it.
func seedUser(t *testing.T, env *testEnv, email string, roles ...string) (*store.User, string) {
	t.Helper()
	u, err := env.Users.Create(context.Background(), email, "hash", roles)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	token, _, err := env.Issuer.Issue(u)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return u, token
}

// do sends a request through the router. body is JSON-encoded unless it is
// already a string.
func do(t *testing.T, env *testEnv, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a response body into v.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}
