package catalog

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/joestump/shelf/internal/access"
	"github.com/joestump/shelf/internal/store"
	"github.com/joestump/shelf/internal/testutil"
)

type fixture struct {
	db        *sqlx.DB
	svc       *Service
	authors   *store.AuthorStore
	books     *store.BookStore
	favorites *store.FavoriteStore
	users     *store.UserStore
	admin     *access.Caller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	f := &fixture{
		db:        db,
		authors:   store.NewAuthorStore(db),
		books:     store.NewBookStore(db),
		favorites: store.NewFavoriteStore(db),
		users:     store.NewUserStore(db),
	}
	f.svc = NewService(f.authors, f.books, f.favorites, zap.NewNop())
	f.admin = f.caller(t, "admin@example.com", access.RoleAdmin)
	return f
}

// caller registers a user and returns it as an authenticated caller.
func (f *fixture) caller(t *testing.T, email string, roles ...string) *access.Caller {
	t.Helper()
	u, err := f.users.Create(context.Background(), email, "hash", roles)
	require.NoError(t, err)
	return &access.Caller{ID: u.ID, Email: u.Email, Roles: u.Roles}
}

func (f *fixture) author(t *testing.T, name string) *store.Author {
	t.Helper()
	a, err := f.svc.CreateAuthor(context.Background(), f.admin, store.Author{Name: name})
	require.NoError(t, err)
	return a
}

func (f *fixture) book(t *testing.T, authorID, title, isbn string) *BookWithAuthor {
	t.Helper()
	b, err := f.svc.CreateBook(context.Background(), f.admin, BookInput{
		Title:         title,
		ISBN:          isbn,
		PublishedYear: ptr(2000),
		AuthorID:      authorID,
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

func ptr[T any](v T) *T { return &v }

func bookTitles(books []BookWithAuthor) []string {
	titles := make([]string, len(books))
	for i, b := range books {
		titles[i] = b.Title
	}
	return titles
}
