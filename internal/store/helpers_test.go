package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joestump/shelf/internal/store"
	"github.com/joestump/shelf/internal/testutil"
)

type stores struct {
	Authors   *store.AuthorStore
	Books     *store.BookStore
	Favorites *store.FavoriteStore
	Users     *store.UserStore
}

func newStores(t *testing.T) *stores {
	t.Helper()
	db := testutil.NewTestDB(t)
	return &stores{
		Authors:   store.NewAuthorStore(db),
		Books:     store.NewBookStore(db),
		Favorites: store.NewFavoriteStore(db),
		Users:     store.NewUserStore(db),
	}
}

func ptr[T any](v T) *T { return &v }

func seedAuthor(t *testing.T, s *stores, name string) *store.Author {
	t.Helper()
	a, err := s.Authors.Create(context.Background(), store.Author{Name: name})
	require.NoError(t, err)
	return a
}

func seedBook(t *testing.T, s *stores, authorID, title, isbn string) *store.Book {
	t.Helper()
	b, err := s.Books.Create(context.Background(), store.Book{
		Title:         title,
		ISBN:          isbn,
		AuthorID:      authorID,
		PublishedYear: 2000,
	})
	require.NoError(t, err)
	return b
}

func seedUser(t *testing.T, s *stores, email string) *store.User {
	t.Helper()
	u, err := s.Users.Create(context.Background(), email, "hash", []string{store.RoleUser})
	require.NoError(t, err)
	return u
}
