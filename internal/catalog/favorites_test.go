package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/shelf/internal/access"
)

func favoriteBookIDs(f *FavoriteWithBooks) []string {
	ids := make([]string, len(f.Books))
	for i, b := range f.Books {
		ids[i] = b.ID
	}
	return ids
}

func TestFavorites_TolkienScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.caller(t, "u@example.com", "user")
	v := f.caller(t, "v@example.com", "user")

	tolkien := f.author(t, "Tolkien")
	hobbit, err := f.svc.CreateBook(ctx, f.admin, BookInput{
		Title: "Hobbit", ISBN: "888", PublishedYear: ptr(1937), AuthorID: tolkien.ID,
	})
	require.NoError(t, err)

	fav, err := f.svc.CreateFavorite(ctx, u, []string{hobbit.ID})
	require.NoError(t, err)

	asU, err := f.svc.GetFavorite(ctx, u, fav.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, asU.UserID)
	require.Len(t, asU.Books, 1)
	assert.Equal(t, "Hobbit", asU.Books[0].Title)
	assert.Equal(t, "Tolkien", asU.Books[0].Author.Name)

	_, err = f.svc.GetFavorite(ctx, v, fav.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	asAdmin, err := f.svc.GetFavorite(ctx, f.admin, fav.ID)
	require.NoError(t, err)
	assert.Equal(t, asU, asAdmin)
}

func TestCreateFavorite_CollapsesDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.caller(t, "u@example.com", "user")
	a := f.author(t, "Author")
	b1 := f.book(t, a.ID, "One", "1")
	b2 := f.book(t, a.ID, "Two", "2")

	fav, err := f.svc.CreateFavorite(ctx, u, []string{b1.ID, b1.ID, b2.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{b1.ID, b2.ID}, favoriteBookIDs(fav))

	got, err := f.svc.GetFavorite(ctx, u, fav.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b1.ID, b2.ID}, favoriteBookIDs(got))
}

func TestCreateFavorite_InvalidIDRejectsWholeWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.caller(t, "u@example.com", "user")
	a := f.author(t, "Author")
	b1 := f.book(t, a.ID, "One", "1")
	b2 := f.book(t, a.ID, "Two", "2")
	missing := uuid.NewString()

	_, err := f.svc.CreateFavorite(ctx, u, []string{b1.ID, missing, b2.ID, "garbage"})
	var unresolved *UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "book", unresolved.Kind)
	assert.Equal(t, []string{missing, "garbage"}, unresolved.IDs)
	assert.Equal(t, 0, f.count(t, "favorites"))
	assert.Equal(t, 0, f.count(t, "favorite_books"))
}

func TestCreateFavorite_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.caller(t, "u@example.com", "user")

	_, err := f.svc.CreateFavorite(ctx, u, nil)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.CreateFavorite(ctx, u, []string{uuid.NewString(), " "})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.CreateFavorite(ctx, nil, []string{uuid.NewString()})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestFavorites_NonOwnerSeesNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.caller(t, "owner@example.com", "user")
	other := f.caller(t, "other@example.com", "user")
	a := f.author(t, "Author")
	b := f.book(t, a.ID, "One", "1")
	b2 := f.book(t, a.ID, "Two", "2")

	fav, err := f.svc.CreateFavorite(ctx, owner, []string{b.ID})
	require.NoError(t, err)
	nonexistent := uuid.NewString()

	for _, id := range []string{fav.ID, nonexistent} {
		_, err = f.svc.GetFavorite(ctx, other, id)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = f.svc.UpdateFavorite(ctx, other, id, []string{b2.ID})
		assert.ErrorIs(t, err, ErrNotFound)

		// Scope is checked before the book ids are resolved.
		_, err = f.svc.UpdateFavorite(ctx, other, id, []string{uuid.NewString()})
		assert.ErrorIs(t, err, ErrNotFound)

		assert.ErrorIs(t, f.svc.DeleteFavorite(ctx, other, id), ErrNotFound)
	}

	list, err := f.svc.ListFavorites(ctx, other, DefaultPage)
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := f.svc.GetFavorite(ctx, owner, fav.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, favoriteBookIDs(got), "rejected writes left the favorite alone")
}

func TestUpdateFavorite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.caller(t, "u@example.com", "user")
	a := f.author(t, "Author")
	b1 := f.book(t, a.ID, "One", "1")
	b2 := f.book(t, a.ID, "Two", "2")
	b3 := f.book(t, a.ID, "Three", "3")

	fav, err := f.svc.CreateFavorite(ctx, u, []string{b1.ID})
	require.NoError(t, err)

	got, err := f.svc.UpdateFavorite(ctx, u, fav.ID, []string{b3.ID, b2.ID, b3.ID})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)
	assert.Equal(t, []string{b3.ID, b2.ID}, favoriteBookIDs(got))

	// An admin may replace the books, but the owner stays the same.
	got, err = f.svc.UpdateFavorite(ctx, f.admin, fav.ID, []string{b1.ID})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)

	_, err = f.svc.UpdateFavorite(ctx, u, fav.ID, []string{b1.ID, uuid.Nil.String()})
	assert.ErrorIs(t, err, ErrUnresolved)
	_, err = f.svc.UpdateFavorite(ctx, u, fav.ID, []string{})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.UpdateFavorite(ctx, u, "nope", []string{b1.ID})
	assert.ErrorIs(t, err, ErrInvalidID)

	stored, err := f.svc.GetFavorite(ctx, u, fav.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b1.ID}, favoriteBookIDs(stored))
}

func TestDeleteFavorite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.caller(t, "u@example.com", "user")
	a := f.author(t, "Author")
	b := f.book(t, a.ID, "One", "1")

	mine, err := f.svc.CreateFavorite(ctx, u, []string{b.ID})
	require.NoError(t, err)
	second, err := f.svc.CreateFavorite(ctx, u, []string{b.ID})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteFavorite(ctx, u, mine.ID))
	_, err = f.svc.GetFavorite(ctx, u, mine.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteFavorite(ctx, u, mine.ID), ErrNotFound)

	require.NoError(t, f.svc.DeleteFavorite(ctx, f.admin, second.ID), "admins may delete any favorite")
	assert.Equal(t, 0, f.count(t, "favorite_books"))
}

func TestListFavorites_ScopeAndOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.caller(t, "u@example.com", "user")
	v := f.caller(t, "v@example.com", "user")
	a := f.author(t, "Author")
	b := f.book(t, a.ID, "One", "1")

	var ids []string
	for _, c := range []*access.Caller{u, v, u, u} {
		fav, err := f.svc.CreateFavorite(ctx, c, []string{b.ID})
		require.NoError(t, err)
		ids = append(ids, fav.ID)
	}

	all, err := f.svc.ListFavorites(ctx, f.admin, DefaultPage)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, fav := range all {
		assert.Equal(t, ids[i], fav.ID)
		require.Len(t, fav.Books, 1)
		assert.Equal(t, "Author", fav.Books[0].Author.Name)
	}

	mine, err := f.svc.ListFavorites(ctx, u, Page{Page: 1, PerPage: 2})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, ids[3], mine[0].ID)

	_, err = f.svc.ListFavorites(ctx, nil, DefaultPage)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestFavorites_DanglingReferencesAreSkipped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.caller(t, "u@example.com", "user")
	kept := f.author(t, "Kept")
	gone := f.author(t, "Gone")
	b1 := f.book(t, kept.ID, "Stays", "1")
	b2 := f.book(t, kept.ID, "Deleted", "2")
	b3 := f.book(t, gone.ID, "Orphaned", "3")

	fav, err := f.svc.CreateFavorite(ctx, u, []string{b2.ID, b1.ID, b3.ID})
	require.NoError(t, err)

	_, err = f.db.Exec(f.db.Rebind(`DELETE FROM books WHERE id = ?`), b2.ID)
	require.NoError(t, err)
	require.NoError(t, f.authors.Delete(ctx, gone.ID))

	got, err := f.svc.GetFavorite(ctx, u, fav.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b1.ID}, favoriteBookIDs(got))

	_, err = f.db.Exec(f.db.Rebind(`DELETE FROM books WHERE id = ?`), b1.ID)
	require.NoError(t, err)
	got, err = f.svc.GetFavorite(ctx, u, fav.ID)
	require.NoError(t, err, "a favorite with no resolvable books is still returned")
	assert.Empty(t, got.Books)
	assert.NotNil(t, got.Books)
}
