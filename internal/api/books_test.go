package api_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/shelf/internal/api"
)

func createAuthor(t *testing.T, env *testEnv, token, name string) api.AuthorResponse {
	t.Helper()
	rec := do(t, env, http.MethodPost, "/authors", token, api.CreateAuthorRequest{Name: name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var a api.AuthorResponse
	decode(t, rec, &a)
	return a
}

func createBook(t *testing.T, env *testEnv, token string, req api.CreateBookRequest) api.BookResponse {
	t.Helper()
	rec := do(t, env, http.MethodPost, "/books", token, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var b api.BookResponse
	decode(t, rec, &b)
	return b
}

func year(y int) *int { return &y }

func TestBooks_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	_, admin := seedUser(t, env, "admin@example.com", "admin")
	_, user := seedUser(t, env, "user@example.com", "user")

	tolkien := createAuthor(t, env, admin, "Tolkien")
	created := createBook(t, env, admin, api.CreateBookRequest{
		Title: "Hobbit", ISBN: "888", PublishedYear: year(1937), AuthorID: tolkien.ID,
	})

	rec := do(t, env, http.MethodGet, "/books/"+created.ID, user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var raw map[string]any
	decode(t, rec, &raw)
	assert.Equal(t, "Hobbit", raw["title"])
	assert.Equal(t, float64(1937), raw["publishedYear"])
	assert.Equal(t, tolkien.ID, raw["authorId"])
	author, ok := raw["author"].(map[string]any)
	require.True(t, ok, "author is embedded as a single object")
	assert.Equal(t, "Tolkien", author["name"])
}

func TestBooks_CreateWithNestedAuthor(t *testing.T) {
	env := newTestEnv(t)
	_, admin := seedUser(t, env, "admin@example.com", "admin")

	b := createBook(t, env, admin, api.CreateBookRequest{
		Title:         "A Study in Scarlet",
		ISBN:          "111",
		PublishedYear: year(1887),
		Author:        &api.CreateAuthorRequest{Name: "Arthur Conan Doyle", DateOfBirth: strPtr("1859-05-22")},
	})
	require.NotNil(t, b.Author)
	assert.Equal(t, "Arthur Conan Doyle", b.Author.Name)
	assert.Equal(t, b.AuthorID, b.Author.ID)
}

func TestBooks_Errors(t *testing.T) {
	env := newTestEnv(t)
	_, admin := seedUser(t, env, "admin@example.com", "admin")
	_, user := seedUser(t, env, "user@example.com", "user")
	a := createAuthor(t, env, admin, "Author")
	createBook(t, env, admin, api.CreateBookRequest{Title: "First", ISBN: "888", PublishedYear: year(1), AuthorID: a.ID})

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		body     any
		wantCode int
		wantErr  string
	}{
		{"no token", http.MethodGet, "/books", "", nil, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"non-admin create", http.MethodPost, "/books", user, api.CreateBookRequest{Title: "T", ISBN: "9", PublishedYear: year(1), AuthorID: a.ID}, http.StatusForbidden, "FORBIDDEN"},
		{"duplicate isbn", http.MethodPost, "/books", admin, api.CreateBookRequest{Title: "Second", ISBN: "888", PublishedYear: year(1), AuthorID: a.ID}, http.StatusConflict, "CONFLICT"},
		{"missing title", http.MethodPost, "/books", admin, api.CreateBookRequest{ISBN: "9", PublishedYear: year(1), AuthorID: a.ID}, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown author", http.MethodPost, "/books", admin, api.CreateBookRequest{Title: "T", ISBN: "9", PublishedYear: year(1), AuthorID: uuid.NewString()}, http.StatusBadRequest, "UNRESOLVED_REFERENCE"},
		{"bad json", http.MethodPost, "/books", admin, "{", http.StatusBadRequest, "BAD_REQUEST"},
		{"malformed id", http.MethodGet, "/books/64b7f0c2a1e4c3d2b1a09f8e", user, nil, http.StatusBadRequest, "INVALID_ID"},
		{"unknown id", http.MethodGet, "/books/" + uuid.NewString(), user, nil, http.StatusNotFound, "NOT_FOUND"},
		{"change author", http.MethodPut, "/books/" + uuid.NewString(), admin, api.UpdateBookRequest{AuthorID: &a.ID}, http.StatusBadRequest, "BAD_REQUEST"},
		{"non-admin update", http.MethodPut, "/books/" + uuid.NewString(), user, api.UpdateBookRequest{Title: strPtr("x")}, http.StatusForbidden, "FORBIDDEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, env, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			var e api.ErrorResponse
			decode(t, rec, &e)
			assert.Equal(t, tt.wantErr, e.Code)
		})
	}
}

func TestBooks_SearchAndPaginate(t *testing.T) {
	env := newTestEnv(t)
	_, admin := seedUser(t, env, "admin@example.com", "admin")
	dragon := createAuthor(t, env, admin, "Dragon Writer")
	other := createAuthor(t, env, admin, "Someone")
	createBook(t, env, admin, api.CreateBookRequest{Title: "Zeta", ISBN: "1", PublishedYear: year(1), AuthorID: other.ID, Summary: strPtr("dragon")})
	createBook(t, env, admin, api.CreateBookRequest{Title: "Beta", ISBN: "2", PublishedYear: year(1), AuthorID: dragon.ID, Genre: strPtr("dragon")})
	createBook(t, env, admin, api.CreateBookRequest{Title: "Alpha", ISBN: "3", PublishedYear: year(1), AuthorID: dragon.ID})
	createBook(t, env, admin, api.CreateBookRequest{Title: "Omega", ISBN: "4", PublishedYear: year(1), AuthorID: other.ID})

	var books []api.BookResponse
	rec := do(t, env, http.MethodGet, "/books?search=dragon", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &books)
	titles := []string{}
	for _, b := range books {
		titles = append(titles, b.Title)
	}
	assert.Equal(t, []string{"Alpha", "Beta", "Zeta"}, titles)

	rec = do(t, env, http.MethodGet, "/books?search='dragon'", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &books)
	assert.Len(t, books, 3, "quoted term matches the same books")

	rec = do(t, env, http.MethodGet, "/books?search=dragon&page=1&perPage=2", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &books)
	require.Len(t, books, 1)
	assert.Equal(t, "Zeta", books[0].Title)

	rec = do(t, env, http.MethodGet, "/books?page=9", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestBooks_Update(t *testing.T) {
	env := newTestEnv(t)
	_, admin := seedUser(t, env, "admin@example.com", "admin")
	a := createAuthor(t, env, admin, "Author")
	b := createBook(t, env, admin, api.CreateBookRequest{Title: "Draft", ISBN: "1", PublishedYear: year(1), AuthorID: a.ID})

	rec := do(t, env, http.MethodPut, "/books/"+b.ID, admin, api.UpdateBookRequest{Title: strPtr("Final"), PublishedYear: year(2020)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got api.BookResponse
	decode(t, rec, &got)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, 2020, got.PublishedYear)
	assert.Equal(t, "Author", got.Author.Name)

	for name, body := range map[string]string{
		"nested author": `{"author":{"name":"Someone"}}`,
		"author id":     `{"authorId":"` + a.ID + `"}`,
		"empty":         `{}`,
	} {
		rec := do(t, env, http.MethodPut, "/books/"+b.ID, admin, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		var e api.ErrorResponse
		decode(t, rec, &e)
		assert.Equal(t, "BAD_REQUEST", e.Code, name)
	}

	rec = do(t, env, http.MethodGet, "/books/"+b.ID, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &got)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, a.ID, got.AuthorID)
}
