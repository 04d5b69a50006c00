package api

import (
	"github.com/joestump/shelf/internal/catalog"
	"github.com/joestump/shelf/internal/store"
)

// --- Author types ---

// AuthorResponse represents an author in API responses.
type AuthorResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Gender      *string `json:"gender,omitempty"`
	Blurb       *string `json:"blurb,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
}

// CreateAuthorRequest is the request body for POST /authors, and the nested
// author of POST /books.
type CreateAuthorRequest struct {
	Name        string  `json:"name"`
	Gender      *string `json:"gender,omitempty"`
	Blurb       *string `json:"blurb,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
}

// UpdateAuthorRequest is the request body for PUT /authors/{id}. Omitted
// fields are left unchanged.
type UpdateAuthorRequest struct {
	Name        *string `json:"name,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	Blurb       *string `json:"blurb,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
}

// --- Book types ---

// BookResponse represents a book in API responses, with its author embedded.
type BookResponse struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Genre         *string         `json:"genre,omitempty"`
	ISBN          string          `json:"isbn"`
	AuthorID      string          `json:"authorId"`
	Summary       *string         `json:"summary,omitempty"`
	PublishedYear int             `json:"publishedYear"`
	Author        *AuthorResponse `json:"author"`
}

// CreateBookRequest is the request body for POST /books. Exactly one of
// authorId or author must be given.
type CreateBookRequest struct {
	Title         string               `json:"title"`
	Genre         *string              `json:"genre,omitempty"`
	ISBN          string               `json:"isbn"`
	Summary       *string              `json:"summary,omitempty"`
	PublishedYear *int                 `json:"publishedYear"`
	AuthorID      string               `json:"authorId,omitempty"`
	Author        *CreateAuthorRequest `json:"author,omitempty"`
}

// UpdateBookRequest is the request body for PUT /books/{id}. AuthorID and
// Author are accepted only to be rejected: a book's author cannot change.
type UpdateBookRequest struct {
	Title         *string              `json:"title,omitempty"`
	Genre         *string              `json:"genre,omitempty"`
	ISBN          *string              `json:"isbn,omitempty"`
	Summary       *string              `json:"summary,omitempty"`
	PublishedYear *int                 `json:"publishedYear,omitempty"`
	AuthorID      *string              `json:"authorId,omitempty"`
	Author        *CreateAuthorRequest `json:"author,omitempty"`
}

// --- Favorite types ---

// FavoriteResponse represents a favorite with its books in API responses.
type FavoriteResponse struct {
	ID     string         `json:"id"`
	UserID string         `json:"userId"`
	Books  []BookResponse `json:"books"`
}

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func toAuthorResponse(a *store.Author) *AuthorResponse {
	return &AuthorResponse{
		ID:          a.ID,
		Name:        a.Name,
		Gender:      a.Gender,
		Blurb:       a.Blurb,
		DateOfBirth: a.DateOfBirth,
	}
}

func toAuthorResponses(authors []*store.Author) []*AuthorResponse {
	out := make([]*AuthorResponse, len(authors))
	for i, a := range authors {
		out[i] = toAuthorResponse(a)
	}
	return out
}

func toBookResponse(b catalog.BookWithAuthor) BookResponse {
	return BookResponse{
		ID:            b.ID,
		Title:         b.Title,
		Genre:         b.Genre,
		ISBN:          b.ISBN,
		AuthorID:      b.AuthorID,
		Summary:       b.Summary,
		PublishedYear: b.PublishedYear,
		Author:        toAuthorResponse(b.Author),
	}
}

func toBookResponses(books []catalog.BookWithAuthor) []BookResponse {
	out := make([]BookResponse, len(books))
	for i, b := range books {
		out[i] = toBookResponse(b)
	}
	return out
}

func toFavoriteResponse(f catalog.FavoriteWithBooks) FavoriteResponse {
	return FavoriteResponse{ID: f.ID, UserID: f.UserID, Books: toBookResponses(f.Books)}
}

func toFavoriteResponses(favs []catalog.FavoriteWithBooks) []FavoriteResponse {
	out := make([]FavoriteResponse, len(favs))
	for i, f := range favs {
		out[i] = toFavoriteResponse(f)
	}
	return out
}

func (r CreateAuthorRequest) toAuthor() store.Author {
	return store.Author{Name: r.Name, Gender: r.Gender, Blurb: r.Blurb, DateOfBirth: r.DateOfBirth}
}

func (r UpdateAuthorRequest) toPatch() store.AuthorPatch {
	return store.AuthorPatch{Name: r.Name, Gender: r.Gender, Blurb: r.Blurb, DateOfBirth: r.DateOfBirth}
}

func (r CreateBookRequest) toInput() catalog.BookInput {
	in := catalog.BookInput{
		Title:         r.Title,
		Genre:         r.Genre,
		ISBN:          r.ISBN,
		Summary:       r.Summary,
		PublishedYear: r.PublishedYear,
		AuthorID:      r.AuthorID,
	}
	if r.Author != nil {
		a := r.Author.toAuthor()
		in.Author = &a
	}
	return in
}

func (r UpdateBookRequest) toUpdate() catalog.BookUpdate {
	u := catalog.BookUpdate{BookPatch: store.BookPatch{
		Title:         r.Title,
		Genre:         r.Genre,
		ISBN:          r.ISBN,
		AuthorID:      r.AuthorID,
		Summary:       r.Summary,
		PublishedYear: r.PublishedYear,
	}}
	if r.Author != nil {
		a := r.Author.toAuthor()
		u.Author = &a
	}
	return u
}
