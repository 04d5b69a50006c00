package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/joestump/shelf/internal/access"
	"github.com/joestump/shelf/internal/store"
)

// BookInput is a new book. Exactly one of AuthorID (an existing author) or
// Author (created first) must be set.
type BookInput struct {
	Title         string
	Genre         *string
	ISBN          string
	Summary       *string
	PublishedYear *int
	AuthorID      string
	Author        *store.Author
}

// BookUpdate is the change set of UpdateBook. AuthorID and Author are
// accepted only to be rejected.
type BookUpdate struct {
	store.BookPatch
	Author *store.Author
}

// GetBook returns one book with its author.
func (s *Service) GetBook(ctx context.Context, id string) (*BookWithAuthor, error) {
	if err := checkID("book", id); err != nil {
		return nil, err
	}
	return s.composeBook(ctx, id)
}

// ListBooks returns a page of books with their authors, ordered by title.
// A non-empty search narrows the list to matching books.
func (s *Service) ListBooks(ctx context.Context, search string, p Page) ([]BookWithAuthor, error) {
	if search = unquote(search); search != "" {
		books, err := s.searchBooks(ctx, search)
		if err != nil {
			return nil, err
		}
		return Paginate(books, p), nil
	}

	books, err := s.books.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	sortBooks(books)
	composed, err := s.composeBooks(ctx, books)
	if err != nil {
		return nil, err
	}
	return Paginate(composed, p), nil
}

// CreateBook inserts a book, creating its author first when in.Author is set.
// If the book insert fails after a new author was created, the author is
// deleted again. Admin only.
func (s *Service) CreateBook(ctx context.Context, caller *access.Caller, in BookInput) (*BookWithAuthor, error) {
	if err := access.RequireAdmin(caller); err != nil {
		return nil, err
	}
	b, err := validateBook(in)
	if err != nil {
		return nil, err
	}

	var author *store.Author
	created := false
	switch {
	case in.Author != nil:
		a, err := validateAuthor(*in.Author)
		if err != nil {
			return nil, err
		}
		author, err = s.authors.Create(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("create author: %w", err)
		}
		created = true
	default:
		author, err = s.resolveAuthor(ctx, in.AuthorID)
		if err != nil {
			return nil, err
		}
	}
	b.AuthorID = author.ID

	book, err := s.books.Create(ctx, b)
	if err != nil {
		if created {
			s.compensateAuthor(ctx, author.ID)
		}
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("isbn %q: %w", b.ISBN, ErrConflict)
		}
		return nil, fmt.Errorf("create book: %w", err)
	}
	return &BookWithAuthor{Book: book, Author: author}, nil
}

// UpdateBook applies u to an existing book and returns it with its author.
// The author of a book cannot be changed. Admin only.
func (s *Service) UpdateBook(ctx context.Context, caller *access.Caller, id string, u BookUpdate) (*BookWithAuthor, error) {
	if err := access.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if err := checkID("book", id); err != nil {
		return nil, err
	}
	p := u.BookPatch
	if p.AuthorID != nil || u.Author != nil {
		return nil, validationError("the author of a book cannot be changed")
	}
	if p.Empty() {
		return nil, validationError("no fields to update")
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, validationError("title must not be empty")
	}
	if p.ISBN != nil && strings.TrimSpace(*p.ISBN) == "" {
		return nil, validationError("isbn must not be empty")
	}

	if _, err := s.books.GetByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("book", id)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	if err := s.books.Update(ctx, id, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("isbn %q: %w", *p.ISBN, ErrConflict)
		}
		return nil, fmt.Errorf("update book: %w", err)
	}
	return s.composeBook(ctx, id)
}

// resolveAuthor looks up the author a new book refers to. A malformed or
// unknown id is an unresolved reference.
func (s *Service) resolveAuthor(ctx context.Context, id string) (*store.Author, error) {
	if store.ValidateID(id) != nil {
		return nil, &UnresolvedError{Kind: "author", IDs: []string{id}}
	}
	a, err := s.authors.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &UnresolvedError{Kind: "author", IDs: []string{id}}
	}
	if err != nil {
		return nil, fmt.Errorf("get author: %w", err)
	}
	return a, nil
}

// compensateAuthor removes an author created for a book that was never
// stored. It runs even if the request context is already cancelled.
func (s *Service) compensateAuthor(ctx context.Context, id string) {
	if err := s.authors.Delete(context.WithoutCancel(ctx), id); err != nil {
		s.log.Error("compensating author delete failed", zap.String("author_id", id), zap.Error(err))
	}
}

func validateBook(in BookInput) (store.Book, error) {
	b := store.Book{
		Title:   strings.TrimSpace(in.Title),
		Genre:   in.Genre,
		ISBN:    strings.TrimSpace(in.ISBN),
		Summary: in.Summary,
	}
	switch {
	case b.Title == "":
		return b, validationError("title is required")
	case b.ISBN == "":
		return b, validationError("isbn is required")
	case in.PublishedYear == nil:
		return b, validationError("publishedYear is required")
	case in.Author != nil && in.AuthorID != "":
		return b, validationError("author and authorId are mutually exclusive")
	case in.Author == nil && in.AuthorID == "":
		return b, validationError("author or authorId is required")
	}
	b.PublishedYear = *in.PublishedYear
	return b, nil
}
