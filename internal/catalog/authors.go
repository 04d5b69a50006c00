package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/joestump/shelf/internal/access"
	"github.com/joestump/shelf/internal/store"
)

// AuthorQuery selects authors for ListAuthors. Search is a free-text query;
// Name and DateOfBirth are structured filters. Search cannot be combined with
// the structured filters.
type AuthorQuery struct {
	Search      string
	Name        string
	DateOfBirth string
}

// GetAuthor returns one author.
func (s *Service) GetAuthor(ctx context.Context, id string) (*store.Author, error) {
	if err := checkID("author", id); err != nil {
		return nil, err
	}
	a, err := s.authors.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("author", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get author: %w", err)
	}
	return a, nil
}

// ListAuthors returns a page of authors. Searches are ordered by relevance,
// everything else by name.
func (s *Service) ListAuthors(ctx context.Context, q AuthorQuery, p Page) ([]*store.Author, error) {
	q.Search = unquote(q.Search)
	q.Name = unquote(q.Name)
	if q.Search != "" && (q.Name != "" || q.DateOfBirth != "") {
		return nil, validationError("search cannot be combined with authorName or dateOfBirth")
	}

	if q.Search != "" {
		authors, err := s.searchAuthors(ctx, q.Search)
		if err != nil {
			return nil, err
		}
		return Paginate(authors, p), nil
	}

	f := store.AuthorFilter{NameContains: q.Name}
	if q.DateOfBirth != "" {
		d, err := normalizeDate(q.DateOfBirth)
		if err != nil {
			return nil, err
		}
		f.DateOfBirth = d
	}
	authors, err := s.authors.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	slices.SortFunc(authors, compareAuthors)
	return Paginate(authors, p), nil
}

// CreateAuthor inserts an author. Admin only.
func (s *Service) CreateAuthor(ctx context.Context, caller *access.Caller, a store.Author) (*store.Author, error) {
	if err := access.RequireAdmin(caller); err != nil {
		return nil, err
	}
	a, err := validateAuthor(a)
	if err != nil {
		return nil, err
	}
	created, err := s.authors.Create(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("create author: %w", err)
	}
	return created, nil
}

// UpdateAuthor applies p to an existing author and returns the result.
// Admin only.
func (s *Service) UpdateAuthor(ctx context.Context, caller *access.Caller, id string, p store.AuthorPatch) (*store.Author, error) {
	if err := access.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if err := checkID("author", id); err != nil {
		return nil, err
	}
	if p.Empty() {
		return nil, validationError("no fields to update")
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, validationError("name must not be empty")
		}
		p.Name = &name
	}
	dob, err := normalizeDatePtr(p.DateOfBirth)
	if err != nil {
		return nil, err
	}
	p.DateOfBirth = dob

	if _, err := s.GetAuthor(ctx, id); err != nil {
		return nil, err
	}
	if err := s.authors.Update(ctx, id, p); err != nil {
		return nil, fmt.Errorf("update author: %w", err)
	}
	return s.GetAuthor(ctx, id)
}

// validateAuthor checks the required fields of a new author and normalizes
// its date of birth.
func validateAuthor(a store.Author) (store.Author, error) {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return a, validationError("author name is required")
	}
	dob, err := normalizeDatePtr(a.DateOfBirth)
	if err != nil {
		return a, err
	}
	a.DateOfBirth = dob
	return a, nil
}
