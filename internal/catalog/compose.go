package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/joestump/shelf/internal/metrics"
	"github.com/joestump/shelf/internal/store"
)

// BookWithAuthor is a book with its author embedded.
type BookWithAuthor struct {
	*store.Book
	Author *store.Author
}

// FavoriteWithBooks is a favorite with its books, in stored order, each with
// its author embedded.
type FavoriteWithBooks struct {
	ID     string
	UserID string
	Books  []BookWithAuthor
}

// referentialFault records a reference that did not resolve during
// composition. The row holding it is dropped or skipped, never half-emitted.
func (s *Service) referentialFault(entity, ref, from string) {
	metrics.ReferentialFaultsTotal.WithLabelValues(entity).Inc()
	s.log.Warn("dangling reference",
		zap.String("entity", entity),
		zap.String("id", ref),
		zap.String("from", from),
	)
}

// composeBook fetches one book and its author. A book whose author is gone is
// reported as not found.
func (s *Service) composeBook(ctx context.Context, id string) (*BookWithAuthor, error) {
	b, err := s.books.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("book", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	a, err := s.authors.GetByID(ctx, b.AuthorID)
	if errors.Is(err, store.ErrNotFound) {
		s.referentialFault("author", b.AuthorID, b.ID)
		return nil, notFound("book", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get author: %w", err)
	}
	return &BookWithAuthor{Book: b, Author: a}, nil
}

// composeBooks attaches authors to books with one batch lookup. Output keeps
// the input order; books whose author is missing are dropped.
func (s *Service) composeBooks(ctx context.Context, books []*store.Book) ([]BookWithAuthor, error) {
	ids := make([]string, 0, len(books))
	seen := make(map[string]struct{}, len(books))
	for _, b := range books {
		if _, ok := seen[b.AuthorID]; !ok {
			seen[b.AuthorID] = struct{}{}
			ids = append(ids, b.AuthorID)
		}
	}
	authors, err := s.authors.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get authors: %w", err)
	}
	byID := make(map[string]*store.Author, len(authors))
	for _, a := range authors {
		byID[a.ID] = a
	}

	out := make([]BookWithAuthor, 0, len(books))
	for _, b := range books {
		a, ok := byID[b.AuthorID]
		if !ok {
			s.referentialFault("author", b.AuthorID, b.ID)
			continue
		}
		out = append(out, BookWithAuthor{Book: b, Author: a})
	}
	return out, nil
}

// composeFavorites expands favorites into their books and authors. Book ids
// are collected across all favorites and fetched in one batch, then folded
// back so each favorite yields exactly one row, in input order. Books that no
// longer resolve are skipped; the favorite row is still emitted.
func (s *Service) composeFavorites(ctx context.Context, favs []*store.Favorite) ([]FavoriteWithBooks, error) {
	var ids []string
	seen := make(map[string]struct{})
	for _, f := range favs {
		for _, id := range f.BookIDs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	books, err := s.books.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get books: %w", err)
	}
	stored := make(map[string]struct{}, len(books))
	for _, b := range books {
		stored[b.ID] = struct{}{}
	}
	composed, err := s.composeBooks(ctx, books)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]BookWithAuthor, len(composed))
	for _, bw := range composed {
		byID[bw.ID] = bw
	}

	out := make([]FavoriteWithBooks, 0, len(favs))
	for _, f := range favs {
		row := FavoriteWithBooks{ID: f.ID, UserID: f.UserID, Books: make([]BookWithAuthor, 0, len(f.BookIDs))}
		for _, id := range f.BookIDs {
			bw, ok := byID[id]
			if !ok {
				// Books dropped for a missing author were already counted.
				if _, exists := stored[id]; !exists {
					s.referentialFault("book", id, f.ID)
				}
				continue
			}
			row.Books = append(row.Books, bw)
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *Service) composeFavorite(ctx context.Context, f *store.Favorite) (*FavoriteWithBooks, error) {
	rows, err := s.composeFavorites(ctx, []*store.Favorite{f})
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}
