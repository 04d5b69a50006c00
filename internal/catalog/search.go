package catalog

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/joestump/shelf/internal/metrics"
	"github.com/joestump/shelf/internal/store"
)

// unquote trims s and strips one pair of matching single or double quotes,
// so `'dragon'` and `dragon` query the same thing.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// searchBooks returns the books matching term, composed with their authors
// and ordered by title. A book matches when its own text fields contain a
// word of term, or when its author's name contains term as a substring; a
// book matching both ways appears once.
func (s *Service) searchBooks(ctx context.Context, term string) ([]BookWithAuthor, error) {
	metrics.SearchRequestsTotal.WithLabelValues("books").Inc()

	var (
		own      []store.ScoredBook
		byAuthor []*store.Book
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		own, err = s.books.TextSearch(gctx, term)
		return err
	})
	g.Go(func() error {
		var err error
		byAuthor, err = s.books.ListByAuthorName(gctx, term)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	union := make(map[string]*store.Book, len(own)+len(byAuthor))
	for _, hit := range own {
		union[hit.ID] = hit.Book
	}
	for _, b := range byAuthor {
		union[b.ID] = b
	}

	books := slices.Collect(maps.Values(union))
	sortBooks(books)
	return s.composeBooks(ctx, books)
}

// searchAuthors returns the authors whose name or blurb contain a word of
// term, best match first.
func (s *Service) searchAuthors(ctx context.Context, term string) ([]*store.Author, error) {
	metrics.SearchRequestsTotal.WithLabelValues("authors").Inc()

	hits, err := s.authors.TextSearch(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("search authors: %w", err)
	}
	slices.SortFunc(hits, func(a, b store.ScoredAuthor) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return compareAuthors(a.Author, b.Author)
	})
	out := make([]*store.Author, len(hits))
	for i, h := range hits {
		out[i] = h.Author
	}
	return out, nil
}

// sortBooks orders books by title, then id.
func sortBooks(books []*store.Book) {
	slices.SortFunc(books, func(a, b *store.Book) int {
		if c := cmp.Compare(a.Title, b.Title); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// compareAuthors orders authors by name, then id.
func compareAuthors(a, b *store.Author) int {
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
