package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/joestump/shelf/internal/access"
	"github.com/joestump/shelf/internal/metrics"
	"github.com/joestump/shelf/internal/store"
)

// GetFavorite returns one favorite in the caller's scope.
func (s *Service) GetFavorite(ctx context.Context, caller *access.Caller, id string) (*FavoriteWithBooks, error) {
	if err := checkID("favorite", id); err != nil {
		return nil, err
	}
	scope, err := access.Resolve(caller)
	if err != nil {
		return nil, err
	}
	f, err := s.scopedFavorite(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	return s.composeFavorite(ctx, f)
}

// ListFavorites returns a page of the favorites in the caller's scope,
// ordered by id.
func (s *Service) ListFavorites(ctx context.Context, caller *access.Caller, p Page) ([]FavoriteWithBooks, error) {
	scope, err := access.Resolve(caller)
	if err != nil {
		return nil, err
	}
	favs, err := s.favorites.List(ctx, scope.OwnerFilter())
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	slices.SortFunc(favs, func(a, b *store.Favorite) int { return strings.Compare(a.ID, b.ID) })
	// Composition emits exactly one row per favorite, so the page can be cut
	// before composing.
	return s.composeFavorites(ctx, Paginate(favs, p))
}

// CreateFavorite stores a new favorite owned by the caller. Every book id
// must resolve; otherwise nothing is stored and the error names the ids that
// did not.
func (s *Service) CreateFavorite(ctx context.Context, caller *access.Caller, bookIDs []string) (_ *FavoriteWithBooks, err error) {
	defer func() { observeFavoriteWrite("create", err) }()

	if _, err := access.Resolve(caller); err != nil {
		return nil, err
	}
	ids, err := normalizeBookIDs(bookIDs)
	if err != nil {
		return nil, err
	}
	if err := s.resolveBooks(ctx, ids); err != nil {
		return nil, err
	}
	f, err := s.favorites.Create(ctx, caller.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("create favorite: %w", err)
	}
	return s.composeFavorite(ctx, f)
}

// UpdateFavorite replaces the books of a favorite in the caller's scope. The
// owner never changes.
func (s *Service) UpdateFavorite(ctx context.Context, caller *access.Caller, id string, bookIDs []string) (_ *FavoriteWithBooks, err error) {
	defer func() { observeFavoriteWrite("update", err) }()

	if err := checkID("favorite", id); err != nil {
		return nil, err
	}
	ids, err := normalizeBookIDs(bookIDs)
	if err != nil {
		return nil, err
	}
	scope, err := access.Resolve(caller)
	if err != nil {
		return nil, err
	}
	f, err := s.scopedFavorite(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if !access.AuthorizeMutation(caller, f.UserID) {
		return nil, notFound("favorite", id)
	}
	if err := s.resolveBooks(ctx, ids); err != nil {
		return nil, err
	}
	if err := s.favorites.ReplaceBooks(ctx, id, scope.OwnerFilter(), ids); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("favorite", id)
		}
		return nil, fmt.Errorf("update favorite: %w", err)
	}
	f.BookIDs = ids
	return s.composeFavorite(ctx, f)
}

// DeleteFavorite removes a favorite in the caller's scope.
func (s *Service) DeleteFavorite(ctx context.Context, caller *access.Caller, id string) (err error) {
	defer func() { observeFavoriteWrite("delete", err) }()

	if err := checkID("favorite", id); err != nil {
		return err
	}
	scope, err := access.Resolve(caller)
	if err != nil {
		return err
	}
	err = s.favorites.Delete(ctx, id, scope.OwnerFilter())
	if errors.Is(err, store.ErrNotFound) {
		return notFound("favorite", id)
	}
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}

// scopedFavorite loads a favorite through the scope's owner filter, so a
// favorite owned by someone else looks exactly like a missing one.
func (s *Service) scopedFavorite(ctx context.Context, scope access.Scope, id string) (*store.Favorite, error) {
	f, err := s.favorites.Get(ctx, id, scope.OwnerFilter())
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("favorite", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	return f, nil
}

// resolveBooks checks that every id names a stored book. Malformed ids count
// as unresolved.
func (s *Service) resolveBooks(ctx context.Context, ids []string) error {
	wellFormed := make([]string, 0, len(ids))
	for _, id := range ids {
		if store.ValidateID(id) == nil {
			wellFormed = append(wellFormed, id)
		}
	}
	books, err := s.books.GetMany(ctx, wellFormed)
	if err != nil {
		return fmt.Errorf("resolve books: %w", err)
	}
	found := make(map[string]struct{}, len(books))
	for _, b := range books {
		found[b.ID] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return &UnresolvedError{Kind: "book", IDs: missing}
	}
	return nil
}

// normalizeBookIDs rejects an empty list or blank ids and collapses
// duplicates, keeping the first occurrence of each.
func normalizeBookIDs(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, validationError("bookIds must not be empty")
	}
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, validationError("bookIds must not contain empty ids")
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func observeFavoriteWrite(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.FavoriteWritesTotal.WithLabelValues(op, result).Inc()
}
