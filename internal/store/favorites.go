package store

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// Favorite is a user's list of books. BookIDs keeps insertion order and
// holds no duplicates.
type Favorite struct {
	ID      string   `db:"id"`
	UserID  string   `db:"user_id"`
	BookIDs []string `db:"-"`
}

type favoriteBook struct {
	FavoriteID string `db:"favorite_id"`
	BookID     string `db:"book_id"`
	Position   int    `db:"position"`
}

// FavoriteStore persists favorites. Every read and write takes an ownerID:
// when non-empty, rows belonging to other users are treated as missing.
type FavoriteStore struct {
	db *sqlx.DB
}

func NewFavoriteStore(db *sqlx.DB) *FavoriteStore {
	return &FavoriteStore{db: db}
}

// Create inserts a favorite owned by userID with the given book ids, which
// must already be de-duplicated.
func (s *FavoriteStore) Create(ctx context.Context, userID string, bookIDs []string) (*Favorite, error) {
	f := &Favorite{ID: newID(), UserID: userID, BookIDs: bookIDs}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO favorites (id, user_id) VALUES (?, ?)`), f.ID, f.UserID)
	if err != nil {
		return nil, err
	}
	if err := insertFavoriteBooks(ctx, tx, f.ID, bookIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return f, nil
}

// Get returns the favorite with the given id, or ErrNotFound.
func (s *FavoriteStore) Get(ctx context.Context, id, ownerID string) (*Favorite, error) {
	sb := sq.Select("*").From("favorites").Where(sq.Eq{"id": id})
	if ownerID != "" {
		sb = sb.Where(sq.Eq{"user_id": ownerID})
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}
	var f Favorite
	err = s.db.GetContext(ctx, &f, s.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadBookIDs(ctx, []*Favorite{&f}); err != nil {
		return nil, err
	}
	return &f, nil
}

// List returns every favorite visible under ownerID, ordered by id.
func (s *FavoriteStore) List(ctx context.Context, ownerID string) ([]*Favorite, error) {
	sb := sq.Select("*").From("favorites").OrderBy("id ASC")
	if ownerID != "" {
		sb = sb.Where(sq.Eq{"user_id": ownerID})
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}
	var favs []*Favorite
	if err := s.db.SelectContext(ctx, &favs, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	if err := s.loadBookIDs(ctx, favs); err != nil {
		return nil, err
	}
	return favs, nil
}

// ReplaceBooks swaps the book set of a favorite wholesale. The owner is
// never changed. Returns ErrNotFound if the favorite is not visible under ownerID.
func (s *FavoriteStore) ReplaceBooks(ctx context.Context, id, ownerID string, bookIDs []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sb := sq.Select("COUNT(*)").From("favorites").Where(sq.Eq{"id": id})
	if ownerID != "" {
		sb = sb.Where(sq.Eq{"user_id": ownerID})
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return err
	}
	var n int
	if err := tx.GetContext(ctx, &n, tx.Rebind(query), args...); err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM favorite_books WHERE favorite_id = ?`), id); err != nil {
		return err
	}
	if err := insertFavoriteBooks(ctx, tx, id, bookIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a favorite and its book links. Returns ErrNotFound if the
// favorite is not visible under ownerID.
func (s *FavoriteStore) Delete(ctx context.Context, id, ownerID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	del := sq.Delete("favorites").Where(sq.Eq{"id": id})
	if ownerID != "" {
		del = del.Where(sq.Eq{"user_id": ownerID})
	}
	query, args, err := del.ToSql()
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM favorite_books WHERE favorite_id = ?`), id); err != nil {
		return err
	}
	return tx.Commit()
}

// loadBookIDs fills BookIDs for every favorite with a single query, folding
// the link rows back onto their parents by id.
func (s *FavoriteStore) loadBookIDs(ctx context.Context, favs []*Favorite) error {
	if len(favs) == 0 {
		return nil
	}
	byID := make(map[string]*Favorite, len(favs))
	ids := make([]string, 0, len(favs))
	for _, f := range favs {
		f.BookIDs = []string{}
		byID[f.ID] = f
		ids = append(ids, f.ID)
	}

	query, args, err := sq.Select("favorite_id", "book_id", "position").
		From("favorite_books").
		Where(sq.Eq{"favorite_id": ids}).
		OrderBy("favorite_id ASC", "position ASC").
		ToSql()
	if err != nil {
		return err
	}
	var links []favoriteBook
	if err := s.db.SelectContext(ctx, &links, s.db.Rebind(query), args...); err != nil {
		return err
	}
	for _, l := range links {
		if f, ok := byID[l.FavoriteID]; ok {
			f.BookIDs = append(f.BookIDs, l.BookID)
		}
	}
	return nil
}

func insertFavoriteBooks(ctx context.Context, tx *sqlx.Tx, favoriteID string, bookIDs []string) error {
	for i, bookID := range bookIDs {
		_, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO favorite_books (favorite_id, book_id, position) VALUES (?, ?, ?)
		`), favoriteID, bookID, i)
		if err != nil {
			return err
		}
	}
	return nil
}
