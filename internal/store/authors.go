package store

import (
	"context"
	"database/sql"
	"errors"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/joestump/shelf/internal/textindex"
)

// Author represents a row in the authors table.
type Author struct {
	ID          string  `db:"id"`
	Name        string  `db:"name"`
	Gender      *string `db:"gender"`
	Blurb       *string `db:"blurb"`
	DateOfBirth *string `db:"date_of_birth"` // YYYY-MM-DD
}

// AuthorPatch lists the author columns to change. Nil fields are left alone.
type AuthorPatch struct {
	Name        *string
	Gender      *string
	Blurb       *string
	DateOfBirth *string
}

// Empty reports whether the patch changes nothing.
func (p AuthorPatch) Empty() bool {
	return p.Name == nil && p.Gender == nil && p.Blurb == nil && p.DateOfBirth == nil
}

// AuthorFilter narrows List. Zero fields do not filter.
type AuthorFilter struct {
	// NameContains is a case-insensitive substring of the author name.
	NameContains string
	// DateOfBirth is an exact YYYY-MM-DD match.
	DateOfBirth string
}

// ScoredAuthor is a text-search hit with its relevance score.
type ScoredAuthor struct {
	*Author
	Score float64
}

type AuthorStore struct {
	db *sqlx.DB
}

func NewAuthorStore(db *sqlx.DB) *AuthorStore {
	return &AuthorStore{db: db}
}

// Create inserts a new author and returns it with its generated id.
func (s *AuthorStore) Create(ctx context.Context, a Author) (*Author, error) {
	a.ID = newID()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO authors (id, name, gender, blurb, date_of_birth)
		VALUES (?, ?, ?, ?, ?)
	`), a.ID, a.Name, a.Gender, a.Blurb, a.DateOfBirth)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID returns the author matching id, or ErrNotFound.
func (s *AuthorStore) GetByID(ctx context.Context, id string) (*Author, error) {
	var a Author
	err := s.db.GetContext(ctx, &a, s.db.Rebind(`SELECT * FROM authors WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetMany returns the authors whose ids appear in ids, in no particular order.
// Unknown ids are silently absent from the result.
func (s *AuthorStore) GetMany(ctx context.Context, ids []string) ([]*Author, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sq.Select("*").From("authors").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, err
	}
	var authors []*Author
	if err := s.db.SelectContext(ctx, &authors, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return authors, nil
}

// List returns the authors matching f, ordered by name.
func (s *AuthorStore) List(ctx context.Context, f AuthorFilter) ([]*Author, error) {
	sb := sq.Select("*").From("authors").OrderBy("name ASC", "id ASC")
	if f.NameContains != "" {
		sb = sb.Where(sq.Expr(likeExpr("name"), containsPattern(f.NameContains)))
	}
	if f.DateOfBirth != "" {
		sb = sb.Where(sq.Eq{"date_of_birth": f.DateOfBirth})
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}
	var authors []*Author
	if err := s.db.SelectContext(ctx, &authors, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	if f.NameContains != "" {
		authors = slices.DeleteFunc(authors, func(a *Author) bool {
			return !containsFold(a.Name, f.NameContains)
		})
	}
	return authors, nil
}

// TextSearch returns the authors whose name or blurb contain a word of the
// query, scored by textindex. Candidates are narrowed in SQL by substring and
// then scored, so only whole-word matches are returned.
func (s *AuthorStore) TextSearch(ctx context.Context, q string) ([]ScoredAuthor, error) {
	terms := textindex.Terms(q)
	if len(terms) == 0 {
		return nil, nil
	}
	match := sq.Or{}
	for _, t := range terms {
		p := containsPattern(t)
		match = append(match, sq.Expr(likeExpr("name"), p), sq.Expr(likeExpr("blurb"), p))
	}
	query, args, err := sq.Select("*").From("authors").Where(match).ToSql()
	if err != nil {
		return nil, err
	}
	var candidates []*Author
	if err := s.db.SelectContext(ctx, &candidates, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	hits := make([]ScoredAuthor, 0, len(candidates))
	for _, a := range candidates {
		if score := textindex.Score(terms, a.Name, deref(a.Blurb)); score > 0 {
			hits = append(hits, ScoredAuthor{Author: a, Score: score})
		}
	}
	return hits, nil
}

// Update applies p to the author with the given id. It does not report
// whether the row exists; callers look it up first.
func (s *AuthorStore) Update(ctx context.Context, id string, p AuthorPatch) error {
	if p.Empty() {
		return nil
	}
	ub := sq.Update("authors").Where(sq.Eq{"id": id})
	if p.Name != nil {
		ub = ub.Set("name", *p.Name)
	}
	if p.Gender != nil {
		ub = ub.Set("gender", *p.Gender)
	}
	if p.Blurb != nil {
		ub = ub.Set("blurb", *p.Blurb)
	}
	if p.DateOfBirth != nil {
		ub = ub.Set("date_of_birth", *p.DateOfBirth)
	}
	query, args, err := ub.ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	return err
}

// Delete removes an author. It is used to undo an author insert whose
// follow-up book insert failed.
func (s *AuthorStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM authors WHERE id = ?`), id)
	return err
}
