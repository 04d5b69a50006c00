package store

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/joestump/shelf/internal/textindex"
)

// Book represents a row in the books table.
type Book struct {
	ID            string  `db:"id"`
	Title         string  `db:"title"`
	Genre         *string `db:"genre"`
	ISBN          string  `db:"isbn"`
	AuthorID      string  `db:"author_id"`
	Summary       *string `db:"summary"`
	PublishedYear int     `db:"published_year"`
}

// BookPatch lists the book columns to change. Nil fields are left alone.
type BookPatch struct {
	Title         *string
	Genre         *string
	ISBN          *string
	AuthorID      *string
	Summary       *string
	PublishedYear *int
}

// Empty reports whether the patch changes nothing.
func (p BookPatch) Empty() bool {
	return p.Title == nil && p.Genre == nil && p.ISBN == nil &&
		p.AuthorID == nil && p.Summary == nil && p.PublishedYear == nil
}

// ScoredBook is a text-search hit with its relevance score.
type ScoredBook struct {
	*Book
	Score float64
}

type BookStore struct {
	db *sqlx.DB
}

func NewBookStore(db *sqlx.DB) *BookStore {
	return &BookStore{db: db}
}

// Create inserts a new book. Returns ErrDuplicate if the isbn is taken.
func (s *BookStore) Create(ctx context.Context, b Book) (*Book, error) {
	b.ID = newID()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO books (id, title, genre, isbn, author_id, summary, published_year)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), b.ID, b.Title, b.Genre, b.ISBN, b.AuthorID, b.Summary, b.PublishedYear)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &b, nil
}

// GetByID returns the book matching id, or ErrNotFound.
func (s *BookStore) GetByID(ctx context.Context, id string) (*Book, error) {
	var b Book
	err := s.db.GetContext(ctx, &b, s.db.Rebind(`SELECT * FROM books WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetMany returns the books whose ids appear in ids, in no particular order.
// Unknown ids are silently absent from the result.
func (s *BookStore) GetMany(ctx context.Context, ids []string) ([]*Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.selectBooks(ctx, sq.Select("*").From("books").Where(sq.Eq{"id": ids}))
}

// List returns every book ordered by title.
func (s *BookStore) List(ctx context.Context) ([]*Book, error) {
	return s.selectBooks(ctx, sq.Select("*").From("books").OrderBy("title ASC", "id ASC"))
}

// TextSearch returns the books whose title, genre, or summary contain a word
// of the query, scored by textindex with title as the primary field.
func (s *BookStore) TextSearch(ctx context.Context, q string) ([]ScoredBook, error) {
	terms := textindex.Terms(q)
	if len(terms) == 0 {
		return nil, nil
	}
	match := sq.Or{}
	for _, t := range terms {
		p := containsPattern(t)
		match = append(match,
			sq.Expr(likeExpr("title"), p),
			sq.Expr(likeExpr("genre"), p),
			sq.Expr(likeExpr("summary"), p),
		)
	}
	candidates, err := s.selectBooks(ctx, sq.Select("*").From("books").Where(match))
	if err != nil {
		return nil, err
	}

	hits := make([]ScoredBook, 0, len(candidates))
	for _, b := range candidates {
		if score := textindex.Score(terms, b.Title, deref(b.Genre), deref(b.Summary)); score > 0 {
			hits = append(hits, ScoredBook{Book: b, Score: score})
		}
	}
	return hits, nil
}

// ListByAuthorName joins books to their authors and keeps the books whose
// author name contains term, case-insensitively.
func (s *BookStore) ListByAuthorName(ctx context.Context, term string) ([]*Book, error) {
	if term == "" {
		return nil, nil
	}
	query, args, err := sq.Select("b.*", "a.name AS author_name").
		From("books b").
		Join("authors a ON a.id = b.author_id").
		Where(sq.Expr(likeExpr("a.name"), containsPattern(term))).
		ToSql()
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Book
		AuthorName string `db:"author_name"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	books := make([]*Book, 0, len(rows))
	for i := range rows {
		if containsFold(rows[i].AuthorName, term) {
			books = append(books, &rows[i].Book)
		}
	}
	return books, nil
}

// Update applies p to the book with the given id. Returns ErrDuplicate if
// the new isbn is taken. It does not report whether the row exists.
func (s *BookStore) Update(ctx context.Context, id string, p BookPatch) error {
	if p.Empty() {
		return nil
	}
	ub := sq.Update("books").Where(sq.Eq{"id": id})
	if p.Title != nil {
		ub = ub.Set("title", *p.Title)
	}
	if p.Genre != nil {
		ub = ub.Set("genre", *p.Genre)
	}
	if p.ISBN != nil {
		ub = ub.Set("isbn", *p.ISBN)
	}
	if p.AuthorID != nil {
		ub = ub.Set("author_id", *p.AuthorID)
	}
	if p.Summary != nil {
		ub = ub.Set("summary", *p.Summary)
	}
	if p.PublishedYear != nil {
		ub = ub.Set("published_year", *p.PublishedYear)
	}
	query, args, err := ub.ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Count returns the number of books.
func (s *BookStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM books`)
	return n, err
}

func (s *BookStore) selectBooks(ctx context.Context, sb sq.SelectBuilder) ([]*Book, error) {
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}
	var books []*Book
	if err := s.db.SelectContext(ctx, &books, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return books, nil
}
