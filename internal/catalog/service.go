// Package catalog answers the catalog queries: it composes books with their
// authors and favorites with their books, ranks free-text searches, applies
// the caller's access scope and paginates the result.
package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/joestump/shelf/internal/store"
)

// Authors is the author storage the service needs.
type Authors interface {
	Create(ctx context.Context, a store.Author) (*store.Author, error)
	GetByID(ctx context.Context, id string) (*store.Author, error)
	GetMany(ctx context.Context, ids []string) ([]*store.Author, error)
	List(ctx context.Context, f store.AuthorFilter) ([]*store.Author, error)
	TextSearch(ctx context.Context, q string) ([]store.ScoredAuthor, error)
	Update(ctx context.Context, id string, p store.AuthorPatch) error
	Delete(ctx context.Context, id string) error
}

// Books is the book storage the service needs.
type Books interface {
	Create(ctx context.Context, b store.Book) (*store.Book, error)
	GetByID(ctx context.Context, id string) (*store.Book, error)
	GetMany(ctx context.Context, ids []string) ([]*store.Book, error)
	List(ctx context.Context) ([]*store.Book, error)
	TextSearch(ctx context.Context, q string) ([]store.ScoredBook, error)
	ListByAuthorName(ctx context.Context, term string) ([]*store.Book, error)
	Update(ctx context.Context, id string, p store.BookPatch) error
}

// Favorites is the favorite storage the service needs. ownerID "" means any
// owner.
type Favorites interface {
	Create(ctx context.Context, userID string, bookIDs []string) (*store.Favorite, error)
	Get(ctx context.Context, id, ownerID string) (*store.Favorite, error)
	List(ctx context.Context, ownerID string) ([]*store.Favorite, error)
	ReplaceBooks(ctx context.Context, id, ownerID string, bookIDs []string) error
	Delete(ctx context.Context, id, ownerID string) error
}

// Service implements the catalog operations exposed over HTTP.
type Service struct {
	authors   Authors
	books     Books
	favorites Favorites
	log       *zap.Logger
}

// NewService wires a Service. A nil logger is replaced with a no-op logger.
func NewService(authors Authors, books Books, favorites Favorites, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{authors: authors, books: books, favorites: favorites, log: log}
}
