package store

import (
	"context"

	"bookcatalog/pkg/domain"
)

// Store defines persistence operations for the book catalog.
// Implementations assign ids from a monotonically increasing sequence and
// never hand out an id again once it has been deleted.
type Store interface {
	ListBooks(ctx context.Context) ([]domain.Book, error)
	GetBook(ctx context.Context, id int64) (domain.Book, bool, error)
	CreateBook(ctx context.Context, in domain.BookInput) (domain.Book, error)
	// UpdateBook replaces every field except the id. ok is false when no
	// book with that id exists.
	UpdateBook(ctx context.Context, id int64, in domain.BookInput) (domain.Book, bool, error)
	DeleteBook(ctx context.Context, id int64) (bool, error)
	CountBooks(ctx context.Context) (int, error)
	Close() error
}
