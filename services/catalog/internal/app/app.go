package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"bookcatalog/internal/util"
	"bookcatalog/pkg/domain"
	"bookcatalog/pkg/events"
	"bookcatalog/pkg/store"
)

// Config holds runtime dependencies for the core application.
type Config struct {
	Store     store.Store
	Publisher events.Publisher
	// Now is overridable in tests.
	Now func() time.Time
}

// App is the book catalog service: payload validation plus the CRUD state
// machine over a Store.
type App struct {
	store     store.Store
	publisher events.Publisher
	validate  *validator.Validate
	now       func() time.Time
}

// New constructs the application.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, errors.New("store required")
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &App{
		store:     cfg.Store,
		publisher: publisher,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		now:       now,
	}, nil
}

// ListBooks returns every book currently in the catalog.
func (a *App) ListBooks(ctx context.Context) ([]domain.Book, error) {
	books, err := a.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	if books == nil {
		books = []domain.Book{}
	}
	return books, nil
}

// GetBook returns the book with id or ErrNotFound. Any int64 is a valid key.
func (a *App) GetBook(ctx context.Context, id int64) (domain.Book, error) {
	book, ok, err := a.store.GetBook(ctx, id)
	if err != nil {
		return domain.Book{}, fmt.Errorf("get book %d: %w", id, err)
	}
	if !ok {
		return domain.Book{}, ErrNotFound
	}
	return book, nil
}

// BookExists reports whether id is live.
func (a *App) BookExists(ctx context.Context, id int64) (bool, error) {
	_, ok, err := a.store.GetBook(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get book %d: %w", id, err)
	}
	return ok, nil
}

// CreateBook validates in and stores it under a fresh id.
func (a *App) CreateBook(ctx context.Context, in domain.BookInput) (domain.Book, error) {
	in, err := a.normalize(in)
	if err != nil {
		return domain.Book{}, err
	}
	book, err := a.store.CreateBook(ctx, in)
	if err != nil {
		return domain.Book{}, fmt.Errorf("create book: %w", err)
	}
	a.publish(ctx, domain.EventBookCreated, book.ID, &book)
	return book, nil
}

// UpdateBook replaces every field of book id except the id itself.
// A missing id wins over an invalid payload.
func (a *App) UpdateBook(ctx context.Context, id int64, in domain.BookInput) (domain.Book, error) {
	exists, err := a.BookExists(ctx, id)
	if err != nil {
		return domain.Book{}, err
	}
	if !exists {
		return domain.Book{}, ErrNotFound
	}
	in, err = a.normalize(in)
	if err != nil {
		return domain.Book{}, err
	}
	book, ok, err := a.store.UpdateBook(ctx, id, in)
	if err != nil {
		return domain.Book{}, fmt.Errorf("update book %d: %w", id, err)
	}
	if !ok {
		// deleted between the existence check and the write
		return domain.Book{}, ErrNotFound
	}
	a.publish(ctx, domain.EventBookUpdated, book.ID, &book)
	return book, nil
}

// DeleteBook removes book id. Deleting the same id twice yields ErrNotFound
// the second time.
func (a *App) DeleteBook(ctx context.Context, id int64) error {
	ok, err := a.store.DeleteBook(ctx, id)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	if !ok {
		return ErrNotFound
	}
	a.publish(ctx, domain.EventBookDeleted, id, nil)
	return nil
}

func (a *App) normalize(in domain.BookInput) (domain.BookInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := a.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return domain.BookInput{}, &ValidationError{
				Field:  jsonFieldName(fieldErrs[0].Field()),
				Reason: reasonForTag(fieldErrs[0].Tag()),
			}
		}
		return domain.BookInput{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return in, nil
}

// publish runs after the store commit. Failures are logged only.
func (a *App) publish(ctx context.Context, typ domain.BookEventType, bookID int64, book *domain.Book) {
	event := domain.BookEvent{
		ID:         util.NewID(),
		Type:       typ,
		BookID:     bookID,
		Book:       book,
		RequestID:  util.RequestIDFromContext(ctx),
		OccurredAt: a.now().UTC(),
	}
	if err := a.publisher.Publish(ctx, event); err != nil {
		util.LoggerFromContext(ctx).Warn("publish book event failed",
			"event_type", string(typ),
			"book_id", bookID,
			"err", err,
		)
	}
}

func jsonFieldName(field string) string {
	switch field {
	case "Name":
		return "name"
	case "Author":
		return "author"
	case "Year":
		return "year"
	case "IsElectronicBook":
		return "isElectronicBook"
	default:
		return strings.ToLower(field)
	}
}

func reasonForTag(tag string) string {
	switch tag {
	case "required":
		return "is required"
	default:
		return "is invalid"
	}
}
