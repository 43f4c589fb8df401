package store

import (
	"context"
	"sync"

	"bookcatalog/pkg/domain"
)

// MemoryStore keeps the catalog in-process.
type MemoryStore struct {
	mu     sync.RWMutex
	books  map[int64]domain.Book
	orders []int64
	nextID int64
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books:  make(map[int64]domain.Book),
		nextID: 1,
	}
}

// ListBooks returns books in insertion order. Ids are assigned in increasing
// order, so this is also ascending id order.
func (m *MemoryStore) ListBooks(_ context.Context) ([]domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Book, 0, len(m.orders))
	for _, id := range m.orders {
		if b, ok := m.books[id]; ok {
			res = append(res, b)
		}
	}
	return res, nil
}

// GetBook retrieves a book by ID.
func (m *MemoryStore) GetBook(_ context.Context, id int64) (domain.Book, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	return b, ok, nil
}

// CreateBook stores a new book under the next id.
func (m *MemoryStore) CreateBook(_ context.Context, in domain.BookInput) (domain.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	book := in.ToBook(m.nextID)
	m.nextID++
	m.books[book.ID] = book
	m.orders = append(m.orders, book.ID)
	return book, nil
}

// UpdateBook replaces the book with the given ID if it exists.
func (m *MemoryStore) UpdateBook(_ context.Context, id int64, in domain.BookInput) (domain.Book, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return domain.Book{}, false, nil
	}
	book := in.ToBook(id)
	m.books[id] = book
	return book, true, nil
}

// DeleteBook removes a book. The id is not returned to the sequence.
func (m *MemoryStore) DeleteBook(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return false, nil
	}
	delete(m.books, id)
	filtered := m.orders[:0]
	for _, item := range m.orders {
		if item != id {
			filtered = append(filtered, item)
		}
	}
	m.orders = filtered
	return true, nil
}

// CountBooks returns number of live books.
func (m *MemoryStore) CountBooks(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.books), nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
