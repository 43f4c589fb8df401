package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"bookcatalog/pkg/domain"
)

func TestMemoryStoreCreateAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first, err := s.CreateBook(ctx, domain.BookInput{Name: "First"})
	require.NoError(t, err)
	second, err := s.CreateBook(ctx, domain.BookInput{Name: "Second", Author: "A", Year: 2022, IsElectronicBook: true})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	got, ok, err := s.GetBook(ctx, second.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second, got)
}

func TestMemoryStoreDeletedIDIsNotReused(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	book, err := s.CreateBook(ctx, domain.BookInput{Name: "Gone"})
	require.NoError(t, err)

	ok, err := s.DeleteBook(ctx, book.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.DeleteBook(ctx, book.ID)
	require.NoError(t, err)
	assert.False(t, ok, "second delete must report missing")

	next, err := s.CreateBook(ctx, domain.BookInput{Name: "Next"})
	require.NoError(t, err)
	assert.NotEqual(t, book.ID, next.ID)

	_, ok, err = s.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreUpdateReplacesFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	book, err := s.CreateBook(ctx, domain.BookInput{Name: "Old", Author: "Someone", Year: 1999, IsElectronicBook: true})
	require.NoError(t, err)

	updated, ok, err := s.UpdateBook(ctx, book.ID, domain.BookInput{Name: "New"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.Book{ID: book.ID, Name: "New"}, updated)

	got, _, err := s.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, ok, err = s.UpdateBook(ctx, 1000000000, domain.BookInput{Name: "x"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	require.NotNil(t, books)
	require.Empty(t, books)

	for _, name := range []string{"a", "b", "c", "d"} {
		_, err := s.CreateBook(ctx, domain.BookInput{Name: name})
		require.NoError(t, err)
	}
	_, err = s.DeleteBook(ctx, 2)
	require.NoError(t, err)

	books, err = s.ListBooks(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(books))
	for _, b := range books {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"a", "c", "d"}, names)

	count, err := s.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMemoryStoreConcurrentCreatesGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	const writers = 64
	ids := make([]int64, writers)
	var g errgroup.Group
	for i := range writers {
		g.Go(func() error {
			book, err := s.CreateBook(ctx, domain.BookInput{Name: "concurrent"})
			ids[i] = book.ID
			return err
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[int64]bool, writers)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	count, err := s.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, writers, count)
}
