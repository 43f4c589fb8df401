package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookcatalog/pkg/domain"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSeed(t *testing.T) {
	path := writeSeed(t, `
books:
  - name: "  Concurrency in Go "
    author: "Katherine Cox-Buday"
    year: 2017
  - name: "Learning Go"
    isElectronicBook: true
`)

	books, err := LoadSeed(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.BookInput{
		{Name: "Concurrency in Go", Author: "Katherine Cox-Buday", Year: 2017},
		{Name: "Learning Go", IsElectronicBook: true},
	}, books)
}

func TestLoadSeedRejectsEmptyName(t *testing.T) {
	path := writeSeed(t, `
books:
  - author: "nameless"
`)
	_, err := LoadSeed(path)
	require.Error(t, err)
}

func TestSeedOnlyFillsEmptyStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	books := []domain.BookInput{{Name: "one"}, {Name: "two"}}

	n, err := Seed(ctx, s, books)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = Seed(ctx, s, books)
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := s.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
