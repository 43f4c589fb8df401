package store

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"bookcatalog/pkg/domain"
)

type seedFile struct {
	Books []domain.BookInput `yaml:"books"`
}

// LoadSeed reads initial books from a YAML file of the form:
//
//	books:
//	  - name: "The Go Programming Language"
//	    author: "Alan A. A. Donovan"
//	    year: 2015
func LoadSeed(path string) ([]domain.BookInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	for i, in := range file.Books {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, fmt.Errorf("seed: book %d has empty name", i)
		}
		file.Books[i].Name = name
	}
	return file.Books, nil
}

// Seed inserts books into an empty store. It returns the number inserted;
// a store that already holds books is left untouched.
func Seed(ctx context.Context, s Store, books []domain.BookInput) (int, error) {
	count, err := s.CountBooks(ctx)
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	for i, in := range books {
		if _, err := s.CreateBook(ctx, in); err != nil {
			return i, fmt.Errorf("seed book %d: %w", i, err)
		}
	}
	return len(books), nil
}
