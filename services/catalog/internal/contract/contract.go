// Package contract replays the catalog's HTTP contract against a running
// server and reports which expectations hold.
package contract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bookcatalog/pkg/catalogclient"
	"bookcatalog/pkg/domain"
)

// InvalidIDs are lookup keys that never name a live book.
var InvalidIDs = []int64{-1, 0, -100, -99, -101, 1000000000}

// Case is one named expectation.
type Case struct {
	Name string
	Run  func(ctx context.Context, c *catalogclient.Client) error
}

// Result is the outcome of a Case.
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

func (r Result) Passed() bool { return r.Err == nil }

// Cases returns the contract in execution order. Each case creates the
// fixtures it needs rather than relying on pre-seeded ids.
func Cases() []Case {
	return []Case{
		{Name: "list books returns 200", Run: listBooks},
		{Name: "every listed book is retrievable", Run: getListedBooks},
		{Name: "get unknown ids returns 404", Run: getInvalidIDs},
		{Name: "create full book returns 201 and round-trips", Run: createFullBook},
		{Name: "create name-only book returns 201", Run: createNameOnly},
		{Name: "create without name returns 400", Run: createWithoutName},
		{Name: "create with empty name returns 400", Run: createEmptyName},
		{Name: "update existing book returns 200", Run: updateExisting},
		{Name: "update unknown id with empty payload returns 404", Run: updateMissing},
		{Name: "delete existing book returns 200 then 404", Run: deleteTwice},
		{Name: "delete unknown id returns 404", Run: deleteMissing},
	}
}

// Run executes every case and returns one Result per case.
func Run(ctx context.Context, c *catalogclient.Client) []Result {
	cases := Cases()
	results := make([]Result, 0, len(cases))
	for _, tc := range cases {
		start := time.Now()
		err := tc.Run(ctx, c)
		results = append(results, Result{Name: tc.Name, Err: err, Duration: time.Since(start)})
	}
	return results
}

func listBooks(ctx context.Context, c *catalogclient.Client) error {
	_, err := c.ListBooks(ctx)
	return err
}

func getListedBooks(ctx context.Context, c *catalogclient.Client) error {
	if _, err := c.CreateBook(ctx, domain.BookInput{Name: "Contract Listing"}); err != nil {
		return fmt.Errorf("create fixture: %w", err)
	}
	books, err := c.ListBooks(ctx)
	if err != nil {
		return err
	}
	for _, b := range books {
		if _, err := c.GetBook(ctx, b.ID); err != nil {
			return fmt.Errorf("get %d: %w", b.ID, err)
		}
	}
	return nil
}

func getInvalidIDs(ctx context.Context, c *catalogclient.Client) error {
	for _, id := range InvalidIDs {
		_, err := c.GetBook(ctx, id)
		if err := expectStatus(err, http.StatusNotFound); err != nil {
			return fmt.Errorf("get %d: %w", id, err)
		}
	}
	return nil
}

func createFullBook(ctx context.Context, c *catalogclient.Client) error {
	in := domain.BookInput{Name: "Test Book", Author: "Test Author", Year: 2022, IsElectronicBook: false}
	created, err := c.CreateBook(ctx, in)
	if err != nil {
		return err
	}
	got, err := c.GetBook(ctx, created.ID)
	if err != nil {
		return fmt.Errorf("get %d: %w", created.ID, err)
	}
	if want := in.ToBook(created.ID); got != want {
		return fmt.Errorf("get %d = %+v, want %+v", created.ID, got, want)
	}
	return nil
}

func createNameOnly(ctx context.Context, c *catalogclient.Client) error {
	_, err := c.CreateRaw(ctx, []byte(`{"name":"Test Book"}`))
	return err
}

func createWithoutName(ctx context.Context, c *catalogclient.Client) error {
	return expectRejectedCreate(ctx, c, []byte(`{"author":"Test Author","year":2022,"isElectronicBook":false}`))
}

func createEmptyName(ctx context.Context, c *catalogclient.Client) error {
	return expectRejectedCreate(ctx, c, []byte(`{"name":"","author":"","year":0,"isElectronicBook":false}`))
}

func expectRejectedCreate(ctx context.Context, c *catalogclient.Client, body []byte) error {
	before, err := c.ListBooks(ctx)
	if err != nil {
		return err
	}
	_, err = c.CreateRaw(ctx, body)
	if err := expectStatus(err, http.StatusBadRequest); err != nil {
		return err
	}
	after, err := c.ListBooks(ctx)
	if err != nil {
		return err
	}
	if len(after) != len(before) {
		return fmt.Errorf("collection size changed from %d to %d", len(before), len(after))
	}
	return nil
}

func updateExisting(ctx context.Context, c *catalogclient.Client) error {
	created, err := c.CreateBook(ctx, domain.BookInput{Name: "Before Update"})
	if err != nil {
		return fmt.Errorf("create fixture: %w", err)
	}
	in := domain.BookInput{Name: "Updated Book", Author: "Updated Author", Year: 2022, IsElectronicBook: true}
	if _, err := c.UpdateBook(ctx, created.ID, in); err != nil {
		return err
	}
	got, err := c.GetBook(ctx, created.ID)
	if err != nil {
		return fmt.Errorf("get %d: %w", created.ID, err)
	}
	if want := in.ToBook(created.ID); got != want {
		return fmt.Errorf("get %d = %+v, want %+v", created.ID, got, want)
	}
	return nil
}

func updateMissing(ctx context.Context, c *catalogclient.Client) error {
	_, err := c.UpdateRaw(ctx, -1, []byte(`{"name":"","author":"","year":0,"isElectronicBook":false}`))
	return expectStatus(err, http.StatusNotFound)
}

func deleteTwice(ctx context.Context, c *catalogclient.Client) error {
	created, err := c.CreateBook(ctx, domain.BookInput{Name: "Delete Me"})
	if err != nil {
		return fmt.Errorf("create fixture: %w", err)
	}
	if err := c.DeleteBook(ctx, created.ID); err != nil {
		return fmt.Errorf("first delete: %w", err)
	}
	if err := expectStatus(c.DeleteBook(ctx, created.ID), http.StatusNotFound); err != nil {
		return fmt.Errorf("second delete: %w", err)
	}
	return nil
}

func deleteMissing(ctx context.Context, c *catalogclient.Client) error {
	return expectStatus(c.DeleteBook(ctx, -1), http.StatusNotFound)
}

var errUnexpectedSuccess = errors.New("request unexpectedly succeeded")

func expectStatus(err error, want int) error {
	if err == nil {
		return fmt.Errorf("%w, want %d", errUnexpectedSuccess, want)
	}
	if got := catalogclient.StatusOf(err); got != want {
		return fmt.Errorf("status %d, want %d: %w", got, want, err)
	}
	return nil
}
