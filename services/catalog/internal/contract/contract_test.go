package contract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookcatalog/pkg/catalogclient"
	"bookcatalog/pkg/store"
	"bookcatalog/services/catalog/internal/app"
	"bookcatalog/services/catalog/internal/server"
)

func TestContractPassesAgainstCatalogServer(t *testing.T) {
	appCore, err := app.New(app.Config{Store: store.NewMemoryStore()})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	srv, err := server.New(server.Config{App: appCore})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	results := Run(context.Background(), catalogclient.NewClient(ts.URL))
	if len(results) != len(Cases()) {
		t.Fatalf("got %d results, want %d", len(results), len(Cases()))
	}
	for _, r := range results {
		if !r.Passed() {
			t.Errorf("%s: %v", r.Name, r.Err)
		}
	}
}

// An API that treats delete as idempotent must fail the contract.
func TestContractDetectsIdempotentDelete(t *testing.T) {
	appCore, err := app.New(app.Config{Store: store.NewMemoryStore()})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	srv, err := server.New(server.Config{App: appCore})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	inner := srv.Router()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusOK)
			return
		}
		inner.ServeHTTP(w, r)
	}))
	defer ts.Close()

	failed := map[string]bool{}
	for _, r := range Run(context.Background(), catalogclient.NewClient(ts.URL)) {
		if !r.Passed() {
			failed[r.Name] = true
		}
	}
	for _, name := range []string{
		"delete existing book returns 200 then 404",
		"delete unknown id returns 404",
	} {
		if !failed[name] {
			t.Errorf("expected %q to fail", name)
		}
	}
	if len(failed) != 2 {
		t.Errorf("unexpected failures: %v", failed)
	}
}

func TestExpectStatus(t *testing.T) {
	if err := expectStatus(nil, http.StatusNotFound); err == nil {
		t.Fatalf("nil error must not satisfy an expected failure")
	}
	if err := expectStatus(&catalogclient.APIError{Status: http.StatusNotFound}, http.StatusNotFound); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := expectStatus(&catalogclient.APIError{Status: http.StatusBadRequest}, http.StatusNotFound); err == nil {
		t.Fatalf("expected mismatch error")
	}
}
