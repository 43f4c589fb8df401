package catalogclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bookcatalog/pkg/domain"
)

// Client calls the book catalog over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError represents a non-2xx catalog response.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an *APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// NewClient constructs a catalog client. baseURL is the server root, e.g. http://localhost:5000.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// WithHTTPClient replaces the underlying http.Client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) ListBooks(ctx context.Context) ([]domain.Book, error) {
	var books []domain.Book
	if err := c.do(ctx, http.MethodGet, "/api/books", nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *Client) GetBook(ctx context.Context, id int64) (domain.Book, error) {
	var book domain.Book
	if err := c.do(ctx, http.MethodGet, bookPath(id), nil, &book); err != nil {
		return domain.Book{}, err
	}
	return book, nil
}

func (c *Client) CreateBook(ctx context.Context, in domain.BookInput) (domain.Book, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return domain.Book{}, err
	}
	return c.CreateRaw(ctx, body)
}

// CreateRaw posts body verbatim, allowing payloads with absent fields.
func (c *Client) CreateRaw(ctx context.Context, body []byte) (domain.Book, error) {
	var book domain.Book
	if err := c.do(ctx, http.MethodPost, "/api/books", body, &book); err != nil {
		return domain.Book{}, err
	}
	return book, nil
}

func (c *Client) UpdateBook(ctx context.Context, id int64, in domain.BookInput) (domain.Book, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return domain.Book{}, err
	}
	return c.UpdateRaw(ctx, id, body)
}

// UpdateRaw puts body verbatim.
func (c *Client) UpdateRaw(ctx context.Context, id int64, body []byte) (domain.Book, error) {
	var book domain.Book
	if err := c.do(ctx, http.MethodPut, bookPath(id), body, &book); err != nil {
		return domain.Book{}, err
	}
	return book, nil
}

func (c *Client) DeleteBook(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, bookPath(id), nil, nil)
}

func bookPath(id int64) string {
	return "/api/books/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg, Code: errResp.Code}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
