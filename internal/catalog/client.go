// ABOUTME: Google Books volumes client used to resolve scanned ISBNs
// ABOUTME: Maps the first matching volume onto a library.Book with fallbacks

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2389/shelf/internal/library"
)

// DefaultBaseURL is the public Google Books API root.
const DefaultBaseURL = "https://www.googleapis.com/books/v1"

// Fallbacks for volumes missing metadata.
const (
	UnknownTitle  = "Unknown Title"
	UnknownAuthor = "Unknown Author"
)

// ErrNotFound is returned when the catalog has no volume for an ISBN.
var ErrNotFound = errors.New("book not found in catalog")

// Looker resolves an ISBN to a book record.
type Looker interface {
	LookupISBN(ctx context.Context, isbn string) (library.Book, error)
}

// Client queries the volumes endpoint. The zero value is not usable; call
// NewClient.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

var _ Looker = (*Client)(nil)

// NewClient creates a client for baseURL with a per-request timeout.
// Empty baseURL means DefaultBaseURL; zero timeout means 10s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  slog.Default().With("component", "catalog"),
	}
}

type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo volumeInfo `json:"volumeInfo"`
	} `json:"items"`
}

type volumeInfo struct {
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	ImageLinks struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"imageLinks"`
}

// LookupISBN fetches the first volume matching isbn. The returned book has
// no ID; the shelf assigns one on add.
func (c *Client) LookupISBN(ctx context.Context, isbn string) (library.Book, error) {
	u := fmt.Sprintf("%s/volumes?q=%s", c.baseURL, url.QueryEscape("isbn:"+isbn))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return library.Book{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return library.Book{}, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("catalog lookup", "isbn", isbn, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return library.Book{}, fmt.Errorf("catalog returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return library.Book{}, fmt.Errorf("decoding catalog response: %w", err)
	}
	if result.TotalItems == 0 || len(result.Items) == 0 {
		return library.Book{}, ErrNotFound
	}

	return toBook(result.Items[0].VolumeInfo), nil
}

func toBook(v volumeInfo) library.Book {
	b := library.Book{
		Title:  v.Title,
		Author: strings.Join(v.Authors, ", "),
		Status: library.StatusUnread,
		Cover:  v.ImageLinks.Thumbnail,
	}
	if b.Title == "" {
		b.Title = UnknownTitle
	}
	if b.Author == "" {
		b.Author = UnknownAuthor
	}
	return b
}
