// ABOUTME: Tests for the Google Books client against an httptest server
// ABOUTME: Covers field mapping, fallbacks, empty results and HTTP failures

package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/shelf/internal/library"
)

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, chan string) {
	t.Helper()
	queries := make(chan string, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volumes", r.URL.Path)
		queries <- r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, queries
}

func TestLookupISBN_MapsFirstVolume(t *testing.T) {
	srv, q := newTestServer(t, http.StatusOK, `{
		"totalItems": 2,
		"items": [
			{"volumeInfo": {"title": "Dune", "authors": ["Frank Herbert", "Brian Herbert"],
				"imageLinks": {"thumbnail": "http://img/dune.jpg"}}},
			{"volumeInfo": {"title": "Other"}}
		]
	}`)

	book, err := NewClient(srv.URL, time.Second).LookupISBN(context.Background(), "9780441013593")
	require.NoError(t, err)

	assert.Equal(t, "isbn:9780441013593", <-q)
	assert.Equal(t, library.Book{
		Title:  "Dune",
		Author: "Frank Herbert, Brian Herbert",
		Status: library.StatusUnread,
		Cover:  "http://img/dune.jpg",
	}, book)
}

func TestLookupISBN_Fallbacks(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"totalItems":1,"items":[{"volumeInfo":{}}]}`)

	book, err := NewClient(srv.URL+"/", time.Second).LookupISBN(context.Background(), "0441013597")
	require.NoError(t, err)

	assert.Equal(t, UnknownTitle, book.Title)
	assert.Equal(t, UnknownAuthor, book.Author)
	assert.Equal(t, "", book.Cover)
}

func TestLookupISBN_NoResults(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"kind":"books#volumes","totalItems":0}`)

	_, err := NewClient(srv.URL, time.Second).LookupISBN(context.Background(), "0000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupISBN_HTTPError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusTooManyRequests, `{"error":{"message":"quota"}}`)

	_, err := NewClient(srv.URL, time.Second).LookupISBN(context.Background(), "0441013597")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "429")
}

func TestLookupISBN_BadJSON(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `not json`)

	_, err := NewClient(srv.URL, time.Second).LookupISBN(context.Background(), "0441013597")
	assert.Error(t, err)
}

func TestLookupISBN_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, 200*time.Millisecond).LookupISBN(context.Background(), "0441013597")
	assert.Error(t, err)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", 0)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, 10*time.Second, c.http.Timeout)
}
