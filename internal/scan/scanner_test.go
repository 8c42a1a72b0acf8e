// ABOUTME: Tests for Scanner.Submit with a fake catalog
// ABOUTME: Covers validation, notices, repeat suppression and shelf side effects

package scan

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/shelf/internal/catalog"
	"github.com/2389/shelf/internal/library"
	"github.com/2389/shelf/internal/store"
)

type fakeCatalog struct {
	mu    sync.Mutex
	calls []string
	book  library.Book
	err   error
}

func (f *fakeCatalog) LookupISBN(ctx context.Context, isbn string) (library.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, isbn)
	return f.book, f.err
}

func (f *fakeCatalog) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestScanner(t *testing.T, cat *fakeCatalog, window time.Duration) (*Scanner, *library.Shelf, *store.MockStore) {
	t.Helper()
	kv := store.NewMockStore()
	shelf, err := library.Open(context.Background(), kv)
	require.NoError(t, err)
	return New(shelf, cat, window), shelf, kv
}

func TestValidCode(t *testing.T) {
	valid := []string{"0441013597", "9780441013593", " 9780441013593 ", "12345678901"}
	invalid := []string{"", "123456789", "12345678901234", "978-0441013593", "044101359X", "abcdefghij"}

	for _, s := range valid {
		assert.True(t, ValidCode(s), "want valid: %q", s)
	}
	for _, s := range invalid {
		assert.False(t, ValidCode(s), "want invalid: %q", s)
	}
}

func TestSubmit_AddsBook(t *testing.T) {
	cat := &fakeCatalog{book: library.Book{Title: "Dune", Author: "Frank Herbert", Status: library.StatusUnread}}
	s, shelf, _ := newTestScanner(t, cat, time.Minute)

	n, err := s.Submit(context.Background(), " 9780441013593 ")
	require.NoError(t, err)

	assert.True(t, n.Added)
	assert.Equal(t, "Added: Dune by Frank Herbert", n.Message)
	require.NotNil(t, n.Book)
	assert.NotEmpty(t, n.Book.ID)
	assert.Equal(t, []string{"9780441013593"}, cat.calls)

	books := shelf.Books()
	require.Len(t, books, 1)
	assert.Equal(t, n.Book.ID, books[0].ID)
}

func TestSubmit_InvalidCodeSkipsLookup(t *testing.T) {
	cat := &fakeCatalog{}
	s, _, _ := newTestScanner(t, cat, time.Minute)

	_, err := s.Submit(context.Background(), "12345")
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Equal(t, 0, cat.callCount())
}

func TestSubmit_NotFoundLeavesShelfUnchanged(t *testing.T) {
	cat := &fakeCatalog{err: catalog.ErrNotFound}
	s, shelf, _ := newTestScanner(t, cat, time.Minute)

	n, err := s.Submit(context.Background(), "0000000000")
	require.NoError(t, err)
	assert.False(t, n.Added)
	assert.Equal(t, MsgNotFound, n.Message)
	assert.Nil(t, n.Book)
	assert.Equal(t, 0, shelf.Len())
}

func TestSubmit_LookupFailure(t *testing.T) {
	cat := &fakeCatalog{err: errors.New("connection refused")}
	s, shelf, _ := newTestScanner(t, cat, time.Minute)

	n, err := s.Submit(context.Background(), "0441013597")
	require.NoError(t, err)
	assert.Equal(t, MsgLookupFailed, n.Message)
	assert.Equal(t, 0, shelf.Len())

	// failures do not hold the code in the repeat window
	_, err = s.Submit(context.Background(), "0441013597")
	require.NoError(t, err)
	assert.Equal(t, 2, cat.callCount())
}

func TestSubmit_RepeatSuppressed(t *testing.T) {
	cat := &fakeCatalog{book: library.Book{Title: "Dune", Author: "Herbert"}}
	s, shelf, _ := newTestScanner(t, cat, time.Minute)
	ctx := context.Background()

	_, err := s.Submit(ctx, "9780441013593")
	require.NoError(t, err)
	_, err = s.Submit(ctx, "9780441013593")
	assert.ErrorIs(t, err, ErrDuplicateScan)

	assert.Equal(t, 1, cat.callCount())
	assert.Equal(t, 1, shelf.Len())

	_, err = s.Submit(ctx, "0441013597")
	require.NoError(t, err)
	assert.Equal(t, 2, shelf.Len())
}

func TestSubmit_ZeroWindowAllowsRepeats(t *testing.T) {
	cat := &fakeCatalog{book: library.Book{Title: "Dune", Author: "Herbert"}}
	s, shelf, _ := newTestScanner(t, cat, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Submit(ctx, "9780441013593")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, shelf.Len())
}

func TestSubmit_SaveFailure(t *testing.T) {
	cat := &fakeCatalog{book: library.Book{Title: "Dune", Author: "Herbert"}}
	s, shelf, kv := newTestScanner(t, cat, time.Minute)
	kv.SetErr = errors.New("read-only")

	_, err := s.Submit(context.Background(), "9780441013593")
	assert.ErrorIs(t, err, kv.SetErr)
	assert.Equal(t, 0, shelf.Len())
}
