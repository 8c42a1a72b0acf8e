// ABOUTME: Shelf owns the ordered book list and mirrors it to the key/value store
// ABOUTME: Every mutation rewrites the full list under the "books" key

package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/shelf/internal/store"
)

// ErrBookNotFound is returned when no book matches an ID, prefix or position
var ErrBookNotFound = errors.New("book not found")

// ErrAmbiguousRef is returned when an ID prefix matches more than one book
var ErrAmbiguousRef = errors.New("book reference is ambiguous")

// Shelf is the in-memory ordered list of books backed by a KV store.
// It is safe for concurrent use.
type Shelf struct {
	mu     sync.RWMutex
	kv     store.KV
	books  []Book
	logger *slog.Logger

	// now and newID are replaceable for tests
	now   func() time.Time
	newID func() string
}

// New creates an empty shelf bound to kv. Call Load to read persisted books.
func New(kv store.KV) *Shelf {
	return &Shelf{
		kv:     kv,
		logger: slog.Default().With("component", "library"),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// Open creates a shelf and loads its persisted contents.
func Open(ctx context.Context, kv store.KV) (*Shelf, error) {
	s := New(kv)
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory list with the persisted one. A missing or
// unparsable value yields an empty shelf; only storage failures are errors.
// Records persisted without an ID are given one and empty statuses become
// unread; the upgraded list is written back so IDs stay stable.
func (s *Shelf) Load(ctx context.Context) error {
	data, err := s.kv.Get(ctx, store.KeyBooks)
	if errors.Is(err, store.ErrNotFound) {
		s.mu.Lock()
		s.books = nil
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading books: %w", err)
	}

	var books []Book
	if err := json.Unmarshal(data, &books); err != nil {
		s.logger.Warn("stored books are unreadable, starting empty", "error", err, "size", len(data))
		books = nil
	}

	upgraded := 0
	for i := range books {
		changed := false
		if books[i].ID == "" {
			books[i].ID = s.newID()
			changed = true
		}
		if st := NormalizeStatus(string(books[i].Status)); st != books[i].Status {
			books[i].Status = st
			changed = true
		}
		if changed {
			upgraded++
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.books = books
	if upgraded > 0 {
		s.logger.Info("upgraded legacy books", "count", upgraded)
		// ids must survive the next open
		if err := s.replaceLocked(ctx, books); err != nil {
			s.logger.Warn("failed to save upgraded books", "error", err)
		}
	}

	s.logger.Debug("loaded books", "count", len(books))
	return nil
}

// Books returns a copy of every book in shelf order.
func (s *Shelf) Books() []Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Book, len(s.books))
	copy(out, s.books)
	return out
}

// Len returns the number of books on the shelf.
func (s *Shelf) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

// Search returns the books matching q in shelf order.
func (s *Shelf) Search(q Query) []Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Filter(s.books, q)
}

// Get returns the book with the given ID.
func (s *Shelf) Get(id string) (Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.books[i], nil
	}
	return Book{}, ErrBookNotFound
}

// Resolve finds a book by exact ID, 1-based position, or unique ID prefix.
// A number outside the list is tried as an ID prefix.
func (s *Shelf) Resolve(ref string) (Book, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Book{}, ErrBookNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(ref); i >= 0 {
		return s.books[i], nil
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(s.books) {
			return s.books[n-1], nil
		}
	}

	match := -1
	for i, b := range s.books {
		if strings.HasPrefix(b.ID, ref) {
			if match >= 0 {
				return Book{}, ErrAmbiguousRef
			}
			match = i
		}
	}
	if match < 0 {
		return Book{}, ErrBookNotFound
	}
	return s.books[match], nil
}

// Add appends a book and persists the shelf. Text fields are trimmed, an
// empty status becomes unread, and a fresh ID is always assigned.
func (s *Shelf) Add(ctx context.Context, b Book) (Book, error) {
	added, err := s.AddAll(ctx, []Book{b})
	if err != nil {
		return Book{}, err
	}
	return added[0], nil
}

// AddAll appends books in order as a single mutation.
func (s *Shelf) AddAll(ctx context.Context, books []Book) ([]Book, error) {
	if len(books) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	added := make([]Book, 0, len(books))
	for _, b := range books {
		b = b.normalize()
		b.ID = s.newID()
		if b.AddedAt.IsZero() {
			b.AddedAt = now
		}
		added = append(added, b)
	}

	next := make([]Book, 0, len(s.books)+len(added))
	next = append(next, s.books...)
	next = append(next, added...)

	if err := s.replaceLocked(ctx, next); err != nil {
		return nil, err
	}

	s.logger.Info("added books", "count", len(added), "total", len(next))
	return added, nil
}

// Remove deletes the book with the given ID and persists the shelf.
func (s *Shelf) Remove(ctx context.Context, id string) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Book{}, ErrBookNotFound
	}
	return s.removeLocked(ctx, i)
}

// RemoveAt deletes the book at the zero-based index. Later books shift
// down by one.
func (s *Shelf) RemoveAt(ctx context.Context, index int) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.books) {
		return Book{}, ErrBookNotFound
	}
	return s.removeLocked(ctx, index)
}

// removeLocked must be called with mu held.
func (s *Shelf) removeLocked(ctx context.Context, i int) (Book, error) {
	removed := s.books[i]

	next := make([]Book, 0, len(s.books)-1)
	next = append(next, s.books[:i]...)
	next = append(next, s.books[i+1:]...)

	if err := s.replaceLocked(ctx, next); err != nil {
		return Book{}, err
	}

	s.logger.Info("removed book", "id", removed.ID, "title", removed.Title)
	return removed, nil
}

// replaceLocked persists next and, only on success, makes it the current
// list. Must be called with mu held.
func (s *Shelf) replaceLocked(ctx context.Context, next []Book) error {
	if next == nil {
		next = []Book{}
	}
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encoding books: %w", err)
	}
	if err := s.kv.Set(ctx, store.KeyBooks, data); err != nil {
		return fmt.Errorf("saving books: %w", err)
	}
	s.books = next
	return nil
}

// indexOf must be called with mu held. Returns -1 when absent.
func (s *Shelf) indexOf(id string) int {
	for i, b := range s.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}
