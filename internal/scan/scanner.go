// ABOUTME: Scanner validates codes, looks them up in the catalog and adds the result
// ABOUTME: Produces the user-facing notice for each submission

package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/2389/shelf/internal/catalog"
	"github.com/2389/shelf/internal/library"
)

var (
	// ErrInvalidCode is returned for input that is not 10 to 13 digits.
	ErrInvalidCode = errors.New("code must be 10 to 13 digits")

	// ErrDuplicateScan is returned when the same code was submitted within
	// the repeat window.
	ErrDuplicateScan = errors.New("code was just scanned")
)

// Messages shown for lookups that do not add a book.
const (
	MsgNotFound     = "Book not found in Google Books."
	MsgLookupFailed = "Error fetching book data."
)

const maxRecentCodes = 1024

var codePattern = regexp.MustCompile(`^\d{10,13}$`)

// ValidCode reports whether s, once trimmed, is 10 to 13 ASCII digits.
func ValidCode(s string) bool {
	return codePattern.MatchString(strings.TrimSpace(s))
}

// Notice is the outcome of a submission as shown to the user.
type Notice struct {
	Added   bool          `json:"added"`
	Message string        `json:"message"`
	Book    *library.Book `json:"book,omitempty"`
}

// Scanner adds books to a shelf from scanned codes.
type Scanner struct {
	shelf   *library.Shelf
	catalog catalog.Looker
	recent  *recentCodes
	logger  *slog.Logger
}

// New creates a scanner. Repeats of a code within window are rejected;
// a zero window accepts every submission.
func New(shelf *library.Shelf, looker catalog.Looker, window time.Duration) *Scanner {
	return &Scanner{
		shelf:   shelf,
		catalog: looker,
		recent:  newRecentCodes(window, maxRecentCodes),
		logger:  slog.Default().With("component", "scan"),
	}
}

// Submit handles one scanned code. Invalid and repeated codes return an
// error. Catalog misses and lookup failures are reported through the
// notice with a nil error, leaving the shelf unchanged. Only a failure to
// persist the new book is returned as an error after a successful lookup.
func (s *Scanner) Submit(ctx context.Context, code string) (Notice, error) {
	code = strings.TrimSpace(code)
	if !codePattern.MatchString(code) {
		return Notice{}, ErrInvalidCode
	}
	if s.recent.checkAndMark(code) {
		s.logger.Debug("ignoring repeat scan", "code", code)
		return Notice{}, ErrDuplicateScan
	}

	found, err := s.catalog.LookupISBN(ctx, code)
	if errors.Is(err, catalog.ErrNotFound) {
		s.logger.Info("no catalog match", "code", code)
		return Notice{Message: MsgNotFound}, nil
	}
	if err != nil {
		// let the user retry straight away
		s.recent.forget(code)
		s.logger.Error("catalog lookup failed", "code", code, "error", err)
		return Notice{Message: MsgLookupFailed}, nil
	}

	added, err := s.shelf.Add(ctx, found)
	if err != nil {
		s.recent.forget(code)
		return Notice{}, fmt.Errorf("adding scanned book: %w", err)
	}

	s.logger.Info("added scanned book", "code", code, "id", added.ID, "title", added.Title)
	return Notice{
		Added:   true,
		Message: fmt.Sprintf("Added: %s by %s", added.Title, added.Author),
		Book:    &added,
	}, nil
}
