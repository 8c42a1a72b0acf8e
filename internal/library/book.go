// ABOUTME: Book record type, reading status values and the search/filter predicate
// ABOUTME: Filter is shared by the web UI, JSON API, CLI and terminal browser

package library

import (
	"fmt"
	"strings"
	"time"
)

// Status is the reading state of a book. Values outside the known set are
// kept verbatim; they simply never match a specific status filter other than
// themselves.
type Status string

// Status constants
const (
	StatusUnread  Status = "unread"
	StatusReading Status = "reading"
	StatusRead    Status = "read"

	// StatusAll is only meaningful as a filter.
	StatusAll Status = "all"
)

// Statuses lists the known reading states in display order.
var Statuses = []Status{StatusUnread, StatusReading, StatusRead}

// Book is one tracked book.
type Book struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Author  string    `json:"author"`
	Status  Status    `json:"status"`
	Cover   string    `json:"cover,omitempty"`
	AddedAt time.Time `json:"added_at,omitzero"`
}

// normalize trims user-entered text and defaults an empty status to unread.
func (b Book) normalize() Book {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.Cover = strings.TrimSpace(b.Cover)
	b.Status = NormalizeStatus(string(b.Status))
	return b
}

// NormalizeStatus lowercases known statuses and maps empty input to unread.
// Unknown values are returned trimmed but otherwise untouched.
func NormalizeStatus(s string) Status {
	s = strings.TrimSpace(s)
	if s == "" {
		return StatusUnread
	}
	for _, known := range Statuses {
		if strings.EqualFold(s, string(known)) {
			return known
		}
	}
	return Status(s)
}

// ParseStatusFilter parses a filter value. Empty means all.
func ParseStatusFilter(s string) (Status, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, string(StatusAll)) {
		return StatusAll, nil
	}
	for _, known := range Statuses {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown status filter %q (want all, unread, reading or read)", s)
}

// Query is a free-text search combined with a status filter.
type Query struct {
	Text   string
	Status Status // StatusAll or empty matches every status
}

// Matches reports whether b satisfies the query.
func (q Query) Matches(b Book) bool {
	if q.Status != "" && q.Status != StatusAll && b.Status != q.Status {
		return false
	}
	if q.Text == "" {
		return true
	}
	needle := strings.ToLower(q.Text)
	return strings.Contains(strings.ToLower(b.Title), needle) ||
		strings.Contains(strings.ToLower(b.Author), needle)
}

// Filter returns the books matching q in their original order.
func Filter(books []Book, q Query) []Book {
	out := make([]Book, 0, len(books))
	for _, b := range books {
		if q.Matches(b) {
			out = append(out, b)
		}
	}
	return out
}
