// ABOUTME: CSV import that maps columns by header name
// ABOUTME: Rows missing a title or author are skipped and counted

package csvbook

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/2389/shelf/internal/library"
)

// ErrMissingColumns is returned when the header lacks Title or Author.
var ErrMissingColumns = errors.New("csv header must include Title and Author columns")

// Result is the outcome of parsing an import file.
type Result struct {
	Books   []library.Book
	Skipped int
}

type columns struct {
	title, author, status, cover int
}

// Import parses r and appends the accepted rows to shelf in one mutation.
func Import(ctx context.Context, shelf *library.Shelf, r io.Reader) (imported, skipped int, err error) {
	res, err := Parse(r)
	if err != nil {
		return 0, 0, err
	}
	added, err := shelf.AddAll(ctx, res.Books)
	if err != nil {
		return 0, res.Skipped, err
	}
	return len(added), res.Skipped, nil
}

// Parse reads CSV from r and returns the accepted books in file order.
// The caller appends them to the shelf.
func Parse(r io.Reader) (Result, error) {
	logger := slog.Default().With("component", "csvbook")

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Result{}, fmt.Errorf("empty file: %w", ErrMissingColumns)
	}
	if err != nil {
		return Result{}, fmt.Errorf("reading header: %w", err)
	}

	cols := locate(header)
	if cols.title < 0 || cols.author < 0 {
		return Result{}, ErrMissingColumns
	}

	var res Result
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				logger.Debug("skipping unparsable row", "line", perr.Line, "error", perr.Err)
				res.Skipped++
				continue
			}
			return Result{}, fmt.Errorf("reading row %d: %w", line, err)
		}
		if isBlank(row) {
			continue
		}

		title := field(row, cols.title)
		author := field(row, cols.author)
		if title == "" || author == "" {
			res.Skipped++
			continue
		}

		res.Books = append(res.Books, library.Book{
			Title:  title,
			Author: author,
			Status: library.NormalizeStatus(field(row, cols.status)),
			Cover:  field(row, cols.cover),
		})
	}

	logger.Debug("parsed csv", "accepted", len(res.Books), "skipped", res.Skipped)
	return res, nil
}

func locate(header []string) columns {
	cols := columns{-1, -1, -1, -1}
	for i, h := range header {
		// a UTF-8 BOM sticks to the first header cell
		h = strings.TrimPrefix(h, "\ufeff")
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "title":
			if cols.title < 0 {
				cols.title = i
			}
		case "author":
			if cols.author < 0 {
				cols.author = i
			}
		case "status":
			if cols.status < 0 {
				cols.status = i
			}
		case "cover":
			if cols.cover < 0 {
				cols.cover = i
			}
		}
	}
	return cols
}

// field returns the trimmed value at i, or "" for absent columns and
// short rows.
func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
