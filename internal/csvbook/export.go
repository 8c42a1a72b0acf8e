// ABOUTME: CSV export of the shelf in Title,Author,Status,Cover order
// ABOUTME: Every field is quoted and embedded quotes are doubled

package csvbook

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/2389/shelf/internal/library"
)

// Download metadata for HTTP responses.
const (
	FileName    = "books.csv"
	ContentType = "text/csv; charset=utf-8"
)

// Header is the column order written by Export.
var Header = []string{"Title", "Author", "Status", "Cover"}

// Export writes books as CSV to w, header first.
func Export(w io.Writer, books []library.Book) error {
	bw := bufio.NewWriter(w)

	if err := writeRow(bw, Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, b := range books {
		row := []string{b.Title, b.Author, string(b.Status), b.Cover}
		if err := writeRow(bw, row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	return bw.Flush()
}

// writeRow quotes every field, unlike csv.Writer which quotes on demand.
func writeRow(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(quote(f)); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\n")
	return err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
