// ABOUTME: Book commands that work on the local database
// ABOUTME: add, list, rm, import and export

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/shelf/internal/csvbook"
	"github.com/2389/shelf/internal/library"
)

var (
	addStatus  string
	addCover   string
	listQuery  string
	listStatus string
	listJSON   bool
	exportOut  string
)

var addCmd = &cobra.Command{
	Use:   "add <title> <author>",
	Short: "Add a book",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdd,
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List books, optionally filtered",
	Long: `List books in the order they were added.

--query matches title or author, case-insensitively.
--status is one of all, unread, reading or read.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var rmCmd = &cobra.Command{
	Use:   "rm <id|prefix|position>",
	Short: "Delete a book",
	Long: `Delete a book by its id, a unique id prefix, or its 1-based
position in the unfiltered list.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Append books from a CSV file (\"-\" reads stdin)",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all books as CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	addCmd.Flags().StringVarP(&addStatus, "status", "s", string(library.StatusUnread), "Reading status (unread, reading, read)")
	addCmd.Flags().StringVar(&addCover, "cover", "", "Cover image URL")

	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Text to match in title or author")
	listCmd.Flags().StringVarP(&listStatus, "status", "s", string(library.StatusAll), "Status filter")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print JSON instead of a table")

	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Output file (default stdout)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	b, err := e.shelf.Add(cmd.Context(), library.Book{
		Title:  args[0],
		Author: args[1],
		Status: library.Status(addStatus),
		Cover:  addCover,
	})
	if err != nil {
		return fmt.Errorf("adding book: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s by %s (%s) %s\n",
		color.GreenString("Added:"), b.Title, b.Author, b.Status, color.HiBlackString(b.ID))
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	status, err := library.ParseStatusFilter(listStatus)
	if err != nil {
		return err
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	books := e.shelf.Search(library.Query{Text: listQuery, Status: status})
	out := cmd.OutOrStdout()

	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(books)
	}

	if len(books) == 0 {
		fmt.Fprintln(out, "No books match.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tTITLE\tAUTHOR\tSTATUS")
	fmt.Fprintln(w, "  --\t-----\t------\t------")
	for _, b := range books {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", truncate(b.ID, 8), truncate(b.Title, 40), truncate(b.Author, 28), b.Status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nShowing %d of %d books.\n", len(books), e.shelf.Len())
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	b, err := e.shelf.Resolve(args[0])
	if err != nil {
		return err
	}
	removed, err := e.shelf.Remove(cmd.Context(), b.ID)
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.YellowString("Deleted:"), removed.Title)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening csv: %w", err)
		}
		defer f.Close()
		in = f
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	imported, skipped, err := csvbook.Import(cmd.Context(), e.shelf, in)
	if errors.Is(err, csvbook.ErrMissingColumns) {
		return errors.New("the CSV file needs Title and Author columns")
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %d book(s)", color.GreenString("Imported"), imported)
	if skipped > 0 {
		fmt.Fprintf(out, ", skipped %d row(s) without a title or author", skipped)
	}
	fmt.Fprintln(out, ".")
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	if exportOut == "" {
		return csvbook.Export(cmd.OutOrStdout(), e.shelf.Books())
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("creating %s: %w", exportOut, err)
	}
	if err := csvbook.Export(f, e.shelf.Books()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d book(s) to %s\n", e.shelf.Len(), exportOut)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
