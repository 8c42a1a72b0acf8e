// ABOUTME: scan and browse commands
// ABOUTME: Looks up ISBNs from a code or barcode image and opens the terminal browser

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/shelf/internal/scan"
	"github.com/2389/shelf/internal/tui"
)

var scanImage string

var scanCmd = &cobra.Command{
	Use:   "scan [isbn]",
	Short: "Look up an ISBN and add the book",
	Long: `Look up a 10 to 13 digit code in Google Books and add the first match.

With --image the code is read from a photo of an EAN-13, UPC-A, EAN-8
barcode or a QR code instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse and filter books in the terminal",
	Args:  cobra.NoArgs,
	RunE:  runBrowse,
}

func init() {
	scanCmd.Flags().StringVarP(&scanImage, "image", "i", "", "Read the code from an image file")
}

func runScan(cmd *cobra.Command, args []string) error {
	code, err := scanInput(args)
	if err != nil {
		return err
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	notice, err := e.scanner().Submit(cmd.Context(), code)
	if errors.Is(err, scan.ErrInvalidCode) {
		return fmt.Errorf("scanned code %q must be 10 to 13 digits", code)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if notice.Added {
		fmt.Fprintln(out, color.GreenString(notice.Message))
	} else {
		fmt.Fprintln(out, color.YellowString(notice.Message))
	}
	return nil
}

// scanInput returns the code from the argument or the image flag.
func scanInput(args []string) (string, error) {
	switch {
	case scanImage != "" && len(args) > 0:
		return "", errors.New("pass either a code or --image, not both")
	case scanImage != "":
		f, err := os.Open(scanImage)
		if err != nil {
			return "", fmt.Errorf("opening image: %w", err)
		}
		defer f.Close()
		return scan.DecodeImage(f)
	case len(args) == 1:
		return args[0], nil
	default:
		return "", errors.New("an ISBN or --image is required")
	}
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	return tui.Run(cmd.Context(), e.shelf)
}
