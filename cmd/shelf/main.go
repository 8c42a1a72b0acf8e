// ABOUTME: Entry point for the shelf book tracker
// ABOUTME: Wires the cobra command tree, global flags and logger setup

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
      _          _  __
  ___| |__   ___| |/ _|
 / __| '_ \ / _ \ | |_
 \__ \ | | |  __/ |  _|
 |___/_| |_|\___|_|_|
`

var (
	// Global flags
	configPath string
	dbPath     string
)

var rootCmd = &cobra.Command{
	Use:   "shelf",
	Short: "A personal book tracker",
	Long: `shelf keeps a list of books with a reading status.

Books can be added by hand, imported from CSV, or looked up by ISBN.
Run "shelf serve" for the web interface or "shelf browse" for the
terminal browser. All other commands work directly on the local database.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $SHELF_CONFIG or ~/.config/shelf/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (overrides database.path)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		cancel()
		os.Exit(1)
	}
}
