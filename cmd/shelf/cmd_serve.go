// ABOUTME: serve and init commands
// ABOUTME: Runs the HTTP service and writes a starter config file

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/shelf/internal/config"
	"github.com/2389/shelf/internal/server"
)

var initForce bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web interface and JSON API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
}

func runServe(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	cyan := color.New(color.FgCyan)
	cyan.Fprint(out, banner)

	gray := color.New(color.FgHiBlack)
	gray.Fprintf(out, "    version: %s\n\n", version)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	green.Fprint(out, "    ▶ ")
	fmt.Fprintf(out, "Config:    %s\n", resolveConfigPath())
	green.Fprint(out, "    ▶ ")
	fmt.Fprintf(out, "Database:  %s\n", cfg.Database.Path)
	green.Fprint(out, "    ▶ ")
	fmt.Fprintf(out, "HTTP:      http://%s\n", cfg.Server.HTTPAddr)
	fmt.Fprintln(out)

	logger.Info("starting shelf",
		"config", resolveConfigPath(),
		"http_addr", cfg.Server.HTTPAddr,
	)

	srv, err := server.New(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Run(cmd.Context())
}

func runInit(cmd *cobra.Command, _ []string) error {
	path := resolveConfigPath()
	if err := config.WriteTemplate(path, initForce); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config written to %s\n", path)
	fmt.Fprintln(out, "\nTo start the server:")
	fmt.Fprintln(out, "  shelf serve")
	return nil
}
