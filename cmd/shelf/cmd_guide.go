// ABOUTME: guide command that prints the help pages in the terminal
// ABOUTME: Renders the same Markdown the web UI serves using glamour

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/2389/shelf/internal/webui"
)

var guidePlain bool

var guideCmd = &cobra.Command{
	Use:   "guide [topic]",
	Short: "Read the help pages",
	Long: `Print one of the help pages also shown at /help in the web UI.
Without a topic the available topics are listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGuide,
}

func init() {
	guideCmd.Flags().BoolVar(&guidePlain, "plain", false, "Print without colors")
	rootCmd.AddCommand(guideCmd)
}

func runGuide(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		topics, err := webui.HelpTopics()
		if err != nil {
			return fmt.Errorf("listing help topics: %w", err)
		}
		fmt.Fprintln(out, "Help topics:")
		for _, t := range topics {
			fmt.Fprintf(out, "  %s\n", t)
		}
		fmt.Fprintln(out, "\nRun \"shelf guide <topic>\" to read one.")
		return nil
	}

	md, err := webui.HelpMarkdown(args[0])
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no help topic %q", args[0])
	}
	if err != nil {
		return err
	}

	style := glamour.WithAutoStyle()
	if guidePlain {
		style = glamour.WithStandardStyle("notty")
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(80))
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	rendered, err := renderer.Render(string(md))
	if err != nil {
		return fmt.Errorf("rendering help: %w", err)
	}
	fmt.Fprint(out, strings.TrimLeft(rendered, "\n"))
	return nil
}
