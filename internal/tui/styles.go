// ABOUTME: lipgloss styles for the terminal browser
// ABOUTME: One palette shared by the header, filter bar, table and status line

package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	Header  lipgloss.Style
	Muted   lipgloss.Style
	Active  lipgloss.Style
	Message lipgloss.Style
	Error   lipgloss.Style
	Filter  lipgloss.Style
	Focused lipgloss.Style
}

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"}
	colorBorder  = lipgloss.AdaptiveColor{Light: "#C4C4C4", Dark: "#4A4A4A"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#777777"}
	colorError   = lipgloss.Color("#E05A5A")
)

func defaultStyles() styles {
	filter := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	return styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorPrimary).
			Padding(0, 1),
		Muted:   lipgloss.NewStyle().Foreground(colorMuted),
		Active:  lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Underline(true),
		Message: lipgloss.NewStyle().Foreground(colorPrimary),
		Error:   lipgloss.NewStyle().Foreground(colorError),
		Filter:  filter,
		Focused: filter.BorderForeground(colorPrimary),
	}
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(colorPrimary).
		Bold(false)
	return s
}
