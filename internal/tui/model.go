// ABOUTME: bubbletea model for browsing, filtering and deleting books
// ABOUTME: Re-runs library.Filter on every keystroke and status change

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389/shelf/internal/library"
)

// filterModes is the tab cycle order.
var filterModes = []library.Status{
	library.StatusAll,
	library.StatusUnread,
	library.StatusReading,
	library.StatusRead,
}

// bookDeletedMsg reports the outcome of a delete command.
type bookDeletedMsg struct {
	book library.Book
	err  error
}

// Model is the terminal browser state.
type Model struct {
	ctx   context.Context
	shelf *library.Shelf

	width  int
	height int
	table  table.Model

	visible []library.Book

	filterInput   textinput.Model
	filterMode    int
	filterFocused bool

	message string
	isError bool

	styles styles
}

// New creates a browser over shelf.
func New(ctx context.Context, shelf *library.Shelf) Model {
	t := table.New(
		table.WithColumns(columnsFor(100)),
		table.WithFocused(true),
		table.WithHeight(15),
		table.WithStyles(tableStyles()),
	)

	fi := textinput.New()
	fi.Placeholder = "Search title or author..."
	fi.CharLimit = 100
	fi.Width = 40

	m := Model{
		ctx:         ctx,
		shelf:       shelf,
		table:       t,
		filterInput: fi,
		styles:      defaultStyles(),
	}
	m.applyFilter()
	return m
}

// Run starts the browser and blocks until the user quits.
func Run(ctx context.Context, shelf *library.Shelf) error {
	p := tea.NewProgram(New(ctx, shelf), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case bookDeletedMsg:
		if msg.err != nil {
			m.setMessage(fmt.Sprintf("Delete failed: %v", msg.err), true)
		} else {
			m.setMessage(fmt.Sprintf("Deleted: %s", msg.book.Title), false)
		}
		m.applyFilter()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.filterFocused {
			switch msg.String() {
			case "esc", "enter":
				m.filterFocused = false
				m.filterInput.Blur()
				return m, nil
			}
			m.filterInput, cmd = m.filterInput.Update(msg)
			m.applyFilter()
			return m, cmd
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "/":
			m.filterFocused = true
			return m, m.filterInput.Focus()
		case "tab":
			m.filterMode = (m.filterMode + 1) % len(filterModes)
			m.applyFilter()
			return m, nil
		case "shift+tab":
			m.filterMode = (m.filterMode + len(filterModes) - 1) % len(filterModes)
			m.applyFilter()
			return m, nil
		case "esc":
			m.filterInput.SetValue("")
			m.filterMode = 0
			m.applyFilter()
			return m, nil
		case "d", "delete":
			if b, ok := m.selected(); ok {
				return m, m.deleteBook(b)
			}
			return m, nil
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Query returns the search currently applied.
func (m Model) Query() library.Query {
	return library.Query{
		Text:   m.filterInput.Value(),
		Status: filterModes[m.filterMode],
	}
}

// Visible returns the books currently listed.
func (m Model) Visible() []library.Book {
	return m.visible
}

// applyFilter recomputes the visible books from the shelf.
func (m *Model) applyFilter() {
	m.visible = m.shelf.Search(m.Query())

	rows := make([]table.Row, 0, len(m.visible))
	for _, b := range m.visible {
		rows = append(rows, table.Row{b.Title, b.Author, string(b.Status), shortID(b.ID)})
	}
	m.table.SetRows(rows)

	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m Model) selected() (library.Book, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.visible) {
		return library.Book{}, false
	}
	return m.visible[c], true
}

func (m Model) deleteBook(b library.Book) tea.Cmd {
	ctx, shelf := m.ctx, m.shelf
	return func() tea.Msg {
		removed, err := shelf.Remove(ctx, b.ID)
		if err != nil {
			return bookDeletedMsg{book: b, err: err}
		}
		return bookDeletedMsg{book: removed}
	}
}

func (m *Model) setMessage(text string, isError bool) {
	m.message = text
	m.isError = isError
}

func (m *Model) setSize(w, h int) {
	m.width = w
	m.height = h
	m.table.SetColumns(columnsFor(w - 4))
	m.table.SetWidth(w - 4)
	m.table.SetHeight(max(h-8, 3))
}

// columnsFor splits width between the table columns.
func columnsFor(width int) []table.Column {
	const statusW, idW = 9, 8
	rest := max(width-statusW-idW-8, 20)
	titleW := rest * 3 / 5
	return []table.Column{
		{Title: "Title", Width: titleW},
		{Title: "Author", Width: rest - titleW},
		{Title: "Status", Width: statusW},
		{Title: "ID", Width: idW},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// View renders the browser.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Header.Render(" shelf "))
	sb.WriteString("\n\n")

	sb.WriteString(m.renderFilterBar())
	sb.WriteString("\n\n")

	sb.WriteString(m.table.View())
	sb.WriteString("\n")

	total := m.shelf.Len()
	sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("Showing %d of %d books", len(m.visible), total)))
	sb.WriteString("\n")

	if m.message != "" {
		style := m.styles.Message
		if m.isError {
			style = m.styles.Error
		}
		sb.WriteString(style.Render(m.message))
		sb.WriteString("\n")
	}

	sb.WriteString(m.styles.Muted.Render("[/] Search  [Tab] Status  [d] Delete  [Esc] Clear  [q] Quit"))
	return sb.String()
}

// renderFilterBar renders the search input and status tabs
func (m Model) renderFilterBar() string {
	var sb strings.Builder

	box := m.styles.Filter
	if m.filterFocused {
		box = m.styles.Focused
	}
	sb.WriteString(box.Render(m.filterInput.View()))
	sb.WriteString("  ")

	for i, mode := range filterModes {
		style := m.styles.Muted
		if i == m.filterMode {
			style = m.styles.Active
		}
		sb.WriteString(style.Render(string(mode)))
		sb.WriteString("  ")
	}
	return sb.String()
}
