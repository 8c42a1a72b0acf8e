// ABOUTME: Template rendering functions for the browser UI
// ABOUTME: Loads templates from embedded filesystem and renders them

package webui

import (
	"html/template"
	"net/http"

	"github.com/2389/shelf/internal/library"
	"github.com/2389/shelf/internal/profile"
)

// Template data types
type indexData struct {
	Title     string
	Books     []library.Book
	Total     int
	Query     string
	Status    string
	Notice    string
	Profile   *profile.Profile
	CSRFToken string
}

// StatusFilters lists the filter options in menu order.
func (indexData) StatusFilters() []string {
	return []string{"all", "unread", "reading", "read"}
}

// BookStatuses lists the options offered by the add form.
func (indexData) BookStatuses() []library.Status {
	return library.Statuses
}

type helpData struct {
	Title   string
	Topics  []helpTopic
	Content template.HTML
}

// renderIndex renders the book list page
func (u *UI) renderIndex(w http.ResponseWriter, data indexData) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/index.html"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		u.logger.Error("failed to render index page", "error", err)
	}
}

// renderHelp renders a help topic
func (u *UI) renderHelp(w http.ResponseWriter, status int, data helpData) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/help.html"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		u.logger.Error("failed to render help page", "error", err)
	}
}
