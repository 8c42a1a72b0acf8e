// ABOUTME: Browser UI routes for listing, adding, deleting, importing and scanning books
// ABOUTME: Handles CSRF protection and the profile sign-in toggle

package webui

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/2389/shelf/internal/csvbook"
	"github.com/2389/shelf/internal/library"
	"github.com/2389/shelf/internal/profile"
	"github.com/2389/shelf/internal/scan"
)

const (
	// CSRFCookieName is the name of the CSRF token cookie
	CSRFCookieName = "shelf_csrf"

	// maxUploadSize bounds CSV and image uploads
	maxUploadSize = 10 << 20
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const csrfContextKey contextKey = "csrf_token"

// UI handles the browser routes
type UI struct {
	shelf    *library.Shelf
	scanner  *scan.Scanner
	profiles *profile.Service
	logger   *slog.Logger
}

// New creates a new UI handler
func New(shelf *library.Shelf, scanner *scan.Scanner, profiles *profile.Service) *UI {
	return &UI{
		shelf:    shelf,
		scanner:  scanner,
		profiles: profiles,
		logger:   slog.Default().With("component", "webui"),
	}
}

// RegisterRoutes registers all browser routes on the given mux
func (u *UI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", u.handleIndex)
	mux.HandleFunc("POST /books", u.handleAdd)
	mux.HandleFunc("POST /books/{id}/delete", u.handleDelete)
	mux.HandleFunc("GET /books/export", u.handleExport)
	mux.HandleFunc("POST /books/import", u.handleImport)
	mux.HandleFunc("POST /scan", u.handleScan)
	mux.HandleFunc("POST /profile/signin", u.handleSignIn)
	mux.HandleFunc("POST /profile/signout", u.handleSignOut)
	mux.HandleFunc("GET /help", u.handleHelp)

	u.logger.Info("web ui routes registered")
}

// getCSRFToken retrieves the CSRF token from the request context
func getCSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfContextKey).(string)
	return token
}

// ensureCSRFToken generates a CSRF token if not present and adds it to context
func (u *UI) ensureCSRFToken(w http.ResponseWriter, r *http.Request) (*http.Request, string) {
	cookie, err := r.Cookie(CSRFCookieName)
	if err == nil && cookie.Value != "" {
		ctx := context.WithValue(r.Context(), csrfContextKey, cookie.Value)
		return r.WithContext(ctx), cookie.Value
	}

	token, err := generateSecureToken(32)
	if err != nil {
		u.logger.Error("failed to generate CSRF token", "error", err)
		token = "" // Will fail validation, but won't crash
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	ctx := context.WithValue(r.Context(), csrfContextKey, token)
	return r.WithContext(ctx), token
}

// validateCSRF checks the CSRF token from form against cookie
func (u *UI) validateCSRF(r *http.Request) bool {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	formToken := r.FormValue("csrf_token")
	if formToken == "" {
		formToken = r.Header.Get("X-CSRF-Token")
	}

	return formToken != "" && formToken == cookie.Value
}

// requireCSRF rejects a POST whose form token does not match the cookie.
// Multipart bodies are parsed first so the token field is visible.
func (u *UI) requireCSRF(w http.ResponseWriter, r *http.Request) bool {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			http.Error(w, "Upload too large or malformed", http.StatusBadRequest)
			return false
		}
	}
	if !u.validateCSRF(r) {
		u.logger.Warn("rejected request with invalid CSRF token", "path", r.URL.Path)
		http.Error(w, "Invalid request, please reload the page", http.StatusForbidden)
		return false
	}
	return true
}

// redirectHome sends the browser back to the list, keeping the search and
// filter the form was submitted from.
func redirectHome(w http.ResponseWriter, r *http.Request, notice string) {
	v := url.Values{}
	if q := r.FormValue("q"); q != "" {
		v.Set("q", q)
	}
	if s := r.FormValue("status"); s != "" && s != string(library.StatusAll) {
		v.Set("status", s)
	}
	if notice != "" {
		v.Set("notice", notice)
	}
	target := "/"
	if len(v) > 0 {
		target += "?" + v.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleIndex renders the book list with the search form applied
func (u *UI) handleIndex(w http.ResponseWriter, r *http.Request) {
	r, csrfToken := u.ensureCSRFToken(w, r)

	query := r.URL.Query()
	notice := query.Get("notice")

	status, err := library.ParseStatusFilter(query.Get("status"))
	if err != nil {
		status = library.StatusAll
		if notice == "" {
			notice = "Unknown status filter, showing all books."
		}
	}

	var current *profile.Profile
	if p, err := u.profiles.Current(r.Context()); err == nil {
		current = &p
	} else if !errors.Is(err, profile.ErrNoProfile) {
		u.logger.Error("failed to load profile", "error", err)
	}

	q := library.Query{Text: query.Get("q"), Status: status}

	u.renderIndex(w, indexData{
		Title:     "Books",
		Books:     u.shelf.Search(q),
		Total:     u.shelf.Len(),
		Query:     q.Text,
		Status:    string(status),
		Notice:    notice,
		Profile:   current,
		CSRFToken: csrfToken,
	})
}

// handleAdd appends the book from the add form
func (u *UI) handleAdd(w http.ResponseWriter, r *http.Request) {
	if !u.requireCSRF(w, r) {
		return
	}

	// the add form names its status field book_status so it does not
	// clash with the list filter carried in status
	b := library.Book{
		Title:  r.FormValue("title"),
		Author: r.FormValue("author"),
		Status: library.Status(r.FormValue("book_status")),
		Cover:  r.FormValue("cover"),
	}
	if _, err := u.shelf.Add(r.Context(), b); err != nil {
		u.logger.Error("failed to add book", "error", err)
		redirectHome(w, r, "Could not save the book.")
		return
	}
	redirectHome(w, r, "")
}

// handleDelete removes one book by its id
func (u *UI) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !u.requireCSRF(w, r) {
		return
	}

	removed, err := u.shelf.Remove(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, library.ErrBookNotFound):
		redirectHome(w, r, "That book is no longer on the shelf.")
	case err != nil:
		u.logger.Error("failed to delete book", "error", err)
		redirectHome(w, r, "Could not delete the book.")
	default:
		redirectHome(w, r, fmt.Sprintf("Deleted: %s", removed.Title))
	}
}

// handleExport downloads every book as CSV
func (u *UI) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", csvbook.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvbook.FileName))
	if err := csvbook.Export(w, u.shelf.Books()); err != nil {
		u.logger.Error("failed to export books", "error", err)
	}
}

// handleImport appends rows from an uploaded CSV file
func (u *UI) handleImport(w http.ResponseWriter, r *http.Request) {
	if !u.requireCSRF(w, r) {
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		redirectHome(w, r, "Choose a CSV file to import.")
		return
	}
	defer file.Close()

	imported, skipped, err := csvbook.Import(r.Context(), u.shelf, file)
	switch {
	case errors.Is(err, csvbook.ErrMissingColumns):
		redirectHome(w, r, "The CSV file needs Title and Author columns.")
	case err != nil:
		u.logger.Error("failed to import books", "error", err)
		redirectHome(w, r, "Could not import the CSV file.")
	default:
		redirectHome(w, r, importNotice(imported, skipped))
	}
}

func importNotice(imported, skipped int) string {
	msg := fmt.Sprintf("Imported %d %s.", imported, plural(imported, "book", "books"))
	if skipped > 0 {
		msg = fmt.Sprintf("Imported %d %s, skipped %d %s without a title or author.",
			imported, plural(imported, "book", "books"), skipped, plural(skipped, "row", "rows"))
	}
	return msg
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// handleScan looks up a typed code or one read from an uploaded image
func (u *UI) handleScan(w http.ResponseWriter, r *http.Request) {
	if !u.requireCSRF(w, r) {
		return
	}

	code := r.FormValue("code")
	if file, _, err := r.FormFile("image"); err == nil {
		defer file.Close()
		code, err = scan.DecodeImage(file)
		if err != nil {
			u.logger.Info("no code in uploaded image", "error", err)
			redirectHome(w, r, "No barcode or QR code found in the image.")
			return
		}
	}

	notice, err := u.scanner.Submit(r.Context(), code)
	switch {
	case errors.Is(err, scan.ErrInvalidCode):
		redirectHome(w, r, "Scanned code must be 10 to 13 digits.")
	case errors.Is(err, scan.ErrDuplicateScan):
		redirectHome(w, r, "That code was just scanned.")
	case err != nil:
		u.logger.Error("scan failed", "error", err)
		redirectHome(w, r, scan.MsgLookupFailed)
	default:
		redirectHome(w, r, notice.Message)
	}
}

// handleSignIn stores the profile from the sign-in form
func (u *UI) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if !u.requireCSRF(w, r) {
		return
	}

	p, err := u.profiles.SignIn(r.Context(), r.FormValue("username"), r.FormValue("password"))
	switch {
	case errors.Is(err, profile.ErrMissingCredentials):
		redirectHome(w, r, profile.MsgMissingCredentials)
	case err != nil:
		u.logger.Error("failed to sign in", "error", err)
		redirectHome(w, r, "Could not save the profile.")
	default:
		redirectHome(w, r, fmt.Sprintf("Signed in as %s.", p.Username))
	}
}

// handleSignOut clears the stored profile
func (u *UI) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if !u.requireCSRF(w, r) {
		return
	}

	if err := u.profiles.SignOut(r.Context()); err != nil {
		u.logger.Error("failed to sign out", "error", err)
		redirectHome(w, r, "Could not sign out.")
		return
	}
	redirectHome(w, r, "Signed out.")
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
