// ABOUTME: JSON API handlers for books, scanning and the profile toggle
// ABOUTME: Maps package sentinel errors onto HTTP status codes

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2389/shelf/internal/csvbook"
	"github.com/2389/shelf/internal/library"
	"github.com/2389/shelf/internal/profile"
	"github.com/2389/shelf/internal/scan"
)

const maxBodySize = 10 << 20

// ListBooksResponse is the JSON response for GET /api/books.
type ListBooksResponse struct {
	Books []library.Book `json:"books"`
	Total int            `json:"total"`
}

// CreateBookRequest is the JSON request body for POST /api/books.
type CreateBookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Status string `json:"status,omitempty"`
	Cover  string `json:"cover,omitempty"`
}

// ImportResponse is the JSON response for POST /api/books/import.
type ImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ScanRequest is the JSON request body for POST /api/scan.
type ScanRequest struct {
	Code string `json:"code"`
}

// SignInRequest is the JSON request body for POST /api/profile.
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ProfileResponse is the JSON response for profile endpoints. The password
// hash is never returned.
type ProfileResponse struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// registerAPIRoutes registers the JSON API on mux.
func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/books", s.handleListBooks)
	mux.HandleFunc("POST /api/books", s.sameOrigin(s.requireJSON(s.handleCreateBook)))
	mux.HandleFunc("GET /api/books/export", s.handleExportBooks)
	mux.HandleFunc("POST /api/books/import", s.sameOrigin(s.handleImportBooks))
	mux.HandleFunc("GET /api/books/{id}", s.handleGetBook)
	mux.HandleFunc("DELETE /api/books/{id}", s.sameOrigin(s.handleDeleteBook))
	mux.HandleFunc("POST /api/scan", s.sameOrigin(s.requireJSON(s.handleScan)))
	mux.HandleFunc("GET /api/profile", s.handleGetProfile)
	mux.HandleFunc("POST /api/profile", s.sameOrigin(s.requireJSON(s.handleSignIn)))
	mux.HandleFunc("DELETE /api/profile", s.sameOrigin(s.handleSignOut))
}

// mediaType returns the lowercased media type of the request body.
func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}

// requireJSON rejects bodies that are not application/json. Browsers cannot
// send that type cross-site without a preflight.
func (s *Server) requireJSON(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mediaType(r) != "application/json" {
			s.sendJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		next(w, r)
	}
}

// sameOrigin rejects browser requests sent from another site. Requests
// without an Origin header, such as those from scripts and the CLI, pass.
func (s *Server) sameOrigin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Sec-Fetch-Site") == "cross-site" {
			s.rejectCrossOrigin(w, r)
			return
		}
		if origin := r.Header.Get("Origin"); origin != "" {
			u, err := url.Parse(origin)
			if err != nil || !strings.EqualFold(u.Host, r.Host) {
				s.rejectCrossOrigin(w, r)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) rejectCrossOrigin(w http.ResponseWriter, r *http.Request) {
	s.logger.Warn("rejected cross-origin API request",
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
	)
	s.sendJSONError(w, http.StatusForbidden, "cross-origin request rejected")
}

// handleListBooks returns the books matching the q and status parameters.
// Total counts the whole shelf, not just the matches.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	status, err := library.ParseStatusFilter(r.URL.Query().Get("status"))
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := library.Query{Text: r.URL.Query().Get("q"), Status: status}
	s.sendJSON(w, http.StatusOK, ListBooksResponse{
		Books: s.shelf.Search(q),
		Total: s.shelf.Len(),
	})
}

// handleCreateBook appends one book.
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	book, err := s.shelf.Add(r.Context(), library.Book{
		Title:  req.Title,
		Author: req.Author,
		Status: library.Status(req.Status),
		Cover:  req.Cover,
	})
	if err != nil {
		s.logger.Error("failed to add book", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "failed to save book")
		return
	}

	s.sendJSON(w, http.StatusCreated, book)
}

// handleGetBook returns one book by id.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	book, err := s.shelf.Get(r.PathValue("id"))
	if err != nil {
		s.sendJSONError(w, http.StatusNotFound, "book not found")
		return
	}
	s.sendJSON(w, http.StatusOK, book)
}

// handleDeleteBook removes one book by id.
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	_, err := s.shelf.Remove(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, library.ErrBookNotFound):
		s.sendJSONError(w, http.StatusNotFound, "book not found")
	case err != nil:
		s.logger.Error("failed to delete book", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "failed to delete book")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleExportBooks streams every book as CSV.
func (s *Server) handleExportBooks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", csvbook.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvbook.FileName))
	if err := csvbook.Export(w, s.shelf.Books()); err != nil {
		s.logger.Error("failed to export books", "error", err)
	}
}

// handleImportBooks accepts either a multipart upload in field "file" or a
// raw text/csv body.
func (s *Server) handleImportBooks(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var src io.Reader = r.Body
	switch mediaType(r) {
	case "text/csv", "application/csv":
	case "multipart/form-data":
		file, _, err := r.FormFile("file")
		if err != nil {
			s.sendJSONError(w, http.StatusBadRequest, "multipart field \"file\" is required")
			return
		}
		defer file.Close()
		src = file
	default:
		s.sendJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be text/csv or multipart/form-data")
		return
	}

	imported, skipped, err := csvbook.Import(r.Context(), s.shelf, src)
	switch {
	case errors.Is(err, csvbook.ErrMissingColumns):
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.logger.Error("failed to import books", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "failed to import books")
	default:
		s.sendJSON(w, http.StatusOK, ImportResponse{Imported: imported, Skipped: skipped})
	}
}

// handleScan looks up a code and adds the match. Misses and lookup
// failures are reported in the notice with 200.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	notice, err := s.scanner.Submit(r.Context(), req.Code)
	switch {
	case errors.Is(err, scan.ErrInvalidCode):
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, scan.ErrDuplicateScan):
		s.sendJSONError(w, http.StatusConflict, err.Error())
	case err != nil:
		s.logger.Error("scan failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, scan.MsgLookupFailed)
	default:
		s.sendJSON(w, http.StatusOK, notice)
	}
}

// handleGetProfile returns the signed-in profile or 404.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.Current(r.Context())
	switch {
	case errors.Is(err, profile.ErrNoProfile):
		s.sendJSONError(w, http.StatusNotFound, "not signed in")
	case err != nil:
		s.logger.Error("failed to load profile", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "failed to load profile")
	default:
		s.sendJSON(w, http.StatusOK, ProfileResponse{Username: p.Username, CreatedAt: p.CreatedAt})
	}
}

// handleSignIn replaces the profile.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p, err := s.profiles.SignIn(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, profile.ErrMissingCredentials):
		s.sendJSONError(w, http.StatusBadRequest, profile.MsgMissingCredentials)
	case err != nil:
		s.logger.Error("failed to sign in", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "failed to save profile")
	default:
		s.sendJSON(w, http.StatusOK, ProfileResponse{Username: p.Username, CreatedAt: p.CreatedAt})
	}
}

// handleSignOut removes the profile.
func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.profiles.SignOut(r.Context()); err != nil {
		s.logger.Error("failed to sign out", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "failed to sign out")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sendJSON writes v as a JSON response.
func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
