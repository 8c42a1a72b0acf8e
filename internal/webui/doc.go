// Package webui serves the browser interface for the shelf.
//
// Pages are rendered on the server with html/template. Every form posts
// back to a handler that mutates the shelf and redirects to the list page,
// carrying the current search, status filter and a one-line notice in the
// query string. POST handlers are protected by a double-submit CSRF
// cookie.
package webui
