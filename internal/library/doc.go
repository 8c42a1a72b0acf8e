// Package library holds the ordered list of books on the shelf.
//
// A Shelf is the single owner of the list. Every mutation replaces the list
// and writes the whole thing back to the store under store.KeyBooks; there is
// no partial update and no journal. Books carry a stable ID assigned when
// they are created, so callers refer to records by ID rather than by their
// position in a rendered view.
//
// Filter is a pure function used by every front end (web UI, JSON API, CLI
// and terminal browser) to compute the visible subset of the shelf.
package library
