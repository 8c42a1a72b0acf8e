// Package tui is an interactive terminal browser for the shelf.
//
// The filtered book list is recomputed on every keystroke in the search box
// and on every change of the status filter.
package tui
