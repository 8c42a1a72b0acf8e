// Package catalog looks up book metadata by ISBN in the Google Books
// volumes API.
package catalog
