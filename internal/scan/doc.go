// Package scan turns a scanned code into a shelf entry.
//
// A code arrives either as text or as an image holding a QR code or retail
// barcode. Valid codes are looked up in the catalog and the match is
// appended to the shelf. Repeats of the same code inside a short window are
// rejected without a lookup, so a camera that keeps decoding the same
// barcode adds the book once.
package scan
