// Package csvbook reads and writes the shelf CSV format.
//
// The format is a header row of Title,Author,Status,Cover followed by one row
// per book. Export always quotes every field. Import locates columns by
// header name so files with reordered or extra columns still load.
package csvbook
