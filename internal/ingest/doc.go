// Package ingest turns source files into content sections ready for
// scanning. It handles plain text and HTML; richer formats are expected to
// be converted upstream by a dedicated parser before veilcheck sees them.
package ingest
