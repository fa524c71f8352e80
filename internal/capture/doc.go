// Package capture turns a single-channel logic capture into edges.
//
// Ownership boundary:
// - sample formats (raw bytes, text)
// - edge search over a pulled sample stream
//
// The decoder never sees samples directly; it asks a Cursor for the next
// rising or falling edge.
package capture
