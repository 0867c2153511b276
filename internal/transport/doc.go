// Package transport owns the in-memory channel between two link
// endpoints.
//
// Ownership boundary:
// - endpoint pairing and byte hand-off
// - configurable fault injection (drop, single-bit corruption)
package transport
