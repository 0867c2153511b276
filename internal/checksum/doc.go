// Package checksum owns the link-layer error-detection engines.
//
// Ownership boundary:
// - parity and CRC check-value computation
// - trailer verification primitives
// - engine selection from configuration
package checksum
