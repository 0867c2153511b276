// Package link owns a single data-link endpoint.
//
// Ownership boundary:
// - variant assembly (parity, crc, reliable) from configuration
// - transport and client boundary interfaces
// - the cooperative driving loop over deframer and ARQ state
package link
