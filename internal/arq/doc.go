// Package arq owns stop-and-wait reliability for a single link.
//
// Ownership boundary:
// - alternating 1-bit frame numbering
// - outstanding-frame resend buffer and timeout retransmission
// - duplicate detection and re-acknowledgment on receive
package arq
