// Package framing owns the byte-stuffed wire representation.
//
// Ownership boundary:
// - tag alphabet and stuffing rules
// - payload framing (sub-frame split and sequence-numbered variants)
// - receive-buffer deframing and resynchronization
package framing
