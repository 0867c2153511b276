// Package network owns the routing collaborator above the link layer.
//
// Ownership boundary:
// - fixed-offset packet header packing and extraction
// - deliver-or-forward handling per host address
//
// Link selection policy is injected by the caller; the package carries
// no routing policy of its own.
package network
