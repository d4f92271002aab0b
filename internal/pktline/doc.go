// Package pktline owns the pkt-line framing primitives.
//
// Ownership boundary:
// - 4-hex-digit length header codec
// - packet reads from a descriptor or an in-memory cursor
// - packet writes to a descriptor or a caller-owned buffer
// - strict/gentle failure policy
//
// A Reader or Writer owns its scratch buffers and is not safe for
// concurrent use.
package pktline
