// Package foundation holds byte-level types whose invariants are checked over
// bounded buffers: UTF-8 text, UUIDs, URLs, filesystem paths and network
// addresses. Every type exposes Invariant so callers can re-check a value
// that crossed a package boundary.
//
// Textual parsing is delegated to trusted parsers (google/uuid, net/netip,
// net.ParseMAC). The checks here run only on the resulting bytes.
package foundation
