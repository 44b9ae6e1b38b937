// Package wire implements the NETSSD datagram codec: a fixed 7-byte
// big-endian header followed by an opaque payload. Encode and Decode are
// pure functions and round-trip exactly for every valid header/payload pair.
package wire
