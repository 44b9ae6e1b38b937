// Package engine owns the NETSSD protocol engine.
//
// Ownership boundary:
// - session table and session lifecycle (open -> closing -> closed)
// - inbound dispatch from the host transport
// - outbound send path and sequence tagging
//
// The engine does not own the delivery substrate; it talks to the host
// transport through the narrow Transport interface and receives inbound
// datagrams via HandleDatagram.
package engine
