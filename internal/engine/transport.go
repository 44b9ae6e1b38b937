package engine

// Transport is the narrow outbound surface the engine needs from the host
// transport layer. Deliver is best-effort: a nil return means the substrate
// accepted the datagram, not that it arrived.
type Transport interface {
	Deliver(raw []byte, dst Endpoint) error
}

// Handler is the inbound half of the host transport contract;
// (*Engine).HandleDatagram satisfies it.
type Handler func(raw []byte, sender Endpoint)
