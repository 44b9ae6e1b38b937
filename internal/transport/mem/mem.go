// Package mem is an in-memory host transport: a Network routes datagrams
// between attached endpoints synchronously. It exists for tests and local
// examples where binding real sockets would only add noise.
package mem

import (
	"errors"
	"sync"

	"github.com/netssd/netssd/internal/engine"
)

var ErrUnreachable = errors.New("mem: endpoint unreachable")

// Network connects Links by endpoint. Delivery is synchronous: Deliver runs
// the destination's handler on the caller's goroutine.
type Network struct {
	mu    sync.RWMutex
	links map[engine.Endpoint]*Link
}

func NewNetwork() *Network {
	return &Network{
		links: make(map[engine.Endpoint]*Link),
	}
}

// Attach creates the link for local, replacing any previous one.
func (n *Network) Attach(local engine.Endpoint) *Link {
	l := &Link{net: n, local: local}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.links[local] = l
	return l
}

// Detach removes the link for local; later deliveries to it fail with
// ErrUnreachable.
func (n *Network) Detach(local engine.Endpoint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.links, local)
}

// Link is one endpoint's attachment to the network. It satisfies
// engine.Transport for outbound delivery.
type Link struct {
	net   *Network
	local engine.Endpoint

	mu      sync.RWMutex
	handler engine.Handler
}

// Bind installs the inbound handler, normally an engine's HandleDatagram.
func (l *Link) Bind(h engine.Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handler = h
}

func (l *Link) Deliver(raw []byte, dst engine.Endpoint) error {
	l.net.mu.RLock()
	peer, ok := l.net.links[dst]
	l.net.mu.RUnlock()
	if !ok {
		return ErrUnreachable
	}
	peer.mu.RLock()
	handler := peer.handler
	peer.mu.RUnlock()
	if handler == nil {
		return ErrUnreachable
	}
	handler(raw, l.local)
	return nil
}
