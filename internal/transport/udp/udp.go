// Package udp adapts a net.UDPConn to the engine's host-transport contract:
// the read loop feeds inbound datagrams to the bound handler and Deliver
// writes outbound datagrams to their destination endpoint.
package udp

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/netssd/netssd/internal/engine"
	"github.com/netssd/netssd/internal/wire"
)

const maxDatagram = wire.HeaderLen + wire.MaxPayload

// Transport is one bound UDP socket acting as the host delivery substrate.
type Transport struct {
	conn   *net.UDPConn
	local  engine.Endpoint
	logger zerolog.Logger

	mu      sync.RWMutex
	handler engine.Handler

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// Listen binds addr ("host:port") and returns an unstarted transport.
func Listen(addr string, logger zerolog.Logger) (*Transport, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("udp: resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("udp: listen %s: %w", addr, err)
	}
	bound := conn.LocalAddr().(*net.UDPAddr)
	return &Transport{
		conn:   conn,
		local:  endpointFromUDPAddr(bound),
		logger: logger.With().Str("component", "udp").Str("local", bound.String()).Logger(),
	}, nil
}

// LocalEndpoint is the endpoint the socket actually bound, including a
// kernel-assigned port when addr requested port 0.
func (t *Transport) LocalEndpoint() engine.Endpoint {
	return t.local
}

// Bind installs the inbound handler. Must happen before Start.
func (t *Transport) Bind(h engine.Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = h
}

// Start launches the read loop.
func (t *Transport) Start() {
	t.startOnce.Do(func() {
		t.wg.Add(1)
		go t.readLoop()
		t.logger.Info().Msg("udp transport started")
	})
}

// Stop closes the socket and waits for the read loop to exit.
func (t *Transport) Stop() {
	t.stopOnce.Do(func() {
		_ = t.conn.Close()
		t.wg.Wait()
		t.logger.Info().Msg("udp transport stopped")
	})
}

// Deliver writes raw to dst. Satisfies engine.Transport.
func (t *Transport) Deliver(raw []byte, dst engine.Endpoint) error {
	udpAddr, err := net.ResolveUDPAddr("udp", dst.String())
	if err != nil {
		return fmt.Errorf("udp: resolve %s: %w", dst.String(), err)
	}
	if _, err := t.conn.WriteToUDP(raw, udpAddr); err != nil {
		return fmt.Errorf("udp: write to %s: %w", dst.String(), err)
	}
	return nil
}

func (t *Transport) readLoop() {
	defer t.wg.Done()
	buf := make([]byte, maxDatagram)
	for {
		n, sender, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			t.logger.Warn().Err(err).Msg("udp read failed")
			continue
		}
		t.mu.RLock()
		handler := t.handler
		t.mu.RUnlock()
		if handler == nil {
			continue
		}
		raw := make([]byte, n)
		copy(raw, buf[:n])
		handler(raw, endpointFromUDPAddr(sender))
	}
}

func endpointFromUDPAddr(addr *net.UDPAddr) engine.Endpoint {
	return engine.Endpoint{Host: addr.IP.String(), Port: uint16(addr.Port)}
}
