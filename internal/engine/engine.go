package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/netssd/netssd/internal/observability"
	"github.com/netssd/netssd/internal/wire"
)

// Stats is a point-in-time snapshot of engine counters.
type Stats struct {
	DatagramsReceived   uint64 `json:"datagrams_received"`
	DatagramsSent       uint64 `json:"datagrams_sent"`
	MalformedDatagrams  uint64 `json:"malformed_datagrams"`
	QueueOverflows      uint64 `json:"queue_overflows"`
	UnsolicitedRejected uint64 `json:"unsolicited_rejected"`
	DroppedNotOpen      uint64 `json:"dropped_not_open"`
	ActiveSessions      int    `json:"active_sessions"`
}

// SessionInfo is the admin-facing view of one session.
type SessionInfo struct {
	Remote       string    `json:"remote"`
	State        string    `json:"state"`
	QueueDepth   int       `json:"queue_depth"`
	LastActivity time.Time `json:"last_activity"`
	LastSeq      uint32    `json:"last_seq"`
}

// Engine is one NETSSD protocol engine instance. It carries no hidden global
// state and may be constructed many times, e.g. once per test.
type Engine struct {
	cfg       Config
	local     Endpoint
	node      string
	transport Transport
	table     *sessionTable
	logger    zerolog.Logger

	received       atomic.Uint64
	sent           atomic.Uint64
	malformed      atomic.Uint64
	overflows      atomic.Uint64
	rejected       atomic.Uint64
	droppedNotOpen atomic.Uint64

	mu      sync.Mutex
	started bool
	done    chan struct{}
	wg      sync.WaitGroup
}

func New(cfg Config, local Endpoint, tr Transport, logger zerolog.Logger) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:       cfg,
		local:     local,
		node:      local.String(),
		transport: tr,
		table:     newSessionTable(),
		logger:    logger.With().Str("component", "engine").Str("local", local.String()).Logger(),
	}
}

// ProtocolNumber is the identifier the host uses to route inbound datagrams
// to this engine.
func (e *Engine) ProtocolNumber() int {
	return e.cfg.ProtocolNumber
}

func (e *Engine) LocalEndpoint() Endpoint {
	return e.local
}

// Start begins the periodic idle sweep. Idempotent until Stop.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	e.done = make(chan struct{})
	e.wg.Add(1)
	go e.sweepLoop(e.done)
	e.logger.Info().
		Int("protocol", e.cfg.ProtocolNumber).
		Bool("accept_unsolicited", e.cfg.AcceptUnsolicited).
		Dur("idle_timeout", e.cfg.IdleTimeout).
		Msg("engine started")
}

// Stop halts the sweep loop, force-closes every session, and empties the
// table. In-flight dispatches observe closed sessions and drop.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.started = false
	close(e.done)
	e.mu.Unlock()

	e.wg.Wait()
	removed := e.table.drain()
	for range removed {
		observability.RecordSessionClosed(e.node)
	}
	e.logger.Info().Int("sessions_released", len(removed)).Msg("engine stopped")
}

func (e *Engine) sweepLoop(done <-chan struct{}) {
	defer e.wg.Done()
	ticker := time.NewTicker(e.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			e.Sweep(now)
		}
	}
}

// Sweep removes every session idle beyond the configured timeout and every
// session already closed. Returns the removal count.
func (e *Engine) Sweep(now time.Time) int {
	removed := e.table.sweep(now, e.cfg.IdleTimeout)
	for _, s := range removed {
		observability.RecordSessionClosed(e.node)
		e.logger.Debug().Str("remote", s.Key().Remote.String()).Msg("session swept")
	}
	return len(removed)
}

// Send resolves or creates the session for remote, encodes payload, and
// hands the datagram to the host transport. Best effort, no retries.
func (e *Engine) Send(remote Endpoint, payload []byte) error {
	// Reject oversized payloads before touching the table so a doomed send
	// cannot open an implicit session.
	if len(payload) > wire.MaxPayload {
		return wire.ErrPayloadTooLarge
	}
	key := SessionKey{Local: e.local, Remote: remote}
	s, created, _ := e.table.lookupOrCreate(key, true, e.cfg.InboundQueueCapacity, time.Now())
	if created {
		observability.RecordSessionOpened(e.node)
		e.logger.Debug().Str("remote", remote.String()).Msg("session opened by send path")
	}

	seq, err := s.sendSeq(time.Now())
	if err != nil {
		return err
	}
	raw, err := wire.Encode(wire.Header{Version: wire.ProtocolVersion, Seq: seq}, payload)
	if err != nil {
		return err
	}
	if err := e.transport.Deliver(raw, remote); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	e.sent.Add(1)
	observability.RecordDatagramSent(e.node)
	return nil
}

// HandleDatagram is the host transport's inbound entry point. It never
// returns an error: malformed or unroutable datagrams are counted and
// dropped, which is the resilience contract for hostile input.
func (e *Engine) HandleDatagram(raw []byte, sender Endpoint) {
	h, payload, err := wire.Decode(raw)
	if err != nil {
		e.malformed.Add(1)
		observability.RecordMalformedDatagram(e.node)
		e.logger.Debug().Err(err).Str("sender", sender.String()).Msg("malformed datagram dropped")
		return
	}

	key := SessionKey{Local: e.local, Remote: sender}
	s, created, err := e.table.lookupOrCreate(key, e.cfg.AcceptUnsolicited, e.cfg.InboundQueueCapacity, time.Now())
	if err != nil {
		e.rejected.Add(1)
		observability.RecordUnsolicitedRejected(e.node)
		e.logger.Warn().Str("sender", sender.String()).Msg("unsolicited datagram rejected")
		if e.cfg.ErrorHook != nil {
			e.cfg.ErrorHook(ErrNotFound, sender)
		}
		return
	}
	if created {
		observability.RecordSessionOpened(e.node)
		e.logger.Debug().Str("remote", sender.String()).Msg("session opened by dispatcher")
	}

	// Decode aliases the transport's buffer; the queue needs its own copy.
	owned := append([]byte(nil), payload...)
	evicted, err := s.push(owned, h.Seq, time.Now())
	if err != nil {
		e.droppedNotOpen.Add(1)
		e.logger.Debug().Str("sender", sender.String()).Str("state", s.State().String()).Msg("payload dropped, session not open")
		return
	}
	if evicted {
		e.overflows.Add(1)
		observability.RecordQueueOverflow(e.node)
		e.logger.Warn().Str("sender", sender.String()).Msg("inbound queue overflow, oldest dropped")
	}
	e.received.Add(1)
	observability.RecordDatagramReceived(e.node)
}

// Recv pops the oldest payload queued for the session with remote. The
// second return is false when no session exists or its queue is empty.
func (e *Engine) Recv(remote Endpoint) ([]byte, bool) {
	key := SessionKey{Local: e.local, Remote: remote}
	s, ok := e.table.lookup(key)
	if !ok {
		return nil, false
	}
	payload, ok, drained := s.pop(time.Now())
	if drained && e.table.remove(key) {
		observability.RecordSessionClosed(e.node)
		e.logger.Debug().Str("remote", remote.String()).Msg("closing session drained, removed")
	}
	return payload, ok
}

// Close requests session teardown. The session stops accepting sends
// immediately; it leaves the table once its inbound queue drains, or right
// away when the queue is already empty.
func (e *Engine) Close(remote Endpoint) error {
	key := SessionKey{Local: e.local, Remote: remote}
	s, ok := e.table.lookup(key)
	if !ok {
		return ErrNotFound
	}
	if s.beginClose() {
		if e.table.remove(key) {
			observability.RecordSessionClosed(e.node)
			e.logger.Debug().Str("remote", remote.String()).Msg("session closed")
		}
		return nil
	}
	e.logger.Debug().Str("remote", remote.String()).Int("queued", s.QueueDepth()).Msg("session closing, draining inbound queue")
	return nil
}

func (e *Engine) Stats() Stats {
	return Stats{
		DatagramsReceived:   e.received.Load(),
		DatagramsSent:       e.sent.Load(),
		MalformedDatagrams:  e.malformed.Load(),
		QueueOverflows:      e.overflows.Load(),
		UnsolicitedRejected: e.rejected.Load(),
		DroppedNotOpen:      e.droppedNotOpen.Load(),
		ActiveSessions:      e.table.len(),
	}
}

// Sessions lists the table contents for the admin surface, sorted by the
// caller if ordering matters.
func (e *Engine) Sessions() []SessionInfo {
	sessions := e.table.snapshot()
	out := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, SessionInfo{
			Remote:       s.Key().Remote.String(),
			State:        s.State().String(),
			QueueDepth:   s.QueueDepth(),
			LastActivity: s.LastActivity(),
			LastSeq:      s.LastSeq(),
		})
	}
	return out
}
