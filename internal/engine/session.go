package engine

import (
	"sync"
	"time"
)

// State is a session's lifecycle position. A session is created directly in
// StateOpen; the unbound phase exists only inside lookupOrCreate.
type State uint8

const (
	StateOpen State = iota + 1
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unbound"
	}
}

// Session is one local/remote exchange context. The table owns its lifetime;
// the dispatcher and send path borrow it for single operations.
type Session struct {
	key SessionKey

	mu           sync.Mutex
	state        State
	inbound      *inboundQueue
	lastActivity time.Time
	lastSeq      uint32
	nextSeq      uint32
}

func newSession(key SessionKey, queueCapacity int, now time.Time) *Session {
	return &Session{
		key:          key,
		state:        StateOpen,
		inbound:      newInboundQueue(queueCapacity),
		lastActivity: now,
	}
}

func (s *Session) Key() SessionKey {
	return s.key
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) QueueDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inbound.len()
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// LastSeq reports the sequence tag of the most recent accepted datagram.
func (s *Session) LastSeq() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeq
}

// push queues one inbound payload. Reports whether the queue evicted its
// oldest entry; fails with ErrSessionClosed unless the session is open.
func (s *Session) push(payload []byte, seq uint32, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return false, ErrSessionClosed
	}
	evicted := s.inbound.push(payload)
	s.lastSeq = seq
	s.lastActivity = now
	return evicted, nil
}

// pop removes the oldest queued payload. drained reports that the pop
// emptied a closing session's queue, completing its transition to closed.
func (s *Session) pop(now time.Time) (payload []byte, ok bool, drained bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return nil, false, false
	}
	payload, ok = s.inbound.pop()
	if ok {
		s.lastActivity = now
	}
	if s.state == StateClosing && s.inbound.len() == 0 {
		s.state = StateClosed
		drained = true
	}
	return payload, ok, drained
}

// sendSeq validates the session is open and allocates the next outbound
// sequence tag.
func (s *Session) sendSeq(now time.Time) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return 0, ErrSessionClosed
	}
	s.nextSeq++
	s.lastActivity = now
	return s.nextSeq, nil
}

// beginClose moves an open session to closing; a closing session with an
// empty queue collapses straight to closed. Reports whether the session is
// now closed and should leave the table.
func (s *Session) beginClose() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateOpen:
		s.state = StateClosing
	case StateClosed:
		return true
	}
	if s.inbound.len() == 0 {
		s.state = StateClosed
		return true
	}
	return false
}

// forceClose terminates the session unconditionally, discarding any queued
// payloads. Used by sweep and engine shutdown.
func (s *Session) forceClose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateClosed
}

func (s *Session) idleSince(now time.Time, timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return true
	}
	return now.Sub(s.lastActivity) > timeout
}
