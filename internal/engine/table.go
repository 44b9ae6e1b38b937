package engine

import (
	"sync"
	"time"
)

// sessionTable is the sole owner of all session lifetimes. Membership
// changes take the write lock; lookups share the read lock.
type sessionTable struct {
	mu       sync.RWMutex
	sessions map[SessionKey]*Session
}

func newSessionTable() *sessionTable {
	return &sessionTable{
		sessions: make(map[SessionKey]*Session),
	}
}

func (t *sessionTable) lookup(key SessionKey) (*Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[key]
	return s, ok
}

// lookupOrCreate returns the session for key, creating one in StateOpen when
// absent and allowCreate is set. created reports an insertion happened.
func (t *sessionTable) lookupOrCreate(key SessionKey, allowCreate bool, queueCapacity int, now time.Time) (s *Session, created bool, err error) {
	t.mu.RLock()
	s, ok := t.sessions[key]
	t.mu.RUnlock()
	if ok {
		return s, false, nil
	}
	if !allowCreate {
		return nil, false, ErrNotFound
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sessions[key]; ok {
		return s, false, nil
	}
	s = newSession(key, queueCapacity, now)
	t.sessions[key] = s
	return s, true, nil
}

// remove deletes the session if present. Idempotent; reports whether this
// call actually deleted the entry, so concurrent completions (a draining
// Recv racing a Close) account for the removal exactly once.
func (t *sessionTable) remove(key SessionKey) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.sessions[key]; !ok {
		return false
	}
	delete(t.sessions, key)
	return true
}

// sweep force-closes and removes every session idle beyond timeout, plus any
// session already closed. Returns the removed sessions.
func (t *sessionTable) sweep(now time.Time, timeout time.Duration) []*Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	var removed []*Session
	for key, s := range t.sessions {
		if !s.idleSince(now, timeout) {
			continue
		}
		s.forceClose()
		delete(t.sessions, key)
		removed = append(removed, s)
	}
	return removed
}

// drain force-closes every session and empties the table. Engine shutdown
// path.
func (t *sessionTable) drain() []*Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := make([]*Session, 0, len(t.sessions))
	for key, s := range t.sessions {
		s.forceClose()
		delete(t.sessions, key)
		removed = append(removed, s)
	}
	return removed
}

func (t *sessionTable) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

func (t *sessionTable) snapshot() []*Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Session, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, s)
	}
	return out
}
