package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/netssd/netssd/internal/wire"
)

func keyFor(remoteHost string) SessionKey {
	return SessionKey{
		Local:  Endpoint{Host: "10.0.0.1", Port: 9014},
		Remote: Endpoint{Host: remoteHost, Port: 9014},
	}
}

func TestLookupOrCreateRespectsAllowCreate(t *testing.T) {
	tbl := newSessionTable()
	now := time.Now()
	key := keyFor("10.0.0.2")

	if _, _, err := tbl.lookupOrCreate(key, false, 4, now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	s, created, err := tbl.lookupOrCreate(key, true, 4, now)
	if err != nil || !created {
		t.Fatalf("create failed: created=%v err=%v", created, err)
	}
	if s.State() != StateOpen {
		t.Fatalf("new session must be open, got %v", s.State())
	}

	again, created, err := tbl.lookupOrCreate(key, false, 4, now)
	if err != nil || created {
		t.Fatalf("lookup of existing session: created=%v err=%v", created, err)
	}
	if again != s {
		t.Fatalf("two sessions share one key")
	}
}

func TestRemoveIsIdempotentAndReportsDeletion(t *testing.T) {
	tbl := newSessionTable()
	key := keyFor("10.0.0.2")
	if _, _, err := tbl.lookupOrCreate(key, true, 4, time.Now()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !tbl.remove(key) {
		t.Fatalf("first remove must report the deletion")
	}
	if tbl.remove(key) {
		t.Fatalf("second remove must report the entry already gone")
	}
	if tbl.len() != 0 {
		t.Fatalf("table should be empty, len=%d", tbl.len())
	}
}

type discardTransport struct{}

func (discardTransport) Deliver([]byte, Endpoint) error { return nil }

func TestDrainAndCloseAccountRemovalOnce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AcceptUnsolicited = true
	local := Endpoint{Host: "10.0.0.1", Port: 9014}
	remote := Endpoint{Host: "10.0.0.2", Port: 9014}
	eng := New(cfg, local, discardTransport{}, zerolog.Nop())

	if err := eng.Send(remote, []byte("x")); err != nil {
		t.Fatalf("send: %v", err)
	}
	raw, err := wire.Encode(wire.Header{Version: wire.ProtocolVersion, Seq: 1}, []byte("in"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	eng.HandleDatagram(raw, remote)
	if err := eng.Close(remote); err != nil {
		t.Fatalf("close: %v", err)
	}

	key := SessionKey{Local: local, Remote: remote}
	s, ok := eng.table.lookup(key)
	if !ok || s.State() != StateClosing {
		t.Fatalf("expected closing session, ok=%v", ok)
	}

	// A racing Close can hold the session while Recv drains it: both then
	// observe the session closed, but only one may account the removal.
	if _, ok := eng.Recv(remote); !ok {
		t.Fatalf("drain failed")
	}
	if !s.beginClose() {
		t.Fatalf("closed session must report closed")
	}
	if eng.table.remove(key) {
		t.Fatalf("late completion must not delete again")
	}
	if err := eng.Close(remote); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after removal, got %v", err)
	}
}

func TestSweepRemovesOnlyIdleSessions(t *testing.T) {
	tbl := newSessionTable()
	base := time.Unix(1700000000, 0)
	stale, _, _ := tbl.lookupOrCreate(keyFor("10.0.0.2"), true, 4, base)
	fresh, _, _ := tbl.lookupOrCreate(keyFor("10.0.0.3"), true, 4, base)
	if _, err := fresh.push([]byte("x"), 1, base.Add(4*time.Minute)); err != nil {
		t.Fatalf("push: %v", err)
	}

	removed := tbl.sweep(base.Add(5*time.Minute+time.Second), 5*time.Minute)
	if len(removed) != 1 || removed[0] != stale {
		t.Fatalf("expected only the stale session removed, got %d", len(removed))
	}
	if stale.State() != StateClosed {
		t.Fatalf("swept session must be force-closed, got %v", stale.State())
	}
	if tbl.len() != 1 {
		t.Fatalf("fresh session should survive, len=%d", tbl.len())
	}
}

func TestDrainForceClosesEverything(t *testing.T) {
	tbl := newSessionTable()
	now := time.Now()
	for _, host := range []string{"10.0.0.2", "10.0.0.3", "10.0.0.4"} {
		if _, _, err := tbl.lookupOrCreate(keyFor(host), true, 4, now); err != nil {
			t.Fatalf("create %s: %v", host, err)
		}
	}
	removed := tbl.drain()
	if len(removed) != 3 || tbl.len() != 0 {
		t.Fatalf("drain incomplete: removed=%d len=%d", len(removed), tbl.len())
	}
	for _, s := range removed {
		if s.State() != StateClosed {
			t.Fatalf("drained session not closed: %v", s.State())
		}
	}
}
