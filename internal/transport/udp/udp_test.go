package udp

import (
	"bytes"
	"testing"
	"time"

	"github.com/netssd/netssd/internal/engine"
	"github.com/netssd/netssd/internal/testutil/testlog"
)

type received struct {
	raw    []byte
	sender engine.Endpoint
}

func TestDeliverAndReceiveOverLoopback(t *testing.T) {
	logger := testlog.Start(t)

	a, err := Listen("127.0.0.1:0", logger)
	if err != nil {
		t.Fatalf("listen a: %v", err)
	}
	defer a.Stop()
	b, err := Listen("127.0.0.1:0", logger)
	if err != nil {
		t.Fatalf("listen b: %v", err)
	}
	defer b.Stop()

	inbox := make(chan received, 1)
	b.Bind(func(raw []byte, sender engine.Endpoint) {
		inbox <- received{raw: raw, sender: sender}
	})
	a.Start()
	b.Start()

	payload := []byte("over the loopback")
	if err := a.Deliver(payload, b.LocalEndpoint()); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	select {
	case got := <-inbox:
		if !bytes.Equal(got.raw, payload) {
			t.Fatalf("payload mismatch: %q", got.raw)
		}
		if got.sender != a.LocalEndpoint() {
			t.Fatalf("unexpected sender: %v want %v", got.sender, a.LocalEndpoint())
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("datagram never arrived")
	}
}

func TestLocalEndpointReportsBoundPort(t *testing.T) {
	logger := testlog.Start(t)
	tr, err := Listen("127.0.0.1:0", logger)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer tr.Stop()
	ep := tr.LocalEndpoint()
	if ep.Host != "127.0.0.1" || ep.Port == 0 {
		t.Fatalf("unexpected local endpoint: %+v", ep)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	logger := testlog.Start(t)
	tr, err := Listen("127.0.0.1:0", logger)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	tr.Start()
	tr.Stop()
	tr.Stop()
}
