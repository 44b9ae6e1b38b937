package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte("netssd payload bytes")
	in := Header{Version: ProtocolVersion, Seq: 42}
	buf, err := Encode(in, payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	h, got, err := Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Version != ProtocolVersion || h.Seq != 42 {
		t.Fatalf("header mismatch: got=%+v", h)
	}
	if h.PayloadLen != uint16(len(payload)) {
		t.Fatalf("payload_len mismatch: got=%d want=%d", h.PayloadLen, len(payload))
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: %q", got)
	}
}

func TestEncodeDecodeEmptyPayload(t *testing.T) {
	buf, err := Encode(Header{Version: ProtocolVersion, Seq: 7}, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(buf) != HeaderLen {
		t.Fatalf("unexpected datagram size: %d", len(buf))
	}
	h, payload, err := Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.PayloadLen != 0 || len(payload) != 0 {
		t.Fatalf("expected empty payload, got len=%d header=%+v", len(payload), h)
	}
}

func TestEncodeRejectsOversizedPayload(t *testing.T) {
	_, err := Encode(Header{Version: ProtocolVersion}, make([]byte, MaxPayload+1))
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestEncodeMaxPayload(t *testing.T) {
	buf, err := Encode(Header{Version: ProtocolVersion}, make([]byte, MaxPayload))
	if err != nil {
		t.Fatalf("encode at limit: %v", err)
	}
	if _, payload, err := Decode(buf); err != nil || len(payload) != MaxPayload {
		t.Fatalf("decode at limit: err=%v len=%d", err, len(payload))
	}
}

func TestDecodeTruncatedHeader(t *testing.T) {
	for size := 0; size < HeaderLen; size++ {
		_, _, err := Decode(make([]byte, size))
		if !errors.Is(err, ErrTruncated) {
			t.Fatalf("size=%d: expected ErrTruncated, got %v", size, err)
		}
	}
}

func TestDecodeLengthMismatch(t *testing.T) {
	buf, err := Encode(Header{Version: ProtocolVersion, Seq: 1}, make([]byte, 10))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// Declared length 10, only 5 payload bytes present.
	_, _, err = Decode(buf[:HeaderLen+5])
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestDecodeUnsupportedVersion(t *testing.T) {
	buf, err := Encode(Header{Version: ProtocolVersion}, []byte("x"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	buf[0] = 9
	_, _, err = Decode(buf)
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}
