package wire

import (
	"encoding/binary"
	"errors"
)

const (
	// HeaderLen is the fixed wire header size in bytes.
	HeaderLen = 7
	// ProtocolVersion is the only version tag this codec accepts.
	ProtocolVersion uint8 = 1
	// MaxPayload is the largest payload the 16-bit length field can carry.
	MaxPayload = 65535
)

var (
	ErrPayloadTooLarge    = errors.New("wire: payload too large")
	ErrTruncated          = errors.New("wire: truncated datagram")
	ErrLengthMismatch     = errors.New("wire: payload length mismatch")
	ErrUnsupportedVersion = errors.New("wire: unsupported version")
)

// Header is the fixed wire header.
type Header struct {
	Version    uint8
	PayloadLen uint16
	Seq        uint32
}

// Encode serializes h followed by payload. PayloadLen is stamped from the
// actual payload size.
func Encode(h Header, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, ErrPayloadTooLarge
	}
	buf := make([]byte, HeaderLen+len(payload))
	buf[0] = h.Version
	binary.BigEndian.PutUint16(buf[1:3], uint16(len(payload)))
	binary.BigEndian.PutUint32(buf[3:7], h.Seq)
	copy(buf[HeaderLen:], payload)
	return buf, nil
}

// Decode parses one datagram. The returned payload aliases b.
func Decode(b []byte) (Header, []byte, error) {
	if len(b) < HeaderLen {
		return Header{}, nil, ErrTruncated
	}
	h := Header{
		Version:    b[0],
		PayloadLen: binary.BigEndian.Uint16(b[1:3]),
		Seq:        binary.BigEndian.Uint32(b[3:7]),
	}
	if h.Version != ProtocolVersion {
		return Header{}, nil, ErrUnsupportedVersion
	}
	if int(h.PayloadLen) != len(b)-HeaderLen {
		return Header{}, nil, ErrLengthMismatch
	}
	return h, b[HeaderLen:], nil
}
