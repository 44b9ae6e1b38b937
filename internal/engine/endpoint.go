package engine

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Endpoint names one side of a session. The host transport supplies it and
// it never changes once a session exists.
type Endpoint struct {
	Host string
	Port uint16
}

func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(int(e.Port)))
}

func (e Endpoint) IsZero() bool {
	return e.Host == "" && e.Port == 0
}

// ParseEndpoint parses "host:port" into an Endpoint.
func ParseEndpoint(s string) (Endpoint, error) {
	host, portStr, err := net.SplitHostPort(strings.TrimSpace(s))
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if host == "" {
		return Endpoint{}, fmt.Errorf("%w: missing host in %q", ErrInvalidEndpoint, s)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: bad port in %q", ErrInvalidEndpoint, s)
	}
	return Endpoint{Host: host, Port: uint16(port)}, nil
}

// SessionKey is the ordered (local, remote) endpoint pair that uniquely
// identifies one session in the table.
type SessionKey struct {
	Local  Endpoint
	Remote Endpoint
}

func (k SessionKey) String() string {
	return k.Local.String() + "<->" + k.Remote.String()
}
