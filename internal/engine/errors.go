package engine

import "errors"

var (
	ErrNotFound        = errors.New("engine: no session for key")
	ErrSessionClosed   = errors.New("engine: session closed")
	ErrTransport       = errors.New("engine: transport delivery failed")
	ErrInvalidEndpoint = errors.New("engine: invalid endpoint")
)
