package engine

import "time"

const (
	// DefaultProtocolNumber is the host routing identifier for NETSSD
	// traffic, analogous to an IP protocol number.
	DefaultProtocolNumber = 14

	DefaultInboundQueueCapacity = 256
	DefaultIdleTimeout          = 300 * time.Second
	DefaultSweepInterval        = 30 * time.Second
)

// Config defines engine construction options.
type Config struct {
	ProtocolNumber       int
	AcceptUnsolicited    bool
	InboundQueueCapacity int
	IdleTimeout          time.Duration
	SweepInterval        time.Duration

	// ErrorHook, when set, observes rejected unsolicited traffic. It runs
	// on the dispatch path and must not block.
	ErrorHook func(err error, sender Endpoint)
}

func DefaultConfig() Config {
	return Config{
		ProtocolNumber:       DefaultProtocolNumber,
		AcceptUnsolicited:    false,
		InboundQueueCapacity: DefaultInboundQueueCapacity,
		IdleTimeout:          DefaultIdleTimeout,
		SweepInterval:        DefaultSweepInterval,
	}
}

func (c Config) withDefaults() Config {
	if c.ProtocolNumber <= 0 {
		c.ProtocolNumber = DefaultProtocolNumber
	}
	if c.InboundQueueCapacity <= 0 {
		c.InboundQueueCapacity = DefaultInboundQueueCapacity
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	return c
}
