package presence

import (
	"time"

	"github.com/dmitrijs2005/chattypatty/internal/client/protocol"
)

type Config struct {
	ServerURL string

	// PingInterval is how often the client sends websocket pings. Zero
	// disables client pings and the idle read deadline.
	PingInterval time.Duration

	// PingTimeout is how long past PingInterval the connection may stay
	// silent before it is declared unreachable.
	PingTimeout time.Duration

	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration

	// LookupTimeout is used by Lookup when the caller passes no timeout.
	LookupTimeout time.Duration

	// LookupField names the get_ip field carrying the username.
	LookupField string
}

func (c Config) withDefaults() Config {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.LookupTimeout <= 0 {
		c.LookupTimeout = 10 * time.Second
	}
	if c.LookupField == "" {
		c.LookupField = protocol.LookupFieldTarget
	}
	return c
}

// idleTimeout is the read deadline window, or zero when disabled.
func (c Config) idleTimeout() time.Duration {
	if c.PingInterval <= 0 {
		return 0
	}
	return c.PingInterval + c.PingTimeout
}
