// Package config holds the CLI-facing configuration types for the game server.
package config

import "time"

// DefaultICEServers are used when Config.ICEServers is empty.
var DefaultICEServers = []string{
	"stun:stun.l.google.com:19302",
	"stun:stun1.l.google.com:19302",
}

// Config stores all parameters the host supplies when starting the server.
type Config struct {
	// ListenAddr is the TCP address the WebSocket signalling/control-plane
	// listener binds to, e.g. "127.0.0.1:3000".
	ListenAddr string

	// ICEServers is the list of STUN/TURN server URLs advertised to every
	// Peer Actor. Defaults to DefaultICEServers when empty.
	ICEServers []string

	// RTCPort is the UDP port the shared peer-connection provider binds
	// for its muxed socket. 0 selects a random free port.
	RTCPort int

	// Debug enables debug-level logging.
	Debug bool
}

// StatsInterval is how often the ambient stats reporter logs a summary.
const StatsInterval = 10 * time.Second

// WithDefaults returns a copy of c with zero-valued fields replaced by
// their defaults.
func (c Config) WithDefaults() Config {
	if len(c.ICEServers) == 0 {
		c.ICEServers = DefaultICEServers
	}
	if c.ListenAddr == "" {
		c.ListenAddr = "127.0.0.1:3000"
	}
	return c
}
