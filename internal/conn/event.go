// Package conn implements the Connection Actor: one WebSocket stream plus
// its child Peer Actor, multiplexing reliable/unreliable sends and
// demultiplexing inbound frames into a unified event stream.
package conn

// EventKind discriminates the payload carried by an Event.
type EventKind int

const (
	// EventEstablished means both the WebSocket upgrade and the data
	// channel have completed; the connection is ready for application
	// traffic on both transports.
	EventEstablished EventKind = iota
	// EventTerminated means the connection is no longer valid.
	EventTerminated
	// EventMessageReceived carries an opaque application payload.
	EventMessageReceived
)

// Event is emitted by a Connection Actor to its owning Server Actor.
type Event struct {
	Kind    EventKind
	Payload []byte
}

// IdentifiedEvent tags an Event with the identifier of the connection that
// produced it, so many Connection Actors can share one inbound channel at
// the Server Actor without the Server Actor reaching into actor-private
// state.
type IdentifiedEvent struct {
	ID    uint64
	Event Event
}
