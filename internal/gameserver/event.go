// Package gameserver implements the Server Actor: the listening endpoint,
// the identifier->Connection Actor directory, host command routing, and the
// Host Event Queue that the embedding game loop drains (spec.md §4.4).
package gameserver

// Identifier names a live connection. Assigned per server instance by
// max(existing)+1, starting at 0 when empty (original_source/src/event.rs's
// next_free_identifier; see DESIGN.md for the overflow open question).
type Identifier uint64

// EventKind discriminates the payload carried by an Event.
type EventKind int

const (
	// EventOpen means a client is fully ready for application traffic on
	// both transports.
	EventOpen EventKind = iota
	// EventClosed means the identifier is no longer valid.
	EventClosed
	// EventReceived carries an opaque byte payload from a client.
	EventReceived
)

// Event is a host-visible, tagged value pushed onto the EventQueue.
type Event struct {
	Kind    EventKind
	ID      Identifier
	Payload []byte
}
