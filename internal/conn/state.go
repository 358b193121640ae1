package conn

// state is the Connection Actor's lifecycle: Negotiating -> Live ->
// Terminated. There is no Handshaking state here: unlike
// original_source/src/server/connection.rs, where the Connection Actor
// itself performs the WebSocket handshake, this Actor is only constructed
// once the Server Actor's HTTP handler has already completed the upgrade
// (see DESIGN.md), so it starts life in stateNegotiating. Terminated is
// absorbing; every transition method below guards against reentry so at
// most one EventEstablished and one EventTerminated are ever produced
// (spec.md §4.3).
type state int

const (
	stateNegotiating state = iota
	stateLive
	stateTerminated
)

// advanceToLive records that the Peer Actor's data channel opened. Returns
// true the first time this fires, so the caller emits EventEstablished
// exactly once.
func (s *state) advanceToLive() bool {
	if *s == stateTerminated || *s == stateLive {
		return false
	}
	*s = stateLive
	return true
}

// terminate records terminal failure from any source. Returns true the
// first time this fires, so the caller emits EventTerminated exactly once.
func (s *state) terminate() bool {
	if *s == stateTerminated {
		return false
	}
	*s = stateTerminated
	return true
}
