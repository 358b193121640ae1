// Package signaling implements the pure, stateless WebRTC signalling codec:
// translating between the strings exchanged over a WebSocket text frame and
// typed SDP/ICE signalling events. It holds no connection state and performs
// no I/O.
package signaling

import "github.com/pion/webrtc/v4"

// Kind identifies which payload a Message carries.
type Kind int

const (
	// KindSDP carries an SDP offer or answer.
	KindSDP Kind = iota
	// KindICE carries an ICE candidate.
	KindICE
)

// Message is a decoded signalling event: exactly one of SDP or ICE is set,
// matching Kind.
type Message struct {
	Kind Kind
	SDP  *webrtc.SessionDescription
	ICE  *webrtc.ICECandidateInit
}

// wireMessage is the JSON shape exchanged on the wire in both directions:
// exactly one of SDP or Candidate populated, with an optional "type"
// discriminator. Clients send it tagged ("answer"/"ice"); this server's own
// Encode* functions never set Type, matching original_source's
// SignalingMessage exactly (spec.md §4.1, §6) — Decode also accepts the
// untagged candidate shape so that decode(encode(c)) round-trips for ICE
// candidates; an untagged sdp is a parse error.
type wireMessage struct {
	Type      string                   `json:"type,omitempty"`
	SDP       *string                  `json:"sdp,omitempty"`
	Candidate *webrtc.ICECandidateInit `json:"candidate,omitempty"`
}

const (
	wireTypeAnswer = "answer"
	wireTypeICE    = "ice"
)

// sdpAnswerPrefix is the prefix used to recognise a raw SDP body sent
// without a JSON envelope (spec.md §4.1).
const sdpAnswerPrefix = "v=0"
