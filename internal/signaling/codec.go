package signaling

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pion/webrtc/v4"
)

// ParseError reports a malformed signalling message. Callers must log and
// discard it rather than tear the connection down (spec.md §7).
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("signalling: parse error: %s", e.Reason)
}

// Decode parses a signalling string received from a client.
//
// Algorithm (spec.md §4.1):
//  1. If the input begins with "v=0", the entire string is an SDP answer body.
//  2. Otherwise parse as JSON. type == "ice" requires a "candidate"
//     subobject, re-deserialised as an ICE candidate initialiser. type ==
//     "answer" requires a string "sdp" field. A missing "type" field is
//     accepted when "candidate" is populated — the untagged shape EncodeICE
//     produces — and decodes as an ICE candidate, so decode(encode(c))
//     round-trips for candidates (spec.md §8 testable property 6). An
//     untagged "sdp" is rejected, since the SDP type cannot be told. Any
//     other type, or a missing/mistyped field, yields *ParseError.
func Decode(raw string) (Message, error) {
	if strings.HasPrefix(raw, sdpAnswerPrefix) {
		return Message{
			Kind: KindSDP,
			SDP: &webrtc.SessionDescription{
				Type: webrtc.SDPTypeAnswer,
				SDP:  raw,
			},
		}, nil
	}

	var wire wireMessage
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return Message{}, &ParseError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	switch wire.Type {
	case wireTypeAnswer:
		if wire.SDP == nil {
			return Message{}, &ParseError{Reason: "answer message missing sdp field"}
		}
		return Message{
			Kind: KindSDP,
			SDP: &webrtc.SessionDescription{
				Type: webrtc.SDPTypeAnswer,
				SDP:  *wire.SDP,
			},
		}, nil

	case wireTypeICE:
		if wire.Candidate == nil {
			return Message{}, &ParseError{Reason: "ice message missing candidate field"}
		}
		candidate := *wire.Candidate
		return Message{Kind: KindICE, ICE: &candidate}, nil

	case "":
		switch {
		case wire.Candidate != nil:
			candidate := *wire.Candidate
			return Message{Kind: KindICE, ICE: &candidate}, nil
		case wire.SDP != nil:
			return Message{}, &ParseError{Reason: "untagged sdp message needs a type (offer/answer) to apply"}
		default:
			return Message{}, &ParseError{Reason: "missing type field"}
		}

	default:
		return Message{}, &ParseError{Reason: fmt.Sprintf("unknown type %q", wire.Type)}
	}
}

// EncodeSDP serialises a local SDP description (always an offer, from this
// server's point of view — spec.md §6) into the outbound JSON wire form.
func EncodeSDP(sdp webrtc.SessionDescription) (string, error) {
	body := sdp.SDP
	data, err := json.Marshal(wireMessage{SDP: &body})
	if err != nil {
		return "", fmt.Errorf("signalling: encode sdp: %w", err)
	}
	return string(data), nil
}

// EncodeICE serialises a local ICE candidate into the outbound JSON wire form.
func EncodeICE(candidate webrtc.ICECandidateInit) (string, error) {
	data, err := json.Marshal(wireMessage{Candidate: &candidate})
	if err != nil {
		return "", fmt.Errorf("signalling: encode ice: %w", err)
	}
	return string(data), nil
}
