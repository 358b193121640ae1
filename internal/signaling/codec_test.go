package signaling

import (
	"encoding/json"
	"testing"

	"github.com/pion/webrtc/v4"
)

// TestDecodeSDPAnswer verifies the raw "v=0" prefix path (spec.md §4.1 step 1).
func TestDecodeSDPAnswer(t *testing.T) {
	raw := "v=0\r\no=- 0 0 IN IP4 127.0.0.1\r\ns=-\r\nt=0 0\r\n"

	msg, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg.Kind != KindSDP {
		t.Fatalf("expected KindSDP, got %v", msg.Kind)
	}
	if msg.SDP.Type != webrtc.SDPTypeAnswer {
		t.Fatalf("expected SDPTypeAnswer, got %v", msg.SDP.Type)
	}
	if msg.SDP.SDP != raw {
		t.Fatalf("SDP body mismatch:\ngot:  %q\nwant: %q", msg.SDP.SDP, raw)
	}
}

// TestDecodeJSONAnswer verifies the JSON {type:"answer", sdp:...} path.
func TestDecodeJSONAnswer(t *testing.T) {
	raw := `{"type":"answer","sdp":"some-sdp-body"}`

	msg, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg.Kind != KindSDP || msg.SDP.SDP != "some-sdp-body" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

// TestDecodeJSONICE verifies the JSON {type:"ice", candidate:{...}} path.
func TestDecodeJSONICE(t *testing.T) {
	raw := `{"type":"ice","candidate":{"candidate":"candidate:1 1 UDP 1 127.0.0.1 1 typ host","sdpMid":"0","sdpMLineIndex":0}}`

	msg, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg.Kind != KindICE {
		t.Fatalf("expected KindICE, got %v", msg.Kind)
	}
	if msg.ICE.Candidate != "candidate:1 1 UDP 1 127.0.0.1 1 typ host" {
		t.Fatalf("unexpected candidate: %+v", msg.ICE)
	}
}

// TestDecodeMalformed runs a table of inputs that must yield *ParseError
// without panicking (spec.md S4: parse-error tolerance).
func TestDecodeMalformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json at all", "not-json"},
		{"missing type field", `{"sdp":"x"}`},
		{"unknown type", `{"type":"offer","sdp":"x"}`},
		{"answer missing sdp", `{"type":"answer"}`},
		{"ice missing candidate", `{"type":"ice"}`},
		{"empty string", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.raw)
			if err == nil {
				t.Fatalf("expected error for input %q", tc.raw)
			}
			var parseErr *ParseError
			if pe, ok := err.(*ParseError); ok {
				parseErr = pe
			}
			if parseErr == nil {
				t.Fatalf("expected *ParseError, got %T: %v", err, err)
			}
		})
	}
}

// TestEncodeSDPExactlyOneField verifies the outbound JSON has exactly one of
// sdp/candidate populated, as spec.md §6 requires.
func TestEncodeSDPExactlyOneField(t *testing.T) {
	out, err := EncodeSDP(webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "offer-body"})
	if err != nil {
		t.Fatalf("EncodeSDP: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["sdp"] != "offer-body" {
		t.Fatalf("sdp field mismatch: %+v", decoded)
	}
	if decoded["candidate"] != nil {
		t.Fatalf("candidate should be null, got %v", decoded["candidate"])
	}
}

// TestEncodeICERoundTrip verifies that decode(encode(c)) yields an ICE
// message carrying c's candidate string (spec.md §8 testable property 6).
func TestEncodeICERoundTrip(t *testing.T) {
	original := webrtc.ICECandidateInit{
		Candidate:     "candidate:1 1 UDP 1 127.0.0.1 1 typ host",
		SDPMid:        strPtr("0"),
		SDPMLineIndex: uint16Ptr(0),
	}

	encoded, err := EncodeICE(original)
	if err != nil {
		t.Fatalf("EncodeICE: %v", err)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Kind != KindICE {
		t.Fatalf("expected KindICE, got %v", decoded.Kind)
	}
	if decoded.ICE.Candidate != original.Candidate {
		t.Fatalf("candidate mismatch: got %q want %q", decoded.ICE.Candidate, original.Candidate)
	}
}

func strPtr(s string) *string   { return &s }
func uint16Ptr(u uint16) *uint16 { return &u }
