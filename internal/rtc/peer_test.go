package rtc

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/1ureka/gameserver/internal/config"
	"github.com/1ureka/gameserver/internal/rtcapi"
)

// wireOut mirrors the server->client JSON shape produced by
// internal/signaling's EncodeSDP/EncodeICE (no "type" discriminator, exactly
// one field populated).
type wireOut struct {
	SDP       *string                  `json:"sdp"`
	Candidate *webrtc.ICECandidateInit `json:"candidate"`
}

// wireIn mirrors the client->server JSON shape internal/signaling.Decode
// expects.
type wireIn struct {
	Type      string                   `json:"type"`
	Candidate *webrtc.ICECandidateInit `json:"candidate,omitempty"`
}

func newTestProvider(t *testing.T) *rtcapi.Provider {
	t.Helper()
	provider, err := rtcapi.New(0, config.DefaultICEServers)
	if err != nil {
		t.Fatalf("rtcapi.New: %v", err)
	}
	t.Cleanup(func() { provider.Close() })
	return provider
}

// TestPeerActorOfferFirst verifies that the first event emitted is always
// the SDP offer, even though ICE gathering can start concurrently (spec.md
// §4.2 ordering guarantee).
func TestPeerActorOfferFirst(t *testing.T) {
	provider := newTestProvider(t)
	emit := make(chan Event, 64)

	actor, err := NewPeerActor(provider, emit)
	if err != nil {
		t.Fatalf("NewPeerActor: %v", err)
	}
	defer actor.Close()

	select {
	case ev := <-emit:
		if ev.Kind != EventEmitSignalling {
			t.Fatalf("first event kind = %v, want EventEmitSignalling", ev.Kind)
		}
		var out wireOut
		if err := json.Unmarshal([]byte(ev.Signal), &out); err != nil {
			t.Fatalf("unmarshal first event: %v", err)
		}
		if out.SDP == nil || *out.SDP == "" {
			t.Fatalf("first event is not an SDP offer: %+v", out)
		}
		if out.Candidate != nil {
			t.Fatalf("first event should not carry a candidate: %+v", out)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for offer")
	}
}

// TestPeerActorHandshakeAndEcho drives a full loopback offer/answer/ICE
// exchange against a bare pion peer connection standing in for the client,
// then verifies the data channel opens and a message sent through the actor
// arrives on the client's side of the channel.
func TestPeerActorHandshakeAndEcho(t *testing.T) {
	provider := newTestProvider(t)
	emit := make(chan Event, 64)

	actor, err := NewPeerActor(provider, emit)
	if err != nil {
		t.Fatalf("NewPeerActor: %v", err)
	}
	defer actor.Close()

	clientPC, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		t.Fatalf("client NewPeerConnection: %v", err)
	}
	defer clientPC.Close()

	clientOpen := make(chan *webrtc.DataChannel, 1)
	clientPC.OnDataChannel(func(dc *webrtc.DataChannel) {
		dc.OnOpen(func() { clientOpen <- dc })
	})

	clientPC.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		init := c.ToJSON()
		raw, _ := json.Marshal(wireIn{Type: "ice", Candidate: &init})
		actor.ReceiveSignalling(string(raw))
	})

	var offerSDP string
	for ev := range emit {
		if ev.Kind != EventEmitSignalling {
			continue
		}
		var out wireOut
		if err := json.Unmarshal([]byte(ev.Signal), &out); err != nil {
			t.Fatalf("unmarshal offer event: %v", err)
		}
		if out.SDP != nil {
			offerSDP = *out.SDP
			break
		}
	}
	if offerSDP == "" {
		t.Fatal("never received an offer")
	}

	if err := clientPC.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeOffer,
		SDP:  offerSDP,
	}); err != nil {
		t.Fatalf("client SetRemoteDescription: %v", err)
	}

	answer, err := clientPC.CreateAnswer(nil)
	if err != nil {
		t.Fatalf("client CreateAnswer: %v", err)
	}
	if err := clientPC.SetLocalDescription(answer); err != nil {
		t.Fatalf("client SetLocalDescription: %v", err)
	}

	// The client sends its answer as a raw SDP body (spec.md §6).
	actor.ReceiveSignalling(answer.SDP)

	// Drain remaining actor-side ICE candidates in the background and feed
	// them to the client.
	go func() {
		for ev := range emit {
			if ev.Kind != EventEmitSignalling {
				continue
			}
			var out wireOut
			if json.Unmarshal([]byte(ev.Signal), &out) != nil {
				continue
			}
			if out.Candidate != nil {
				clientPC.AddICECandidate(*out.Candidate)
			}
		}
	}()

	select {
	case dc := <-clientOpen:
		done := make(chan struct{})
		dc.OnMessage(func(msg webrtc.DataChannelMessage) {
			if string(msg.Data) == "ping" {
				close(done)
			}
		})
		actor.Send([]byte("ping"))
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for message on client data channel")
		}
	case <-time.After(15 * time.Second):
		t.Fatal("timed out waiting for data channel to open")
	}
}
