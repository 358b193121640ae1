package rtc

import (
	"fmt"

	"github.com/pion/webrtc/v4"

	"github.com/1ureka/gameserver/internal/rtcapi"
	"github.com/1ureka/gameserver/internal/signaling"
	"github.com/1ureka/gameserver/internal/util"
)

// mailboxCapacity is the reference bounded capacity for a Peer Actor's
// command mailbox.
const mailboxCapacity = 1024

type commandKind int

const (
	cmdSend commandKind = iota
	cmdReceiveSignalling
)

type command struct {
	kind    commandKind
	payload []byte
	raw     string
}

// PeerActor owns one WebRTC peer connection and its single data channel. It
// is driven by its own goroutine reading off a bounded mailbox; callers
// never touch the peer connection directly.
type PeerActor struct {
	mailbox chan command
	sender  *dataChannelSender
}

// NewPeerActor requests a peer connection from provider, opens the
// initiator-side "game" data channel, wires callbacks, and emits the SDP
// offer as the first event on emit before entering its command loop
// (original_source/src/server/webrtc/mod.rs's RTCHandle::new).
func NewPeerActor(provider *rtcapi.Provider, emit chan<- Event) (*PeerActor, error) {
	pc, err := provider.NewPeerConnection()
	if err != nil {
		return nil, fmt.Errorf("rtc: new peer connection: %w", err)
	}

	dc, err := pc.CreateDataChannel("game", nil)
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("rtc: create data channel: %w", err)
	}

	emitter := newOrderedEmitter(emit)
	configureDataChannel(dc, emitter)
	configurePeerConnection(pc, emitter)

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("rtc: create offer: %w", err)
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		pc.Close()
		return nil, fmt.Errorf("rtc: set local description: %w", err)
	}

	encoded, err := signaling.EncodeSDP(offer)
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("rtc: encode offer: %w", err)
	}
	emitter.emitOffer(encoded)

	sender := newDataChannelSender(dc)

	actor := &PeerActor{
		mailbox: make(chan command, mailboxCapacity),
		sender:  sender,
	}
	go actor.loop(pc)

	return actor, nil
}

// loop is the Peer Actor's exclusive owner of pc; it is the only goroutine
// that ever calls into pc for signalling application.
func (a *PeerActor) loop(pc *webrtc.PeerConnection) {
	for cmd := range a.mailbox {
		switch cmd.kind {
		case cmdSend:
			a.sender.send(cmd.payload)
		case cmdReceiveSignalling:
			applySignalling(pc, cmd.raw)
		}
	}
	a.sender.close()
	pc.Close()
}

// applySignalling decodes raw and applies it to pc. Parse and apply errors
// are logged and swallowed; they never tear the connection down (spec §7).
func applySignalling(pc *webrtc.PeerConnection, raw string) {
	msg, err := signaling.Decode(raw)
	if err != nil {
		util.LogWarning("rtc peer: signalling parse error: %v", err)
		return
	}

	switch msg.Kind {
	case signaling.KindSDP:
		if err := pc.SetRemoteDescription(*msg.SDP); err != nil {
			util.LogWarning("rtc peer: apply remote description: %v", err)
		}
	case signaling.KindICE:
		if err := pc.AddICECandidate(*msg.ICE); err != nil {
			util.LogWarning("rtc peer: apply ice candidate: %v", err)
		}
	}
}

// Send enqueues a datagram for best-effort delivery on the data channel. A
// full mailbox on a live actor is a programmer-error invariant violation.
func (a *PeerActor) Send(payload []byte) {
	select {
	case a.mailbox <- command{kind: cmdSend, payload: payload}:
	default:
		panic("rtc: peer actor mailbox full")
	}
}

// ReceiveSignalling hands an inbound signalling string to the actor for
// decoding and application against its peer connection.
func (a *PeerActor) ReceiveSignalling(raw string) {
	select {
	case a.mailbox <- command{kind: cmdReceiveSignalling, raw: raw}:
	default:
		panic("rtc: peer actor mailbox full")
	}
}

// Close shuts the actor down: its loop closes the data channel sender and
// the peer connection, then exits.
func (a *PeerActor) Close() {
	close(a.mailbox)
}
