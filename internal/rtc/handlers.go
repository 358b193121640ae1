package rtc

import (
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/1ureka/gameserver/internal/signaling"
	"github.com/1ureka/gameserver/internal/util"
)

// orderedEmitter guarantees that the SDP offer is the first signalling
// event delivered on emit, even though ICE candidates may start gathering
// (and calling back) concurrently with the offer's own construction.
// Candidates observed before the offer is ready are buffered and flushed
// immediately after it.
type orderedEmitter struct {
	mu        sync.Mutex
	emit      chan<- Event
	offerSent bool
	pending   []Event
}

func newOrderedEmitter(emit chan<- Event) *orderedEmitter {
	return &orderedEmitter{emit: emit}
}

func (e *orderedEmitter) emitOffer(sig string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.emit <- Event{Kind: EventEmitSignalling, Signal: sig}
	e.offerSent = true
	for _, ev := range e.pending {
		e.emit <- ev
	}
	e.pending = nil
}

func (e *orderedEmitter) emitCandidate(sig string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ev := Event{Kind: EventEmitSignalling, Signal: sig}
	if !e.offerSent {
		e.pending = append(e.pending, ev)
		return
	}
	e.emit <- ev
}

func (e *orderedEmitter) emitOther(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.offerSent {
		e.pending = append(e.pending, ev)
		return
	}
	e.emit <- ev
}

// configureDataChannel wires on-open/on-close/on-message to emit, matching
// original_source/src/server/webrtc/handlers.rs's configure_data_channel.
func configureDataChannel(dc *webrtc.DataChannel, e *orderedEmitter) {
	dc.OnOpen(func() {
		util.LogInfo("rtc peer: data channel open")
		e.emitOther(Event{Kind: EventOpened})
	})

	dc.OnClose(func() {
		util.LogInfo("rtc peer: data channel close")
		e.emitOther(Event{Kind: EventClosed})
	})

	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		e.emitOther(Event{Kind: EventMessageReceived, Payload: msg.Data})
	})
}

// configurePeerConnection wires on-ice-candidate to emit, matching
// original_source/src/server/webrtc/handlers.rs's configure_peer_connection.
func configurePeerConnection(pc *webrtc.PeerConnection, e *orderedEmitter) {
	pc.OnICECandidate(func(candidate *webrtc.ICECandidate) {
		if candidate == nil {
			return
		}
		encoded, err := signaling.EncodeICE(candidate.ToJSON())
		if err != nil {
			util.LogError("rtc peer: encode local ice candidate: %v", err)
			return
		}
		e.emitCandidate(encoded)
	})
}
