package conn

import (
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/1ureka/gameserver/internal/rtc"
	"github.com/1ureka/gameserver/internal/rtcapi"
	"github.com/1ureka/gameserver/internal/util"
)

// mailboxCapacity is the reference bounded capacity for a Connection Actor's
// command mailbox.
const mailboxCapacity = 1024

type commandKind int

const (
	cmdSendReliable commandKind = iota
	cmdSendUnreliable
)

type command struct {
	kind    commandKind
	payload []byte
}

// Actor owns one WebSocket stream and its child Peer Actor. It is the only
// component aware of both transports (spec.md §9 "Dual-channel
// abstraction").
type Actor struct {
	id      uint64
	cid     string // correlation id, for tying log lines across this connection's lifetime
	mailbox chan command
}

// New upgrades has already happened by the time wsConn reaches here (the
// Server Actor's HTTP handler performs the WebSocket handshake, since
// gorilla/websocket requires an http.ResponseWriter/Request to hijack the
// connection — see DESIGN.md). New spawns the Peer Actor, the WebSocket
// read loop, and the Connection Actor's own event loop, then returns
// immediately; emit receives every event this connection ever produces.
func New(id uint64, wsConn *websocket.Conn, provider *rtcapi.Provider, emit chan<- IdentifiedEvent) *Actor {
	a := &Actor{
		id:      id,
		cid:     uuid.NewString(),
		mailbox: make(chan command, mailboxCapacity),
	}

	go a.run(wsConn, provider, emit)

	return a
}

// SendReliable transmits bytes as a binary WebSocket frame.
func (a *Actor) SendReliable(payload []byte) {
	select {
	case a.mailbox <- command{kind: cmdSendReliable, payload: payload}:
	default:
		panic("conn: connection actor mailbox full")
	}
}

// SendUnreliable forwards bytes to the Peer Actor's data channel.
func (a *Actor) SendUnreliable(payload []byte) {
	select {
	case a.mailbox <- command{kind: cmdSendUnreliable, payload: payload}:
	default:
		panic("conn: connection actor mailbox full")
	}
}

// Close signals the actor to tear down by closing its mailbox. The Server
// Actor calls it for the host's kill(id) and for every remaining connection
// at server shutdown; dropping a reference to the Actor without calling Close
// does not stop it. Call at most once.
func (a *Actor) Close() {
	close(a.mailbox)
}

type wsFrame struct {
	messageType int
	data        []byte
	err         error
}

func (a *Actor) run(wsConn *websocket.Conn, provider *rtcapi.Provider, emit chan<- IdentifiedEvent) {
	st := stateNegotiating // the WebSocket upgrade already succeeded before New was called

	peerEvents := make(chan rtc.Event, rtcEmitBufferSize)
	peer, err := rtc.NewPeerActor(provider, peerEvents)
	if err != nil {
		util.LogWarning("conn[%d/%s]: failed to start peer actor: %v", a.id, a.cid, err)
		wsConn.Close()
		return
	}

	sink := newWSSink(wsConn)
	wsFrames := make(chan wsFrame, 1)
	go readWebSocket(wsConn, wsFrames)

	defer func() {
		sink.close()
		peer.Close()
		wsConn.Close()
	}()

	util.LogInfo("conn[%d/%s]: began servicing connection", a.id, a.cid)

	for {
		select {
		case cmd, ok := <-a.mailbox:
			if !ok {
				if st.terminate() {
					emit <- IdentifiedEvent{ID: a.id, Event: Event{Kind: EventTerminated}}
				}
				util.LogInfo("conn[%d/%s]: finished servicing connection", a.id, a.cid)
				return
			}
			a.handleCommand(cmd, peer, sink)

		case frame := <-wsFrames:
			if a.handleWebSocketFrame(frame, peer, &st, emit) {
				util.LogInfo("conn[%d/%s]: finished servicing connection", a.id, a.cid)
				return
			}

		case ev := <-peerEvents:
			if a.handlePeerEvent(ev, sink, &st, emit) {
				util.LogInfo("conn[%d/%s]: finished servicing connection", a.id, a.cid)
				return
			}
		}
	}
}

const rtcEmitBufferSize = 64

func (a *Actor) handleCommand(cmd command, peer *rtc.PeerActor, sink *wsSink) {
	switch cmd.kind {
	case cmdSendReliable:
		sink.sendBinary(cmd.payload)
	case cmdSendUnreliable:
		peer.Send(cmd.payload)
	}
}

// handleWebSocketFrame returns true if the actor should exit.
func (a *Actor) handleWebSocketFrame(frame wsFrame, peer *rtc.PeerActor, st *state, emit chan<- IdentifiedEvent) bool {
	if frame.err != nil {
		util.LogWarning("conn[%d/%s]: websocket stream error: %v", a.id, a.cid, frame.err)
		if st.terminate() {
			emit <- IdentifiedEvent{ID: a.id, Event: Event{Kind: EventTerminated}}
		}
		return true
	}

	switch frame.messageType {
	case websocket.BinaryMessage:
		emit <- IdentifiedEvent{ID: a.id, Event: Event{Kind: EventMessageReceived, Payload: frame.data}}
	case websocket.TextMessage:
		peer.ReceiveSignalling(string(frame.data))
	case websocket.CloseMessage:
		if st.terminate() {
			emit <- IdentifiedEvent{ID: a.id, Event: Event{Kind: EventTerminated}}
		}
		return true
	}
	return false
}

// handlePeerEvent returns true if the actor should exit.
func (a *Actor) handlePeerEvent(ev rtc.Event, sink *wsSink, st *state, emit chan<- IdentifiedEvent) bool {
	switch ev.Kind {
	case rtc.EventOpened:
		if st.advanceToLive() {
			emit <- IdentifiedEvent{ID: a.id, Event: Event{Kind: EventEstablished}}
		}
	case rtc.EventClosed:
		if st.terminate() {
			emit <- IdentifiedEvent{ID: a.id, Event: Event{Kind: EventTerminated}}
		}
		return true
	case rtc.EventMessageReceived:
		emit <- IdentifiedEvent{ID: a.id, Event: Event{Kind: EventMessageReceived, Payload: ev.Payload}}
	case rtc.EventEmitSignalling:
		sink.sendText(ev.Signal)
	}
	return false
}

// readWebSocket is the dedicated goroutine reading inbound frames, since
// wsConn.ReadMessage blocks and the actor loop must stay responsive to its
// mailbox and Peer Actor events at the same time (grounded on
// original_source/src/server/connection.rs's ws_stream.next() select arm).
func readWebSocket(wsConn *websocket.Conn, out chan<- wsFrame) {
	for {
		messageType, data, err := wsConn.ReadMessage()
		if err != nil {
			out <- wsFrame{err: err}
			return
		}
		out <- wsFrame{messageType: messageType, data: data}
	}
}
