package conn

import (
	"github.com/gorilla/websocket"

	"github.com/1ureka/gameserver/internal/util"
)

const sinkMailboxCapacity = 1024

type sinkMessage struct {
	messageType int
	data        []byte
}

// wsSink is a dedicated goroutine serialising all WebSocket frame writes so
// reliable application traffic and signalling traffic share FIFO order with
// no interleaving of a single frame's bytes (spec.md §4.3 "Sink
// discipline"; grounded on original_source/src/server/connection.rs's
// start_sink_task).
type wsSink struct {
	inbox chan sinkMessage
	done  chan struct{}
}

func newWSSink(wsConn *websocket.Conn) *wsSink {
	s := &wsSink{
		inbox: make(chan sinkMessage, sinkMailboxCapacity),
		done:  make(chan struct{}),
	}
	go s.loop(wsConn)
	return s
}

func (s *wsSink) loop(wsConn *websocket.Conn) {
	for {
		select {
		case msg, ok := <-s.inbox:
			if !ok {
				return
			}
			if err := wsConn.WriteMessage(msg.messageType, msg.data); err != nil {
				util.LogWarning("conn: websocket sink write failed: %v", err)
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *wsSink) sendBinary(data []byte) {
	select {
	case s.inbox <- sinkMessage{messageType: websocket.BinaryMessage, data: data}:
	case <-s.done:
	}
}

func (s *wsSink) sendText(data string) {
	select {
	case s.inbox <- sinkMessage{messageType: websocket.TextMessage, data: []byte(data)}:
	case <-s.done:
	}
}

func (s *wsSink) close() {
	close(s.done)
}
