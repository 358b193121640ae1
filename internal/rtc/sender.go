package rtc

import (
	"github.com/pion/webrtc/v4"

	"github.com/1ureka/gameserver/internal/util"
)

const (
	highWaterMark  = 256 * 1024 // pause sending when bufferedAmount exceeds this
	lowWaterMark   = 64 * 1024  // resume sending when bufferedAmount drops below this
	sendBufferSize = 64         // outgoing datagram channel capacity
)

// dataChannelSender is a dedicated goroutine serialising all writes to one
// data channel, with backpressure via BufferedAmount/OnBufferedAmountLow
// (spec.md §9 "Sink tasks"; grounded on the teacher's
// internal/transport/sender.go and internal/webrtc/channel.go).
type dataChannelSender struct {
	inbox       chan []byte
	drainSignal chan struct{}
	done        chan struct{}
}

func newDataChannelSender(dc *webrtc.DataChannel) *dataChannelSender {
	s := &dataChannelSender{
		inbox:       make(chan []byte, sendBufferSize),
		drainSignal: make(chan struct{}, 1),
		done:        make(chan struct{}),
	}

	dc.SetBufferedAmountLowThreshold(uint64(lowWaterMark))
	dc.OnBufferedAmountLow(func() {
		select {
		case s.drainSignal <- struct{}{}:
		default:
		}
	})

	go s.loop(dc)

	return s
}

func (s *dataChannelSender) loop(dc *webrtc.DataChannel) {
	for {
		select {
		case payload, ok := <-s.inbox:
			if !ok {
				return
			}
			if dc.BufferedAmount() > uint64(highWaterMark) {
				select {
				case <-s.drainSignal:
				case <-s.done:
					return
				}
			}
			if err := dc.Send(payload); err != nil {
				util.LogWarning("rtc peer: data channel send failed: %v", err)
				return
			}
		case <-s.done:
			return
		}
	}
}

// send enqueues payload for best-effort delivery; it never blocks the
// caller beyond the actor's own mailbox semantics because it is only ever
// invoked from the Peer Actor's own loop goroutine.
func (s *dataChannelSender) send(payload []byte) {
	select {
	case s.inbox <- payload:
	case <-s.done:
	}
}

// close stops the sink loop. Safe to call once.
func (s *dataChannelSender) close() {
	close(s.done)
}
