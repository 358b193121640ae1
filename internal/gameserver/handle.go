package gameserver

import "sync"

type commandKind int

const (
	cmdSendReliable commandKind = iota
	cmdSendUnreliable
	cmdBroadcast
	cmdKill
)

type hostCommand struct {
	kind    commandKind
	id      Identifier
	payload []byte
}

// Handle is a clonable command port held by the host. Every copy shares one
// Server Actor (original_source/src/server/mod.rs's #[derive(Clone)]
// Server).
type Handle struct {
	shared *handleShared
}

type handleShared struct {
	cmds      chan hostCommand
	addr      string
	closeOnce sync.Once
}

func newHandle(cmds chan hostCommand, addr string) Handle {
	return Handle{shared: &handleShared{cmds: cmds, addr: addr}}
}

// Addr returns the address the listener actually bound to, useful when
// Config.ListenAddr requested an OS-assigned port (":0").
func (h Handle) Addr() string {
	return h.shared.addr
}

// SendReliable transmits bytes to connection id as a reliable, ordered
// WebSocket binary frame. The call blocks until the Server Actor's mailbox
// accepts it; the send itself completes asynchronously.
func (h Handle) SendReliable(id Identifier, payload []byte) {
	h.shared.cmds <- hostCommand{kind: cmdSendReliable, id: id, payload: payload}
}

// SendUnreliable transmits bytes to connection id over its WebRTC data
// channel.
func (h Handle) SendUnreliable(id Identifier, payload []byte) {
	h.shared.cmds <- hostCommand{kind: cmdSendUnreliable, id: id, payload: payload}
}

// Broadcast sends bytes reliably to every connection currently alive.
func (h Handle) Broadcast(payload []byte) {
	h.shared.cmds <- hostCommand{kind: cmdBroadcast, payload: payload}
}

// Kill closes connection id's Connection Actor, triggering its natural
// shutdown; an id with no record is ignored. The record stays in the
// directory until the actor's termination event arrives, which removes it
// and pushes Closed(id) via the normal termination path.
func (h Handle) Kill(id Identifier) {
	h.shared.cmds <- hostCommand{kind: cmdKill, id: id}
}

// Close releases the Handle, closing the shared command mailbox. This is
// Go's explicit stand-in for "dropping" the handle (spec.md §5): the
// Server Actor then tears down every remaining connection. Safe to call
// from any clone, any number of times.
func (h Handle) Close() {
	h.shared.closeOnce.Do(func() {
		close(h.shared.cmds)
	})
}
