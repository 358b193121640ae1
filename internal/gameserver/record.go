package gameserver

import "github.com/1ureka/gameserver/internal/conn"

// record is the Server Actor's private bookkeeping for one connection.
// Invariant: a record enters the directory with alive=false at accept time,
// transitions to alive=true exactly once upon ConnectionEstablished, and is
// removed exactly once upon its terminal event (an explicit kill closes the
// Connection Actor, which then produces that event)
// (original_source/src/server/mod.rs's connection_state::Connection).
type record struct {
	id     Identifier
	handle *conn.Actor
	alive  bool
}

// liveHandle returns the Connection Actor handle, panicking if the record
// has not yet been marked alive. Only destruction (Close, via kill) may
// bypass this guard.
func (r *record) liveHandle() *conn.Actor {
	if !r.alive {
		panic("gameserver: connection not tracked as live yet")
	}
	return r.handle
}
