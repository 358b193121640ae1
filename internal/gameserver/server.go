package gameserver

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/1ureka/gameserver/internal/config"
	"github.com/1ureka/gameserver/internal/conn"
	"github.com/1ureka/gameserver/internal/rtcapi"
	"github.com/1ureka/gameserver/internal/util"
)

const (
	hostCommandBuffer = 1024
	connEmitBuffer    = 1024
	newConnBuffer     = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// server is the Server Actor's private state: the connection directory, the
// Host Event Queue, and the shared Peer Actor provider. It is touched only
// from its own goroutine (spec.md §9 "Actor topology over shared memory").
type server struct {
	connections map[Identifier]*record
	queue       EventQueue
	provider    *rtcapi.Provider
}

// New binds an HTTP listener at cfg.ListenAddr (WebSocket upgrades happen
// there, since gorilla/websocket requires an http.ResponseWriter/Request to
// hijack the connection, unlike original_source's raw-TCP accept_async —
// see DESIGN.md), starts the Server Actor goroutine, and returns a clonable
// Handle plus the EventQueue the host drains (spec.md §6).
func New(cfg config.Config) (Handle, EventQueue, error) {
	cfg = cfg.WithDefaults()
	if cfg.Debug {
		util.EnableDebug()
	}

	provider, err := rtcapi.New(cfg.RTCPort, cfg.ICEServers)
	if err != nil {
		return Handle{}, EventQueue{}, fmt.Errorf("gameserver: new rtc provider: %w", err)
	}

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		provider.Close()
		return Handle{}, EventQueue{}, fmt.Errorf("gameserver: listen on %s: %w", cfg.ListenAddr, err)
	}

	queue := NewEventQueue()
	hostCmds := make(chan hostCommand, hostCommandBuffer)
	connEmit := make(chan conn.IdentifiedEvent, connEmitBuffer)
	newConns := make(chan *websocket.Conn, newConnBuffer)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		wsConn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			util.LogWarning("gameserver: websocket handshake failed: %v", err)
			return
		}
		select {
		case newConns <- wsConn:
		default:
			util.LogWarning("gameserver: accept backlog full, dropping new connection")
			wsConn.Close()
		}
	})

	httpServer := &http.Server{Handler: mux}
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			util.LogError("gameserver: http server stopped: %v", err)
		}
	}()

	s := &server{
		connections: make(map[Identifier]*record),
		queue:       queue,
		provider:    provider,
	}

	go s.loop(hostCmds, newConns, connEmit, httpServer, listener)

	util.LogInfo("gameserver: listening on %s", listener.Addr())

	return newHandle(hostCmds, listener.Addr().String()), queue, nil
}

func (s *server) loop(
	hostCmds <-chan hostCommand,
	newConns <-chan *websocket.Conn,
	connEmit chan conn.IdentifiedEvent,
	httpServer *http.Server,
	listener net.Listener,
) {
	defer func() {
		httpServer.Shutdown(context.Background())
		listener.Close()
		s.provider.Close()
	}()

	for {
		select {
		case wsConn := <-newConns:
			s.handleNewConnection(wsConn, connEmit)

		case ev := <-connEmit:
			s.handleConnectionEvent(ev)

		case cmd, ok := <-hostCmds:
			if !ok {
				s.shutdownAll()
				return
			}
			s.handleHostCommand(cmd)
		}
	}
}

func (s *server) handleNewConnection(wsConn *websocket.Conn, connEmit chan<- conn.IdentifiedEvent) {
	id := s.nextFreeIdentifier()
	handle := conn.New(uint64(id), wsConn, s.provider, connEmit)
	s.connections[id] = &record{id: id, handle: handle}
	util.LogInfo("gameserver: accepted connection id=%d", id)
}

func (s *server) handleConnectionEvent(ev conn.IdentifiedEvent) {
	id := Identifier(ev.ID)
	rec, ok := s.connections[id]
	if !ok {
		return // idempotent: record already removed
	}

	switch ev.Event.Kind {
	case conn.EventEstablished:
		rec.alive = true
		util.Stats.AddConn()
		s.queue.push(Event{Kind: EventOpen, ID: id})
	case conn.EventTerminated:
		delete(s.connections, id)
		if rec.alive {
			util.Stats.RemoveConn()
		}
		s.queue.push(Event{Kind: EventClosed, ID: id})
	case conn.EventMessageReceived:
		s.queue.push(Event{Kind: EventReceived, ID: id, Payload: ev.Event.Payload})
	}
}

func (s *server) handleHostCommand(cmd hostCommand) {
	switch cmd.kind {
	case cmdKill:
		if rec, ok := s.connections[cmd.id]; ok {
			rec.handle.Close()
		}
	case cmdSendReliable:
		s.recordFor(cmd.id).liveHandle().SendReliable(cmd.payload)
	case cmdSendUnreliable:
		s.recordFor(cmd.id).liveHandle().SendUnreliable(cmd.payload)
	case cmdBroadcast:
		for _, rec := range s.connections {
			if rec.alive {
				rec.handle.SendReliable(cmd.payload)
			}
		}
	}
}

// recordFor panics if id names no connection: send/broadcast to an unknown
// id is a host-misuse programmer error (spec.md §7; DESIGN.md Open
// Question Decision #2).
func (s *server) recordFor(id Identifier) *record {
	rec, ok := s.connections[id]
	if !ok {
		panic("gameserver: unknown connection id")
	}
	return rec
}

func (s *server) shutdownAll() {
	for _, rec := range s.connections {
		rec.handle.Close()
	}
}

// nextFreeIdentifier assigns max(existing keys)+1, or 0 if empty
// (original_source/src/server/mod.rs's next_free_identifier). Not strictly
// monotonic under churn; see DESIGN.md.
func (s *server) nextFreeIdentifier() Identifier {
	var max Identifier
	any := false
	for id := range s.connections {
		if !any || id > max {
			max = id
			any = true
		}
	}
	if !any {
		return 0
	}
	return max + 1
}
