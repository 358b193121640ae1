// Gameserver — demonstration host for the actor-based multiplayer server.
//
// It binds the listener, drains the Host Event Queue on a fixed 60 Hz tick,
// says hello to every newly opened connection, and echoes every received
// payload to all connections, so the whole actor topology is reachable end to
// end. It is a demonstration host, not a game loop: real
// hosts own their own tick and just call into internal/gameserver directly.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/1ureka/gameserver/internal/config"
	"github.com/1ureka/gameserver/internal/gameserver"
	"github.com/1ureka/gameserver/internal/util"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	listenAddr := flag.String("listen", "127.0.0.1:3000", "WebSocket listen address")
	iceServers := flag.String("ice", strings.Join(config.DefaultICEServers, ","), "Comma-separated STUN/TURN server URLs")
	debugMode := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debugMode {
		util.EnableDebug()
	}

	pterm.Info.Println(fmt.Sprintf("Gameserver — v%s", version))
	pterm.Println()

	cfg := config.Config{
		ListenAddr: *listenAddr,
		ICEServers: splitNonEmpty(*iceServers),
	}

	handle, queue, err := gameserver.New(cfg)
	if err != nil {
		util.LogError("failed to start server: %v", err)
		os.Exit(1)
	}

	util.StartStatsReporter(ctx)
	util.LogSuccess("listening on %s", handle.Addr())

	eventLoop(ctx, handle, queue)

	handle.Close()
	util.LogInfo("successfully shut down server")
}

// eventLoop drains the EventQueue on a fixed 60 Hz tick, logging every event
// and warning when a tick overruns its budget (original_source/src/main.rs's
// event_loop). It also runs a tiny scripted demo: greet every newly opened
// connection, and echo every received frame back to everyone.
func eventLoop(ctx context.Context, handle gameserver.Handle, queue gameserver.EventQueue) {
	const targetFrameTime = time.Second / 60

	ticker := time.NewTicker(targetFrameTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frameStart := time.Now()

			for _, ev := range queue.Drain() {
				util.LogDebug("event: %+v", ev)

				switch ev.Kind {
				case gameserver.EventOpen:
					handle.SendReliable(ev.ID, []byte("hello"))
				case gameserver.EventReceived:
					handle.Broadcast(ev.Payload)
				}
			}

			if elapsed := time.Since(frameStart); elapsed > targetFrameTime {
				util.LogWarning("server lagged by %v", elapsed-targetFrameTime)
			}
		}
	}
}

// splitNonEmpty splits a comma-separated list, dropping empty entries.
func splitNonEmpty(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
