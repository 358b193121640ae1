package util

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pterm/pterm"
)

// ──────────────────────────────────────────────────────────────────────────────
// Global stats singleton
// ──────────────────────────────────────────────────────────────────────────────

// Stats is the process-wide connection/event counter.
var Stats = &stats{}

type stats struct {
	TotalConns  atomic.Int64 // cumulative count of connections accepted since process start
	OpenConns   atomic.Int64 // connections currently alive (between Open and Closed)
	ClosedConns atomic.Int64 // cumulative count of closed connections since process start
	EventsQueued atomic.Int64 // cumulative events pushed onto the Host Event Queue
	EventsDrained atomic.Int64 // cumulative events drained by the host
}

func (s *stats) AddConn() {
	s.TotalConns.Add(1)
	s.OpenConns.Add(1)
}
func (s *stats) RemoveConn() {
	s.OpenConns.Add(-1)
	s.ClosedConns.Add(1)
}
func (s *stats) AddEventQueued(n int)  { s.EventsQueued.Add(int64(n)) }
func (s *stats) AddEventDrained(n int) { s.EventsDrained.Add(int64(n)) }

// ──────────────────────────────────────────────────────────────────────────────
// Periodic reporter
// ──────────────────────────────────────────────────────────────────────────────

// StartStatsReporter launches a goroutine that logs server statistics
// every 10 seconds. It stops when ctx is cancelled.
func StartStatsReporter(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		var prevQueued, prevDrained, prevTotal, prevClosed int64
		for {
			select {
			case <-ticker.C:
				total := Stats.TotalConns.Load()
				closed := Stats.ClosedConns.Load()
				queued := Stats.EventsQueued.Load()
				drained := Stats.EventsDrained.Load()
				open := Stats.OpenConns.Load()

				inC := total - prevTotal
				outC := closed - prevClosed
				evQ := queued - prevQueued
				evD := drained - prevDrained

				if inC > 0 || outC > 0 || evQ > 0 || evD > 0 {
					pterm.DefaultLogger.Info(formatStats(open, inC, outC, evQ, evD))
				}

				prevQueued = queued
				prevDrained = drained
				prevTotal = total
				prevClosed = closed

			case <-ctx.Done():
				return
			}
		}
	}()
}

// formatStats returns a formatted string of the current stats for display in the logger.
func formatStats(open, inC, outC, evQ, evD int64) string {
	return fmt.Sprintf("Open: %3d | Conn: %2d↑ %2d↓ | Events: %3d queued %3d drained",
		open, inC, outC, evQ, evD,
	)
}
