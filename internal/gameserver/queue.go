package gameserver

import (
	"sync"

	"github.com/1ureka/gameserver/internal/util"
)

// EventQueue is a thread-safe FIFO the host drains. Freely clonable: every
// copy of the struct shares the same underlying buffer through its pointer
// field, matching original_source/src/queue.rs's Arc<Mutex<VecDeque<_>>>
// clone semantics.
type EventQueue struct {
	buf *eventBuffer
}

type eventBuffer struct {
	mu     sync.Mutex
	events []Event
}

// NewEventQueue returns an empty queue.
func NewEventQueue() EventQueue {
	return EventQueue{buf: &eventBuffer{}}
}

// push appends an event. Called only by the Server Actor.
func (q EventQueue) push(event Event) {
	q.buf.mu.Lock()
	defer q.buf.mu.Unlock()
	q.buf.events = append(q.buf.events, event)
	util.Stats.AddEventQueued(1)
}

// Drain returns every event queued since the last Drain and empties the
// queue. Two consecutive calls with no intervening activity: the second
// returns empty (spec.md §8 testable property 5). Called only by the host.
func (q EventQueue) Drain() []Event {
	q.buf.mu.Lock()
	defer q.buf.mu.Unlock()
	if len(q.buf.events) == 0 {
		return nil
	}
	drained := q.buf.events
	q.buf.events = nil
	util.Stats.AddEventDrained(len(drained))
	return drained
}
