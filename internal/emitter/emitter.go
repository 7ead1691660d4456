// Package emitter implements the append-only, post-hoc-mutable output
// buffer (spec §4.2, component C2).
package emitter

import "github.com/ajsharma/tlogcompile/internal/event"

// Emitter buffers the compiler's output events in emission order. Unlike a
// typical append-only log, entries may be rewritten after the fact: the
// bookmark_visit late-attribution rule (spec §4.5, §4.7) rewrites an
// earlier navigation event's cause field once the matching bookmark_visit
// arrives.
type Emitter struct {
	events []event.Event
}

// New creates an empty Emitter.
func New() *Emitter {
	return &Emitter{}
}

// Append adds e to the end of the buffer.
func (m *Emitter) Append(e event.Event) {
	m.events = append(m.events, e)
}

// Len returns the number of buffered events.
func (m *Emitter) Len() int {
	return len(m.events)
}

// At returns the event at index i.
func (m *Emitter) At(i int) event.Event {
	return m.events[i]
}

// Set overwrites the event at index i, supporting the bookmark_visit
// late-attribution rewrite.
func (m *Emitter) Set(i int, e event.Event) {
	m.events[i] = e
}

// Events returns the full buffered sequence, in emission order.
func (m *Emitter) Events() []event.Event {
	return m.events
}

// ReverseFind scans backward from the end of the buffer and returns the
// index of the first event for which pred returns true. stop, if non-nil,
// is checked before pred on each candidate (newest first); when stop
// returns true the scan halts without a match. This models the bookmark
// scan (spec §4.7: "scan emitted events backwards up to 10 s") and the
// AppStartup exit scan for the first browser_start/window_open.
func (m *Emitter) ReverseFind(stop func(event.Event) bool, pred func(event.Event) bool) (int, bool) {
	for i := len(m.events) - 1; i >= 0; i-- {
		if stop != nil && stop(m.events[i]) {
			return 0, false
		}
		if pred(m.events[i]) {
			return i, true
		}
	}
	return 0, false
}

// Tail returns the last n events (or fewer, if the buffer is shorter).
func (m *Emitter) Tail(n int) []event.Event {
	if n >= len(m.events) {
		return m.events
	}
	return m.events[len(m.events)-n:]
}
