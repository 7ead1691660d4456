// Package session implements the browser reconstruction engine (spec §3-4,
// components C3-C8): the back/forward stack simulator, navigation-action
// assembly, per-tab and per-window state tracking, the BrowserState router,
// and the three-state outer session state machine that drives it all from
// a reader.Reader down to an emitter.Emitter.
//
// Back-references (Tab -> Window, NavAction -> Tab) are plain Go pointers
// into BrowserState's own maps. Go's garbage collector handles the
// resulting reference cycles safely, so there is no need for the
// arena-index indirection the spec's design notes offer as an alternative
// for languages without a tracing collector.
package session

import (
	"math"

	"github.com/ajsharma/tlogcompile/internal/event"
)

// sameEvent is the Go stand-in for the Python source's dict-value equality
// check on cause events (self.cause == other.cause): event.Event is a map
// and can't use ==, so two events are considered "the same" here if they
// share a name and a timestamp. This is an approximation documented in
// DESIGN.md, not a literal port.
func sameEvent(a, b event.Event, hasA, hasB bool) bool {
	if !hasA || !hasB {
		return false
	}
	return a.Name() == b.Name() && a.Time() == b.Time()
}

func secondsBetween(a, b event.Event) float64 {
	return math.Abs(float64(a.Time()-b.Time())) / 1000.0
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func absInt64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
