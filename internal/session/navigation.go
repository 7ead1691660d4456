package session

import (
	"github.com/ajsharma/tlogcompile/internal/event"
	"github.com/ajsharma/tlogcompile/internal/logx"
)

// NavAction assembles one navigation from its load_start/redirect/
// LocationChange/load sub-events (component C4, spec §4.4). Lifecycle:
// New -> Started -> LocationChanged -> Loaded, terminal early if the tab
// receives a fresh load_start that cannot be merged into this one.
type NavAction struct {
	tab *Tab

	url            string
	hasURL         bool
	originalURL    string
	hasOriginalURL bool
	fromURL        string
	hasFromURL     bool

	cause         event.Event
	hasCause      bool
	causeTime     int64
	hasCauseTime  bool
	javascriptUsed bool

	startTime int64
	hasStartTime bool

	loadStarted bool

	locationChangeTime int64
	loadTime           int64
	hasLoadTime        bool

	backDistance    *int
	forwardDistance *int
	matchIndex      *int

	emitted bool
}

// newNavigationAction starts a nav action with an (optionally absent)
// attributed cause, owned by tab.
func newNavigationAction(tab *Tab, cause event.Event, hasCause bool, causeTime int64, hasCauseTime bool, javascriptUsed bool) *NavAction {
	return &NavAction{
		tab:            tab,
		cause:          cause,
		hasCause:       hasCause,
		causeTime:      causeTime,
		hasCauseTime:   hasCauseTime,
		javascriptUsed: javascriptUsed,
	}
}

// sharesCause reports whether a and b both carry a non-null, equal cause
// event reference (spec §4.4 shares_cause).
func (a *NavAction) sharesCause(b *NavAction) bool {
	return sameEvent(a.cause, b.cause, a.hasCause, b.hasCause)
}

// checkURL implements the hash-only-change policy (spec §4.5, Open
// Question iii): only the load sub-event treats a hash-only difference as
// equal; every other sub-event warns on any mismatch, including a
// fragment-only one.
func (a *NavAction) checkURL(label, newURL string, allowHashOnly bool, log *logx.Logger) {
	if !a.hasURL {
		return
	}
	if a.url == newURL {
		return
	}
	if allowHashOnly && event.IsHashOnlyChange(a.url, newURL) {
		return
	}
	log.Warning("%s url %s does not match in-flight url %s", label, newURL, a.url)
}

// loadStart applies a load_start sub-event (spec §4.4). A second
// invocation on the same action is logged as an error and the returned
// *FatalError aborts the fold (T-4's "at most one nav_action in-flight"
// invariant).
func (a *NavAction) loadStart(url string, t int64, log *logx.Logger) error {
	if a.loadStarted {
		return log.Error("load_start invoked twice on the same navigation action")
	}
	a.checkURL("load_start", url, false, log)
	a.url = url
	a.hasURL = true
	a.startTime = t
	a.hasStartTime = true
	a.loadStarted = true
	return nil
}

// redirect applies a redirect sub-event: from should match the in-flight
// url (warn otherwise); original_url is captured on the first redirect.
func (a *NavAction) redirect(from, to string, log *logx.Logger) {
	if a.hasURL && a.url != from {
		log.Warning("redirect from %s does not match in-flight url %s", from, a.url)
	}
	if !a.hasOriginalURL {
		a.originalURL = a.url
		a.hasOriginalURL = a.hasURL
	}
	a.url = to
	a.hasURL = true
}

// isStarted reports whether load_start has already set this action's url.
func (a *NavAction) isStarted() bool {
	return a.loadStarted
}

// locationChange applies a LocationChange sub-event and, on success,
// drives the tab's BackStack and appends the emitted record to emit.
// oldURL is the tab's current_url captured just before this call (the
// emitted record's from_url). Returns false (action stays in flight) when
// the URL mismatch is not ignorable.
func (a *NavAction) locationChange(ev event.Event, log *logx.Logger, emit func(event.Event), oldURL string, hasOldURL bool) (bool, error) {
	href, _ := ev.Href()
	if a.hasURL && a.url != href && !event.IsHashOnlyChange(a.url, href) {
		return false, nil
	}

	a.url = href
	a.hasURL = true
	a.locationChangeTime = ev.Time()
	if !a.hasStartTime {
		a.startTime = a.locationChangeTime
		a.hasStartTime = true
	}
	if hasOldURL {
		a.fromURL = oldURL
		a.hasFromURL = true
	}

	causeName := ""
	if a.hasCause {
		causeName = a.cause.Name()
	}
	gotoIndex := 0
	hasGotoIndex := false
	if causeName == event.GotoHistoryIndex {
		// The target index comes from the cause event's own "index"
		// field, not from the window's startup gotoHistoryIndex buffer
		// (that buffer only defers AppStartup's one-slot special case).
		gotoIndex, hasGotoIndex = a.cause.Index()
	}
	res := a.tab.backStack.Process(a.url, a.originalURL, a.hasOriginalURL, causeName, gotoIndex, hasGotoIndex, log)
	a.backDistance = res.BackDistance
	a.forwardDistance = res.ForwardDistance
	a.matchIndex = res.MatchIndex

	emit(a.buildEvent())
	a.emitted = true
	return true, nil
}

// load applies a load sub-event.
func (a *NavAction) load(url string, t int64, log *logx.Logger) {
	a.checkURL("load", url, true, log)
	a.loadTime = t
	a.hasLoadTime = true
}

// buildEvent constructs the emitted navigation record (spec §4.4's field
// list).
func (a *NavAction) buildEvent() event.Event {
	out := event.Event{
		"event":            event.OutNavigation,
		"time":             a.startTime,
		"win":              a.tab.win.winID,
		"tabId":            a.tab.tabID,
		"url":              a.url,
		"location_changed": a.locationChangeTime != 0,
	}
	if a.hasFromURL {
		out["from_url"] = a.fromURL
	}
	if a.hasOriginalURL {
		out["original_url"] = a.originalURL
	}
	if a.backDistance != nil {
		out["back_distance"] = *a.backDistance
	}
	if a.forwardDistance != nil {
		out["forward_distance"] = *a.forwardDistance
	}
	if a.matchIndex != nil {
		out["match_index"] = *a.matchIndex
	}

	if a.hasCause {
		cause := a.cause.Name()
		if a.javascriptUsed {
			cause += "+js"
		}
		out["cause"] = cause
		if a.hasCauseTime {
			out["secs_since_cause"] = float64(absInt64(a.startTime-a.causeTime)) / 1000.0
		}
	} else {
		out["cause"] = "unknown"
	}

	return out
}
