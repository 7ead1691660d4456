package session

import (
	"github.com/ajsharma/tlogcompile/internal/event"
	"github.com/ajsharma/tlogcompile/internal/logx"
)

// Tab tracks one browser tab's state (component C5, spec §3, §4.5).
type Tab struct {
	tabID string
	win   *Window

	tabOpenCause    event.Event
	hasTabOpenCause bool
	openedNewTabWith bool

	tabOpenEvent    event.Event
	hasTabOpenEvent bool

	restored bool

	navAction     *NavAction
	lastNavAction *NavAction

	currentURL    string
	hasCurrentURL bool

	lastNavigationTime int64

	backStack *BackStack
}

// NewTab registers a tab just opened (tab_registered), not yet placed in
// its window's tab list. cause is the input event BrowserState attributed
// as the reason the tab was opened (may be absent).
func NewTab(win *Window, tabID string, cause event.Event, hasCause bool, openedNewTabWith bool) *Tab {
	return &Tab{
		tabID:            tabID,
		win:              win,
		tabOpenCause:     cause,
		hasTabOpenCause:  hasCause,
		openedNewTabWith: openedNewTabWith,
		backStack:        NewBackStack(),
	}
}

// hasNavigated reports whether this tab has ever completed a navigation.
func (t *Tab) hasNavigated() bool {
	return t.lastNavAction != nil
}

// completeTabOpen places t in its window (with T-1 adjustment) and emits
// the tab_open record, per spec §4.5 "Tab open completion".
func (t *Tab) completeTabOpen(ev event.Event, emit func(event.Event), log *logx.Logger) error {
	idx, ok := ev.TabIndex()
	if !ok {
		return log.Error("first event for tab %s carries no tabIndex", t.tabID)
	}
	idx = t.win.adjustIndex(idx)
	wasEmpty := t.win.tabCount() == 0
	t.win.insertTab(t, idx)
	if wasEmpty {
		// The window's first tab is selected by construction, matching the
		// source's Window.insert_tab (compile.py:199-200); nothing else
		// would otherwise ever select it absent an explicit TabSelect.
		t.win.selectTab(ev.Time(), t)
	}

	cause := "unknown"
	if t.hasTabOpenCause {
		switch {
		case t.tabOpenCause.Name() == event.WindowOnload:
			cause = "default"
		default:
			cause = t.tabOpenCause.Name()
			if t.openedNewTabWith {
				cause += "+" + event.OpenNewTabWith
			}
		}
	}

	out := event.NewTabOpen(ev, cause, t.win.tabCount())
	out["tabId"] = t.tabID
	out["tabIndex"] = idx
	t.tabOpenEvent = out
	t.hasTabOpenEvent = true
	emit(out)
	return nil
}

// getNavigationCause implements _get_navigation_cause (spec §4.5): given
// the nav-triggering event, scans the window's navigation_causes ring for
// the first URL match (first-matching-URL-wins, Open Question i,
// preserved as specified), falling back to the newest cause attributed to
// this tab, and finally to tab_open_cause when the tab has never navigated.
func (t *Tab) getNavigationCause(navEvent event.Event, lastGlobal event.Event, hasLastGlobal bool, log *logx.Logger) (event.Event, bool, bool) {
	// The nav-triggering event names its target via href, not the glossary
	// URL-of-event rule (that rule is for the *candidate cause* events
	// compared against it below, e.g. LINK_CLICK/form_submit).
	url, _ := navEvent.Href()
	javascriptUsed := false
	if c, ok := navEvent.Cause(); ok && (hasPrefix(c, "javascript:") || hasPrefix(c, "http")) {
		javascriptUsed = true
	}
	if hasLastGlobal && lastGlobal.Name() == event.JSLocationChange {
		javascriptUsed = true
	}

	var fallback event.Event
	hasFallback := false

	for i := len(t.win.navigationCauses) - 1; i >= 0; i-- {
		rec := t.win.navigationCauses[i]
		if rec.event.Time() < t.lastNavigationTime {
			break
		}
		if secondsBetween(rec.event, navEvent) > 5 {
			break
		}
		candURL, ok := rec.event.URL()
		if ok && candURL == url {
			return checkCausePostAttribution(rec.event, url, &javascriptUsed, log), true, javascriptUsed
		}
		if !hasFallback && rec.tab == t {
			fallback, hasFallback = rec.event, true
		}
	}

	if !t.hasNavigated() && (!hasFallback || t.restored) {
		if t.hasTabOpenCause {
			return checkCausePostAttribution(t.tabOpenCause, url, &javascriptUsed, log), true, javascriptUsed
		}
		return event.Event{}, false, javascriptUsed
	}

	if hasFallback {
		return checkCausePostAttribution(fallback, url, &javascriptUsed, log), true, javascriptUsed
	}
	return event.Event{}, false, javascriptUsed
}

func checkCausePostAttribution(cause event.Event, url string, javascriptUsed *bool, log *logx.Logger) event.Event {
	causeURL, ok := cause.URL()
	if !ok {
		return cause
	}
	if hasPrefix(causeURL, "javascript:") {
		*javascriptUsed = true
	} else if causeURL != url && !*javascriptUsed {
		log.Warning("navigation cause url %s differs from navigation url %s", causeURL, url)
	}
	return cause
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// loadStart handles a load_start sub-event for this tab (spec §4.5,
// condensed rules, extended per the "close out the in-flight action"
// enrichment the distilled spec adds over the raw source: a superseded
// in-flight navigation is emitted best-effort instead of silently lost).
func (t *Tab) loadStart(ev event.Event, lastGlobal event.Event, hasLastGlobal bool, log *logx.Logger, emit func(event.Event)) error {
	url, _ := ev.Href()

	if t.navAction != nil && hasLastGlobal && lastGlobal.Name() == event.LoadStart {
		if sameTabLoadStart(lastGlobal, t.tabID) {
			if t.navAction.hasURL && t.navAction.url == url {
				log.Warning("duplicate load_start for %s ignored", url)
				return nil
			}
			t.navAction.redirect(t.navAction.url, url, log)
			return nil
		}
	}

	if !t.hasNavigated() && t.navAction == nil && url == "about:blank" {
		log.Info("ignoring about:blank load_start on a fresh tab")
		return nil
	}

	cause, hasCause, jsUsed := t.getNavigationCause(ev, lastGlobal, hasLastGlobal, log)
	causeTime := int64(0)
	hasCauseTime := hasCause
	if hasCause {
		causeTime = cause.Time()
	}
	next := newNavigationAction(t, cause, hasCause, causeTime, hasCauseTime, jsUsed)

	if t.navAction != nil {
		if t.navAction.sharesCause(next) {
			if t.navAction.hasURL && t.navAction.url == url {
				log.Warning("duplicate load_start sharing cause for %s ignored", url)
				return nil
			}
			return log.Error("different load_starts share cause on tab %s", t.tabID)
		}
		if !t.navAction.emitted {
			emit(t.navAction.buildEvent())
		}
	}

	// An in-flight action never has load_time/location_change_time set (it
	// would have been promoted to last_nav_action already), so these
	// proximity heuristics always compare against the last completed
	// navigation, not whatever is (or isn't) still in flight.
	if !hasCause && t.lastNavAction != nil {
		prev := t.lastNavAction
		switch {
		case prev.hasLoadTime && absInt64(ev.Time()-prev.loadTime) <= 150:
			next.cause = event.New(event.MetaRedirectGuess, ev.Time())
			next.hasCause = true
		case prev.locationChangeTime != 0 && absInt64(ev.Time()-prev.locationChangeTime) <= 150:
			next.cause = event.New(event.JSRedirectGuess, ev.Time())
			next.hasCause = true
		}
	}

	if err := next.loadStart(url, ev.Time(), log); err != nil {
		return err
	}
	t.navAction = next
	return nil
}

func sameTabLoadStart(ev event.Event, tabID string) bool {
	id, ok := ev.TabID()
	return ok && id == tabID
}

// redirectHandle applies a redirect sub-event to the in-flight action.
func (t *Tab) redirectHandle(ev event.Event, log *logx.Logger) error {
	if t.navAction == nil {
		log.Warning("redirect with no in-flight navigation on tab %s", t.tabID)
		return nil
	}
	from, _ := ev.FromURL()
	to, _ := ev.ToURL()
	t.navAction.redirect(from, to, log)
	return nil
}

// locationChangeHandle applies a LocationChange sub-event (spec §4.5,
// condensed rules).
func (t *Tab) locationChangeHandle(ev event.Event, lastGlobal event.Event, hasLastGlobal bool, log *logx.Logger, emit func(event.Event)) error {
	if t.navAction == nil {
		cause, hasCause, jsUsed := t.getNavigationCause(ev, lastGlobal, hasLastGlobal, log)
		if !hasCause && !t.hasNavigated() && t.hasTabOpenCause {
			cause, hasCause = t.tabOpenCause, true
		}
		causeTime := int64(0)
		if hasCause {
			causeTime = cause.Time()
		}
		t.navAction = newNavigationAction(t, cause, hasCause, causeTime, hasCause, jsUsed)
	}

	if t.lastNavAction != nil && t.navAction.sharesCause(t.lastNavAction) {
		href, _ := ev.Href()
		if t.lastNavAction.hasURL && t.lastNavAction.url == href {
			log.Warning("duplicate LocationChange for %s ignored", href)
			t.navAction = nil
			return nil
		}
		t.navAction.hasCause = false
	}

	oldURL, hasOldURL := t.currentURL, t.hasCurrentURL
	ok, err := t.navAction.locationChange(ev, log, emit, oldURL, hasOldURL)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	t.lastNavAction = t.navAction
	t.navAction = nil
	href, _ := ev.Href()
	t.currentURL = href
	t.hasCurrentURL = true
	t.lastNavigationTime = ev.Time()
	return nil
}

// loadHandle applies a load sub-event to the most recently completed
// navigation (load always arrives after LocationChange has promoted
// nav_action -> last_nav_action).
func (t *Tab) loadHandle(ev event.Event, log *logx.Logger) {
	if t.lastNavAction == nil {
		log.Warning("load with no last navigation action on tab %s", t.tabID)
		return
	}
	url, _ := ev.RawURL()
	t.lastNavAction.load(url, ev.Time(), log)
}

func (t *Tab) setRestored(log *logx.Logger) {
	if t.hasNavigated() {
		log.Warning("TabRestore for tab %s that already has navigation history", t.tabID)
	}
	t.restored = true
}
