package session

import (
	"github.com/ajsharma/tlogcompile/internal/emitter"
	"github.com/ajsharma/tlogcompile/internal/event"
	"github.com/ajsharma/tlogcompile/internal/logx"
)

// tabRequiresLookup names event kinds that must resolve to a live tab;
// everything else may proceed with tab == nil (spec §4.7).
var tabRequiresLookup = map[string]bool{
	event.TabOpen:        true,
	event.TabRestore:     true,
	event.TabMove:        true,
	event.TabSelect:      true,
	event.TabClose:       true,
	event.LoadStart:      true,
	event.Redirect:       true,
	event.LocationChange: true,
	event.Load:           true,
}

// BrowserState is the registry of windows/tabs and the router that
// dispatches every consumed event to the right one (component C7,
// spec §4.7).
type BrowserState struct {
	windows map[string]*Window
	allTabs map[string]*Tab

	lastWindowClosedWin   string
	lastWindowClosedTime  int64
	hasLastWindowClosed   bool

	eventHistory []event.Event
	activeWindow *Window

	emit *emitter.Emitter
	log  *logx.Logger
}

// NewBrowserState creates an empty registry for one AppStartup/AppOpen run.
func NewBrowserState(emit *emitter.Emitter, log *logx.Logger) *BrowserState {
	return &BrowserState{
		windows: make(map[string]*Window),
		allTabs: make(map[string]*Tab),
		emit:    emit,
		log:     log,
	}
}

// AllTabs returns every tab ever registered, live or not yet placed.
func (s *BrowserState) AllTabs() []*Tab {
	out := make([]*Tab, 0, len(s.allTabs))
	for _, t := range s.allTabs {
		out = append(out, t)
	}
	return out
}

// GetWindow resolves ev's win field to a live Window.
func (s *BrowserState) GetWindow(ev event.Event) (*Window, bool) {
	winID, ok := ev.Win()
	if !ok {
		return nil, false
	}
	w, ok := s.windows[winID]
	return w, ok
}

// GetTab resolves a tab for ev within win: by tabId, else by the
// T-1-adjusted tabIndex, else by the window's current selection
// (spec §4.7).
func (s *BrowserState) GetTab(win *Window, ev event.Event) (*Tab, bool) {
	if tabID, ok := ev.TabID(); ok {
		if t, ok := s.allTabs[tabID]; ok {
			return t, true
		}
	}
	if idx, ok := ev.TabIndex(); ok {
		adjusted := win.adjustIndex(idx)
		if adjusted >= 0 && adjusted < len(win.tabs) && win.tabs[adjusted] != nil {
			return win.tabs[adjusted], true
		}
	}
	return win.GetSelectedTab()
}

func (s *BrowserState) lastHistoryEvent() (event.Event, bool) {
	if len(s.eventHistory) == 0 {
		return nil, false
	}
	return s.eventHistory[len(s.eventHistory)-1], true
}

// ProcessEvent routes ev through handleEvent and, only on success, appends
// it to event_history (spec §4.7's closing line).
func (s *BrowserState) ProcessEvent(ev event.Event) error {
	if err := s.handleEvent(ev); err != nil {
		return err
	}
	s.eventHistory = append(s.eventHistory, ev)
	return nil
}

func (s *BrowserState) newWindow(ev event.Event) error {
	winID, ok := ev.Win()
	if !ok {
		return s.log.Error("window_onload with no win field")
	}
	if _, exists := s.windows[winID]; exists {
		return s.log.Error("duplicate window_onload for %s", winID)
	}
	win := NewWindow(winID)
	s.windows[winID] = win
	s.activeWindow = win

	cause := "default"
	chained := false
	if prev, ok := s.lastHistoryEvent(); ok {
		if prev.Name() == event.OpenNewWindowWith {
			chained = true
			if len(s.eventHistory) >= 2 {
				cause = s.eventHistory[len(s.eventHistory)-2].Name()
			} else {
				cause = "unknown"
			}
		} else {
			cause = prev.Name()
		}
	}
	if chained {
		cause += "+" + event.OpenNewWindowWith
	}
	s.emit.Append(event.NewWindowOpen(ev, cause))
	return nil
}

func (s *BrowserState) closeWindowEvent(ev event.Event) error {
	winID, ok := ev.Win()
	if !ok {
		return s.log.Error("window_unload with no win field")
	}
	win, exists := s.windows[winID]
	if !exists {
		s.log.Warning("window_unload for unknown window %s", winID)
		return nil
	}
	s.emit.Append(event.NewWindowClose(ev))
	delete(s.windows, winID)
	s.lastWindowClosedWin = winID
	s.lastWindowClosedTime = ev.Time()
	s.hasLastWindowClosed = true
	if s.activeWindow == win {
		s.activeWindow = nil
	}
	return nil
}

func (s *BrowserState) windowRecentlyClosed(ev event.Event) bool {
	winID, ok := ev.Win()
	if !ok {
		return false
	}
	if s.hasLastWindowClosed && s.lastWindowClosedWin == winID && ev.Time()-s.lastWindowClosedTime < 500 {
		return true
	}
	if prev, ok := s.lastHistoryEvent(); ok && prev.Name() == event.WindowUnload {
		if prevWin, ok := prev.Win(); ok && prevWin == winID {
			return true
		}
	}
	return false
}

func (s *BrowserState) newTab(win *Window, ev event.Event) (*Tab, error) {
	tabID, ok := ev.TabID()
	if !ok {
		return nil, s.log.Error("tab_registered with no tabId")
	}
	if _, exists := s.allTabs[tabID]; exists {
		return nil, s.log.Error("duplicate tabId %s", tabID)
	}
	cause, ok := s.lastHistoryEvent()
	hasCause := ok
	openedNewTabWith := false
	if ok {
		switch {
		case cause.Name() == event.OpenNewTabWith:
			openedNewTabWith = true
			if len(s.eventHistory) >= 2 {
				cause = s.eventHistory[len(s.eventHistory)-2]
			} else {
				hasCause = false
			}
		case cause.Name() == event.WindowOnload:
			if len(win.tabs) != 0 {
				return nil, s.log.Error("tab_registered after window_onload but window %s already has tabs", win.winID)
			}
		}
	}
	tab := NewTab(win, tabID, cause, hasCause, openedNewTabWith)
	s.allTabs[tabID] = tab
	return tab, nil
}

func (s *BrowserState) maybeSynthesizeKeyDown(win *Window, ev event.Event) {
	lastKeyDownTime, ok := ev.LastKeyDownTime()
	if !ok {
		return
	}
	var lastGlobalTime int64
	if prev, has := s.lastHistoryEvent(); has {
		lastGlobalTime = prev.Time()
	}
	if lastKeyDownTime <= lastGlobalTime {
		return
	}
	selTab, _ := win.GetSelectedTabAt(lastKeyDownTime)
	win.pushNavigationCause(selTab, event.New(event.KeyDown, lastKeyDownTime))
}

func (s *BrowserState) updateActiveWindow(ev event.Event) error {
	if win, ok := s.GetWindow(ev); ok {
		s.activeWindow = win
	}
	return nil
}

// handleBookmarkVisit implements the bookmark_visit late-attribution rule
// (spec §4.7): the nearest matching navigation within the last 10s of
// emitted output has its cause rewritten. A bookmark_visit whose URL
// matches an earlier bookmark_visit within the last 10s of consumed input
// is a duplicate and dropped.
func (s *BrowserState) handleBookmarkVisit(ev event.Event) error {
	url, _ := ev.RawURL()

	for i := len(s.eventHistory) - 1; i >= 0; i-- {
		prev := s.eventHistory[i]
		if secondsBetween(prev, ev) > 10 {
			break
		}
		if prev.Name() != event.BookmarkVisit {
			continue
		}
		if prevURL, ok := prev.RawURL(); ok && prevURL == url {
			s.log.Info("duplicate bookmark_visit for %s ignored", url)
			return nil
		}
	}

	idx, found := s.emit.ReverseFind(
		func(e event.Event) bool { return secondsBetween(e, ev) > 10 },
		func(e event.Event) bool {
			if e.Name() != event.OutNavigation {
				return false
			}
			u, ok := e["url"].(string)
			return ok && u == url
		},
	)
	if !found {
		s.log.Warning("bookmark_visit for %s matches no recent navigation", url)
		return nil
	}
	rewritten := s.emit.At(idx).Clone()
	rewritten["cause"] = event.BookmarkVisit
	s.emit.Set(idx, rewritten)
	return nil
}

// handleEvent is the per-event router (spec §4.7's process_event).
func (s *BrowserState) handleEvent(ev event.Event) error {
	name := ev.Name()

	switch name {
	case event.ErrorEvent, event.WarningEvent:
		s.log.Warning("input reported %s: %v", name, ev["message"])
		return nil
	case event.WindowOnload:
		return s.newWindow(ev)
	case event.WindowUnload:
		return s.closeWindowEvent(ev)
	}

	win, winOK := s.GetWindow(ev)
	if !winOK {
		if s.windowRecentlyClosed(ev) {
			s.log.Warning("event %s for unknown (recently closed) window", name)
			return nil
		}
		return s.log.Error("event %s references unknown window", name)
	}

	if name == event.TabRegistered {
		_, err := s.newTab(win, ev)
		return err
	}

	if name == event.TLoggerInit || name == event.TabLoggerInit {
		win.tloggerInit = true
		return nil
	}

	s.maybeSynthesizeKeyDown(win, ev)

	tab, tabOK := s.GetTab(win, ev)
	if tabRequiresLookup[name] && !tabOK {
		return s.log.Error("event %s resolves to no tab in window %s", name, win.winID)
	}

	if event.IsNavigationCause(name) && ev.IsTopLevel() {
		var owner *Tab
		if event.IsUserAction(name) {
			owner = tab
		}
		win.pushNavigationCause(owner, ev)
	}

	if !win.tloggerInit {
		if name == event.TabOpen {
			if cause, _ := ev.Cause(); cause != "default" {
				return s.log.Error("TabOpen before tlogger_init with cause %s, expected default", cause)
			}
			if idx, ok := ev.TabIndex(); ok && idx != 0 {
				s.log.Warning("TabOpen before tlogger_init with non-zero tabIndex %d", idx)
			}
		} else {
			return s.log.Error("event %s before window %s is initialized", name, win.winID)
		}
	}

	if tab != nil && !tab.hasTabOpenEvent {
		switch name {
		case event.TabOpen, event.TabRestore, event.TabMove, event.TabSelect:
		default:
			s.log.Warning("event %s for tab %s arrived before its own tab_open", name, tab.tabID)
		}
		if err := tab.completeTabOpen(ev, s.emit.Append, s.log); err != nil {
			return err
		}
	}

	if tab != nil {
		if err := win.checkTabIndex(tab, ev, s.log); err != nil {
			return err
		}
	}

	switch name {
	case event.TabOpen:
		// no-op: completion already happened above.

	case event.TabRestore:
		tab.setRestored(s.log)

	case event.TabMove:
		idx, _ := ev.TabIndex()
		win.moveTab(tab, idx)
		s.emit.Append(event.NewTabMove(ev))

	case event.TabSelect:
		win.selectTab(ev.Time(), tab)
		win.pendingTabCloseIndex = -1
		s.emit.Append(event.NewTabSelect(ev))

	case event.TabClose:
		if selTab, ok := win.GetSelectedTab(); ok && selTab == tab {
			win.clearSelectionAt(ev.Time())
			win.pendingTabCloseIndex = win.indexOf(tab)
		}
		win.removeTab(tab)
		delete(s.allTabs, tab.tabID)
		s.emit.Append(event.NewTabClose(ev, win.tabCount()))

	case event.OpenNewTabWith, event.OpenNewWindowWith:
		// no-op: consulted later via event history.

	case event.LoadStart:
		if !ev.IsTopLevel() {
			return nil
		}
		prev, hasPrev := s.lastHistoryEvent()
		return tab.loadStart(ev, prev, hasPrev, s.log, s.emit.Append)

	case event.Redirect:
		if !ev.IsTopLevel() {
			return nil
		}
		return tab.redirectHandle(ev, s.log)

	case event.LocationChange:
		if !ev.IsTopLevel() {
			return nil
		}
		prev, hasPrev := s.lastHistoryEvent()
		return tab.locationChangeHandle(ev, prev, hasPrev, s.log, s.emit.Append)

	case event.Load:
		if !ev.IsTopLevel() {
			return nil
		}
		if url, ok := ev.RawURL(); ok && url == "about:blank" {
			return nil
		}
		tab.loadHandle(ev, s.log)
		s.emit.Append(event.NewLoad(ev))

	case event.Question:
		s.emit.Append(event.NewQuestion(ev))

	case event.BookmarkVisit:
		return s.handleBookmarkVisit(ev)

	default:
		if event.IsNavigationCause(name) {
			return nil
		}
		if event.IsUserAction(name) {
			return s.updateActiveWindow(ev)
		}
		return s.log.Error("unexpected event %s", name)
	}
	return nil
}
