package session

import (
	"github.com/ajsharma/tlogcompile/internal/event"
	"github.com/ajsharma/tlogcompile/internal/logx"
)

// selectionRecord is one entry in a window's selection history (spec §3,
// §4.6): the tab selected as of time t, or nil if no tab is selected.
type selectionRecord struct {
	time int64
	tab  *Tab
}

// causeRecord is one entry in a window's navigation_causes ring: a
// possible navigation-cause event, attached to a tab only when the event
// is a user action (spec §4.7).
type causeRecord struct {
	tab   *Tab
	event event.Event
}

// Window tracks one browser window's tabs and selection/cause history
// (component C6, spec §3, §4.6).
type Window struct {
	winID string

	// tabs holds nil placeholders at indices whose TabOpen hasn't
	// arrived yet (spec §4.5 "Tab placement").
	tabs []*Tab

	gotoHistoryIndexEvent    event.Event
	hasGotoHistoryIndexEvent bool

	selectionHistory []selectionRecord

	tloggerInit bool

	navigationCauses []causeRecord

	// pendingTabCloseIndex is the T-1 invariant's closed-slot marker:
	// while set, every incoming tabIndex >= it must be decremented by 1
	// before use. -1 means no close is pending.
	pendingTabCloseIndex int
}

// NewWindow creates an empty window.
func NewWindow(winID string) *Window {
	return &Window{winID: winID, pendingTabCloseIndex: -1}
}

// adjustIndex applies the T-1 pending-close correction to a raw incoming
// tabIndex.
func (w *Window) adjustIndex(idx int) int {
	if w.pendingTabCloseIndex != -1 && idx >= w.pendingTabCloseIndex {
		return idx - 1
	}
	return idx
}

// insertTab places tab at idx (already T-1-adjusted), growing with nil
// placeholders or overwriting one, or inserting-and-shifting otherwise
// (spec §4.5 "Tab placement").
func (w *Window) insertTab(tab *Tab, idx int) {
	for len(w.tabs) <= idx {
		w.tabs = append(w.tabs, nil)
	}
	if w.tabs[idx] == nil {
		w.tabs[idx] = tab
		return
	}
	w.tabs = append(w.tabs, nil)
	copy(w.tabs[idx+1:], w.tabs[idx:len(w.tabs)-1])
	w.tabs[idx] = tab
}

// checkTabIndex enforces T-1-adjusted tabIndex consistency for any event
// that names a tabIndex, except TabMove (whose tabIndex is a target
// position, not tab's current one).
func (w *Window) checkTabIndex(tab *Tab, ev event.Event, log *logx.Logger) error {
	if ev.Name() == event.TabMove {
		return nil
	}
	rawIdx, ok := ev.TabIndex()
	if !ok {
		return nil
	}
	adjusted := w.adjustIndex(rawIdx)
	actual := w.indexOf(tab)
	if actual == -1 {
		return log.Error("tab %s not found in its own window's tab list", tab.tabID)
	}
	if adjusted != actual {
		return log.Error("tabIndex mismatch for tab %s: event tabIndex=%d (adjusted %d), actual position %d", tab.tabID, rawIdx, adjusted, actual)
	}
	return nil
}

func (w *Window) indexOf(tab *Tab) int {
	for i, t := range w.tabs {
		if t == tab {
			return i
		}
	}
	return -1
}

func (w *Window) removeTab(tab *Tab) {
	idx := w.indexOf(tab)
	if idx == -1 {
		return
	}
	w.tabs = append(w.tabs[:idx], w.tabs[idx+1:]...)
}

// moveTab repositions tab to idx. Unlike insertTab's completion path, this
// is not T-1-adjusted: TabMove's tabIndex names the destination directly.
func (w *Window) moveTab(tab *Tab, idx int) {
	w.removeTab(tab)
	w.insertTab(tab, idx)
}

func (w *Window) tabCount() int {
	return len(w.tabs)
}

// selectTab records tab (possibly nil) as selected as of time t. History
// entries are time-monotone (spec §4.6).
func (w *Window) selectTab(t int64, tab *Tab) {
	w.selectionHistory = append(w.selectionHistory, selectionRecord{time: t, tab: tab})
}

func (w *Window) clearSelectionAt(t int64) {
	w.selectTab(t, nil)
}

// GetSelectedTab returns the most recently selected tab.
func (w *Window) GetSelectedTab() (*Tab, bool) {
	if len(w.selectionHistory) == 0 {
		return nil, false
	}
	rec := w.selectionHistory[len(w.selectionHistory)-1]
	return rec.tab, rec.tab != nil
}

// GetSelectedTabAt returns the tab selected as of time t: the tab from the
// selection-history entry with the largest time strictly less than t
// (spec §4.6 get_selected_tab(t)).
func (w *Window) GetSelectedTabAt(t int64) (*Tab, bool) {
	var best *selectionRecord
	for i := range w.selectionHistory {
		rec := &w.selectionHistory[i]
		if rec.time < t && (best == nil || rec.time > best.time) {
			best = rec
		}
	}
	if best == nil || best.tab == nil {
		return nil, false
	}
	return best.tab, true
}

func (w *Window) pushNavigationCause(tab *Tab, ev event.Event) {
	w.navigationCauses = append(w.navigationCauses, causeRecord{tab: tab, event: ev})
}

// GotoHistoryIndexEvent returns the gotoHistoryIndex event deferred during
// AppStartup, if any.
func (w *Window) GotoHistoryIndexEvent() (event.Event, bool) {
	return w.gotoHistoryIndexEvent, w.hasGotoHistoryIndexEvent
}

func (w *Window) SetGotoHistoryIndexEvent(ev event.Event) {
	w.gotoHistoryIndexEvent = ev
	w.hasGotoHistoryIndexEvent = true
}
