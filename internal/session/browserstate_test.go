package session

import (
	"testing"

	"github.com/ajsharma/tlogcompile/internal/event"
)

// TestTabCloseThenTabSelectAppliesPendingIndex grounds scenario 4 (spec §8):
// closing the selected tab records pending_tab_close_index, and the
// following TabSelect's stale (pre-close) tabIndex is corrected by T-1
// adjustment to the tab's real post-close position. Tab resolution itself
// goes by tabId, so T1 is never mistaken for T2 regardless; the adjustment
// is what keeps check_tab_index from rejecting the otherwise-legitimate
// event. T0 is never the subject of an explicit TabSelect: it becomes the
// window's selection purely by being the first tab placed, matching the
// source's Window.insert_tab (compile.py:199-200) — this is what lets
// TabClose see it as the selected tab and record pending_tab_close_index.
func TestTabCloseThenTabSelectAppliesPendingIndex(t *testing.T) {
	input := `
{"event":"LOG_OPEN","time":0,"version":"1"}
{"event":"window_onload","time":1,"win":"W"}
{"event":"tlogger_init","time":2,"win":"W"}
{"event":"tab_registered","time":3,"win":"W","tabId":"T0"}
{"event":"TabOpen","time":4,"win":"W","tabId":"T0","tabIndex":0,"cause":"default"}
{"event":"tab_registered","time":5,"win":"W","tabId":"T1"}
{"event":"TabOpen","time":6,"win":"W","tabId":"T1","tabIndex":1,"cause":"default"}
{"event":"tab_registered","time":7,"win":"W","tabId":"T2"}
{"event":"TabOpen","time":8,"win":"W","tabId":"T2","tabIndex":2,"cause":"default"}
{"event":"LINK_CLICK","time":10,"win":"W","tabId":"T0","href":"https://dummy"}
{"event":"TabClose","time":11,"win":"W","tabId":"T0","tabIndex":0}
{"event":"TabSelect","time":12,"win":"W","tabId":"T2","tabIndex":2}
{"event":"quit-application","time":13}
`
	got := compileString(t, input)
	assertNames(t, got, []string{
		event.OutBrowserStart,
		event.OutWindowOpen,
		event.OutTabOpen,
		event.OutTabOpen,
		event.OutTabOpen,
		event.OutTabClose,
		event.OutTabSelect,
		event.OutBrowserQuit,
	})

	tabClose := got[5]
	if tc, _ := tabClose["tab_count"].(int); tc != 2 {
		t.Errorf("expected tab_close tab_count 2, got %v", tabClose["tab_count"])
	}

	lastSelect := got[6]
	if id, _ := lastSelect.TabID(); id != "T2" {
		t.Errorf("expected final tab_select for T2, got %v", lastSelect["tabId"])
	}
}
