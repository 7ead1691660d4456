package session

import (
	"strings"
	"testing"

	"github.com/ajsharma/tlogcompile/internal/event"
	"github.com/ajsharma/tlogcompile/internal/logx"
	"github.com/ajsharma/tlogcompile/internal/reader"
)

func compileString(t *testing.T, input string) []event.Event {
	t.Helper()
	r := reader.New(strings.NewReader(input), nil)
	log := logx.New(r, false)
	events, err := Compile(r, log)
	if err != nil {
		t.Fatalf("Compile: %v (events so far: %v)", err, events)
	}
	return events
}

func names(events []event.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Name()
	}
	return out
}

func assertNames(t *testing.T, got []event.Event, want []string) {
	t.Helper()
	gotNames := names(got)
	if len(gotNames) != len(want) {
		t.Fatalf("expected %d events %v, got %d: %v", len(want), want, len(gotNames), gotNames)
	}
	for i := range want {
		if gotNames[i] != want[i] {
			t.Fatalf("event %d: expected %s, got %s (full sequence: %v)", i, want[i], gotNames[i], gotNames)
		}
	}
}

// TestCleanLinkClick grounds scenario 1 (spec §8).
func TestCleanLinkClick(t *testing.T) {
	input := `
{"event":"LOG_OPEN","time":0,"version":"1"}
{"event":"window_onload","time":1,"win":"W"}
{"event":"tab_registered","time":2,"win":"W","tabId":"T"}
{"event":"TabOpen","time":3,"win":"W","tabId":"T","tabIndex":0,"cause":"default"}
{"event":"tlogger_init","time":4,"win":"W"}
{"event":"LINK_CLICK","time":5,"win":"W","tabId":"T","href":"https://a"}
{"event":"load_start","time":6,"isTopLevel":true,"href":"https://a","tabId":"T","win":"W","lastKeyDownTime":0}
{"event":"LocationChange","time":7,"isTopLevel":true,"href":"https://a","tabIndex":0,"win":"W","tabId":"T"}
{"event":"load","time":8,"isTopLevel":true,"url":"https://a","tabId":"T","win":"W"}
{"event":"quit-application","time":9}
`
	got := compileString(t, input)
	assertNames(t, got, []string{
		event.OutBrowserStart,
		event.OutWindowOpen,
		event.OutTabOpen,
		event.OutNavigation,
		event.OutLoad,
		event.OutBrowserQuit,
	})

	nav := got[3]
	if u, _ := nav.RawURL(); u != "https://a" {
		t.Errorf("expected navigation url https://a, got %v", nav["url"])
	}
	if c, _ := nav.Cause(); c != event.LinkClick {
		t.Errorf("expected navigation cause %s, got %v", event.LinkClick, nav["cause"])
	}

	win := got[1]
	if c, _ := win.Cause(); c != "default" {
		t.Errorf("expected window_open cause default, got %v", win["cause"])
	}

	tabOpen := got[2]
	if c, _ := tabOpen.Cause(); c != "default" {
		t.Errorf("expected tab_open cause default, got %v", tabOpen["cause"])
	}
	if tc, _ := tabOpen["tab_count"].(int); tc != 1 {
		t.Errorf("expected tab_count 1, got %v", tabOpen["tab_count"])
	}
}

// TestMetaRefreshRedirectGuessesCause grounds scenario 2 (spec §8): a second
// load_start with no attributed cause, arriving within 150ms of the first
// navigation's load_time, is tagged with the synthetic meta-redirect? cause.
func TestMetaRefreshRedirectGuessesCause(t *testing.T) {
	input := `
{"event":"LOG_OPEN","time":0,"version":"1"}
{"event":"window_onload","time":1,"win":"W"}
{"event":"tab_registered","time":2,"win":"W","tabId":"T"}
{"event":"TabOpen","time":3,"win":"W","tabId":"T","tabIndex":0,"cause":"default"}
{"event":"tlogger_init","time":4,"win":"W"}
{"event":"LINK_CLICK","time":5,"win":"W","tabId":"T","href":"https://a"}
{"event":"load_start","time":6,"isTopLevel":true,"href":"https://a","tabId":"T","win":"W"}
{"event":"LocationChange","time":7,"isTopLevel":true,"href":"https://a","tabIndex":0,"win":"W","tabId":"T"}
{"event":"load","time":8,"isTopLevel":true,"url":"https://a","tabId":"T","win":"W"}
{"event":"load_start","time":150,"isTopLevel":true,"href":"https://b","tabId":"T","win":"W"}
{"event":"LocationChange","time":160,"isTopLevel":true,"href":"https://b","tabIndex":0,"win":"W","tabId":"T"}
{"event":"load","time":170,"isTopLevel":true,"url":"https://b","tabId":"T","win":"W"}
{"event":"quit-application","time":200}
`
	got := compileString(t, input)
	assertNames(t, got, []string{
		event.OutBrowserStart,
		event.OutWindowOpen,
		event.OutTabOpen,
		event.OutNavigation,
		event.OutLoad,
		event.OutNavigation,
		event.OutLoad,
		event.OutBrowserQuit,
	})

	second := got[5]
	if u, _ := second.RawURL(); u != "https://b" {
		t.Fatalf("expected second navigation url https://b, got %v", second["url"])
	}
	if c, _ := second.Cause(); c != event.MetaRedirectGuess {
		t.Errorf("expected second navigation cause %s, got %v", event.MetaRedirectGuess, second["cause"])
	}
	if from, ok := second.FromURL(); !ok || from != "https://a" {
		t.Errorf("expected from_url https://a, got %v", second["from_url"])
	}
}

// TestSessionRestoreRewritesCause grounds scenario 5 (spec §8): every
// startup event after the first window_open acquires cause=restore once a
// TabRestore is observed during AppStartup.
func TestSessionRestoreRewritesCause(t *testing.T) {
	input := `
{"event":"LOG_OPEN","time":0,"version":"1"}
{"event":"window_onload","time":1,"win":"W"}
{"event":"tlogger_init","time":2,"win":"W"}
{"event":"tab_registered","time":3,"win":"W","tabId":"T0"}
{"event":"TabRestore","time":4,"win":"W","tabId":"T0","tabIndex":0}
{"event":"tab_registered","time":5,"win":"W","tabId":"T1"}
{"event":"TabRestore","time":6,"win":"W","tabId":"T1","tabIndex":1}
{"event":"LINK_CLICK","time":7,"win":"W","tabId":"T0","href":"https://a"}
{"event":"quit-application","time":8}
`
	got := compileString(t, input)
	assertNames(t, got, []string{
		event.OutBrowserStart,
		event.OutWindowOpen,
		event.OutTabOpen,
		event.OutTabOpen,
		event.OutBrowserQuit,
	})

	if c, _ := got[1].Cause(); c != "default" {
		t.Errorf("expected window_open cause default, got %v", got[1]["cause"])
	}
	if c, _ := got[2].Cause(); c != "restore" {
		t.Errorf("expected first tab_open cause restore, got %v", got[2]["cause"])
	}
	if c, _ := got[3].Cause(); c != "restore" {
		t.Errorf("expected second tab_open cause restore, got %v", got[3]["cause"])
	}
}

// TestBookmarkVisitRewritesEarlierNavigationCause grounds scenario 6
// (spec §8): a bookmark_visit arriving after its matching navigation
// rewrites that navigation's cause in place. The second navigation has no
// attributable cause of its own (its LocationChange arrives with no
// load_start and no matching recent navigation_causes entry), so it is
// emitted with cause=unknown until the bookmark_visit rewrites it.
func TestBookmarkVisitRewritesEarlierNavigationCause(t *testing.T) {
	input := `
{"event":"LOG_OPEN","time":0,"version":"1"}
{"event":"window_onload","time":1,"win":"W"}
{"event":"tab_registered","time":2,"win":"W","tabId":"T"}
{"event":"TabOpen","time":3,"win":"W","tabId":"T","tabIndex":0,"cause":"default"}
{"event":"tlogger_init","time":4,"win":"W"}
{"event":"LINK_CLICK","time":5,"win":"W","tabId":"T","href":"https://first"}
{"event":"load_start","time":6,"isTopLevel":true,"href":"https://first","tabId":"T","win":"W"}
{"event":"LocationChange","time":7,"isTopLevel":true,"href":"https://first","tabIndex":0,"win":"W","tabId":"T"}
{"event":"load","time":8,"isTopLevel":true,"url":"https://first","tabId":"T","win":"W"}
{"event":"LocationChange","time":10007,"isTopLevel":true,"href":"https://book","tabIndex":0,"win":"W","tabId":"T"}
{"event":"bookmark_visit","time":10100,"win":"W","tabId":"T","url":"https://book"}
{"event":"quit-application","time":10200}
`
	got := compileString(t, input)
	assertNames(t, got, []string{
		event.OutBrowserStart,
		event.OutWindowOpen,
		event.OutTabOpen,
		event.OutNavigation,
		event.OutLoad,
		event.OutNavigation,
		event.OutBrowserQuit,
	})

	first := got[3]
	if c, _ := first.Cause(); c != event.LinkClick {
		t.Errorf("expected first navigation cause %s, got %v", event.LinkClick, first["cause"])
	}

	second := got[5]
	if u, _ := second.RawURL(); u != "https://book" {
		t.Fatalf("expected second navigation url https://book, got %v", second["url"])
	}
	if c, _ := second.Cause(); c != event.BookmarkVisit {
		t.Errorf("expected navigation cause rewritten to %s, got %v", event.BookmarkVisit, second["cause"])
	}
}

// TestFirstEventNotLogOpenWarnsWithoutCrashing grounds boundary behavior (a)
// (spec §8): a session that never sees LOG_OPEN produces no browser_start
// and no fatal error.
func TestFirstEventNotLogOpenWarnsWithoutCrashing(t *testing.T) {
	input := `
{"event":"window_onload","time":1,"win":"W"}
`
	got := compileString(t, input)
	if len(got) != 0 {
		t.Fatalf("expected no output events, got %v", names(got))
	}
}
