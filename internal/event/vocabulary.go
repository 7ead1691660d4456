package event

// Input lifecycle events.
const (
	LogOpen         = "LOG_OPEN"
	QuitApplication = "quit-application"
	WindowOnload    = "window_onload"
	WindowUnload    = "window_unload"
	TabRegistered   = "tab_registered"
	TabOpen         = "TabOpen"
	TabClose        = "TabClose"
	TabSelect       = "TabSelect"
	TabMove         = "TabMove"
	TabRestore      = "TabRestore"
	TLoggerInit     = "tlogger_init"
	TabLoggerInit   = "tablogger_init"
)

// Navigation sub-events.
const (
	LoadStart        = "load_start"
	Redirect         = "redirect"
	LocationChange   = "LocationChange"
	Load             = "load"
	FormSubmit       = "form_submit"
	JSLocationChange = "js_location_change"
)

// User navigation causes.
const (
	URLBarCommand    = "URLBarCommand"
	SearchBarSearch  = "SearchBarSearch"
	RightClickSearch = "RightClickSearch"
	LinkClick        = "LINK_CLICK"
	RightClick       = "RIGHT_CLICK"
	GoHome           = "GoHome"
	BrowserHomeClick = "BrowserHomeClick"
	OpenOneBookmark  = "openOneBookmark"
	HistoryOpenURLIn = "history openURLIn"
	NewWindow        = "NEW_WINDOW"
	NewTab           = "NEW_TAB"
	DocumentClick    = "DOCUMENT_CLICK"
	WindowMousedown  = "window_mousedown"
	DocumentMousedow = "document_mousedown"
)

// History-navigation causes.
const (
	GotoHistoryIndex = "gotoHistoryIndex"
	OnHistoryGoBack  = "OnHistoryGoBack"
	BrowserForward   = "BrowserForward"
	OnHistoryReload  = "OnHistoryReload"
)

// User non-navigation actions.
const (
	Answer = "answer"
)

// Contextual events.
const (
	OpenNewTabWith    = "openNewTabWith"
	OpenNewWindowWith = "openNewWindowWith"
	BookmarkVisit     = "bookmark_visit"
	Question          = "question"
	ErrorEvent        = "ERROR"
	WarningEvent      = "WARNING"
	KeyDown           = "keyDown" // synthetic

	// MetaRedirectGuess and JSRedirectGuess are synthetic causes assigned
	// to a load_start with no attributed cause that arrives within 150ms
	// of the tab's last completed navigation's load_time or
	// location_change_time (spec §4.5's condensed load_start rules).
	MetaRedirectGuess = "meta-redirect?"
	JSRedirectGuess   = "js-redirect?"
)

// Output event names.
const (
	OutBrowserStart = "browser_start"
	OutBrowserQuit  = "browser_quit"
	OutWindowOpen   = "window_open"
	OutWindowClose  = "window_close"
	OutTabOpen      = "tab_open"
	OutTabSelect    = "tab_select"
	OutTabMove      = "tab_move"
	OutTabClose     = "tab_close"
	OutNavigation   = "navigation"
	OutLoad         = "load"
	OutQuestion     = "question"
)

// userNavigationEvents are user-triggered events that can be the cause of a
// navigation action.
var userNavigationEvents = map[string]bool{
	NewWindow:        true,
	NewTab:           true,
	URLBarCommand:    true,
	SearchBarSearch:  true,
	RightClickSearch: true,
	LinkClick:        true,
	RightClick:       true,
	GoHome:           true,
	BrowserHomeClick: true,
	OpenOneBookmark:  true,
	HistoryOpenURLIn: true,
	DocumentClick:    true,
	WindowMousedown:  true,
	DocumentMousedow: true,
}

// otherNavigationEvents might be triggered by the user or by javascript,
// although they will usually be preceded by a user action either way.
var otherNavigationEvents = map[string]bool{
	GotoHistoryIndex: true,
	OnHistoryGoBack:  true,
	BrowserForward:   true,
	OnHistoryReload:  true,
	FormSubmit:       true,
	JSLocationChange: true,
}

// userNonNavigationEvents are user-triggered events that do not cause
// navigation to occur.
var userNonNavigationEvents = map[string]bool{
	TabClose:     true,
	Answer:       true,
	WindowUnload: true,
	TabSelect:    true,
	TabMove:      true,
}

// IsUserAction reports whether name is a user-triggered event of any kind
// (navigation-causing or not).
func IsUserAction(name string) bool {
	return userNavigationEvents[name] || userNonNavigationEvents[name]
}

// IsNavigationCause reports whether name is an event that can be recorded
// as a possible navigation cause.
func IsNavigationCause(name string) bool {
	return userNavigationEvents[name] || otherNavigationEvents[name]
}

// IsHashOnlyChange reports whether old and new differ only after the first
// '#' (spec glossary: "Hash-only change").
func IsHashOnlyChange(old, new string) bool {
	return beforeHash(old) == beforeHash(new)
}

func beforeHash(url string) string {
	for i := 0; i < len(url); i++ {
		if url[i] == '#' {
			return url[:i]
		}
	}
	return url
}
