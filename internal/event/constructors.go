package event

// NewBrowserStart creates a browser_start event, copying the LOG_OPEN
// event's version field across.
func NewBrowserStart(orig Event) Event {
	e := Derive(orig, OutBrowserStart, []string{}, Event{})
	if v, ok := orig["version"]; ok {
		e["version"] = v
	}
	return e
}

// NewBrowserQuit creates a browser_quit event.
func NewBrowserQuit(orig Event) Event {
	return Derive(orig, OutBrowserQuit, []string{}, Event{})
}

// NewWindowOpen creates a window_open event with the given attributed cause.
func NewWindowOpen(orig Event, cause string) Event {
	return Derive(orig, OutWindowOpen, []string{"win"}, Event{"cause": cause})
}

// NewWindowClose creates a window_close event.
func NewWindowClose(orig Event) Event {
	return Derive(orig, OutWindowClose, []string{"win"}, Event{})
}

// NewTabOpen creates a tab_open event.
func NewTabOpen(orig Event, cause string, tabCount int) Event {
	return Derive(orig, OutTabOpen, []string{"win", "tabId", "tabIndex"},
		Event{"cause": cause, "tab_count": tabCount})
}

// NewTabSelect creates a tab_select event.
func NewTabSelect(orig Event) Event {
	return Derive(orig, OutTabSelect, []string{"win", "tabId", "tabIndex"}, Event{})
}

// NewTabMove creates a tab_move event.
func NewTabMove(orig Event) Event {
	return Derive(orig, OutTabMove, []string{"win", "tabId", "tabIndex"}, Event{})
}

// NewTabClose creates a tab_close event.
func NewTabClose(orig Event, tabCount int) Event {
	return Derive(orig, OutTabClose, []string{"win", "tabId", "tabIndex"},
		Event{"tab_count": tabCount})
}

// NewLoad creates a pass-through load event.
func NewLoad(orig Event) Event {
	return Derive(orig, "", nil, Event{})
}

// NewQuestion creates a pass-through question event.
func NewQuestion(orig Event) Event {
	return Derive(orig, "", nil, Event{})
}
