package session

import (
	"errors"
	"io"

	"github.com/ajsharma/tlogcompile/internal/emitter"
	"github.com/ajsharma/tlogcompile/internal/event"
	"github.com/ajsharma/tlogcompile/internal/logx"
	"github.com/ajsharma/tlogcompile/internal/reader"
)

// stateFunc mirrors the Python source's state functions (spec §4.8):
// each consumes events from r and returns the next state, or nil at the
// natural end of the fold.
type stateFunc func(r *reader.Reader, emit *emitter.Emitter, log *logx.Logger) (stateFunc, error)

// Compile runs the full {AppClosed, AppStartup, AppOpen} state machine
// over r, returning the compiled event sequence. On a fatal error it still
// returns whatever was emitted before the failure, so a caller can build a
// --debug crash dump from its tail (spec §4.10).
func Compile(r *reader.Reader, log *logx.Logger) ([]event.Event, error) {
	emit := emitter.New()

	var state stateFunc = appClosed
	for state != nil {
		next, err := state(r, emit, log)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return emit.Events(), nil
			}
			return emit.Events(), err
		}
		state = next
	}
	return emit.Events(), nil
}

// appClosed drains events until LOG_OPEN, per spec §4.8.
func appClosed(r *reader.Reader, emit *emitter.Emitter, log *logx.Logger) (stateFunc, error) {
	log.Debug("entering state AppClosed")
	for {
		ev, err := r.Next()
		if err != nil {
			return nil, err
		}
		if ev.Name() == event.LogOpen {
			emit.Append(event.NewBrowserStart(ev))
			return appStartup, nil
		}
		log.Warning("unexpected event %s while app is closed", ev.Name())
	}
}

// appStartup allocates a fresh BrowserState and consumes events until a
// user action (other than TabMove/TabSelect/gotoHistoryIndex),
// quit-application, or a second LOG_OPEN is seen (spec §4.8).
func appStartup(r *reader.Reader, emit *emitter.Emitter, log *logx.Logger) (stateFunc, error) {
	log.Debug("entering state AppStartup")
	bs := NewBrowserState(emit, log)
	isSessionRestore := false

	first, err := r.Peek(0)
	if err != nil {
		return nil, err
	}
	if first.Name() != event.WindowOnload {
		log.Warning("expected window_onload as the first AppStartup event, got %s", first.Name())
	}

	var next stateFunc
	for next == nil {
		ev, err := r.Peek(0)
		if err != nil {
			return nil, err
		}
		name := ev.Name()
		consume := true

		if name == event.TabRestore {
			isSessionRestore = true
		}

		switch {
		case name == event.GotoHistoryIndex:
			win, ok := bs.GetWindow(ev)
			if !ok {
				return nil, log.Error("gotoHistoryIndex for unknown window during startup")
			}
			if _, has := win.GotoHistoryIndexEvent(); !has {
				win.SetGotoHistoryIndexEvent(ev)
			} else {
				log.Warning("more than one gotoHistoryIndex on window %s during startup; dispatching immediately", win.winID)
				if err := bs.ProcessEvent(ev); err != nil {
					return nil, err
				}
			}

		case name == event.QuitApplication:
			emit.Append(event.NewBrowserQuit(ev))
			next = appClosed

		case event.IsUserAction(name) && name != event.TabMove && name != event.TabSelect && name != event.GotoHistoryIndex:
			next = makeAppOpen(bs)
			consume = false

		case name == event.LogOpen:
			log.Info("LOG_OPEN seen during AppStartup: possible crash")
			next = appClosed
			consume = false

		default:
			if err := bs.ProcessEvent(ev); err != nil {
				return nil, err
			}
		}

		if consume {
			if _, err := r.Next(); err != nil {
				return nil, err
			}
		}
	}

	if err := finishStartup(bs, emit, log, isSessionRestore); err != nil {
		return nil, err
	}
	return next, nil
}

// makeAppOpen returns the AppOpen state bound to the BrowserState startup
// built, so every subsequent event in this session dispatches through the
// same windows/tabs registry (spec §4.8).
func makeAppOpen(bs *BrowserState) stateFunc {
	return func(r *reader.Reader, emit *emitter.Emitter, log *logx.Logger) (stateFunc, error) {
		log.Debug("entering state AppOpen")
		for {
			ev, err := r.Peek(0)
			if err != nil {
				return nil, err
			}
			name := ev.Name()

			if name == event.LogOpen {
				log.Info("LOG_OPEN seen during AppOpen: possible crash")
				return appClosed, nil
			}

			if name == event.QuitApplication {
				emit.Append(event.NewBrowserQuit(ev))
				if _, err := r.Next(); err != nil {
					return nil, err
				}
				return appClosed, nil
			}

			if err := bs.ProcessEvent(ev); err != nil {
				return nil, err
			}
			if _, err := r.Next(); err != nil {
				return nil, err
			}
		}
	}
}

// finishStartup applies the AppStartup exit corrections (spec §4.8,
// points a-d): the first window_open's cause becomes "default", a session
// restore rewrites every subsequent startup event's cause to "restore",
// and every registered tab is asserted to have completed its tab_open.
func finishStartup(bs *BrowserState, emit *emitter.Emitter, log *logx.Logger, isSessionRestore bool) error {
	for _, tab := range bs.AllTabs() {
		if !tab.hasTabOpenEvent {
			return log.Error("tab %s registered during startup but never completed tab_open", tab.tabID)
		}
		if isSessionRestore && !tab.restored {
			log.Warning("tab %s has no corresponding TabRestore during a session restore", tab.tabID)
		}
	}
	if len(bs.AllTabs()) > 1 && !isSessionRestore {
		log.Warning("more than one tab opened during AppStartup without a session restore")
	}

	startIdx, found := emit.ReverseFind(nil, func(e event.Event) bool {
		return e.Name() == event.OutBrowserStart
	})
	if !found {
		return log.Error("browser_start event not found at AppStartup exit")
	}

	events := emit.Events()
	if startIdx+1 >= len(events) {
		return log.Error("no window_open event following browser_start")
	}
	if events[startIdx+1].Name() != event.OutWindowOpen {
		return log.Error("found %s instead of window_open immediately after browser_start", events[startIdx+1].Name())
	}
	first := emit.At(startIdx + 1).Clone()
	first["cause"] = "default"
	emit.Set(startIdx+1, first)

	if isSessionRestore {
		for i := startIdx + 2; i < len(events); i++ {
			ev := emit.At(i).Clone()
			ev["cause"] = "restore"
			emit.Set(i, ev)
		}
	}

	return nil
}
