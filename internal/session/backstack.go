package session

import (
	"github.com/ajsharma/tlogcompile/internal/event"
	"github.com/ajsharma/tlogcompile/internal/logx"
)

// backEntry is one (url, original_url) pair pushed onto a BackStack
// (spec §3, §4.3).
type backEntry struct {
	url            string
	originalURL    string
	hasOriginalURL bool
}

func (e backEntry) matches(url string) bool {
	return e.url == url || (e.hasOriginalURL && e.originalURL == url)
}

// BackStack simulates a single tab's browser history (component C3,
// spec §4.3). The original Python source keeps this on a plain list, and
// the teacher lineage reaches for nothing fancier for comparable
// structures, so this stays a plain slice (see DESIGN.md).
type BackStack struct {
	stack        []backEntry
	currentIndex int
}

// NewBackStack returns an empty stack with current_index at -1, per spec §3.
func NewBackStack() *BackStack {
	return &BackStack{currentIndex: -1}
}

// BackResult carries the distances and (for gotoHistoryIndex) the resolved
// match_index that NavAction.buildEvent attaches to the emitted record.
type BackResult struct {
	BackDistance    *int
	ForwardDistance *int
	MatchIndex      *int
}

// findDistances scans stack around from for a url match, per §4.3 step 1:
// back_distance is the signed (<=0) distance scanning down from from,
// forward_distance is the (>=0) distance scanning up from from.
func (s *BackStack) findDistances(url string, from int) (back, forward *int) {
	for i := from; i >= 0; i-- {
		if s.stack[i].matches(url) {
			d := i - from
			back = &d
			break
		}
	}
	for i := from; i < len(s.stack); i++ {
		if s.stack[i].matches(url) {
			d := i - from
			forward = &d
			break
		}
	}
	return back, forward
}

// Process drives the stack for one navigation (spec §4.3). url/originalURL
// describe the navigation about to be recorded; cause is the attributed
// cause event's name (empty if none); gotoIndex/hasGotoIndex carry the
// gotoHistoryIndex event's target index when cause is GotoHistoryIndex.
func (s *BackStack) Process(url, originalURL string, hasOriginalURL bool, cause string, gotoIndex int, hasGotoIndex bool, log *logx.Logger) BackResult {
	back, forward := s.findDistances(url, s.currentIndex)
	result := BackResult{BackDistance: back, ForwardDistance: forward}

	switch cause {
	case event.OnHistoryGoBack, event.BrowserForward:
		if back == nil && forward == nil {
			log.Warning("no back/forward stack match for url %s", url)
			break
		}
		dist := 0
		switch {
		case back != nil:
			dist = *back
		case forward != nil:
			dist = *forward
		}
		s.currentIndex += dist
		if dist != -1 && dist != 1 {
			log.Info("Actual back distance: %d", absInt(dist))
		}

	case event.GotoHistoryIndex:
		if !hasGotoIndex {
			log.Warning("gotoHistoryIndex with no target index recorded")
			break
		}
		gback, gforward := s.findDistances(url, gotoIndex)
		switch {
		case gforward != nil && gback != nil:
			if absInt(*gback) < *gforward {
				s.currentIndex = gotoIndex + *gback
			} else {
				s.currentIndex = gotoIndex + *gforward
			}
		case gforward != nil:
			s.currentIndex = gotoIndex + *gforward
		case gback != nil:
			s.currentIndex = gotoIndex + *gback
		default:
			log.Warning("no back/forward stack match for gotoHistoryIndex target %d", gotoIndex)
			s.currentIndex = gotoIndex
		}
		mi := s.currentIndex
		result.MatchIndex = &mi

	default:
		s.push(url, originalURL, hasOriginalURL, cause)
	}

	return result
}

// push appends a new history entry at current_index+1, truncating any
// forward suffix, per §4.3 step 3. The top entry is not duplicated unless
// cause is form_submit (a POST resubmission must stay distinct).
func (s *BackStack) push(url, originalURL string, hasOriginalURL bool, cause string) {
	if len(s.stack) > 0 && s.currentIndex >= 0 && s.currentIndex < len(s.stack) {
		top := s.stack[s.currentIndex]
		if cause != event.FormSubmit && top.matches(url) {
			return
		}
	}
	entry := backEntry{url: url, originalURL: originalURL, hasOriginalURL: hasOriginalURL}
	s.stack = append(s.stack[:s.currentIndex+1], entry)
	s.currentIndex = len(s.stack) - 1
}
