package session

import (
	"testing"

	"github.com/ajsharma/tlogcompile/internal/event"
	"github.com/ajsharma/tlogcompile/internal/logx"
)

func TestBackStackPushAdvancesCurrentIndex(t *testing.T) {
	s := NewBackStack()
	log := logx.New(nil, false)

	s.Process("https://a", "", false, "", 0, false, log)
	s.Process("https://b", "", false, "", 0, false, log)

	if s.currentIndex != 1 {
		t.Fatalf("expected currentIndex 1, got %d", s.currentIndex)
	}
	if len(s.stack) != 2 {
		t.Fatalf("expected 2 stack entries, got %d", len(s.stack))
	}
}

func TestBackStackPushSkipsDuplicateAtTop(t *testing.T) {
	s := NewBackStack()
	log := logx.New(nil, false)

	s.Process("https://a", "", false, "", 0, false, log)
	s.Process("https://a", "", false, "", 0, false, log)

	if len(s.stack) != 1 {
		t.Fatalf("expected duplicate push to be skipped, got %d entries", len(s.stack))
	}
}

func TestBackStackPushKeepsDuplicateOnFormSubmit(t *testing.T) {
	s := NewBackStack()
	log := logx.New(nil, false)

	s.Process("https://a", "", false, "", 0, false, log)
	s.Process("https://a", "", false, event.FormSubmit, 0, false, log)

	if len(s.stack) != 2 {
		t.Fatalf("expected form_submit resubmission to stay distinct, got %d entries", len(s.stack))
	}
}

// TestBackStackBackAtDistanceTwo grounds scenario 3 (spec §8): a stack
// [a, b, c] with current_index=2, OnHistoryGoBack to a, expects
// back_distance=-2 and current_index settling at 0.
func TestBackStackBackAtDistanceTwo(t *testing.T) {
	s := NewBackStack()
	log := logx.New(nil, false)

	s.Process("https://a", "", false, "", 0, false, log)
	s.Process("https://b", "", false, "", 0, false, log)
	s.Process("https://c", "", false, "", 0, false, log)
	if s.currentIndex != 2 {
		t.Fatalf("setup: expected currentIndex 2, got %d", s.currentIndex)
	}

	res := s.Process("https://a", "", false, event.OnHistoryGoBack, 0, false, log)

	if res.BackDistance == nil || *res.BackDistance != -2 {
		t.Fatalf("expected back_distance -2, got %v", res.BackDistance)
	}
	if s.currentIndex != 0 {
		t.Fatalf("expected currentIndex 0 after back, got %d", s.currentIndex)
	}
	if res.MatchIndex != nil {
		t.Fatalf("expected no match_index on OnHistoryGoBack (scoped to gotoHistoryIndex resolution), got %v", *res.MatchIndex)
	}
}

func TestBackStackGotoHistoryIndexPrefersForwardOnTie(t *testing.T) {
	s := NewBackStack()
	log := logx.New(nil, false)

	s.Process("https://a", "", false, "", 0, false, log)
	s.Process("https://b", "", false, "", 0, false, log)
	s.Process("https://a", "", false, event.FormSubmit, 0, false, log)
	// stack: [a, b, a], currentIndex=2. gotoHistoryIndex target=1 (b): from
	// there "a" matches at both index 0 (back=-1) and index 2 (forward=1).
	res := s.Process("https://a", "", false, event.GotoHistoryIndex, 1, true, log)

	if s.currentIndex != 2 {
		t.Fatalf("expected tie to favor forward match (index 2), got %d", s.currentIndex)
	}
	if res.MatchIndex == nil || *res.MatchIndex != 2 {
		t.Fatalf("expected match_index 2, got %v", res.MatchIndex)
	}
}

func TestBackStackGoBackWithNoMatchWarnsAndLeavesIndex(t *testing.T) {
	s := NewBackStack()
	log := logx.New(nil, false)

	s.Process("https://a", "", false, "", 0, false, log)
	res := s.Process("https://z", "", false, event.OnHistoryGoBack, 0, false, log)

	if s.currentIndex != 0 {
		t.Fatalf("expected currentIndex unchanged at 0, got %d", s.currentIndex)
	}
	if res.MatchIndex != nil {
		t.Fatalf("expected no match_index on unmatched go-back, got %v", *res.MatchIndex)
	}
}
