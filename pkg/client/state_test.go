package client

import (
	"errors"
	"reflect"
	"testing"

	"github.com/rubiojr/docsearch/pkg/search"
)

func items(n int) []search.ResultItem {
	out := make([]search.ResultItem, n)
	for i := range out {
		out[i] = search.ResultItem{Title: "Doc", URL: "/docs/" + string(rune('a'+i)), Type: "Doc"}
	}
	return out
}

// withResults returns an open state showing n results for "query".
func withResults(t *testing.T, n int) State {
	t.Helper()
	s, _ := Reduce(State{}, Open{})
	s, _ = Reduce(s, Input{Text: "query"})
	s, _ = Reduce(s, DebounceElapsed{Gen: s.Generation})
	s, _ = Reduce(s, Response{Gen: s.Generation, Items: items(n)})
	if s.Phase != Results || len(s.Results) != n {
		t.Fatalf("setup failed: %+v", s)
	}
	return s
}

func TestOpenFocusesThreeTimes(t *testing.T) {
	s, effects := Reduce(State{}, Open{})
	if s.Phase != Empty || s.Selected != -1 || s.Message != HintStart {
		t.Errorf("unexpected state after open: %+v", s)
	}
	want := []Effect{
		Focus{},
		Focus{Deferred: true},
		Focus{Deferred: true, Delay: DefaultConfig.FocusRetry},
	}
	if !reflect.DeepEqual(effects, want) {
		t.Errorf("expected %v, got %v", want, effects)
	}
}

func TestInputThresholds(t *testing.T) {
	open, _ := Reduce(State{}, Open{})

	tests := []struct {
		text    string
		phase   Phase
		message string
		effects []Effect
	}{
		{"", Empty, HintStart, []Effect{CancelDebounce{}}},
		{"   ", Empty, HintStart, []Effect{CancelDebounce{}}},
		{"ab", Typing, HintMinLength, []Effect{CancelDebounce{}}},
		{" ab ", Typing, HintMinLength, []Effect{CancelDebounce{}}},
		{"abc", Typing, HintSearching, []Effect{StartDebounce{Gen: open.Generation + 1, Delay: DefaultConfig.Debounce}}},
		{"né ", Typing, HintMinLength, []Effect{CancelDebounce{}}},
	}

	for _, tt := range tests {
		s, effects := Reduce(open, Input{Text: tt.text})
		if s.Phase != tt.phase || s.Message != tt.message {
			t.Errorf("Input(%q): expected %s/%q, got %s/%q", tt.text, tt.phase, tt.message, s.Phase, s.Message)
		}
		if !reflect.DeepEqual(effects, tt.effects) {
			t.Errorf("Input(%q): expected effects %v, got %v", tt.text, tt.effects, effects)
		}
	}
}

func TestDebounceStartsFetch(t *testing.T) {
	s, _ := Reduce(State{}, Open{})
	s, _ = Reduce(s, Input{Text: "  hello "})

	stale, effects := Reduce(s, DebounceElapsed{Gen: s.Generation - 1})
	if len(effects) != 0 || stale.Phase != Typing {
		t.Errorf("stale timer should be ignored, got %v %+v", effects, stale)
	}

	s, effects = Reduce(s, DebounceElapsed{Gen: s.Generation})
	if s.Phase != Loading {
		t.Errorf("expected loading, got %s", s.Phase)
	}
	if want := []Effect{Fetch{Gen: s.Generation, Query: "hello"}}; !reflect.DeepEqual(effects, want) {
		t.Errorf("expected %v, got %v", want, effects)
	}
}

func TestResponseBuildsLinks(t *testing.T) {
	s, _ := Reduce(State{}, Open{})
	s, _ = Reduce(s, Input{Text: "hello world"})
	s, _ = Reduce(s, DebounceElapsed{Gen: s.Generation})
	s, _ = Reduce(s, Response{Gen: s.Generation, Items: []search.ResultItem{
		{Title: "Hello", URL: "/docs/hello"},
		{Title: "Anchored", URL: "/docs/anchored#top"},
	}})

	if s.Phase != Results || s.Selected != -1 {
		t.Fatalf("unexpected state: %+v", s)
	}
	if got := s.Results[0].Link; got != "/docs/hello#:~:text=hello%20world" {
		t.Errorf("unexpected link %q", got)
	}
	if got := s.Results[1].Link; got != "/docs/anchored#top:~:text=hello%20world" {
		t.Errorf("unexpected link %q", got)
	}
}

func TestEmptyResponse(t *testing.T) {
	s, _ := Reduce(State{}, Open{})
	s, _ = Reduce(s, Input{Text: "zzz"})
	s, _ = Reduce(s, DebounceElapsed{Gen: s.Generation})
	s, _ = Reduce(s, Response{Gen: s.Generation, Items: []search.ResultItem{}})
	if s.Phase != NoResults || s.Message != HintNoResults || len(s.Results) != 0 {
		t.Errorf("unexpected state: %+v", s)
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	s, _ := Reduce(State{}, Open{})
	s, _ = Reduce(s, Input{Text: "alpha"})
	genA := s.Generation
	s, _ = Reduce(s, DebounceElapsed{Gen: genA})

	s, _ = Reduce(s, Input{Text: "bravo"})
	genB := s.Generation
	s, _ = Reduce(s, DebounceElapsed{Gen: genB})

	s, _ = Reduce(s, Response{Gen: genB, Items: items(2)})
	s, _ = Reduce(s, Response{Gen: genA, Items: items(5)})
	s, _ = Reduce(s, Failure{Gen: genA, Err: errors.New("late")})

	if s.Phase != Results || len(s.Results) != 2 || s.Query != "bravo" {
		t.Errorf("late response for alpha overwrote bravo: %+v", s)
	}
}

func TestFailure(t *testing.T) {
	s, _ := Reduce(State{}, Open{})
	s, _ = Reduce(s, Input{Text: "alpha"})
	s, _ = Reduce(s, DebounceElapsed{Gen: s.Generation})
	s, effects := Reduce(s, Failure{Gen: s.Generation, Err: errors.New("connection refused")})

	if s.Phase != Error || s.Message != HintUnavailable || len(effects) != 0 {
		t.Errorf("unexpected failure handling: %+v %v", s, effects)
	}

	// New input recovers.
	s, effects = Reduce(s, Input{Text: "alphab"})
	if s.Phase != Typing || len(effects) != 1 {
		t.Errorf("expected new input to restart the search, got %+v %v", s, effects)
	}
}

func TestKeyboardClamping(t *testing.T) {
	s := withResults(t, 5)

	for range 6 {
		s, _ = Reduce(s, KeyDown{})
	}
	if s.Selected != 4 {
		t.Errorf("expected selection clamped to 4, got %d", s.Selected)
	}

	for range 10 {
		s, _ = Reduce(s, KeyUp{})
	}
	if s.Selected != -1 {
		t.Errorf("expected selection clamped to -1, got %d", s.Selected)
	}

	fresh := withResults(t, 5)
	fresh, _ = Reduce(fresh, KeyUp{})
	if fresh.Selected != -1 {
		t.Errorf("ArrowUp from -1 should stay -1, got %d", fresh.Selected)
	}

	none, _ := Reduce(State{}, Open{})
	none, _ = Reduce(none, KeyDown{})
	if none.Selected != -1 {
		t.Errorf("ArrowDown without results should stay -1, got %d", none.Selected)
	}
}

func TestEnterNavigates(t *testing.T) {
	s := withResults(t, 3)

	_, effects := Reduce(s, KeyEnter{})
	if len(effects) != 0 {
		t.Errorf("Enter without selection should do nothing, got %v", effects)
	}

	s, _ = Reduce(s, KeyDown{})
	s, _ = Reduce(s, KeyDown{})
	_, effects = Reduce(s, KeyEnter{})
	want := []Effect{Navigate{URL: "/docs/b#:~:text=query"}}
	if !reflect.DeepEqual(effects, want) {
		t.Errorf("expected %v, got %v", want, effects)
	}
}

func TestCloseResetsAndInvalidates(t *testing.T) {
	s := withResults(t, 3)
	s, _ = Reduce(s, KeyDown{})
	gen := s.Generation

	closed, effects := Reduce(s, Close{})
	if closed.Phase != Closed || closed.Query != "" || closed.Results != nil || closed.Selected != -1 {
		t.Errorf("close did not reset state: %+v", closed)
	}
	if closed.Generation <= gen {
		t.Errorf("close must bump the generation")
	}
	if want := []Effect{CancelDebounce{}, CancelFetch{}}; !reflect.DeepEqual(effects, want) {
		t.Errorf("expected %v, got %v", want, effects)
	}

	after, _ := Reduce(closed, Response{Gen: gen, Items: items(1)})
	if after.Phase != Closed || after.Results != nil {
		t.Errorf("response after close changed state: %+v", after)
	}

	again, effects := Reduce(closed, Close{})
	if again.Generation != closed.Generation || effects != nil {
		t.Errorf("closing twice should be a no-op")
	}

	ignored, _ := Reduce(closed, Input{Text: "hello"})
	if ignored.IsOpen() || ignored.Query != "" {
		t.Errorf("input while closed should be ignored: %+v", ignored)
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := withResults(t, 2)
	before := s.Results[0]

	next, _ := Reduce(s, Input{Text: "other"})
	if next.Results != nil {
		t.Fatalf("expected results cleared on new input")
	}
	if s.Results[0] != before || len(s.Results) != 2 {
		t.Errorf("Reduce mutated its input state")
	}
}
