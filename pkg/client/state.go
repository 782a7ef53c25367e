// Package client implements the interactive search overlay as a state
// machine. Reduce holds every transition as a pure function; Controller owns
// one State and performs the effects Reduce asks for (timers, HTTP requests,
// focus and navigation).
package client

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rubiojr/docsearch/pkg/fragment"
	"github.com/rubiojr/docsearch/pkg/search"
)

// Phase is the overlay's current mode.
type Phase string

const (
	Closed    Phase = "closed"
	Empty     Phase = "empty"
	Typing    Phase = "typing"
	Loading   Phase = "loading"
	Results   Phase = "results"
	NoResults Phase = "no-results"
	Error     Phase = "error"
)

// Messages shown instead of a result list.
const (
	HintStart       = "Start typing to search..."
	HintMinLength   = "Type at least 3 characters to search..."
	HintSearching   = "Searching..."
	HintNoResults   = "No results found"
	HintUnavailable = "Search unavailable"
)

// Config tunes the state machine.
type Config struct {
	// MinQueryLength is the number of characters needed before a request
	// is made.
	MinQueryLength int

	// Debounce is the quiet period after the last keystroke.
	Debounce time.Duration

	// FocusRetry is the delay of the last focus attempt after opening.
	FocusRetry time.Duration
}

// DefaultConfig matches the JSON endpoint's defaults.
var DefaultConfig = Config{
	MinQueryLength: 3,
	Debounce:       300 * time.Millisecond,
	FocusRetry:     50 * time.Millisecond,
}

// Result is a rendered result row.
type Result struct {
	search.ResultItem

	// Link is URL with a text directive for the query that produced it.
	Link string
}

// State is the overlay state. The zero value is a closed overlay.
type State struct {
	Phase Phase

	// Input is the raw text of the search box; Query is its trimmed form.
	Input string
	Query string

	Results  []Result
	Selected int

	// Message is the hint shown when there is no result list.
	Message string

	// Generation identifies the latest input. Timers and responses tagged
	// with an older generation are ignored.
	Generation uint64
}

// IsOpen reports whether the overlay is visible.
func (s State) IsOpen() bool {
	return s.Phase != "" && s.Phase != Closed
}

// SelectedResult returns the highlighted row, if any.
func (s State) SelectedResult() (Result, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Results) {
		return Result{}, false
	}
	return s.Results[s.Selected], true
}

// Event is an input to the state machine.
type Event interface{ event() }

type (
	Open  struct{}
	Close struct{}

	// Input carries the full text of the search box after a keystroke.
	Input struct{ Text string }

	// DebounceElapsed fires when the debounce timer started for Gen runs out.
	DebounceElapsed struct{ Gen uint64 }

	// Response delivers the items fetched for Gen.
	Response struct {
		Gen   uint64
		Items []search.ResultItem
	}

	// Failure reports a failed fetch for Gen.
	Failure struct {
		Gen uint64
		Err error
	}

	KeyDown  struct{}
	KeyUp    struct{}
	KeyEnter struct{}
)

func (Open) event()            {}
func (Close) event()           {}
func (Input) event()           {}
func (DebounceElapsed) event() {}
func (Response) event()        {}
func (Failure) event()         {}
func (KeyDown) event()         {}
func (KeyUp) event()           {}
func (KeyEnter) event()        {}

// Effect is a side effect requested by Reduce.
type Effect interface{ effect() }

type (
	// Focus moves input focus to the search box. Deferred focus attempts
	// run after Delay; a zero Delay means the next tick of the loop.
	Focus struct {
		Deferred bool
		Delay    time.Duration
	}

	// StartDebounce replaces any running debounce timer.
	StartDebounce struct {
		Gen   uint64
		Delay time.Duration
	}

	CancelDebounce struct{}

	// Fetch requests results for Query. It replaces any live request.
	Fetch struct {
		Gen   uint64
		Query string
	}

	// CancelFetch abandons the live request.
	CancelFetch struct{}

	Navigate struct{ URL string }
)

func (Focus) effect()          {}
func (StartDebounce) effect()  {}
func (CancelDebounce) effect() {}
func (Fetch) effect()          {}
func (CancelFetch) effect()    {}
func (Navigate) effect()       {}

// Reduce applies ev to s using DefaultConfig.
func Reduce(s State, ev Event) (State, []Effect) {
	return DefaultConfig.Reduce(s, ev)
}

// Reduce applies ev to s and returns the new state with the effects the
// shell must perform. It never mutates s.
func (c Config) Reduce(s State, ev Event) (State, []Effect) {
	s.Results = cloneResults(s.Results)

	switch ev := ev.(type) {
	case Open:
		focus := []Effect{
			Focus{},
			Focus{Deferred: true},
			Focus{Deferred: true, Delay: c.FocusRetry},
		}
		if s.IsOpen() {
			return s, focus
		}
		return State{
			Phase:      Empty,
			Selected:   -1,
			Message:    HintStart,
			Generation: s.Generation,
		}, focus

	case Close:
		if !s.IsOpen() {
			return s, nil
		}
		return State{
			Phase:      Closed,
			Selected:   -1,
			Generation: s.Generation + 1,
		}, []Effect{CancelDebounce{}, CancelFetch{}}

	case Input:
		if !s.IsOpen() {
			return s, nil
		}
		s.Generation++
		s.Input = ev.Text
		s.Query = strings.TrimSpace(ev.Text)
		s.Results = nil
		s.Selected = -1

		switch {
		case s.Query == "":
			s.Phase, s.Message = Empty, HintStart
			return s, []Effect{CancelDebounce{}}
		case utf8.RuneCountInString(s.Query) < c.MinQueryLength:
			s.Phase, s.Message = Typing, HintMinLength
			return s, []Effect{CancelDebounce{}}
		}
		s.Phase, s.Message = Typing, HintSearching
		return s, []Effect{StartDebounce{Gen: s.Generation, Delay: c.Debounce}}

	case DebounceElapsed:
		if !s.IsOpen() || ev.Gen != s.Generation || s.Phase != Typing {
			return s, nil
		}
		if utf8.RuneCountInString(s.Query) < c.MinQueryLength {
			return s, nil
		}
		s.Phase, s.Message = Loading, HintSearching
		return s, []Effect{Fetch{Gen: s.Generation, Query: s.Query}}

	case Response:
		if !s.IsOpen() || ev.Gen != s.Generation {
			return s, nil
		}
		s.Selected = -1
		if len(ev.Items) == 0 {
			s.Phase, s.Message, s.Results = NoResults, HintNoResults, nil
			return s, nil
		}
		s.Results = make([]Result, len(ev.Items))
		for i, item := range ev.Items {
			s.Results[i] = Result{ResultItem: item, Link: fragment.WithText(item.URL, s.Query)}
		}
		s.Phase, s.Message = Results, ""
		return s, nil

	case Failure:
		if !s.IsOpen() || ev.Gen != s.Generation {
			return s, nil
		}
		s.Phase, s.Message, s.Results, s.Selected = Error, HintUnavailable, nil, -1
		return s, nil

	case KeyDown:
		if s.IsOpen() {
			s.Selected = min(s.Selected+1, len(s.Results)-1)
		}
		return s, nil

	case KeyUp:
		if s.IsOpen() {
			s.Selected = max(s.Selected-1, -1)
		}
		return s, nil

	case KeyEnter:
		if r, ok := s.SelectedResult(); ok && s.IsOpen() {
			return s, []Effect{Navigate{URL: r.Link}}
		}
		return s, nil
	}

	return s, nil
}

func cloneResults(r []Result) []Result {
	if r == nil {
		return nil
	}
	out := make([]Result, len(r))
	copy(out, r)
	return out
}
