package cmd

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rubiojr/docsearch/pkg/client"
	"github.com/rubiojr/docsearch/pkg/search"
)

func TestParseKeys(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []key
	}{
		{"runes", "ab", []key{{kind: keyRune, r: 'a'}, {kind: keyRune, r: 'b'}}},
		{"utf8", "é", []key{{kind: keyRune, r: 'é'}}},
		{"arrows", "\x1b[A\x1b[B", []key{{kind: keyUp}, {kind: keyDown}}},
		{"lone escape", "\x1b", []key{{kind: keyEscape}}},
		{"ctrl-k", "\x0b", []key{{kind: keyOpen}}},
		{"ctrl-c", "\x03", []key{{kind: keyQuit}}},
		{"enter", "\r", []key{{kind: keyEnter}}},
		{"backspace", "\x7f", []key{{kind: keyBackspace}}},
		{"ctrl-n ctrl-p", "\x0e\x10", []key{{kind: keyDown}, {kind: keyUp}}},
		{"unknown control dropped", "\x01x", []key{{kind: keyRune, r: 'x'}}},
		{"unknown escape dropped", "\x1b[Cx", []key{{kind: keyRune, r: 'x'}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseKeys([]byte(tt.input))
			if len(got) != len(tt.want) {
				t.Fatalf("parseKeys(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("key %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

type stubSearcher []search.ResultItem

func (s stubSearcher) Search(ctx context.Context, query string) ([]search.ResultItem, error) {
	return s, nil
}

func TestSessionPicksSelectedResult(t *testing.T) {
	s := &session{}
	cfg := client.DefaultConfig
	cfg.Debounce = time.Millisecond
	s.ctrl = client.NewController(cfg, client.Deps{
		Searcher: stubSearcher{{Title: "Setup", URL: "/docs/setup"}},
		Navigator: client.NavigateFunc(func(url string) {
			s.picked = url
		}),
	})

	for _, k := range parseKeys([]byte("/")) {
		s.handle(k)
	}
	if !s.ctrl.State().IsOpen() {
		t.Fatal("expected / to open the overlay")
	}

	for _, k := range parseKeys([]byte("setup")) {
		s.handle(k)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.ctrl.State().Phase != client.Results {
		if time.Now().After(deadline) {
			t.Fatalf("no results, state %+v", s.ctrl.State())
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.ctrl.Wait()

	s.handle(key{kind: keyDown})
	if s.handle(key{kind: keyEnter}) {
		t.Fatal("expected Enter on a selection to end the session")
	}
	if s.picked != "/docs/setup#:~:text=setup" {
		t.Errorf("picked = %q", s.picked)
	}
}

func TestSessionEscape(t *testing.T) {
	s := &session{ctrl: client.NewController(client.DefaultConfig, client.Deps{Searcher: stubSearcher{}})}
	s.ctrl.Open()
	s.handle(key{kind: keyRune, r: 'a'})

	if !s.handle(key{kind: keyEscape}) {
		t.Fatal("first Escape should only close the overlay")
	}
	if s.ctrl.State().IsOpen() || len(s.input) != 0 {
		t.Fatalf("expected closed overlay and cleared input, got %+v %q", s.ctrl.State(), string(s.input))
	}
	if s.handle(key{kind: keyEscape}) || !s.quit {
		t.Fatal("second Escape should quit")
	}
}

func TestRenderClient(t *testing.T) {
	st := client.State{
		Phase:    client.Results,
		Input:    "setup",
		Selected: 0,
		Results: []client.Result{{
			ResultItem: search.ResultItem{Title: "Setup", URL: "/docs/setup", Type: "Doc"},
			Link:       "/docs/setup#:~:text=setup",
		}},
	}
	out := renderClient(st, "http://localhost:8080/", 80)
	for _, want := range []string{"setup", "Setup", "http://localhost:8080/docs/setup#:~:text=setup"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}

	closed := renderClient(client.State{Phase: client.Closed, Selected: -1}, "http://x", 80)
	if !strings.Contains(closed, "Ctrl-K") {
		t.Errorf("closed render missing hint:\n%s", closed)
	}
}

func TestSessionTypingOpens(t *testing.T) {
	s := &session{ctrl: client.NewController(client.DefaultConfig, client.Deps{Searcher: stubSearcher{}})}

	s.handle(key{kind: keyRune, r: 'g'})
	st := s.ctrl.State()
	if !st.IsOpen() || st.Input != "g" {
		t.Fatalf("expected open overlay with input %q, got %+v", "g", st)
	}
	if st.Phase != client.Typing || st.Message != client.HintMinLength {
		t.Errorf("expected min length hint, got %s %q", st.Phase, st.Message)
	}
}

func TestReadInputStopsWhenDone(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	done := make(chan struct{})
	keys := readInput(pr, done)

	go pw.Write([]byte("a"))
	if got := <-keys; string(got) != "a" {
		t.Fatalf("got %q, want %q", got, "a")
	}

	// Nobody receives this chunk; closing done must release the reader.
	go pw.Write([]byte("b"))
	time.Sleep(20 * time.Millisecond)
	close(done)

	select {
	case _, ok := <-keys:
		if ok {
			// The reader may have won the race for one last chunk; the
			// channel must still close right after.
			if _, ok := <-keys; ok {
				t.Fatal("reader kept sending after done")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reader goroutine did not exit")
	}
}

func TestReadInputClosesOnEOF(t *testing.T) {
	keys := readInput(strings.NewReader("xy"), make(chan struct{}))

	var got []byte
	for chunk := range keys {
		got = append(got, chunk...)
	}
	if string(got) != "xy" {
		t.Errorf("got %q, want %q", got, "xy")
	}
}
