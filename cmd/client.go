package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rubiojr/docsearch/pkg/client"
	"github.com/rubiojr/docsearch/pkg/config"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// ClientCommand creates the interactive search command
func ClientCommand() *cli.Command {
	return &cli.Command{
		Name:  "client",
		Usage: "Interactive search against a running web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "Base URL of the server (overrides the config)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if u := c.String("url"); u != "" {
				cfg.Client.BaseURL = u
			}
			return runClient(ctx, cfg)
		},
	}
}

type keyKind int

const (
	keyRune keyKind = iota
	keyOpen
	keyEscape
	keyQuit
	keyUp
	keyDown
	keyEnter
	keyBackspace
)

type key struct {
	kind keyKind
	r    rune
}

// parseKeys decodes raw terminal input. Unknown escape sequences and
// control bytes are dropped.
func parseKeys(b []byte) []key {
	var keys []key
	for len(b) > 0 {
		switch c := b[0]; {
		case c == 0x1b:
			if len(b) >= 3 && b[1] == '[' {
				switch b[2] {
				case 'A':
					keys = append(keys, key{kind: keyUp})
				case 'B':
					keys = append(keys, key{kind: keyDown})
				}
				b = b[3:]
				continue
			}
			keys = append(keys, key{kind: keyEscape})
			b = b[1:]
		case c == 0x03 || c == 0x04:
			keys = append(keys, key{kind: keyQuit})
			b = b[1:]
		case c == 0x0b:
			keys = append(keys, key{kind: keyOpen})
			b = b[1:]
		case c == '\r' || c == '\n':
			keys = append(keys, key{kind: keyEnter})
			b = b[1:]
		case c == 0x7f || c == 0x08:
			keys = append(keys, key{kind: keyBackspace})
			b = b[1:]
		case c == 0x0e:
			keys = append(keys, key{kind: keyDown})
			b = b[1:]
		case c == 0x10:
			keys = append(keys, key{kind: keyUp})
			b = b[1:]
		case c < 0x20:
			b = b[1:]
		default:
			r, size := utf8.DecodeRune(b)
			if r != utf8.RuneError {
				keys = append(keys, key{kind: keyRune, r: r})
			}
			b = b[size:]
		}
	}
	return keys
}

// session ties terminal input to a search controller.
type session struct {
	ctrl   *client.Controller
	input  []rune
	picked string
	quit   bool
}

// handle applies one key press. It reports false once the session is over.
func (s *session) handle(k key) bool {
	open := s.ctrl.State().IsOpen()

	switch k.kind {
	case keyQuit:
		s.quit = true
		return false
	case keyOpen:
		s.ctrl.Open()
	case keyEscape:
		if !open {
			s.quit = true
			return false
		}
		s.input = s.input[:0]
		s.ctrl.Close()
	case keyUp:
		s.ctrl.Up()
	case keyDown:
		s.ctrl.Down()
	case keyEnter:
		s.ctrl.Enter()
		return s.picked == ""
	case keyBackspace:
		if open && len(s.input) > 0 {
			s.input = s.input[:len(s.input)-1]
			s.ctrl.Type(string(s.input))
		}
	case keyRune:
		if !open {
			s.ctrl.Open()
			if k.r == '/' {
				return true
			}
		}
		s.input = append(s.input, k.r)
		s.ctrl.Type(string(s.input))
	}
	return true
}

func runClient(ctx context.Context, cfg *config.Config) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("the client needs an interactive terminal")
	}

	old, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("switching terminal to raw mode: %w", err)
	}
	defer term.Restore(fd, old)

	var mu sync.Mutex
	out := os.Stdout
	s := &session{}

	ccfg := client.DefaultConfig
	ccfg.MinQueryLength = cfg.Search.MinQueryLength
	ccfg.Debounce = cfg.Client.Debounce.Duration

	s.ctrl = client.NewController(ccfg, client.Deps{
		Searcher: client.NewHTTPSearcher(cfg.Client.BaseURL),
		Navigator: client.NavigateFunc(func(url string) {
			s.picked = joinLink(cfg.Client.BaseURL, url)
		}),
		OnChange: func(st client.State) {
			mu.Lock()
			defer mu.Unlock()
			width, _, err := term.GetSize(fd)
			if err != nil || width <= 0 {
				width = 80
			}
			io.WriteString(out, rawLines(renderClient(st, cfg.Client.BaseURL, width)))
		},
	})

	done := make(chan struct{})
	defer close(done)
	keys := readInput(os.Stdin, done)

	s.ctrl.Open()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case chunk, ok := <-keys:
			if !ok {
				break loop
			}
			for _, k := range parseKeys(chunk) {
				if !s.handle(k) {
					break loop
				}
			}
		}
	}

	s.ctrl.Close()
	s.ctrl.Wait()

	mu.Lock()
	io.WriteString(out, "\x1b[2J\x1b[H")
	mu.Unlock()
	term.Restore(fd, old)

	if s.picked != "" {
		fmt.Println(s.picked)
	}
	return nil
}

// readInput forwards chunks read from r until r fails or done is closed.
// A Read that is already blocked returns with the process.
func readInput(r io.Reader, done <-chan struct{}) <-chan []byte {
	keys := make(chan []byte)
	go func() {
		defer close(keys)
		buf := make([]byte, 64)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case keys <- chunk:
				case <-done:
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return keys
}

// renderClient draws the overlay for st.
func renderClient(st client.State, baseURL string, width int) string {
	var b strings.Builder
	b.WriteString("\x1b[2J\x1b[H")

	if !st.IsOpen() {
		b.WriteString(titleStyle.Render("docsearch"))
		b.WriteString("\n")
		b.WriteString(metaStyle.Render("Press Ctrl-K or start typing to search, Esc to quit"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(titleStyle.Render("Search " + baseURL))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("> "))
	b.WriteString(st.Input)
	b.WriteString("\n\n")

	if st.Message != "" {
		b.WriteString(noDataStyle.Render(st.Message))
		b.WriteString("\n")
	}

	if len(st.Results) > 0 {
		lines := make([]resultLine, len(st.Results))
		for i, r := range st.Results {
			lines[i] = resultLine{ResultItem: r.ResultItem, Link: joinLink(baseURL, r.Link)}
		}
		formatResults(&b, lines, st.Selected)
	}

	b.WriteString("\n")
	b.WriteString(metaStyle.Render(truncateLine("↑/↓ select · Enter open · Esc close · Ctrl-C quit", width)))
	b.WriteString("\n")
	return b.String()
}

// joinLink makes a root-relative link absolute against baseURL.
func joinLink(baseURL, link string) string {
	if strings.HasPrefix(link, "/") {
		return strings.TrimRight(baseURL, "/") + link
	}
	return link
}

func truncateLine(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width])
}

// rawLines converts newlines for a terminal in raw mode.
func rawLines(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}
