package highlight

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parse(t *testing.T, s string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

const page = `<html><head><title>Install guide</title><style>.install{}</style></head><body>
<nav>Install</nav>
<div class="markdown-section">
<script>var install = 1;</script>
<p>   </p>
<p>Before you <em>begin</em>, read the Install Guide carefully.</p>
<p>Install guide again.</p>
</div>
</body></html>`

func TestApplyWrapsFirstMatchInRoot(t *testing.T) {
	doc := parse(t, page)
	res := Apply(doc, "#:~:text=install%20guide", Options{})

	if res.Term != "install guide" {
		t.Errorf("expected decoded term, got %q", res.Term)
	}
	if !res.Marked || res.Mark == nil || res.Target != res.Mark {
		t.Fatalf("expected a mark as scroll target, got %+v", res)
	}
	if res.Scroll != ScrollCenter {
		t.Errorf("expected the mark to be centred, got %q", res.Scroll)
	}

	out := render(t, doc)
	if !strings.Contains(out, `read the <mark class="search-highlight">Install Guide</mark> carefully.`) {
		t.Errorf("mark not placed around the first match in the article:\n%s", out)
	}
	if strings.Count(out, "<mark") != 1 {
		t.Errorf("expected exactly one mark, got:\n%s", out)
	}
	if !strings.Contains(out, "<nav>Install</nav>") || !strings.Contains(out, "var install = 1;") {
		t.Errorf("content outside the match was changed:\n%s", out)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	doc := parse(t, page)
	first := Apply(doc, "#:~:text=install%20guide", Options{})
	once := render(t, doc)

	second := Apply(doc, "#:~:text=install%20guide", Options{})
	twice := render(t, doc)

	if once != twice {
		t.Errorf("second run changed the document:\n%s\n---\n%s", once, twice)
	}
	if !second.Marked || second.Mark != first.Mark {
		t.Errorf("second run should report the existing mark, got %+v", second)
	}
}

func TestApplyFallsBackToBody(t *testing.T) {
	doc := parse(t, `<html><body><h1>Title</h1><p>Some text here</p></body></html>`)
	res := Apply(doc, "#:~:text=text", Options{})
	if !res.Marked {
		t.Fatal("expected a match in body")
	}
	if out := render(t, doc); !strings.Contains(out, `Some <mark class="search-highlight">text</mark> here`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestApplyCustomRoot(t *testing.T) {
	doc := parse(t, `<body><p>alpha</p><article id="main"><p>alpha beta</p></article></body>`)
	res := Apply(doc, "#:~:text=alpha", Options{RootSelector: "#main"})
	if !res.Marked {
		t.Fatal("expected a match")
	}
	if out := render(t, doc); !strings.Contains(out, `<p>alpha</p><article id="main"><p><mark class="search-highlight">alpha</mark> beta</p>`) {
		t.Errorf("expected only the article to be searched:\n%s", out)
	}
}

func TestApplyNoOps(t *testing.T) {
	tests := []struct {
		name string
		frag string
		opts Options
	}{
		{"no directive", "#section", Options{}},
		{"empty directive", "#:~:text=", Options{}},
		{"native support", "#:~:text=guide", Options{NativeSupport: true}},
		{"no match", "#:~:text=nowhere%20to%20be%20found", Options{}},
		{"only in script", "#:~:text=var%20install", Options{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, page)
			before := render(t, doc)
			res := Apply(doc, tt.frag, tt.opts)
			if res.Marked || res.Found() || res.Scroll != "" {
				t.Errorf("expected no highlight, got %+v", res)
			}
			if after := render(t, doc); after != before {
				t.Errorf("document changed:\n%s", after)
			}
		})
	}
}

func TestApplyDegradesToParent(t *testing.T) {
	// Lower-casing "İ" grows it by a byte, so offsets cannot be mapped back.
	doc := parse(t, `<body><p id="target">İstanbul travel guide</p></body>`)
	res := Apply(doc, "#:~:text=guide", Options{})

	if res.Marked {
		t.Fatalf("expected no mark, got %+v", res)
	}
	if res.Target == nil || res.Target.Data != "p" {
		t.Fatalf("expected the paragraph as scroll target, got %+v", res.Target)
	}
	if res.Scroll != ScrollCenter {
		t.Errorf("expected the paragraph to be centred, got %q", res.Scroll)
	}
	if out := render(t, doc); strings.Contains(out, "<mark") {
		t.Errorf("document should be unchanged:\n%s", out)
	}
}

func TestTextNodesSkipsHiddenAndBlank(t *testing.T) {
	doc := parse(t, `<body><p>one</p>  <script>no</script><style>no</style><noscript>no</noscript><template>no</template><div><span>two</span> three</div></body>`)

	var got []string
	for n := range TextNodes(doc) {
		got = append(got, strings.TrimSpace(n.Data))
	}
	if strings.Join(got, ",") != "one,two,three" {
		t.Errorf("unexpected text nodes: %v", got)
	}
}

func TestTextNodesStopsEarly(t *testing.T) {
	doc := parse(t, `<body><p>one</p><p>two</p><p>three</p></body>`)
	count := 0
	for range TextNodes(doc) {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("expected to stop after 2 nodes, got %d", count)
	}
}

func TestDocument(t *testing.T) {
	var out bytes.Buffer
	res, err := Document(strings.NewReader(`<p>hello world</p>`), &out, "/page#:~:text=World", Options{})
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if !res.Marked {
		t.Fatal("expected a mark")
	}
	if !strings.Contains(out.String(), `hello <mark class="search-highlight">world</mark>`) {
		t.Errorf("unexpected output: %s", out.String())
	}
}
