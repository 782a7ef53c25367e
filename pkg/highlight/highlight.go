// Package highlight marks the target of a text-fragment directive inside an
// HTML document, for readers whose browser cannot do it natively.
//
// Apply walks the visible text of the document in order, wraps the first
// case-insensitive occurrence of the phrase in a <mark> element and reports
// which node the page should scroll to. It stops at the first match and is
// safe to run twice on the same tree.
package highlight

import (
	"io"
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rubiojr/docsearch/pkg/fragment"
	"github.com/rubiojr/docsearch/pkg/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultRootSelector selects the rendered article on documentation pages.
const DefaultRootSelector = ".markdown-section"

// MarkClass is set on every <mark> element Apply creates.
const MarkClass = "search-highlight"

// Options configure Apply.
type Options struct {
	// NativeSupport disables the fallback entirely, as a browser with
	// fragment directive support highlights on its own.
	NativeSupport bool

	// RootSelector limits the search to the first matching element. The
	// body is used when nothing matches. Defaults to DefaultRootSelector.
	RootSelector string
}

// Result describes what Apply did.
type Result struct {
	// Term is the decoded phrase, empty when the fragment has none.
	Term string

	// Marked is true when the phrase is wrapped in a <mark>.
	Marked bool

	// Mark is the <mark> element, nil unless Marked.
	Mark *html.Node

	// Target is the element to scroll into view. It is the mark on success
	// and the nearest containing element when the match could not be
	// wrapped. Nil when nothing matched.
	Target *html.Node

	// Scroll is where Target should land in the viewport; empty when there
	// is no Target.
	Scroll ScrollPosition
}

// ScrollPosition is a vertical alignment for scrolling a target into view,
// using the names of the DOM scrollIntoView "block" option.
type ScrollPosition string

const ScrollCenter ScrollPosition = "center"

// Found reports whether the phrase was located at all.
func (r Result) Found() bool {
	return r.Target != nil
}

var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
}

// Apply highlights the phrase of the text directive in frag inside doc. It
// does nothing when there is no directive or opts.NativeSupport is set.
func Apply(doc *html.Node, frag string, opts Options) Result {
	if opts.NativeSupport || doc == nil {
		return Result{}
	}
	term, ok := fragment.TextDirective(frag)
	if !ok {
		return Result{}
	}

	res := Result{Term: term}
	root := findRoot(doc, opts.RootSelector)
	needle := strings.ToLower(term)

	for node := range TextNodes(root) {
		lower := strings.ToLower(node.Data)
		idx := strings.Index(lower, needle)
		if idx == -1 {
			continue
		}

		if mark := node.Parent; isMark(mark) && strings.EqualFold(node.Data, term) {
			res.Marked, res.Mark, res.Target, res.Scroll = true, mark, mark, ScrollCenter
			return res
		}

		mark, ok := wrap(node, lower, idx, needle)
		if !ok {
			log.ForService("highlight").Debugf("could not split text node for %q, scrolling to parent", term)
			res.Target, res.Scroll = containingElement(node, root), ScrollCenter
			return res
		}
		res.Marked, res.Mark, res.Target, res.Scroll = true, mark, mark, ScrollCenter
		return res
	}

	return res
}

// Document parses r, applies the highlight and writes the document to w.
func Document(r io.Reader, w io.Writer, frag string, opts Options) (Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Result{}, err
	}
	res := Apply(doc, frag, opts)
	if err := html.Render(w, doc); err != nil {
		return res, err
	}
	return res, nil
}

// TextNodes yields the non-blank text nodes under root in document order,
// skipping anything inside script, style, noscript and template elements.
func TextNodes(root *html.Node) iter.Seq[*html.Node] {
	return func(yield func(*html.Node) bool) {
		if root == nil {
			return
		}
		stack := []*html.Node{root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			switch n.Type {
			case html.TextNode:
				if strings.TrimSpace(n.Data) != "" && !yield(n) {
					return
				}
				continue
			case html.ElementNode:
				if skipped[n.DataAtom] {
					continue
				}
			}

			for c := n.LastChild; c != nil; c = c.PrevSibling {
				stack = append(stack, c)
			}
		}
	}
}

func findRoot(doc *html.Node, selector string) *html.Node {
	if selector == "" {
		selector = DefaultRootSelector
	}
	sel := goquery.NewDocumentFromNode(doc)
	if root := sel.Find(selector).First(); root.Length() > 0 {
		return root.Get(0)
	}
	if body := sel.Find("body").First(); body.Length() > 0 {
		return body.Get(0)
	}
	return doc
}

// wrap splits node around the match and puts the matched text in a mark.
// It fails when lower-casing changed the byte layout of the text, as the
// offsets found in the lowered copy then do not apply to the original.
func wrap(node *html.Node, lower string, idx int, needle string) (*html.Node, bool) {
	text := node.Data
	end := idx + len(needle)
	if len(lower) != len(text) || end > len(text) || strings.ToLower(text[idx:end]) != needle {
		return nil, false
	}
	parent := node.Parent
	if parent == nil {
		return nil, false
	}

	mark := &html.Node{
		Type:     html.ElementNode,
		Data:     "mark",
		DataAtom: atom.Mark,
		Attr:     []html.Attribute{{Key: "class", Val: MarkClass}},
	}
	mark.AppendChild(&html.Node{Type: html.TextNode, Data: text[idx:end]})

	if idx > 0 {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[:idx]}, node)
	}
	parent.InsertBefore(mark, node)
	if end < len(text) {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[end:]}, node)
	}
	parent.RemoveChild(node)
	return mark, true
}

func isMark(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == atom.Mark
}

func containingElement(n, root *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return root
}
