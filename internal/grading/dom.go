package grading

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Wildcard matches elements of any tag name in attribute checks
const Wildcard = "*"

// Element is a single parsed element with its lowercased attribute map
type Element struct {
	Tag   string
	Attrs map[string]string
}

// HasAttr reports whether the element carries the named attribute
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attrs[strings.ToLower(name)]
	return ok
}

// Attr returns the raw value of the named attribute
func (e *Element) Attr(name string) string {
	return e.Attrs[strings.ToLower(name)]
}

// Document is a best-effort structural view of a submitted HTML fragment.
// It answers tag counts and element iteration; it never executes scripts
// or fetches anything.
type Document struct {
	elements []*Element
	byTag    map[string][]*Element
}

// Parse builds a Document from raw, untrusted HTML. The fragment parser
// tolerates missing doctype/html/body wrappers and malformed tags; parse
// problems degrade to a smaller tree rather than an error.
func Parse(raw string) *Document {
	doc := &Document{byTag: make(map[string][]*Element)}

	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(raw), ctx)
	if err != nil {
		// ParseFragment only fails on reader errors, which a string
		// reader never produces. Fall back to an empty tree.
		return doc
	}

	for _, n := range nodes {
		doc.walk(n)
	}
	return doc
}

func (d *Document) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		el := &Element{
			Tag:   strings.ToLower(n.Data),
			Attrs: make(map[string]string, len(n.Attr)),
		}
		for _, a := range n.Attr {
			key := strings.ToLower(a.Key)
			if _, dup := el.Attrs[key]; !dup {
				el.Attrs[key] = a.Val
			}
		}
		d.elements = append(d.elements, el)
		d.byTag[el.Tag] = append(d.byTag[el.Tag], el)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.walk(c)
	}
}

// CountTag returns the number of elements with the given tag name,
// case-insensitive.
func (d *Document) CountTag(tag string) int {
	return len(d.byTag[strings.ToLower(tag)])
}

// ElementsByTag returns elements with the given tag in document order.
// The wildcard "*" (or an empty tag) returns every element.
func (d *Document) ElementsByTag(tag string) []*Element {
	if tag == "" || tag == Wildcard {
		return d.elements
	}
	return d.byTag[strings.ToLower(tag)]
}
