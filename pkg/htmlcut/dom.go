package htmlcut

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	commentPattern     = regexp.MustCompile(`(?s)<!--.*?-->`)
	cdataPattern       = regexp.MustCompile(`(?s)<!\[CDATA\[.*?\]\]>`)
	declarationPattern = regexp.MustCompile(`(?is)<!DOCTYPE[^>]*>|<\?xml.*?\?>`)
)

// voidElements never have children and are never treated as empty.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// VisibleLength counts the characters of s a reader would see: tags and
// comments are removed and character references decoded before counting
// runes. A "<" that does not start a tag is text, as the parser sees it.
func VisibleLength(s string) int {
	return utf8.RuneCountInString(visibleText(s))
}

// visibleText concatenates the text tokens of s.
func visibleText(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

// contentLength is VisibleLength ignoring whitespace. Serialization drops
// formatting whitespace between blocks, so "was anything cut" compares this.
func contentLength(s string) int {
	n := 0
	for _, r := range visibleText(s) {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// stripDeclarations removes comments, CDATA sections and doctype/xml
// declarations from raw input.
func stripDeclarations(s string) string {
	s = commentPattern.ReplaceAllString(s, "")
	s = cdataPattern.ReplaceAllString(s, "")
	return declarationPattern.ReplaceAllString(s, "")
}

// eachNode visits the descendants of root in document order without
// recursion. Returning false from fn skips the node's subtree.
func eachNode(root *html.Node, fn func(*html.Node) bool) {
	n := root.FirstChild
	for n != nil {
		if fn(n) && n.FirstChild != nil {
			n = n.FirstChild
			continue
		}
		for n.NextSibling == nil {
			n = n.Parent
			if n == nil || n == root {
				return
			}
		}
		n = n.NextSibling
	}
}

// nodeLength is the visible length of a parsed node. Text node data is
// already decoded by the parser.
func nodeLength(n *html.Node) int {
	switch n.Type {
	case html.TextNode:
		return utf8.RuneCountInString(n.Data)
	case html.CommentNode, html.DoctypeNode:
		return 0
	}
	total := 0
	eachNode(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			total += utf8.RuneCountInString(c.Data)
		}
		return true
	})
	return total
}

// collectElements returns all element descendants of root in document order.
func collectElements(root *html.Node) []*html.Node {
	var elements []*html.Node
	eachNode(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			elements = append(elements, n)
		}
		return true
	})
	return elements
}

func isDeclaration(n *html.Node) bool {
	return n.Type == html.CommentNode || n.Type == html.DoctypeNode
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// shallowCopy returns a detached copy of n without children.
func shallowCopy(n *html.Node) *html.Node {
	out := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		out.Attr = make([]html.Attribute, len(n.Attr))
		copy(out.Attr, n.Attr)
	}
	return out
}

// parseFragment parses text the way a <body> would contain it, without
// implied html/head/body elements.
func parseFragment(text string) ([]*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(text), context)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamParse, err)
	}
	return nodes, nil
}

// dropIgnorableWhitespace removes whitespace-only text nodes that contain a
// line break, outside of preformatted elements.
func dropIgnorableWhitespace(root *html.Node) {
	var ignorable []*html.Node
	eachNode(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Pre || n.DataAtom == atom.Textarea) {
			return false
		}
		if n.Type == html.TextNode && isBlank(n.Data) && strings.ContainsAny(n.Data, "\r\n") {
			ignorable = append(ignorable, n)
		}
		return true
	})
	for _, n := range ignorable {
		n.Parent.RemoveChild(n)
	}
}

// renderNode serializes n; a document node renders as its children.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstreamParse, err)
	}
	return buf.String(), nil
}

// renderChildren serializes the children of n.
func renderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("%w: %w", ErrUpstreamParse, err)
		}
	}
	return buf.String(), nil
}
