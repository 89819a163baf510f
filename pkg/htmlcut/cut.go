// Package htmlcut shortens markup fragments to a character budget while
// keeping them well formed.
//
// Cuts happen on word boundaries and the output stays balanced. Denylisted
// elements such as images and scripts are dropped and the number of
// paragraph-like blocks can be capped. A marker like "…" is placed once,
// inside the last text-bearing element, only when content was removed.
package htmlcut

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Result describes a finished cut.
type Result struct {
	// Text is the cut markup, marker included.
	Text string
	// Truncated reports whether content was removed and the marker added.
	Truncated bool
	// InitialLength is the visible length of the input.
	InitialLength int
	// FinalLength is the visible length of Text without the marker.
	FinalLength int
}

// Cutter cuts markup with a fixed configuration. It is safe for concurrent use.
type Cutter struct {
	cfg Config
}

// New returns a Cutter using a private copy of cfg.
func New(cfg Config) (*Cutter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Cutter{cfg: cfg.clone()}, nil
}

var defaultCutter = &Cutter{cfg: DefaultConfig()}

// Cut shortens input to length visible characters using DefaultConfig.
func Cut(input string, length int, opts ...Option) (string, error) {
	return defaultCutter.Cut(input, length, opts...)
}

// CutNode shortens a parsed tree using DefaultConfig.
func CutNode(n *html.Node, length int, opts ...Option) (*html.Node, error) {
	return defaultCutter.CutNode(n, length, opts...)
}

// Config returns a copy of the cutter's configuration.
func (c *Cutter) Config() Config {
	return c.cfg.clone()
}

// Cut shortens input to length visible characters. Negative lengths are
// treated as 0.
func (c *Cutter) Cut(input string, length int, opts ...Option) (string, error) {
	res, err := c.CutResult(input, length, opts...)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// CutNode renders n, cuts it and returns the result parsed into a new
// document node. n is not modified.
func (c *Cutter) CutNode(n *html.Node, length int, opts ...Option) (*html.Node, error) {
	input, err := renderNode(n)
	if err != nil {
		return nil, err
	}

	text, err := c.Cut(input, length, opts...)
	if err != nil {
		return nil, err
	}

	nodes, err := parseFragment(text)
	if err != nil {
		return nil, err
	}
	doc := &html.Node{Type: html.DocumentNode}
	for _, node := range nodes {
		doc.AppendChild(node)
	}
	return doc, nil
}

// CutResult is Cut with the details of what happened.
func (c *Cutter) CutResult(input string, length int, opts ...Option) (Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if length < 0 {
		length = 0
	}

	text := stripDeclarations(input)
	initial := VisibleLength(text)
	initialContent := contentLength(text)

	overBudget := initial > length
	scan := c.scan(text)
	needsParse := overBudget ||
		(scan.markup && o.paragraphs > 0) ||
		(scan.denylisted && o.stripDenylisted)

	out := text
	walked := false
	if needsParse {
		var err error
		out, walked, err = c.process(text, length, o)
		if err != nil {
			return Result{}, err
		}
	}

	return c.finish(out, initial, initialContent, walked, o), nil
}

type inputScan struct {
	markup     bool
	denylisted bool
}

// scan tokenizes text looking for tags, without building a tree.
func (c *Cutter) scan(text string) inputScan {
	var s inputScan
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return s
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			s.markup = true
			name, _ := z.TagName()
			if c.cfg.Denylist.Has(string(name)) {
				s.denylisted = true
				return s
			}
		}
	}
}

// process parses text and runs the tree passes: budget walk, denylist,
// paragraph limit, punctuation trim and empty-node pruning. It reports
// whether the budget walk had to cut anything.
func (c *Cutter) process(text string, length int, o options) (string, bool, error) {
	nodes, err := parseFragment(text)
	if err != nil {
		return "", false, err
	}
	doc, root, synthetic := wrapFragment(nodes)
	dropIgnorableWhitespace(doc)

	walked := nodeLength(root) > length
	if walked {
		w := &walker{length: length, maxDepth: c.cfg.MaxDepth}
		cut, err := w.walk(root, length, 0)
		if err != nil {
			return "", false, err
		}
		if cut != root {
			doc.RemoveChild(root)
			if cut != nil {
				doc.AppendChild(cut)
			}
			root = cut
		}
	}

	if o.stripDenylisted {
		removeDenylisted(doc, c.cfg.Denylist)
	}
	if root != nil && root.Parent == doc {
		limitParagraphs(root, c.cfg.ParagraphTags, o.paragraphs)
	}
	if walked {
		stripTrailingPunctuation(doc, c.cfg)
	}
	pruneEmpty(doc)

	var out string
	if synthetic && root != nil && root.Parent == doc {
		out, err = renderChildren(root)
	} else {
		out, err = renderChildren(doc)
	}
	return out, walked, err
}

// finish applies the text-level cleanup and decides on the marker.
func (c *Cutter) finish(out string, initial, initialContent int, walked bool, o options) Result {
	out = collapseTagWhitespace(out)
	if o.paragraphs > 0 && !markupPattern.MatchString(out) {
		out = limitTextParagraphs(out, o.paragraphs)
	}

	body, closers := splitTrailingClosers(out)
	if walked || contentLength(out) != initialContent {
		body = c.cfg.TrailingPunctuation.ReplaceAllString(body, "")
	}
	out = trimLineBreaks(body) + closers

	res := Result{
		Text:          out,
		InitialLength: initial,
		FinalLength:   VisibleLength(out),
	}
	if contentLength(out) == initialContent {
		return res
	}
	res.Text = insertMarker(out, o.marker, c.cfg.TextCapableTags)
	res.Truncated = true
	return res
}

// wrapFragment puts parsed nodes under a document node. A fragment that is a
// single element becomes the root itself; anything else is wrapped in a
// synthetic div that is never serialized.
func wrapFragment(nodes []*html.Node) (doc, root *html.Node, synthetic bool) {
	doc = &html.Node{Type: html.DocumentNode}

	var single *html.Node
	elements := 0
	for _, n := range nodes {
		switch {
		case n.Type == html.ElementNode:
			elements++
			single = n
		case n.Type == html.TextNode && isBlank(n.Data):
		default:
			elements = 2 // text or declarations beside the element
		}
	}

	if elements == 1 {
		doc.AppendChild(single)
		return doc, single, false
	}

	root = &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	doc.AppendChild(root)
	return doc, root, true
}
