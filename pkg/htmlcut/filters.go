package htmlcut

import (
	"strings"

	"golang.org/x/net/html"
)

// removeDenylisted removes every element named in denylist, with its subtree.
// Matches are collected before the tree is touched. Returns the number of
// removed elements.
func removeDenylisted(root *html.Node, denylist TagSet) int {
	if len(denylist) == 0 {
		return 0
	}

	var toRemove []*html.Node
	eachNode(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && denylist.Has(n.Data) {
			toRemove = append(toRemove, n)
			return false
		}
		return true
	})

	for _, n := range toRemove {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
	return len(toRemove)
}

// limitParagraphs removes trailing content below root until at most limit
// paragraph-like elements remain. Elements are visited in reverse document
// order, so descendants go before their ancestors and later blocks before
// earlier ones. root itself is never counted or removed. A limit of 0 means
// unlimited.
func limitParagraphs(root *html.Node, paragraphTags TagSet, limit int) int {
	if limit <= 0 {
		return 0
	}

	elements := collectElements(root)
	count := 0
	for _, e := range elements {
		if paragraphTags.Has(e.Data) {
			count++
		}
	}
	if count <= limit {
		return 0
	}

	removed := 0
	for i := len(elements) - 1; i >= 0 && count > limit; i-- {
		e := elements[i]
		if e.Parent != nil {
			e.Parent.RemoveChild(e)
			removed++
		}
		if paragraphTags.Has(e.Data) {
			count--
		}
	}
	return removed
}

// isEmptyElement reports an element with no attributes and nothing but
// whitespace inside.
func isEmptyElement(n *html.Node) bool {
	if n.Type != html.ElementNode || len(n.Attr) > 0 || voidElements[strings.ToLower(n.Data)] {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode || !isBlank(c.Data) {
			return false
		}
	}
	return true
}

// pruneEmpty removes empty elements until none are left; removing a child
// can leave its parent empty. Returns the number of removed elements.
func pruneEmpty(root *html.Node) int {
	removed := 0
	for {
		var empty []*html.Node
		eachNode(root, func(n *html.Node) bool {
			if isEmptyElement(n) {
				empty = append(empty, n)
				return false
			}
			return true
		})
		if len(empty) == 0 {
			return removed
		}
		for _, n := range empty {
			n.Parent.RemoveChild(n)
		}
		removed += len(empty)
	}
}

// stripTrailingPunctuation trims orphaned punctuation from the last text
// node under root. A text node left blank is removed.
func stripTrailingPunctuation(root *html.Node, cfg Config) {
	var last *html.Node
	eachNode(root, func(n *html.Node) bool {
		if n.Type == html.TextNode && !isBlank(n.Data) {
			last = n
		}
		return true
	})
	if last == nil {
		return
	}

	last.Data = cfg.TrailingPunctuation.ReplaceAllString(last.Data, "")
	if isBlank(last.Data) {
		last.Parent.RemoveChild(last)
	}
}
