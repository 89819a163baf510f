package htmlcut

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// walker assigns a shrinking character budget to the nodes of a tree.
type walker struct {
	// length is the budget requested for the whole cut.
	length   int
	maxDepth int
}

// walk returns the part of n that fits into budget visible characters.
// It takes ownership of n: children are moved out of it into the result.
// When n already fits, n itself is returned. A nil result means nothing
// visible survived.
func (w *walker) walk(n *html.Node, budget, depth int) (*html.Node, error) {
	if depth > w.maxDepth {
		return nil, fmt.Errorf("%w: more than %d nested elements", ErrStructureTooDeep, w.maxDepth)
	}
	if nodeLength(n) <= budget {
		return n, nil
	}
	if n.Type == html.TextNode {
		return w.cutText(n.Data, budget), nil
	}

	out := shallowCopy(n)
	consumed := 0
	finalCut := false

	for c := n.FirstChild; c != nil && !finalCut; {
		next := c.NextSibling

		if isDeclaration(c) {
			n.RemoveChild(c)
			out.AppendChild(c)
			c = next
			continue
		}

		length := nodeLength(c)
		if consumed+length <= budget {
			n.RemoveChild(c)
			out.AppendChild(c)
			consumed += length
			c = next
			continue
		}

		n.RemoveChild(c)
		cut, err := w.walk(c, budget-consumed, depth+1)
		if err != nil {
			return nil, err
		}
		if cut != nil {
			cutLength := nodeLength(cut)
			if cutLength > 0 && consumed+cutLength <= budget {
				out.AppendChild(cut)
				consumed += cutLength
				// This child alone could exhaust the budget: the cut point is
				// found, later siblings are dropped.
				if length >= budget {
					finalCut = true
				}
			}
		}
		c = next
	}

	return out, nil
}

// cutText shortens text to at most budget characters, ending on a word
// boundary. The very first text of a cut may be split mid-word when it has
// no boundary inside the budget, so the result is never empty.
func (w *walker) cutText(text string, budget int) *html.Node {
	runes := []rune(text)
	end := wordBoundaryPrefix(runes, budget)
	cut := strings.TrimRightFunc(string(runes[:end]), unicode.IsSpace)

	if isBlank(cut) && budget > 0 && budget == w.length {
		if budget > len(runes) {
			budget = len(runes)
		}
		cut = strings.TrimRightFunc(string(runes[:budget]), unicode.IsSpace)
	}
	if isBlank(cut) {
		return nil
	}
	return &html.Node{Type: html.TextNode, Data: cut}
}

// wordBoundaryPrefix returns the largest i <= limit such that runes[:i] ends
// on a word boundary. 0 is always acceptable.
func wordBoundaryPrefix(runes []rune, limit int) int {
	if limit >= len(runes) {
		return len(runes)
	}
	for i := limit; i > 0; i-- {
		if isWordRune(runes[i-1]) != isWordRune(runes[i]) {
			return i
		}
	}
	return 0
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
