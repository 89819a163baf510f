package htmlcut

import (
	"regexp"
	"strings"
)

var (
	interTagWhitespacePattern = regexp.MustCompile(`>\s*[\r\n]\s*<`)
	lineBreakRunPattern       = regexp.MustCompile(`(?:\r\n|\r|\n)+`)
	leadingBreaksPattern      = regexp.MustCompile(`(?i)^(?:\s|<br\s*/?>)+`)
	trailingBreaksPattern     = regexp.MustCompile(`(?i)(?:\s|<br\s*/?>)+$`)
	trailingClosersPattern    = regexp.MustCompile(`(?:</[A-Za-z][A-Za-z0-9-]*\s*>\s*)+$`)
	closingTagPattern         = regexp.MustCompile(`</([A-Za-z][A-Za-z0-9-]*)\s*>`)
	markupPattern             = regexp.MustCompile(`<[A-Za-z/!][^>]*>`)
)

// collapseTagWhitespace removes formatting whitespace between tags.
func collapseTagWhitespace(s string) string {
	return interTagWhitespacePattern.ReplaceAllString(s, "><")
}

// limitTextParagraphs keeps the first limit line-separated segments of
// plain text. Runs of line breaks count as one separator.
func limitTextParagraphs(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	segments := lineBreakRunPattern.Split(s, -1)
	if len(segments) <= limit {
		return s
	}
	return strings.Join(segments[:limit], "\n")
}

// splitTrailingClosers splits s into its content and the run of closing
// tags at its very end.
func splitTrailingClosers(s string) (string, string) {
	loc := trailingClosersPattern.FindStringIndex(s)
	if loc == nil {
		return s, ""
	}
	return s[:loc[0]], s[loc[0]:]
}

func trimLineBreaks(s string) string {
	s = leadingBreaksPattern.ReplaceAllString(s, "")
	return trailingBreaksPattern.ReplaceAllString(s, "")
}

// insertMarker places marker right before the innermost trailing closing tag
// of an element that can hold text. Without such a tag the marker is
// appended.
func insertMarker(s, marker string, textCapable TagSet) string {
	body, closers := splitTrailingClosers(s)
	if closers == "" {
		return s + marker
	}
	for _, m := range closingTagPattern.FindAllStringSubmatchIndex(closers, -1) {
		if textCapable.Has(closers[m[2]:m[3]]) {
			return body + closers[:m[0]] + marker + closers[m[0]:]
		}
	}
	return s + marker
}
