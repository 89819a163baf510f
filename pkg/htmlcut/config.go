package htmlcut

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// DefaultMarker is appended when a cut actually removed content.
const DefaultMarker = "…"

// DefaultMaxDepth bounds the recursion of the budget walker.
const DefaultMaxDepth = 512

// foldName case-folds a tag name. Casers are stateful, so each call gets its own.
func foldName(name string) string {
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= utf8.RuneSelf || ('A' <= c && c <= 'Z') {
			return cases.Fold().String(name)
		}
	}
	return name
}

// TagSet is a set of case-folded element names.
type TagSet map[string]struct{}

// NewTagSet builds a TagSet from the given names.
func NewTagSet(names ...string) TagSet {
	ts := make(TagSet, len(names))
	for _, name := range names {
		ts.Add(name)
	}
	return ts
}

// Has reports whether name (any case) is in the set.
func (ts TagSet) Has(name string) bool {
	if len(ts) == 0 {
		return false
	}
	_, ok := ts[foldName(name)]
	return ok
}

func (ts TagSet) Add(name string) {
	if name == "" {
		return
	}
	ts[foldName(name)] = struct{}{}
}

func (ts TagSet) Remove(name string) {
	delete(ts, foldName(name))
}

// Names returns the members in sorted order.
func (ts TagSet) Names() []string {
	names := make([]string, 0, len(ts))
	for name := range ts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (ts TagSet) Clone() TagSet {
	out := make(TagSet, len(ts))
	for name := range ts {
		out[name] = struct{}{}
	}
	return out
}

// Default tag lists. They are copied into every Config returned by
// DefaultConfig, so mutating a Config never changes these.
var (
	DefaultDenylist = []string{
		"img", "picture", "figure", "video", "audio", "source", "track",
		"iframe", "object", "embed", "canvas", "svg", "map", "area",
		"script", "style", "noscript", "template",
		"form", "input", "button", "select", "option", "textarea",
		"table",
	}

	DefaultParagraphTags = []string{
		"p", "div", "li", "dt", "dd", "blockquote", "pre", "address",
		"h1", "h2", "h3", "h4", "h5", "h6",
	}

	// div only groups content, so a marker goes after "</div>", not inside it.
	DefaultTextCapableTags = []string{
		"p", "h1", "h2", "h3", "h4", "h5", "h6",
		"article", "section", "aside", "header", "footer", "nav", "main",
		"blockquote", "pre", "address", "li", "dt", "dd",
		"td", "th", "caption", "figcaption", "legend", "label", "summary",
		"a", "abbr", "b", "bdi", "bdo", "cite", "code", "del", "dfn", "em",
		"i", "ins", "kbd", "mark", "q", "s", "samp", "small", "span",
		"strong", "sub", "sup", "time", "u", "var",
	}
)

// DefaultTrailingPunctuation matches orphaned punctuation at the end of a cut.
// Quotes and apostrophes are matched in their serialized entity forms too.
const DefaultTrailingPunctuation = `(?:[\s:;,()\[\]{}\-‐‑‒–—―_«»‹›„“”‚‘’"'` + "`" + `]|&#34;|&#39;|&quot;|&apos;|\.{2,}|…)+$`

// Config carries the tag sets and patterns for a Cutter.
type Config struct {
	// Denylist elements are removed from previews together with their subtree.
	Denylist TagSet
	// ParagraphTags are counted against the paragraph limit.
	ParagraphTags TagSet
	// TextCapableTags may receive the marker right before their closing tag.
	TextCapableTags TagSet
	// TrailingPunctuation is stripped from the end of a cut result. It must be
	// anchored at the end of input.
	TrailingPunctuation *regexp.Regexp
	// MaxDepth is the nesting ceiling for the budget walker.
	MaxDepth int
}

// DefaultConfig returns a fresh copy of the default configuration.
func DefaultConfig() Config {
	return Config{
		Denylist:            NewTagSet(DefaultDenylist...),
		ParagraphTags:       NewTagSet(DefaultParagraphTags...),
		TextCapableTags:     NewTagSet(DefaultTextCapableTags...),
		TrailingPunctuation: regexp.MustCompile(DefaultTrailingPunctuation),
		MaxDepth:            DefaultMaxDepth,
	}
}

// Validate checks the configuration for values the engine cannot work with.
func (c Config) Validate() error {
	if c.TrailingPunctuation == nil {
		return fmt.Errorf("%w: trailing punctuation pattern is required", ErrInvalidConfig)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth must be >= 0, got %d", ErrInvalidConfig, c.MaxDepth)
	}
	return nil
}

// Fingerprint describes everything in c that affects cut output. Two configs
// with equal fingerprints cut identically.
func (c Config) Fingerprint() string {
	pattern := ""
	if c.TrailingPunctuation != nil {
		pattern = c.TrailingPunctuation.String()
	}
	depth := c.MaxDepth
	if depth == 0 {
		depth = DefaultMaxDepth
	}
	return fmt.Sprintf("deny=%s;para=%s;text=%s;punct=%s;depth=%d",
		strings.Join(c.Denylist.Names(), ","),
		strings.Join(c.ParagraphTags.Names(), ","),
		strings.Join(c.TextCapableTags.Names(), ","),
		pattern, depth)
}

func (c Config) clone() Config {
	out := c
	out.Denylist = c.Denylist.Clone()
	out.ParagraphTags = c.ParagraphTags.Clone()
	out.TextCapableTags = c.TextCapableTags.Clone()
	if out.MaxDepth == 0 {
		out.MaxDepth = DefaultMaxDepth
	}
	return out
}

type options struct {
	paragraphs      int
	marker          string
	stripDenylisted bool
}

func defaultOptions() options {
	return options{
		marker:          DefaultMarker,
		stripDenylisted: true,
	}
}

// Option tweaks a single cut.
type Option func(*options)

// WithParagraphs caps the number of paragraph-like blocks. 0 means unlimited;
// negative values are treated as 0.
func WithParagraphs(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.paragraphs = n
	}
}

// WithMarker sets the completion marker. It is inserted verbatim, so it may
// contain markup.
func WithMarker(marker string) Option {
	return func(o *options) {
		o.marker = marker
	}
}

// WithDenylistStripping toggles removal of denylisted elements.
func WithDenylistStripping(strip bool) Option {
	return func(o *options) {
		o.stripDenylisted = strip
	}
}
