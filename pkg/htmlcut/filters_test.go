package htmlcut

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveDenylisted(t *testing.T) {
	t.Run("removes matches anywhere in the tree", func(t *testing.T) {
		root := parseRoot(t, `<p>Text <img src="a.png"></p><figure><img src="b.png"><figcaption>Cap</figcaption></figure><script>x()</script>`)

		removed := removeDenylisted(root, NewTagSet(DefaultDenylist...))
		assert.Equal(t, 3, removed)
		assert.Equal(t, "<p>Text </p>", renderInner(t, root))
	})

	t.Run("nested matches are removed once", func(t *testing.T) {
		root := parseRoot(t, `<video><source src="a.mp4"></video><p>after</p>`)

		removed := removeDenylisted(root, NewTagSet("video", "source"))
		assert.Equal(t, 1, removed)
		assert.Equal(t, "<p>after</p>", renderInner(t, root))
	})

	t.Run("empty denylist is a no-op", func(t *testing.T) {
		root := parseRoot(t, `<p><img src="a.png"></p>`)

		assert.Equal(t, 0, removeDenylisted(root, NewTagSet()))
		assert.Equal(t, `<p><img src="a.png"/></p>`, renderInner(t, root))
	})

	t.Run("tag names compare case-insensitively", func(t *testing.T) {
		root := parseRoot(t, `<p>a</p><IFRAME src="x"></IFRAME>`)

		removeDenylisted(root, NewTagSet("IFrame"))
		assert.Equal(t, "<p>a</p>", renderInner(t, root))
	})
}

func TestLimitParagraphs(t *testing.T) {
	paragraphs := NewTagSet(DefaultParagraphTags...)

	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{
			name:     "list items beyond the limit are removed",
			input:    "<ul><li>One</li><li>Two</li><li>Three</li></ul>",
			limit:    1,
			expected: "<ul><li>One</li></ul>",
		},
		{
			name:     "within limit is untouched",
			input:    "<p>One</p><p>Two</p>",
			limit:    2,
			expected: "<p>One</p><p>Two</p>",
		},
		{
			name:     "zero means unlimited",
			input:    "<p>One</p><p>Two</p><p>Three</p>",
			limit:    0,
			expected: "<p>One</p><p>Two</p><p>Three</p>",
		},
		{
			name:     "trailing inline content goes before earlier blocks",
			input:    "<p>One</p><p>Two <b>bold</b></p>",
			limit:    1,
			expected: "<p>One</p>",
		},
		{
			name:     "nested blocks count individually",
			input:    "<blockquote><p>Quoted</p></blockquote><p>Body</p>",
			limit:    2,
			expected: "<blockquote><p>Quoted</p></blockquote>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := parseRoot(t, tt.input)
			limitParagraphs(root, paragraphs, tt.limit)
			assert.Equal(t, tt.expected, renderInner(t, root))
		})
	}
}

func TestPruneEmpty(t *testing.T) {
	t.Run("removal cascades to parents", func(t *testing.T) {
		root := parseRoot(t, "<p><span><b></b></span></p><p>kept</p>")

		removed := pruneEmpty(root)
		assert.Equal(t, 3, removed)
		assert.Equal(t, "<p>kept</p>", renderInner(t, root))
	})

	t.Run("attributes and void elements are kept", func(t *testing.T) {
		root := parseRoot(t, `<span class="icon"></span><br><p>  </p><hr>`)

		pruneEmpty(root)
		assert.Equal(t, `<span class="icon"></span><br/><hr/>`, renderInner(t, root))
	})

	t.Run("nothing to prune", func(t *testing.T) {
		root := parseRoot(t, "<p>Hello</p>")
		assert.Equal(t, 0, pruneEmpty(root))
	})
}

func TestStripTrailingPunctuation(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"comma", "<p>Hello,</p>", "<p>Hello</p>"},
		{"colon and space", "<p>Note: </p>", "<p>Note</p>"},
		{"dash", "<p>Hello —</p>", "<p>Hello</p>"},
		{"single period kept", "<p>Done.</p>", "<p>Done.</p>"},
		{"run of periods", "<p>Wait...</p>", "<p>Wait</p>"},
		{"guillemet", "<p>Il dit «</p>", "<p>Il dit</p>"},
		{"only last text node", "<p>a,</p><p>b;</p>", "<p>a,</p><p>b</p>"},
		{"blank text removed", "<p>x</p><p><b>--</b></p>", "<p>x</p><p><b></b></p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := parseRoot(t, tt.input)
			stripTrailingPunctuation(root, cfg)
			assert.Equal(t, tt.expected, renderInner(t, root))
		})
	}

	t.Run("custom pattern", func(t *testing.T) {
		custom := DefaultConfig()
		custom.TrailingPunctuation = regexp.MustCompile(`[!?]+$`)
		root := parseRoot(t, "<p>Really?!</p>")

		stripTrailingPunctuation(root, custom)
		assert.Equal(t, "<p>Really</p>", renderInner(t, root))
	})
}

func TestDropIgnorableWhitespace(t *testing.T) {
	root := parseRoot(t, "<p>a</p>\n  <p><b>b</b> <i>c</i></p>\n<pre>\n\n</pre>")
	dropIgnorableWhitespace(root)

	out := renderInner(t, root)
	assert.Equal(t, "<p>a</p><p><b>b</b> <i>c</i></p><pre>\n\n</pre>", out)
	require.False(t, strings.Contains(out, "</p>\n"))
}
