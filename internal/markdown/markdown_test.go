package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"empty string", "", false},
		{"plain text", "Remember the quotient rule.", false},
		{"angle brackets but not HTML", "x < y and 2 > 1 holds", false},
		{"markdown", "**bold** and _italic_", false},
		{"paragraph", "<p>Proof.</p>", true},
		{"break", "line<br/>line", true},
		{"uppercase tags", "<P>Loud</P>", true},
		{"list", "<ul><li>a</li></ul>", true},
		{"code", "<code>f(x)</code>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContainsHTML(tt.input))
		})
	}
}

func TestFromHTML(t *testing.T) {
	md, err := FromHTML("<p>Use the <strong>chain rule</strong> here.</p>")
	require.NoError(t, err)
	assert.Equal(t, "Use the **chain rule** here.", md)

	md, err = FromHTML("<ul><li>first</li><li>second</li></ul>")
	require.NoError(t, err)
	assert.Contains(t, md, "first")
	assert.Contains(t, md, "second")
	assert.NotContains(t, md, "<li>")
}

func TestFromHTML_PlainTextUnchanged(t *testing.T) {
	in := "  keep *my* spacing  "
	out, err := FromHTML(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestNormalize(t *testing.T) {
	out, err := Normalize("<em>x</em>", FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "<em>x</em>", out, "markdown content is stored verbatim")

	out, err = Normalize("<em>x</em>", FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, "*x*", out)
}

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat(""))
	assert.True(t, ValidFormat("markdown"))
	assert.True(t, ValidFormat("html"))
	assert.False(t, ValidFormat("rtf"))
}
