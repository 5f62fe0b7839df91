// Package markdown converts rich-text note content to Markdown.
package markdown

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Content formats accepted for note bodies.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// htmlTagPattern matches the opening tags rich-text editors typically emit.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|u|s|strong|em|a|ul|ol|li|h[1-6]|blockquote|code|pre|table)[\s>/]`)

// ContainsHTML reports whether s appears to contain HTML markup.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// FromHTML converts HTML to Markdown. Input without recognizable markup is
// returned unchanged.
func FromHTML(s string) (string, error) {
	if s == "" || !ContainsHTML(s) {
		return s, nil
	}

	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}

// ValidFormat reports whether format is accepted. The empty string means Markdown.
func ValidFormat(format string) bool {
	switch format {
	case "", FormatMarkdown, FormatHTML:
		return true
	default:
		return false
	}
}

// Normalize returns content in its stored form: HTML is converted,
// Markdown is kept verbatim.
func Normalize(content, format string) (string, error) {
	if !ValidFormat(format) {
		return "", fmt.Errorf("unknown content format %q", format)
	}
	if format != FormatHTML {
		return content, nil
	}
	return FromHTML(content)
}
