// Package normalize provides utilities for normalizing and sanitizing user input.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxTagNameLength is the longest tag name accepted, in runes.
const MaxTagNameLength = 64

// Matches any run of whitespace.
var whitespaceRe = regexp.MustCompile(`\s+`)

// Text NFC-normalizes s, drops null bytes and trims surrounding whitespace.
func Text(s string) string {
	return strings.TrimSpace(sanitizeString(norm.NFC.String(s)))
}

// TagName converts user input to the stored form of a tag name.
// Case is preserved, so "Exam" and "exam" are different tags.
//
//	"  exam   prep " -> "exam prep"
//	"café" (decomposed) -> "café" (composed)
func TagName(raw string) string {
	return whitespaceRe.ReplaceAllString(Text(raw), " ")
}

// TagNames normalizes every name, drops empty results and removes duplicates
// while keeping the first-seen order.
func TagNames(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		name := TagName(r)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Email lowercases and trims an email address.
func Email(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// sanitizeString removes null bytes, which SQLite and JSON clients handle poorly.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}
