// Package sanitize provides text sanitization for free-text fields stored
// alongside scores (adjustment notes, audit details).
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = strings.ReplaceAll(result, "&lt;", "<")
	result = strings.ReplaceAll(result, "&gt;", ">")
	result = strings.ReplaceAll(result, "&amp;", "&")
	result = strings.ReplaceAll(result, "&quot;", "\"")
	result = strings.ReplaceAll(result, "&#39;", "'")
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text strips HTML, collapses whitespace and truncates to maxRunes (0 = unlimited).
func Text(s string, maxRunes int) string {
	result := whitespaceRegex.ReplaceAllString(StripHTML(s), " ")
	if maxRunes > 0 && utf8.RuneCountInString(result) > maxRunes {
		runes := []rune(result)
		result = strings.TrimSpace(string(runes[:maxRunes]))
	}
	return result
}

// TextPtr sanitizes an optional string; blank results become nil.
func TextPtr(s *string, maxRunes int) *string {
	if s == nil {
		return nil
	}
	result := Text(*s, maxRunes)
	if result == "" {
		return nil
	}
	return &result
}
