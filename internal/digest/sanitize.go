package digest

import (
	"strings"
	"unicode"
)

var braceReplacer = strings.NewReplacer("{", "[", "}", "]")

// Sanitize replaces curly braces with square brackets so the text cannot be
// interpreted as a template downstream.
func Sanitize(text string) string {
	return braceReplacer.Replace(text)
}

// finalize trims trailing whitespace and terminates the text with exactly one
// newline.
func finalize(text string) string {
	return strings.TrimRightFunc(text, unicode.IsSpace) + "\n"
}
