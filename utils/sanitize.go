package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richText  = bluemonday.UGCPolicy()
	plainText = bluemonday.StrictPolicy()
)

// Sanitize cleans rich-text HTML (post bodies, comments) to prevent XSS.
func Sanitize(input string) string {
	return richText.Sanitize(input)
}

// StripTags reduces a single-line field (title, name) to plain text.
// The result is unescaped text; templates escape it on output.
func StripTags(input string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(input)))
}
