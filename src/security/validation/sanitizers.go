package validation

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var strictHTMLPolicy *bluemonday.Policy

func init() {
	strictHTMLPolicy = bluemonday.StrictPolicy()
}

// SanitizeText removes all HTML tags and attributes from an input string.
// The policy HTML-escapes what remains.
func SanitizeText(s string) string {
	return strictHTMLPolicy.Sanitize(s)
}

// SanitizeDescription cleans an imported description for storage: markup is stripped,
// entities are decoded back to plain text, control characters are removed and the
// result is capped at MaxDescriptionLength characters.
func SanitizeDescription(s string) string {
	clean := strings.TrimSpace(StripUnprintable(html.UnescapeString(SanitizeText(s))))
	if utf8.RuneCountInString(clean) > MaxDescriptionLength {
		clean = string([]rune(clean)[:MaxDescriptionLength])
	}
	return clean
}

// StripUnprintable removes non-printable characters, allowing common whitespace
// like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}
