package wiki

import (
	"regexp"
	"strings"
)

// reservedTitleChars matches characters MediaWiki refuses in page titles.
var reservedTitleChars = regexp.MustCompile(`[#<>\[\]|{}\n\r]`)

// SanitizeTitle trims surrounding whitespace and replaces every reserved
// title character with an underscore.
//
// Distinct inputs can collapse onto the same output ("a#b" and "a|b" both
// become "a_b"); callers should warn when the result differs from the input.
func SanitizeTitle(title string) string {
	return reservedTitleChars.ReplaceAllString(strings.TrimSpace(title), "_")
}

// IsValidTitle reports whether SanitizeTitle would leave title unchanged.
func IsValidTitle(title string) bool {
	return title == strings.TrimSpace(title) && !reservedTitleChars.MatchString(title)
}
