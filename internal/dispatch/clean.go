package dispatch

import (
	"regexp"
	"strings"
)

var (
	leadingFillerWords = regexp.MustCompile(`(?i)^(for|about|on)\s+`)
	trailingPunct      = ".,;:!?)"
)

// cleanQuery strips whitespace, surrounding quotes, trailing punctuation,
// and a leading "for|about|on", then rejects anything left shorter than 3
// characters (spec §4.4 "Query cleaning").
func cleanQuery(raw string) string {
	q := strings.TrimSpace(raw)
	q = strings.Trim(q, `"'`)
	q = strings.TrimRight(q, trailingPunct)
	q = strings.TrimSpace(q)
	q = leadingFillerWords.ReplaceAllString(q, "")
	q = strings.TrimRight(q, trailingPunct)
	q = strings.TrimSpace(q)
	if len(q) < 3 {
		return ""
	}
	return q
}

// urlPattern matches http(s) URLs, stopping at whitespace or a closing paren.
var urlPattern = regexp.MustCompile(`(?i)https?://[^\s)]+`)
