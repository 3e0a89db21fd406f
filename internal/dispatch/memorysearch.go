package dispatch

import "regexp"

// memorySearchPatterns mirror spec §4.4's "search memory for ...", "look in
// memory for ...".
var memorySearchPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)search(?:ing)?\s+(?:the\s+)?memory\s+(?:for)?\s+["']?([^"'\n]+)["']?`),
	regexp.MustCompile(`(?i)look(?:ing)?\s+(?:in|through)\s+memory\s+(?:for)?\s+["']?([^"'\n]+)["']?`),
}

// DetectMemorySearch extracts memory_search queries (spec §4.4, cap 2).
func DetectMemorySearch(text string) []DetectedCall {
	seen := make(map[string]bool)
	var out []DetectedCall
	for _, p := range memorySearchPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			q := cleanQuery(m[1])
			if q == "" || seen[q] {
				continue
			}
			seen[q] = true
			out = append(out, DetectedCall{Kind: KindMemorySearch, Query: q})
		}
	}
	return out
}
