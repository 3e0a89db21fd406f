package dispatch

import "regexp"

// webSearchPatterns mirror spec §4.4's "search (the web )?for ...", "looking
// up ...", "find(ing)? ..." phrasings.
var webSearchPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)search(?:ing)?\s+(?:the\s+web\s+)?for\s+["']?([^".\n]+?)["']?(?:\.|$|\n)`),
	regexp.MustCompile(`(?i)looking\s+up\s+["']?([^".\n]+?)["']?(?:\.|$|\n)`),
	regexp.MustCompile(`(?i)find(?:ing)?\s+["']?([^".\n]+?)["']?(?:\.|$|\n)`),
}

// DetectWebSearch extracts web_search queries (spec §4.4, cap 2).
func DetectWebSearch(text string) []DetectedCall {
	seen := make(map[string]bool)
	var out []DetectedCall
	for _, p := range webSearchPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			q := cleanQuery(m[1])
			if q == "" || seen[q] {
				continue
			}
			seen[q] = true
			out = append(out, DetectedCall{Kind: KindWebSearch, Query: q})
		}
	}
	return out
}
