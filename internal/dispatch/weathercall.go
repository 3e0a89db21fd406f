package dispatch

import "regexp"

// weatherPatterns mirror spec §4.4's "weather (in|for|at) <city>" and
// "forecast (in|for|at) <city>".
var weatherPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)weather\s+(?:in|for|at)\s+([^.\n,]+)`),
	regexp.MustCompile(`(?i)forecast\s+(?:in|for|at)\s+([^.\n,]+)`),
}

// DetectWeather extracts weather calls (spec §4.4, cap 1).
func DetectWeather(text string) []DetectedCall {
	seen := make(map[string]bool)
	var out []DetectedCall
	for _, p := range weatherPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			city := cleanQuery(m[1])
			if city == "" || len(city) <= 1 || seen[city] {
				continue
			}
			seen[city] = true
			out = append(out, DetectedCall{Kind: KindWeather, City: city})
		}
	}
	return out
}
