package dispatch

// DetectWebFetch finds every http(s) URL in text (spec §4.4 "web_fetch").
// Capping to 3 per response is enforced by the caller via Kind.Cap.
func DetectWebFetch(text string) []DetectedCall {
	matches := urlPattern.FindAllString(text, -1)
	out := make([]DetectedCall, 0, len(matches))
	for _, u := range matches {
		out = append(out, DetectedCall{Kind: KindWebFetch, URL: u})
	}
	return out
}
