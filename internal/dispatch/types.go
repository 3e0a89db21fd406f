// Package dispatch extracts tool calls expressed as natural-language
// patterns from the child agent's free-form text output, executes each at
// most once per response (subject to per-tool-per-response caps), and
// appends "[Tool Result: ...]" / "[Tool Error: ...]" blocks to the
// original text (spec §4.4).
package dispatch

// Kind identifies which tool a DetectedCall targets.
type Kind string

const (
	KindWebFetch      Kind = "web_fetch"
	KindWebSearch     Kind = "web_search"
	KindMemorySearch  Kind = "memory_search"
	KindDelegate      Kind = "delegate"
	KindSmartDelegate Kind = "smart_delegate"
	KindWeather       Kind = "weather"
	KindCursorAgent   Kind = "cursor_agent"
)

// DetectedCall is the tagged union produced by each per-tool pattern
// module's Detect function. Only the fields relevant to Kind are set.
type DetectedCall struct {
	Kind Kind

	// web_fetch
	URL string
	// web_search / memory_search
	Query string
	// delegate
	PersonaID string
	Task      string
	// smart_delegate
	SmartTask string
	// weather
	City string
	// cursor_agent
	Action string
	Rest   string
	Extra  string
}

// Cap returns the per-tool-per-response execution cap (spec §4.4).
func (k Kind) Cap() int {
	switch k {
	case KindWebFetch:
		return 3
	case KindWebSearch, KindMemorySearch:
		return 2
	default:
		return 1
	}
}
