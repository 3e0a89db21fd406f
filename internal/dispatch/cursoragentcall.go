package dispatch

import (
	"regexp"
	"strings"
)

// cursorAgentPattern matches the recognized subcommand verbs (spec §4.4
// "cursor_agent").
var cursorAgentPattern = regexp.MustCompile(
	`(?is)cursor\s+agent\s+(launch|status|list|conversation|followup|follow[_-]?up|stop|delete|models|repos|me)\s*(?:[:\-]\s*(.+?))?(?:\n\n|\n\[|$)`,
)

// DetectCursorAgent extracts cursor_agent subcommand calls (spec §4.4, cap 1).
func DetectCursorAgent(text string) []DetectedCall {
	var out []DetectedCall
	for _, m := range cursorAgentPattern.FindAllStringSubmatch(text, -1) {
		if len(m) < 2 {
			continue
		}
		action := strings.ToLower(strings.TrimSpace(m[1]))
		action = strings.ReplaceAll(action, "-", "_")
		rest := ""
		if len(m) > 2 {
			rest = strings.TrimSpace(m[2])
		}

		call := DetectedCall{Kind: KindCursorAgent, Action: action}
		switch action {
		case "followup", "follow_up":
			if idx := strings.Index(rest, ":"); idx >= 0 {
				call.Rest = strings.TrimSpace(rest[:idx])
				call.Extra = strings.TrimSpace(rest[idx+1:])
			} else {
				call.Rest = rest
			}
		default:
			call.Rest = rest
		}
		out = append(out, call)
	}
	return out
}
