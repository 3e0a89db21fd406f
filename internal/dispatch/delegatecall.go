package dispatch

import (
	"regexp"
	"strings"
)

// delegatePatterns mirror spec §4.4's "delegate to <persona>: <task>" family.
var delegatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)delegate\s+(?:to|task to)\s+(?:the\s+)?(researcher|coder|reviewer|writer|home_assistant|ha)\s*[:\-]\s*([^\n]+?)(?:\n\n|\n\[|$)`),
	regexp.MustCompile(`(?is)ask\s+(?:the\s+)?(researcher|coder|reviewer|writer|home_assistant|ha)\s+(?:agent\s+)?to\s+([^\n]+?)(?:\n\n|\n\[|$)`),
	regexp.MustCompile(`(?is)have\s+(?:the\s+)?(researcher|coder|reviewer|writer|home_assistant|ha)\s+([^\n]+?)(?:\n\n|\n\[|$)`),
}

// delegateUserCtxMax bounds the extra user-context line appended to a
// delegate task (spec §4.4 "Delegation context minimization").
const delegateUserCtxMax = 350

// DetectDelegate extracts delegate calls (spec §4.4, cap 1). lastUserMessage,
// if non-empty, is appended as a single truncated "User asked: ..." line.
func DetectDelegate(text, lastUserMessage string) []DetectedCall {
	var out []DetectedCall
	for _, p := range delegatePatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			if len(m) < 3 {
				continue
			}
			persona := strings.ToLower(strings.TrimSpace(m[1]))
			task := strings.TrimSpace(m[2])
			if persona == "" || len(task) <= 5 {
				continue
			}
			if persona == "ha" {
				persona = "home_assistant"
			}
			out = append(out, DetectedCall{Kind: KindDelegate, PersonaID: persona, Task: withUserContext(task, lastUserMessage)})
		}
	}
	return out
}

// withUserContext appends "User asked: <first line, truncated>" to task, per
// spec §4.4 "Delegation context minimization".
func withUserContext(task, lastUserMessage string) string {
	s := strings.TrimSpace(lastUserMessage)
	if s == "" {
		return task
	}
	firstLine := s
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		firstLine = s[:idx]
	}
	if len(firstLine) > delegateUserCtxMax {
		firstLine = firstLine[:delegateUserCtxMax]
	}
	firstLine = strings.TrimSpace(firstLine)
	if firstLine == "" {
		return task
	}
	return task + "\nUser asked: " + firstLine
}
