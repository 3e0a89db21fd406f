package dispatch

import (
	"regexp"
	"strings"
)

// smartDelegatePatterns mirror spec §4.4's "smart delegate: <task>" and
// "delegate to (stronger|better|optimal) model: <task>" phrasings.
var smartDelegatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)smart\s+delegat(?:e|ing)\s*[:\-]\s*(.+?)(?:\n\n|\n\[|$)`),
	regexp.MustCompile(`(?is)delegat(?:e|ing)\s+(?:this\s+)?(?:to\s+(?:a\s+)?)?(?:stronger|better|more\s+capable|optimal|profound)\s+(?:model|agent)\s*[:\-]\s*(.+?)(?:\n\n|\n\[|$)`),
}

const smartDelegateUserCtxMax = 500

// DetectSmartDelegate extracts smart_delegate calls (spec §4.4, cap 1).
func DetectSmartDelegate(text, lastUserMessage string) []DetectedCall {
	var out []DetectedCall
	for _, p := range smartDelegatePatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			task := strings.TrimSpace(m[1])
			if len(task) <= 10 {
				continue
			}
			out = append(out, DetectedCall{Kind: KindSmartDelegate, SmartTask: withOriginalRequest(task, lastUserMessage)})
		}
	}
	return out
}

func withOriginalRequest(task, lastUserMessage string) string {
	s := strings.TrimSpace(lastUserMessage)
	if s == "" {
		return task
	}
	firstLine := s
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		firstLine = s[:idx]
	}
	if len(firstLine) > smartDelegateUserCtxMax {
		firstLine = firstLine[:smartDelegateUserCtxMax]
	}
	firstLine = strings.TrimSpace(firstLine)
	if firstLine == "" {
		return task
	}
	return task + "\n\nOriginal user request: " + firstLine
}
