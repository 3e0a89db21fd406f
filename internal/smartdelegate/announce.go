package smartdelegate

import (
	"fmt"
	"strings"
)

var tierEmoji = map[string]string{
	"xhigh": "🧠",
	"high":  "💪",
	"mid":   "⚡",
	"low":   "✅",
	"fast":  "⚡",
}

var tierLabel = map[string]string{
	"xhigh": "Maximum Reasoning",
	"high":  "High Capability",
	"mid":   "Standard",
	"low":   "Light",
	"fast":  "Fast",
}

// FormatAnnouncement builds the user-facing explanation of a delegation
// choice, shown before the clean-context sub-agent runs (spec §4.6).
func FormatAnnouncement(complexity ComplexityAssessment, choice ModelChoice) string {
	emoji, ok := tierEmoji[choice.Tier]
	if !ok {
		emoji = "🤖"
	}
	label, ok := tierLabel[choice.Tier]
	if !ok {
		label = choice.Tier
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("%s **Delegating to %s** [%s]", emoji, choice.ModelName, label), "")

	switch {
	case complexity.Score >= 0.55:
		qualifier := ""
		if complexity.Score >= 0.75 {
			qualifier = "very "
		}
		lines = append(lines, fmt.Sprintf("Task complexity: %shigh (score %.0f%%)", qualifier, complexity.Score*100))
	case complexity.Score >= 0.35:
		lines = append(lines, fmt.Sprintf("Task complexity: moderate (score %.0f%%)", complexity.Score*100))
	default:
		lines = append(lines, fmt.Sprintf("Task complexity: low (score %.0f%%)", complexity.Score*100))
	}

	if len(complexity.SignalMatches) > 0 {
		lines = append(lines, "Signals: "+joinUpTo(complexity.SignalMatches, 4))
	}

	lines = append(lines, fmt.Sprintf("Model: %s", choice.ModelID), "")
	lines = append(lines, "Sending clean context to the delegate agent...")

	return strings.Join(lines, "\n")
}
