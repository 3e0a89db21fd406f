// Package smartdelegate implements Smart-Delegate: assess a task's
// complexity, pick the best available model for it, announce the choice,
// and run a sub-agent with clean context (task only, no conversation
// history), grounded on the original smart-delegate tool (spec §4.6).
package smartdelegate

// ModelTiers lists model ids per capability tier, most-preferred first
// within a tier. Order here is policy, not a live catalog — Discover
// filters it down to whatever the child-agent binary actually reports.
var ModelTiers = map[string][]string{
	"xhigh": {
		"opus-4.6-thinking",
		"gpt-5.3-codex-xhigh",
		"gpt-5.3-codex-xhigh-fast",
		"gpt-5.2-codex-xhigh",
		"gpt-5.1-codex-max-high",
		"gpt-5.1-codex-max",
		"opus-4.5-thinking",
	},
	"high": {
		"opus-4.6",
		"gpt-5.3-codex-high",
		"gpt-5.3-codex-high-fast",
		"gpt-5.2-codex-high",
		"gpt-5.2-high",
		"gpt-5.1-high",
		"opus-4.5",
	},
	"mid": {
		"sonnet-4.5-thinking",
		"gpt-5.3-codex",
		"gpt-5.2-codex",
		"gpt-5.2",
		"sonnet-4.5",
	},
	"low": {
		"gemini-3-pro",
		"gpt-5.3-codex-low",
		"gpt-5.2-codex-low",
		"grok",
	},
	"fast": {
		"gemini-3-flash",
		"gpt-5.3-codex-fast",
		"gpt-5.3-codex-low-fast",
		"gpt-5.2-codex-fast",
		"gpt-5.2-codex-low-fast",
	},
}

// TierOrder is every tier name, most to least capable.
var TierOrder = []string{"xhigh", "high", "mid", "low", "fast"}

// TierRank assigns a numeric rank to each tier; higher is more capable.
var TierRank = map[string]int{"xhigh": 5, "high": 4, "mid": 3, "low": 2, "fast": 1}

// modelToTier is the reverse lookup built once from ModelTiers.
var modelToTier = buildModelToTier()

func buildModelToTier() map[string]string {
	m := make(map[string]string)
	for tier, models := range ModelTiers {
		for _, id := range models {
			m[id] = tier
		}
	}
	return m
}

func tierOf(modelID string) (string, bool) {
	t, ok := modelToTier[modelID]
	return t, ok
}
