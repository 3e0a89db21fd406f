// Package summarizer implements recursive history summarization: splitting
// history at its midpoint, summarizing the older half via the child agent,
// and replacing it with a single dense system-role summary entry (spec §4.2).
package summarizer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/childagent"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/history"
)

// defaultPrompt matches the original wrapper's summarization instruction
// (spec §4.2 "fixed prompt").
const defaultPrompt = "Please provide a comprehensive summary of the following conversation history. " +
	"Retain all key technical details, code snippets, decisions, and context. " +
	"The summary should be dense and information-rich to serve as context for future interactions. " +
	"Do not output anything else but the summary.\n\n"

// Summarizer spawns the child agent to summarize the older half of a
// session's history.
type Summarizer struct {
	Runner *childagent.Runner
	Flags  []string
}

// New creates a Summarizer bound to runner and the base CLI flags to forward
// to every invocation (model, agent-id, etc, minus history/session flags).
func New(runner *childagent.Runner, flags []string) *Summarizer {
	return &Summarizer{Runner: runner, Flags: flags}
}

// Summarize splits entries at the midpoint, summarizes the older half, and
// returns the newer half for the caller to prepend a new summary entry to
// via history.Store.ReplaceWithSummary. ok is false if entries is too short
// to split or the child agent invocation failed; in that case newer is the
// unmodified entries and the caller must leave history untouched (spec §4.2
// "On subprocess failure ... keep the original history unchanged").
func (s *Summarizer) Summarize(ctx context.Context, entries []history.Entry, force bool) (newer []history.Entry, summary string, ok bool) {
	if len(entries) < 2 {
		return entries, "", false
	}

	splitIdx := len(entries) / 2
	older := entries[:splitIdx]
	recent := entries[splitIdx:]

	var b strings.Builder
	for _, e := range older {
		role := "User"
		if e.Role == history.RoleAgent {
			role = "Agent"
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(e.Content)
		b.WriteString("\n\n")
	}

	prompt := defaultPrompt + b.String()

	// The child agent always runs non-interactively here; the force
	// argument is not used. Assemble calls Summarize only when the history
	// exceeds the budget (see contextassembler.Request.ForceSummarize).
	flags := childagent.EnsureForceFlag(s.Flags)

	res, err := s.Runner.Run(ctx, flags, prompt)
	if err != nil {
		slog.Warn("summarization subprocess failed", "error", err, "stderr", res.Stderr)
		return entries, "", false
	}

	summary = strings.TrimSpace(res.Stdout)
	if summary == "" {
		return entries, "", false
	}

	return recent, summary, true
}
