package contextassembler

import (
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/history"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/tokens"
)

// safetyReserve is the fixed safety margin subtracted from the budget before
// selection (spec §4.1 "safety(1000)").
const safetyReserve = 1000

// Select implements the core token-budgeted selection algorithm (spec §4.1
// "Selection algorithm") over a fixed history slice — no summarization or
// persistence side effects. Returns the rendered context block and whether
// selection had to drop the summary head to make room.
func Select(entries []history.Entry, systemPrompt, userPrompt string, budget int) (block string, droppedSummaryHead bool) {
	available := budget - tokens.Estimate(systemPrompt) - tokens.Estimate("User Current Request: "+userPrompt) - safetyReserve
	if available <= 0 {
		return "", history.IsSummaryHead(entries)
	}

	var head *history.Entry
	rest := entries
	if history.IsSummaryHead(entries) {
		h := entries[0]
		formatted := formatEntry(h)
		if tokens.Estimate(formatted) <= available {
			head = &h
			available -= tokens.Estimate(formatted)
			rest = entries[1:]
		} else {
			droppedSummaryHead = true
			rest = entries[1:]
		}
	}

	// Walk newest to oldest, accumulating until the next entry would overflow.
	var suffix []history.Entry
	for i := len(rest) - 1; i >= 0; i-- {
		formatted := formatEntry(rest[i])
		cost := tokens.Estimate(formatted)
		if cost > available {
			break
		}
		available -= cost
		suffix = append(suffix, rest[i])
	}
	// Reverse suffix back to chronological order.
	for l, r := 0, len(suffix)-1; l < r; l, r = l+1, r-1 {
		suffix[l], suffix[r] = suffix[r], suffix[l]
	}

	var final []history.Entry
	if head != nil {
		final = append(final, *head)
	}
	final = append(final, suffix...)

	return renderBlock(final), droppedSummaryHead
}

// SelectLastN implements the fixed message-count mode (spec §4.1 "Two modes"):
// take the last N entries directly (plus the summary head, if present and
// distinct from the window), with no token accounting. The caller is
// responsible for falling back to token-budgeted summarization when the
// rendered text exceeds the budget (see Assembler.Assemble).
func SelectLastN(entries []history.Entry, n int) []history.Entry {
	if n <= 0 || len(entries) <= n {
		return entries
	}

	if history.IsSummaryHead(entries) {
		rest := entries[1:]
		if len(rest) <= n {
			return entries
		}
		window := rest[len(rest)-n:]
		out := make([]history.Entry, 0, n+1)
		out = append(out, entries[0])
		out = append(out, window...)
		return out
	}

	return entries[len(entries)-n:]
}
