// Package contextassembler implements token-budgeted history selection with
// pre-compaction memory flush and recursive summarization (spec §4.1).
package contextassembler

import (
	"strings"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/history"
)

const (
	blockHeader = "=== Conversation History ===\n\n"
	blockFooter = "\n=== End Conversation History ==="
)

// roleLabel maps a history.Role to its rendered label (spec §4.1 "Formatted form").
func roleLabel(r history.Role) string {
	switch r {
	case history.RoleUser:
		return "User"
	case history.RoleAgent:
		return "Agent"
	case history.RoleSystem:
		return "SYSTEM SUMMARY"
	default:
		return string(r)
	}
}

// formatEntry renders one entry as `role_label ": " content "\n\n"`.
func formatEntry(e history.Entry) string {
	return roleLabel(e.Role) + ": " + e.Content + "\n\n"
}

// renderBlock concatenates formatted entries and wraps them with the
// header/footer delimiters.
func renderBlock(entries []history.Entry) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(blockHeader)
	for _, e := range entries {
		b.WriteString(formatEntry(e))
	}
	b.WriteString(blockFooter)
	return b.String()
}
