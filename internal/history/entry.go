// Package history implements the per-session append-only history store and
// its metadata sidecar (spec §3 "HistoryEntry"/"HistoryMeta"/"Session").
package history

// Role is the speaker of a HistoryEntry.
type Role string

const (
	RoleUser   Role = "user"
	RoleAgent  Role = "agent"
	RoleSystem Role = "system" // summary head; always at position 0 when present
)

// Entry is one record in a session's history (spec §3 HistoryEntry).
type Entry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// IsSummaryHead reports whether entries[0] is the system-role summary head.
func IsSummaryHead(entries []Entry) bool {
	return len(entries) > 0 && entries[0].Role == RoleSystem
}

// Meta is the sidecar metadata file tracked alongside a session's history
// (spec §3 HistoryMeta). Invariant: MemoryFlushCompactionCount <=
// CompactionCount + 1, enforced by Store.SetMemoryFlushDone.
type Meta struct {
	CompactionCount            int   `json:"compaction_count"`
	MemoryFlushCompactionCount int   `json:"memory_flush_compaction_count"`
	MemoryFlushAtMs            int64 `json:"memory_flush_at_ms"`
}
