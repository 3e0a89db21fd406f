package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MemoryEntry is one search hit against the durable memory files.
type MemoryEntry struct {
	Path      string
	StartLine int
	EndLine   int
	Snippet   string
}

// MemoryTool searches MEMORY.md and the daily memory/*.md files the
// memoryflush package writes, returning line-anchored snippets (spec §4.4
// "memory_search").
type MemoryTool struct {
	WorkspaceDir string
	ContextLines int
}

// NewMemoryTool creates a MemoryTool rooted at workspaceDir.
func NewMemoryTool(workspaceDir string) *MemoryTool {
	return &MemoryTool{WorkspaceDir: workspaceDir, ContextLines: 1}
}

func (t *MemoryTool) Name() string { return "memory_search" }

func (t *MemoryTool) Execute(ctx context.Context, params map[string]any) *Result {
	query, _ := params["query"].(string)
	if query == "" {
		return ErrorResult(fmt.Errorf("query is required"))
	}

	var entries []MemoryEntry
	for _, path := range t.candidateFiles() {
		entries = append(entries, searchFile(path, query, t.ContextLines)...)
	}

	if len(entries) == 0 {
		return NewResult("No results found.")
	}

	var b strings.Builder
	limit := len(entries)
	if limit > 3 {
		limit = 3
	}
	for _, e := range entries[:limit] {
		fmt.Fprintf(&b, "- %s#L%d-L%d: %s\n", e.Path, e.StartLine, e.EndLine, e.Snippet)
	}
	return NewResult(strings.TrimRight(b.String(), "\n"))
}

func (t *MemoryTool) candidateFiles() []string {
	var out []string
	mainFile := filepath.Join(t.WorkspaceDir, "MEMORY.md")
	if _, err := os.Stat(mainFile); err == nil {
		out = append(out, mainFile)
	}
	dailyDir := filepath.Join(t.WorkspaceDir, "memory")
	matches, _ := filepath.Glob(filepath.Join(dailyDir, "*.md"))
	out = append(out, matches...)
	return out
}

func searchFile(path, query string, contextLines int) []MemoryEntry {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	lines := strings.Split(string(data), "\n")
	needle := strings.ToLower(query)

	var entries []MemoryEntry
	for i, line := range lines {
		if !strings.Contains(strings.ToLower(line), needle) {
			continue
		}
		start := i - contextLines
		if start < 0 {
			start = 0
		}
		end := i + contextLines
		if end >= len(lines) {
			end = len(lines) - 1
		}
		entries = append(entries, MemoryEntry{
			Path:      path,
			StartLine: start + 1,
			EndLine:   end + 1,
			Snippet:   strings.Join(lines[start:end+1], " "),
		})
	}
	return entries
}
