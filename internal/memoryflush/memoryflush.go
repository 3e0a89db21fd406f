// Package memoryflush implements the pre-compaction memory flush: before
// the older half of history is discarded by summarization, ask the child
// agent whether anything in it is worth remembering, and append that to
// durable memory files. Best-effort and advisory only — a failure here
// must never block or fail the surrounding request (spec §4.3).
package memoryflush

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/childagent"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/history"
)

// NoReplySentinel is returned by the child agent when nothing in the
// reviewed history is worth storing (spec §4.3).
const NoReplySentinel = "NO_REPLY"

const (
	defaultSystemPrompt = "You are a memory curation assistant. Review the conversation history below and decide " +
		"what, if anything, is worth remembering for future sessions. " +
		"If no user-visible reply is needed, start with " + NoReplySentinel + "."
	defaultPrompt = "Extract any durable facts, preferences, or follow-ups worth remembering from this conversation. " +
		"If no user-visible reply is needed, start with " + NoReplySentinel + "."
)

// payload is the {"memory": "...", "daily": "..."} shape the child agent
// returns when it has something to store (spec §4.3).
type payload struct {
	Memory string `json:"memory"`
	Daily  string `json:"daily"`
}

// Flusher spawns the child agent to review history and append durable
// memory content to disk.
type Flusher struct {
	Runner *childagent.Runner
	Flags  []string

	// WorkspaceDir is the root under which MEMORY.md and memory/<date>.md
	// live (spec §6 "~/.cursor-enhanced/workspace").
	WorkspaceDir string

	// SystemPrompt and Prompt override the defaults if non-empty.
	SystemPrompt string
	Prompt       string
}

// New creates a Flusher bound to runner, rooted at workspaceDir.
func New(runner *childagent.Runner, flags []string, workspaceDir string) *Flusher {
	return &Flusher{Runner: runner, Flags: flags, WorkspaceDir: workspaceDir}
}

// Flush reviews the older half of entries (the half about to be summarized
// away) and appends any durable content it surfaces to the memory files.
// Errors are returned for logging but must always be treated as advisory by
// callers (spec §4.3 "never raise").
func (f *Flusher) Flush(ctx context.Context, entries []history.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	splitIdx := len(entries) / 2
	if splitIdx < 1 {
		splitIdx = 1
	}
	reviewed := entries[:splitIdx]

	var b strings.Builder
	for _, e := range reviewed {
		role := "User"
		switch e.Role {
		case history.RoleAgent:
			role = "Agent"
		case history.RoleSystem:
			role = "SYSTEM SUMMARY"
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(e.Content)
		b.WriteString("\n\n")
	}

	systemPrompt := f.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	prompt := f.Prompt
	if prompt == "" {
		prompt = defaultPrompt
	}

	flushPrompt := fmt.Sprintf(
		"%s\n\n%s\n\nReturn ONLY one of the following:\n- %s\n- A single JSON object with keys \"memory\" and \"daily\" containing markdown.\nIf a key has no content, use an empty string.\n\nConversation history (roles preserved):\n%s",
		systemPrompt, prompt, NoReplySentinel, b.String(),
	)

	flags := childagent.EnsureForceFlag(f.Flags)
	res, err := f.Runner.Run(ctx, flags, flushPrompt)
	if err != nil {
		return fmt.Errorf("memory flush subprocess: %w", err)
	}

	output := strings.TrimSpace(res.Stdout)
	if output == "" {
		return nil
	}
	for _, word := range strings.Fields(output) {
		if word == NoReplySentinel {
			return nil
		}
	}

	p, ok := parsePayload(output)
	if !ok {
		slog.Warn("memory flush output was not valid JSON; skipping write")
		return nil
	}

	if mem := strings.TrimSpace(p.Memory); mem != "" {
		if err := f.appendMemory(filepath.Join(f.WorkspaceDir, "MEMORY.md"), mem); err != nil {
			return err
		}
	}
	if daily := strings.TrimSpace(p.Daily); daily != "" {
		dailyFile := filepath.Join(f.WorkspaceDir, "memory", time.Now().Format("2006-01-02")+".md")
		if err := f.appendMemory(dailyFile, daily); err != nil {
			return err
		}
	}
	return nil
}

func parsePayload(output string) (payload, bool) {
	var p payload
	if err := json.Unmarshal([]byte(output), &p); err == nil {
		return p, true
	}
	start := strings.Index(output, "{")
	end := strings.LastIndex(output, "}")
	if start == -1 || end == -1 || end <= start {
		return payload{}, false
	}
	if err := json.Unmarshal([]byte(output[start:end+1]), &p); err != nil {
		return payload{}, false
	}
	return p, true
}

// appendMemory appends content to path, separated from any existing content
// by a blank line (spec §4.3 "append ... never overwrite").
func (f *Flusher) appendMemory(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	needsSpacing := false
	if fi, err := os.Stat(path); err == nil && fi.Size() > 0 {
		needsSpacing = true
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	if needsSpacing {
		if _, err := file.WriteString("\n\n"); err != nil {
			return err
		}
	}
	if _, err := file.WriteString(content + "\n"); err != nil {
		return err
	}
	return nil
}
