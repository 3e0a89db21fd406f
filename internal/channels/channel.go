// Package channels holds shared transport-adapter scaffolding (allowlist
// checks, running-state bookkeeping) for the chat front-end's transport
// layer (spec §4.9 "Chat Front-End"), adapted from the teacher's
// multi-channel gateway down to what a single Telegram transport needs.
package channels

import "strings"

// Channel defines the interface a transport adapter must satisfy.
type Channel interface {
	Name() string
	Start() error
	Stop() error
	IsRunning() bool
	IsAllowed(senderID string) bool
}

// BaseChannel provides shared allowlist/running-state bookkeeping for
// transport adapters. The Telegram adapter keeps its own allowlist and
// running state and does not embed it.
type BaseChannel struct {
	name      string
	running   bool
	allowList []string
}

// NewBaseChannel creates a BaseChannel. An empty allowList means every
// sender is allowed, matching the "open" policy.
func NewBaseChannel(name string, allowList []string) *BaseChannel {
	return &BaseChannel{name: name, allowList: allowList}
}

// Name returns the channel name.
func (c *BaseChannel) Name() string { return c.name }

// IsRunning returns whether the channel is running.
func (c *BaseChannel) IsRunning() bool { return c.running }

// SetRunning updates the running state.
func (c *BaseChannel) SetRunning(running bool) { c.running = running }

// HasAllowList reports whether an allowlist is configured.
func (c *BaseChannel) HasAllowList() bool { return len(c.allowList) > 0 }

// IsAllowed checks if a sender is permitted by the allowlist. Supports the
// compound "id|username" senderID form. An empty allowlist allows everyone.
func (c *BaseChannel) IsAllowed(senderID string) bool {
	if len(c.allowList) == 0 {
		return true
	}

	idPart := senderID
	userPart := ""
	if idx := strings.Index(senderID, "|"); idx > 0 {
		idPart = senderID[:idx]
		userPart = senderID[idx+1:]
	}

	for _, allowed := range c.allowList {
		trimmed := strings.TrimPrefix(allowed, "@")
		allowedID := trimmed
		allowedUser := ""
		if idx := strings.Index(trimmed, "|"); idx > 0 {
			allowedID = trimmed[:idx]
			allowedUser = trimmed[idx+1:]
		}

		if senderID == allowed ||
			idPart == allowed ||
			senderID == trimmed ||
			idPart == trimmed ||
			idPart == allowedID ||
			(allowedUser != "" && senderID == allowedUser) ||
			(userPart != "" && (userPart == allowed || userPart == trimmed || userPart == allowedUser)) {
			return true
		}
	}

	return false
}

// Truncate shortens a string to maxLen, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
