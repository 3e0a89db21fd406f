package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Schedule-type discriminant for NotificationEntry (spec §3
// "schedule_type ∈ {daily, once}").
const (
	ScheduleTypeDaily = "daily"
	ScheduleTypeOnce  = "once"
)

// TargetAll is the NotificationEntry.Target sentinel meaning "broadcast to
// every paired chat" (spec §3 "target: chat-id | \"all\"").
const TargetAll = "all"

// NotificationEntry is the separate, in-process-scheduler-only notification
// store (spec §3 "NotificationEntry"): unlike ReachSchedule, it targets one
// specific paired chat id (or "all") instead of a channel name, and daily
// entries carry a materialized NextRun rather than recomputing HH:MM
// against wall-clock time on every tick.
type NotificationEntry struct {
	ID           string `json:"id"`
	ScheduleType string `json:"schedule_type"`
	Message      string `json:"message"`
	Target       string `json:"target"`
	Enabled      bool   `json:"enabled"`
	Time         string `json:"time,omitempty"`
	OnceAt       string `json:"once_at,omitempty"`
	LastRun      string `json:"last_run,omitempty"`
	NextRun      string `json:"next_run,omitempty"`
	Timezone     string `json:"timezone,omitempty"`
}

// NewNotificationEntry validates and builds a NotificationEntry, assigning
// a fresh id. scheduleType selects which of timeHHMM/onceAtRFC3339 is
// required.
func NewNotificationEntry(scheduleType, timeHHMM, onceAtRFC3339, message, target, timezone string) (NotificationEntry, error) {
	scheduleType = strings.TrimSpace(scheduleType)
	message = strings.TrimSpace(message)
	if message == "" {
		return NotificationEntry{}, fmt.Errorf("message is required")
	}
	target = strings.TrimSpace(target)
	if target == "" {
		target = TargetAll
	}

	e := NotificationEntry{
		ID:       uuid.New().String(),
		Message:  message,
		Target:   target,
		Enabled:  true,
		Timezone: strings.TrimSpace(timezone),
	}

	switch scheduleType {
	case ScheduleTypeDaily:
		if _, _, ok := parseHHMM(timeHHMM); !ok {
			return NotificationEntry{}, fmt.Errorf("--schedule-time HH:MM is required for a daily entry")
		}
		e.ScheduleType = ScheduleTypeDaily
		e.Time = strings.TrimSpace(timeHHMM)
	case ScheduleTypeOnce:
		if _, ok := parseOnceAt(onceAtRFC3339); !ok {
			return NotificationEntry{}, fmt.Errorf("--schedule-once RFC3339 timestamp is required for a one-shot entry")
		}
		e.ScheduleType = ScheduleTypeOnce
		e.OnceAt = strings.TrimSpace(onceAtRFC3339)
	default:
		return NotificationEntry{}, fmt.Errorf("schedule_type must be %q or %q", ScheduleTypeDaily, ScheduleTypeOnce)
	}

	return e, nil
}

// materializeNextRun fills NextRun for a daily entry that doesn't have one
// yet (spec §3 invariant: "daily entries always materialize next_run on
// first observation"). Reports whether it changed e.
func (e *NotificationEntry) materializeNextRun(now time.Time) bool {
	if e.ScheduleType != ScheduleTypeDaily || e.NextRun != "" {
		return false
	}
	e.NextRun = nextDailyRun(now, e.Time, resolveTimezone(e.Timezone)).Format(time.RFC3339)
	return true
}

// advanceDaily records a firing and recomputes NextRun to the next
// occurrence of Time strictly after now (spec §4.8 step 4).
func (e *NotificationEntry) advanceDaily(now time.Time) {
	e.LastRun = now.UTC().Format(time.RFC3339)
	e.NextRun = nextDailyRun(now, e.Time, resolveTimezone(e.Timezone)).Format(time.RFC3339)
}

// nextDailyRun returns, in UTC, the next instant at which HH:MM occurs in
// loc, strictly after now.
func nextDailyRun(now time.Time, timeStr string, loc *time.Location) time.Time {
	h, m, ok := parseHHMM(timeStr)
	if !ok {
		return now.UTC()
	}
	nowInLoc := now.In(loc)
	next := time.Date(nowInLoc.Year(), nowInLoc.Month(), nowInLoc.Day(), h, m, 0, 0, loc)
	if !next.After(nowInLoc) {
		next = next.AddDate(0, 0, 1)
	}
	return next.UTC()
}
