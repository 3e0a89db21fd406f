// Package scheduler implements "reach" schedules: one-shot or recurring
// notifications that fire at a configured time and are delivered to a
// channel (Telegram by default), grounded on the original reach-schedules
// module (spec §4.8 "Scheduler Core").
package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Schedule is one reach-at-time entry. Exactly one of Time, Cron, or
// OnceAt should be set — Time is an HH:MM daily fire, Cron is a 5-field
// cron expression, OnceAt is an RFC3339 one-shot.
type Schedule struct {
	ID       string `json:"id"`
	Time     string `json:"time,omitempty"`
	Cron     string `json:"cron,omitempty"`
	OnceAt   string `json:"once_at,omitempty"`
	Message  string `json:"message"`
	Channel  string `json:"channel"`
	Timezone string `json:"timezone,omitempty"`
	Enabled  bool   `json:"enabled"`
}

// NewSchedule validates and builds a Schedule, assigning a fresh id.
// Exactly one of timeHHMM/cronExpr/onceAtRFC3339 must be non-empty.
func NewSchedule(timeHHMM, cronExpr, onceAtRFC3339, message, channel, timezone string) (Schedule, error) {
	if timeHHMM == "" && cronExpr == "" && onceAtRFC3339 == "" {
		return Schedule{}, fmt.Errorf("one of time (HH:MM), cron, or once_at is required")
	}
	set := 0
	for _, v := range []string{timeHHMM, cronExpr, onceAtRFC3339} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return Schedule{}, fmt.Errorf("only one of time (HH:MM), cron, or once_at may be set")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return Schedule{}, fmt.Errorf("message is required")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = "telegram"
	}

	s := Schedule{
		ID:       uuid.New().String(),
		Time:     strings.TrimSpace(timeHHMM),
		Cron:     strings.TrimSpace(cronExpr),
		OnceAt:   strings.TrimSpace(onceAtRFC3339),
		Message:  message,
		Channel:  channel,
		Timezone: strings.TrimSpace(timezone),
		Enabled:  true,
	}
	return s, nil
}

// parseHHMM returns (hour, minute, ok).
func parseHHMM(hhmm string) (int, int, bool) {
	hhmm = strings.TrimSpace(hhmm)
	if hhmm == "" {
		return 0, 0, false
	}
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

func resolveTimezone(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// parseOnceAt parses an RFC3339 timestamp and returns it in UTC. Matches
// the original's acceptance of both a trailing "Z" and an explicit offset.
func parseOnceAt(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
		if err != nil {
			return time.Time{}, false
		}
	}
	return t.UTC(), true
}
