package scheduler

import (
	"time"

	"github.com/adhocore/gronx"
)

var cronEngine = gronx.New()

// isDueTime reports whether s's daily HH:MM matches nowInTZ's hour:minute.
func isDueTime(nowInTZ time.Time, timeStr string) bool {
	h, m, ok := parseHHMM(timeStr)
	if !ok {
		return false
	}
	return nowInTZ.Hour() == h && nowInTZ.Minute() == m
}

// isDueCron reports whether cronExpr is due at the current minute in
// nowInTZ, grounded on the gronx cron-matching engine (already a teacher
// dependency) in place of the original's croniter.
func isDueCron(nowInTZ time.Time, cronExpr string) bool {
	if !cronEngine.IsValid(cronExpr) {
		return false
	}
	minute := nowInTZ.Truncate(time.Minute)
	due, err := cronEngine.IsDue(cronExpr, minute)
	if err != nil {
		return false
	}
	return due
}

// DueNotifications returns the enabled notification entries due at now
// (UTC). Daily entries are compared against their materialized NextRun
// rather than recomputed from HH:MM on every tick (spec §4.8 step 2 "For
// notification entries, compare against the materialized next_run");
// callers must materializeNextRun on every entry before calling this so a
// freshly-added daily entry with no NextRun yet is never skipped forever.
func DueNotifications(entries []NotificationEntry, now time.Time) []NotificationEntry {
	nowUTC := now.UTC()
	var due []NotificationEntry
	for _, e := range entries {
		if !e.Enabled {
			continue
		}
		switch e.ScheduleType {
		case ScheduleTypeOnce:
			onceAt, ok := parseOnceAt(e.OnceAt)
			if ok && !nowUTC.Before(onceAt) {
				due = append(due, e)
			}
		case ScheduleTypeDaily:
			if e.NextRun == "" {
				continue
			}
			nextRun, ok := parseOnceAt(e.NextRun)
			if ok && !nowUTC.Before(nextRun) {
				due = append(due, e)
			}
		}
	}
	return due
}

// DueSchedules returns the enabled schedules that are due at now (UTC).
// One-shot (OnceAt) schedules use a ">=" comparison in UTC; daily/cron
// schedules are evaluated in their own timezone (default UTC).
func DueSchedules(schedules []Schedule, now time.Time) []Schedule {
	nowUTC := now.UTC()
	var due []Schedule
	for _, s := range schedules {
		if !s.Enabled {
			continue
		}
		switch {
		case s.OnceAt != "":
			onceAt, ok := parseOnceAt(s.OnceAt)
			if ok && !nowUTC.Before(onceAt) {
				due = append(due, s)
			}
		case s.Time != "":
			loc := resolveTimezone(s.Timezone)
			if isDueTime(nowUTC.In(loc), s.Time) {
				due = append(due, s)
			}
		case s.Cron != "":
			loc := resolveTimezone(s.Timezone)
			if isDueCron(nowUTC.In(loc), s.Cron) {
				due = append(due, s)
			}
		}
	}
	return due
}
