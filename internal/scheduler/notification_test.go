package scheduler

import (
	"testing"
	"time"
)

func TestNewNotificationEntry_DailyDefaultsTargetToAll(t *testing.T) {
	e, err := NewNotificationEntry(ScheduleTypeDaily, "09:00", "", "good morning", "", "")
	if err != nil {
		t.Fatalf("NewNotificationEntry: %v", err)
	}
	if e.Target != TargetAll {
		t.Fatalf("expected default target %q, got %q", TargetAll, e.Target)
	}
	if e.NextRun != "" {
		t.Fatalf("expected NextRun to be empty until materialized, got %q", e.NextRun)
	}
}

func TestNewNotificationEntry_DailyRequiresTime(t *testing.T) {
	if _, err := NewNotificationEntry(ScheduleTypeDaily, "", "", "hi", "123", ""); err == nil {
		t.Fatal("expected an error when a daily entry has no --schedule-time")
	}
}

func TestNewNotificationEntry_OnceRequiresOnceAt(t *testing.T) {
	if _, err := NewNotificationEntry(ScheduleTypeOnce, "", "", "hi", "123", ""); err == nil {
		t.Fatal("expected an error when a one-shot entry has no --schedule-once")
	}
}

func TestNewNotificationEntry_RequiresMessage(t *testing.T) {
	if _, err := NewNotificationEntry(ScheduleTypeDaily, "09:00", "", "  ", "123", ""); err == nil {
		t.Fatal("expected an error for a blank message")
	}
}

func TestMaterializeNextRun_SetsOnceThenLeavesAlone(t *testing.T) {
	e, _ := NewNotificationEntry(ScheduleTypeDaily, "09:00", "", "hi", "123", "")
	now := time.Date(2026, 7, 30, 8, 0, 0, 0, time.UTC)

	if !e.materializeNextRun(now) {
		t.Fatal("expected first materialization to report a change")
	}
	first := e.NextRun
	if first == "" {
		t.Fatal("expected NextRun to be set")
	}

	if e.materializeNextRun(now.Add(time.Hour)) {
		t.Fatal("expected materialization to be a no-op once NextRun is set")
	}
	if e.NextRun != first {
		t.Fatalf("expected NextRun to stay %q, got %q", first, e.NextRun)
	}
}

func TestAdvanceDaily_RollsToNextDay(t *testing.T) {
	e, _ := NewNotificationEntry(ScheduleTypeDaily, "09:00", "", "hi", "123", "")
	now := time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC)
	e.materializeNextRun(now)

	e.advanceDaily(now)
	if e.LastRun == "" {
		t.Fatal("expected LastRun to be recorded")
	}
	next, ok := parseOnceAt(e.NextRun)
	if !ok {
		t.Fatalf("expected a parseable NextRun, got %q", e.NextRun)
	}
	if !next.After(now) {
		t.Fatalf("expected NextRun %s to be after %s", next, now)
	}
}

func TestDueNotifications_DailyComparesMaterializedNextRun(t *testing.T) {
	e, _ := NewNotificationEntry(ScheduleTypeDaily, "09:00", "", "hi", "123", "")
	now := time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC)

	// not yet materialized: never due, regardless of wall clock.
	if due := DueNotifications([]NotificationEntry{e}, now); len(due) != 0 {
		t.Fatalf("expected an unmaterialized daily entry to never be due, got %d", len(due))
	}

	e.materializeNextRun(now.Add(-time.Minute))
	if due := DueNotifications([]NotificationEntry{e}, now); len(due) != 1 {
		t.Fatalf("expected the entry to be due once now has reached NextRun, got %d", len(due))
	}
}

func TestDueNotifications_OnceAtAndDisabled(t *testing.T) {
	once, _ := NewNotificationEntry(ScheduleTypeOnce, "", "2026-07-30T12:00:00Z", "reminder", "all", "")
	now := time.Date(2026, 7, 30, 12, 0, 1, 0, time.UTC)
	if due := DueNotifications([]NotificationEntry{once}, now); len(due) != 1 {
		t.Fatalf("expected the one-shot entry to be due once once_at has passed, got %d", len(due))
	}

	disabled := once
	disabled.Enabled = false
	if due := DueNotifications([]NotificationEntry{disabled}, now); len(due) != 0 {
		t.Fatalf("expected a disabled entry to never fire, got %d", len(due))
	}
}
