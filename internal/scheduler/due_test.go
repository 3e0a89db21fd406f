package scheduler

import (
	"testing"
	"time"
)

func TestDueSchedules_DailyTimeMatch(t *testing.T) {
	now := time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC)
	sched := Schedule{ID: "a", Time: "09:00", Message: "good morning", Channel: "telegram", Enabled: true}
	due := DueSchedules([]Schedule{sched}, now)
	if len(due) != 1 {
		t.Fatalf("expected the daily schedule to be due at 09:00, got %d", len(due))
	}
}

func TestDueSchedules_DailyTimeNoMatch(t *testing.T) {
	now := time.Date(2026, 7, 30, 9, 1, 0, 0, time.UTC)
	sched := Schedule{ID: "a", Time: "09:00", Message: "good morning", Channel: "telegram", Enabled: true}
	due := DueSchedules([]Schedule{sched}, now)
	if len(due) != 0 {
		t.Fatalf("expected no match one minute past 09:00, got %d", len(due))
	}
}

func TestDueSchedules_OnceAtFiresOnceReached(t *testing.T) {
	sched := Schedule{ID: "a", OnceAt: "2026-07-30T12:00:00Z", Message: "reminder", Channel: "telegram", Enabled: true}

	before := time.Date(2026, 7, 30, 11, 59, 0, 0, time.UTC)
	if due := DueSchedules([]Schedule{sched}, before); len(due) != 0 {
		t.Fatalf("expected not due before once_at, got %d", len(due))
	}

	after := time.Date(2026, 7, 30, 12, 0, 30, 0, time.UTC)
	if due := DueSchedules([]Schedule{sched}, after); len(due) != 1 {
		t.Fatalf("expected due once once_at has passed, got %d", len(due))
	}
}

func TestDueSchedules_DisabledNeverFires(t *testing.T) {
	now := time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC)
	sched := Schedule{ID: "a", Time: "09:00", Message: "x", Channel: "telegram", Enabled: false}
	if due := DueSchedules([]Schedule{sched}, now); len(due) != 0 {
		t.Fatalf("expected disabled schedule to never fire, got %d", len(due))
	}
}

func TestDueSchedules_CronMatch(t *testing.T) {
	now := time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC)
	sched := Schedule{ID: "a", Cron: "0 9 * * *", Message: "x", Channel: "telegram", Enabled: true}
	due := DueSchedules([]Schedule{sched}, now)
	if len(due) != 1 {
		t.Fatalf("expected cron '0 9 * * *' due at 09:00, got %d", len(due))
	}
}
