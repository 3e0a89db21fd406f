package scheduler

import (
	"path/filepath"
	"testing"
)

func TestStore_AddListRemove(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "reach-schedules.json"))

	sched, err := NewSchedule("09:00", "", "", "good morning", "telegram", "")
	if err != nil {
		t.Fatalf("NewSchedule: %v", err)
	}
	if err := store.Add(sched); err != nil {
		t.Fatalf("Add: %v", err)
	}

	list, err := store.List()
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one schedule, got %d (err %v)", len(list), err)
	}

	removed, err := store.Remove(sched.ID)
	if err != nil || !removed {
		t.Fatalf("expected removal to succeed, got removed=%v err=%v", removed, err)
	}

	list, _ = store.List()
	if len(list) != 0 {
		t.Fatalf("expected no schedules after removal, got %d", len(list))
	}
}

func TestStore_RemoveUnknownReturnsFalse(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "reach-schedules.json"))
	removed, err := store.Remove("does-not-exist")
	if err != nil || removed {
		t.Fatalf("expected removal of unknown id to be a no-op, got removed=%v err=%v", removed, err)
	}
}

func TestNewSchedule_RequiresOneOfTimeCronOnceAt(t *testing.T) {
	if _, err := NewSchedule("", "", "", "hi", "telegram", ""); err == nil {
		t.Fatal("expected an error when none of time/cron/once_at is set")
	}
}

func TestNewSchedule_RequiresMessage(t *testing.T) {
	if _, err := NewSchedule("09:00", "", "", "  ", "telegram", ""); err == nil {
		t.Fatal("expected an error for a blank message")
	}
}
