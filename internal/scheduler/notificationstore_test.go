package scheduler

import (
	"path/filepath"
	"testing"
)

func TestNotificationStore_AddListRemove(t *testing.T) {
	store := NewNotificationStore(filepath.Join(t.TempDir(), "scheduled-notifications.json"))

	entry, err := NewNotificationEntry(ScheduleTypeDaily, "09:00", "", "good morning", "123", "")
	if err != nil {
		t.Fatalf("NewNotificationEntry: %v", err)
	}
	if err := store.Add(entry); err != nil {
		t.Fatalf("Add: %v", err)
	}

	list, err := store.List()
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one entry, got %d (err %v)", len(list), err)
	}
	if list[0].Target != "123" {
		t.Fatalf("expected target %q, got %q", "123", list[0].Target)
	}

	removed, err := store.Remove(entry.ID)
	if err != nil || !removed {
		t.Fatalf("expected removal to succeed, got removed=%v err=%v", removed, err)
	}

	list, _ = store.List()
	if len(list) != 0 {
		t.Fatalf("expected no entries after removal, got %d", len(list))
	}
}

func TestNotificationStore_RemoveUnknownReturnsFalse(t *testing.T) {
	store := NewNotificationStore(filepath.Join(t.TempDir(), "scheduled-notifications.json"))
	removed, err := store.Remove("does-not-exist")
	if err != nil || removed {
		t.Fatalf("expected removal of unknown id to be a no-op, got removed=%v err=%v", removed, err)
	}
}

func TestNotificationStore_ReplacePersists(t *testing.T) {
	store := NewNotificationStore(filepath.Join(t.TempDir(), "scheduled-notifications.json"))
	a, _ := NewNotificationEntry(ScheduleTypeOnce, "", "2026-08-01T00:00:00Z", "a", "all", "")
	b, _ := NewNotificationEntry(ScheduleTypeOnce, "", "2026-08-02T00:00:00Z", "b", "all", "")
	if err := store.Add(a); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Add(b); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := store.Replace([]NotificationEntry{b}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	list, err := store.List()
	if err != nil || len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("expected Replace to leave only entry b, got %+v (err %v)", list, err)
	}
}

func TestNotificationStore_IsolatedFromReachScheduleStore(t *testing.T) {
	dir := t.TempDir()
	reach := NewStore(filepath.Join(dir, "reach-schedules.json"))
	notifications := NewNotificationStore(filepath.Join(dir, "scheduled-notifications.json"))

	sched, _ := NewSchedule("09:00", "", "", "good morning", "telegram", "")
	if err := reach.Add(sched); err != nil {
		t.Fatalf("reach Add: %v", err)
	}

	list, err := notifications.List()
	if err != nil || len(list) != 0 {
		t.Fatalf("expected the notification store to stay empty when only the reach store is written, got %d (err %v)", len(list), err)
	}
}
