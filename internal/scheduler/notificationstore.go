package scheduler

import (
	"os"
	"path/filepath"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/storeutil"
)

// DefaultNotificationStorePath mirrors spec §6's
// "./.cursor-enhanced/scheduled-notifications.json", deliberately a
// separate file from the reach-schedule Store (spec §3 "separate store").
func DefaultNotificationStorePath(home string) string {
	return filepath.Join(home, ".cursor-enhanced", "scheduled-notifications.json")
}

type notificationFile struct {
	Entries []NotificationEntry `json:"entries"`
}

// NotificationStore is the durable NotificationEntry list, JSON-backed at
// Path.
type NotificationStore struct {
	Path string
}

// NewNotificationStore creates a NotificationStore at path.
func NewNotificationStore(path string) *NotificationStore {
	return &NotificationStore{Path: path}
}

// List returns every notification entry, enabled or not.
func (s *NotificationStore) List() ([]NotificationEntry, error) {
	var nf notificationFile
	storeutil.ReadJSONOrDefault(s.Path, &nf)
	return nf.Entries, nil
}

// Add appends entry and persists it.
func (s *NotificationStore) Add(entry NotificationEntry) error {
	var nf notificationFile
	storeutil.ReadJSONOrDefault(s.Path, &nf)
	nf.Entries = append(nf.Entries, entry)
	return s.save(nf)
}

// Remove deletes the entry with id, returning false if it was not found.
func (s *NotificationStore) Remove(id string) (bool, error) {
	var nf notificationFile
	storeutil.ReadJSONOrDefault(s.Path, &nf)

	kept := nf.Entries[:0]
	found := false
	for _, e := range nf.Entries {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return false, nil
	}
	nf.Entries = kept
	return true, s.save(nf)
}

// Replace overwrites the full entry list, used to persist materialized
// next_run/last_run changes after a due-check pass (spec §4.8 steps 2/4).
func (s *NotificationStore) Replace(entries []NotificationEntry) error {
	return s.save(notificationFile{Entries: entries})
}

func (s *NotificationStore) save(nf notificationFile) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	lock, err := storeutil.Acquire(s.Path)
	if err != nil {
		return err
	}
	defer lock.Release()
	return storeutil.WriteJSONAtomic(s.Path, nf)
}
