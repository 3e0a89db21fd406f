package scheduler

import (
	"os"
	"path/filepath"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/storeutil"
)

// DefaultStorePath mirrors the original tool's schedule file location,
// rooted under the caller-supplied home directory.
func DefaultStorePath(home string) string {
	return filepath.Join(home, ".cursor-enhanced", "reach-schedules.json")
}

type scheduleFile struct {
	Schedules []Schedule `json:"schedules"`
}

// Store is the durable reach-schedule list, JSON-backed at Path.
type Store struct {
	Path string
}

// NewStore creates a Store at path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// List returns every schedule, enabled or not.
func (s *Store) List() ([]Schedule, error) {
	var sf scheduleFile
	storeutil.ReadJSONOrDefault(s.Path, &sf)
	return sf.Schedules, nil
}

// Add appends sched and persists it.
func (s *Store) Add(sched Schedule) error {
	var sf scheduleFile
	storeutil.ReadJSONOrDefault(s.Path, &sf)
	sf.Schedules = append(sf.Schedules, sched)
	return s.save(sf)
}

// Remove deletes the schedule with id, returning false if it was not found.
func (s *Store) Remove(id string) (bool, error) {
	var sf scheduleFile
	storeutil.ReadJSONOrDefault(s.Path, &sf)

	kept := sf.Schedules[:0]
	found := false
	for _, sched := range sf.Schedules {
		if sched.ID == id {
			found = true
			continue
		}
		kept = append(kept, sched)
	}
	if !found {
		return false, nil
	}
	sf.Schedules = kept
	return true, s.save(sf)
}

func (s *Store) save(sf scheduleFile) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	lock, err := storeutil.Acquire(s.Path)
	if err != nil {
		return err
	}
	defer lock.Release()
	return storeutil.WriteJSONAtomic(s.Path, sf)
}
