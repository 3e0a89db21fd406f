package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/storeutil"
)

// cacheTTL bounds how long an in-memory session snapshot is trusted before
// the store re-checks the backing file's mtime (spec §5 "TTL-bounded (45s)").
const cacheTTL = 45 * time.Second

type cacheEntry struct {
	entries  []Entry
	meta     Meta
	mtime    time.Time
	cachedAt time.Time
}

// Store is the durable per-session history + metadata store. Each session's
// history lives at "<home>/cursor-enhanced-history[-<session>].json" and its
// metadata sidecar at "<home>/.cursor-enhanced/history-meta[-<session>].json"
// (spec §6 "Persisted state layout").
type Store struct {
	home string

	mu    sync.Mutex
	cache map[string]*cacheEntry
}

// NewStore creates a Store rooted at home (typically the user home directory).
func NewStore(home string) *Store {
	return &Store{home: home, cache: make(map[string]*cacheEntry)}
}

func (s *Store) historyPath(session string) string {
	session = SanitizeSession(session)
	if session == DefaultSession {
		return filepath.Join(s.home, "cursor-enhanced-history.json")
	}
	return filepath.Join(s.home, fmt.Sprintf("cursor-enhanced-history-%s.json", session))
}

func (s *Store) metaPath(session string) string {
	session = SanitizeSession(session)
	dir := filepath.Join(s.home, ".cursor-enhanced")
	if session == DefaultSession {
		return filepath.Join(dir, "history-meta.json")
	}
	return filepath.Join(dir, fmt.Sprintf("history-meta-%s.json", session))
}

// historyFile is the on-disk shape of the history JSON file.
type historyFile struct {
	Entries []Entry `json:"entries"`
}

// Load returns the current entries and metadata for session, using the
// in-memory cache when it is within its TTL and the backing file's mtime
// has not changed since the cache was populated.
func (s *Store) Load(session string) ([]Entry, Meta, error) {
	session = SanitizeSession(session)
	hpath := s.historyPath(session)

	s.mu.Lock()
	if ce, ok := s.cache[session]; ok {
		if time.Since(ce.cachedAt) < cacheTTL {
			if fi, err := os.Stat(hpath); err == nil && fi.ModTime().Equal(ce.mtime) {
				entries := append([]Entry(nil), ce.entries...)
				meta := ce.meta
				s.mu.Unlock()
				return entries, meta, nil
			}
		}
	}
	s.mu.Unlock()

	var hf historyFile
	storeutil.ReadJSONOrDefault(hpath, &hf)

	var meta Meta
	storeutil.ReadJSONOrDefault(s.metaPath(session), &meta)

	mtime := time.Time{}
	if fi, err := os.Stat(hpath); err == nil {
		mtime = fi.ModTime()
	}

	s.mu.Lock()
	s.cache[session] = &cacheEntry{
		entries:  append([]Entry(nil), hf.Entries...),
		meta:     meta,
		mtime:    mtime,
		cachedAt: time.Now(),
	}
	s.mu.Unlock()

	return hf.Entries, meta, nil
}

// Save persists entries and meta for session, atomically, under the
// advisory store lock, and invalidates the in-memory cache.
func (s *Store) Save(session string, entries []Entry, meta Meta) error {
	session = SanitizeSession(session)
	hpath := s.historyPath(session)

	lock, err := storeutil.Acquire(hpath)
	if err != nil {
		return err
	}
	defer lock.Release()

	if err := storeutil.WriteJSONAtomic(hpath, historyFile{Entries: entries}); err != nil {
		return err
	}
	if err := storeutil.WriteJSONAtomic(s.metaPath(session), meta); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.cache, session)
	s.mu.Unlock()
	return nil
}

// Append loads, appends one entry, and saves. Callers needing to append
// multiple entries should build the slice and call Save directly to avoid
// redundant load/save cycles.
func (s *Store) Append(session string, e Entry) error {
	entries, meta, err := s.Load(session)
	if err != nil {
		return err
	}
	entries = append(entries, e)
	return s.Save(session, entries, meta)
}

// Clear removes all history for session but keeps its metadata sidecar
// (used by --clear-history).
func (s *Store) Clear(session string) error {
	_, meta, err := s.Load(session)
	if err != nil {
		return err
	}
	return s.Save(session, nil, meta)
}

// ReplaceWithSummary saves the session's history as a single system-role
// "Previous conversation summary: " entry followed by newHistory, used by
// the Summarizer (spec §4.2). Increments CompactionCount.
func (s *Store) ReplaceWithSummary(session string, newHistory []Entry, summaryContent string) error {
	_, meta, err := s.Load(session)
	if err != nil {
		return err
	}
	merged := make([]Entry, 0, len(newHistory)+1)
	merged = append(merged, Entry{Role: RoleSystem, Content: "Previous conversation summary: " + summaryContent})
	merged = append(merged, newHistory...)
	meta.CompactionCount++
	return s.Save(session, merged, meta)
}

// SetMemoryFlushDone records that memory flush ran for the current
// compaction cycle (spec §4.1 "Triggering memory flush").
func (s *Store) SetMemoryFlushDone(session string, nowMs int64) error {
	entries, meta, err := s.Load(session)
	if err != nil {
		return err
	}
	meta.MemoryFlushCompactionCount = meta.CompactionCount + 1
	meta.MemoryFlushAtMs = nowMs
	return s.Save(session, entries, meta)
}
