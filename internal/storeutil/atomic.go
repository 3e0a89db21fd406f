package storeutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteJSONAtomic marshals v and writes it to path using write-temp-then-rename
// with fsync, so a crash between write and rename never leaves a partial file
// (spec §5 "Atomic disk writes"). The lock sibling file is NOT managed here —
// callers that need cross-process mutual exclusion should wrap the call with
// Acquire/Release.
func WriteJSONAtomic(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	// Pattern is "<path>.<pid>.<random>.tmp" (spec §5), the pid component
	// making the temp file identifiable during cross-process lock diagnosis.
	tmp, err := os.CreateTemp(dir, fmt.Sprintf("%s.%d.*.tmp", filepath.Base(path), os.Getpid()))
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}
	cleanup = false
	return nil
}

// ReadJSON loads and unmarshals path into v. A missing file is not an error:
// the caller receives os.ErrNotExist and should treat it as "empty store"
// (spec §7 "Store-corruption ... treated as empty").
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// ReadJSONOrDefault loads path into v, leaving v untouched (its zero value)
// on a missing file or a decode error — per spec §7, JSON decode errors on
// load are treated as empty, never propagated.
func ReadJSONOrDefault(path string, v any) {
	_ = ReadJSON(path, v)
}
