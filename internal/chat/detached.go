package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/storeutil"
)

// previewLen bounds how much of stdout/stderr a detached report keeps
// inline, matching the original's truncated report preview.
const previewLen = 2000

// DetachedReport is the outcome of a "detached:"-prefixed background run
// (spec §4.9 "Detached runs"), one JSON file per run under a reports dir.
type DetachedReport struct {
	RunID         string `json:"run_id"`
	Task          string `json:"task"`
	ChatID        string `json:"chat_id"`
	Success       bool   `json:"success"`
	ExitCode      int    `json:"exit_code"`
	CompletedAt   int64  `json:"completed_at"`
	StdoutPreview string `json:"stdout_preview"`
	StderrPreview string `json:"stderr_preview"`
}

// DefaultDetachedReportsDir mirrors the original tool's DETACHED_REPORTS_DIR.
func DefaultDetachedReportsDir(home string) string {
	return filepath.Join(home, ".cursor-enhanced", "detached-reports")
}

// DetachedReportStore persists one JSON file per detached run under Dir.
type DetachedReportStore struct {
	Dir string
	mu  sync.Mutex
}

// NewDetachedReportStore creates a DetachedReportStore rooted at dir.
func NewDetachedReportStore(dir string) *DetachedReportStore {
	return &DetachedReportStore{Dir: dir}
}

// NewRunID allocates a fresh run id for a detached launch.
func NewRunID() string {
	return uuid.NewString()
}

// truncate cuts s to at most n bytes and appends "\n...[truncated]" when
// anything was cut, without splitting a normalization segment (so a base
// rune is never separated from its combining marks),
// walking segment boundaries with norm.Iter rather than a raw byte slice.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	var iter norm.Iter
	iter.InitString(norm.NFC, s)
	cut := 0
	for !iter.Done() {
		seg := iter.Next()
		if cut+len(seg) > n {
			break
		}
		cut += len(seg)
	}
	return s[:cut] + "\n...[truncated]"
}

func (d *DetachedReportStore) path(runID string) string {
	return filepath.Join(d.Dir, runID+".json")
}

// Save writes the report for a completed detached run.
func (d *DetachedReportStore) Save(report DetachedReport) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	report.StdoutPreview = truncate(report.StdoutPreview, previewLen)
	report.StderrPreview = truncate(report.StderrPreview, previewLen)

	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return err
	}
	path := d.path(report.RunID)
	lock, err := storeutil.Acquire(path)
	if err != nil {
		return err
	}
	defer lock.Release()
	return storeutil.WriteJSONAtomic(path, report)
}

// Get reads back a single detached run's report, if it has completed.
func (d *DetachedReportStore) Get(runID string) (DetachedReport, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var report DetachedReport
	path := d.path(runID)
	data, err := os.ReadFile(path)
	if err != nil {
		return DetachedReport{}, false
	}
	if err := json.Unmarshal(data, &report); err != nil {
		return DetachedReport{}, false
	}
	return report, true
}

// List returns every completed detached report for chatID (or all, when
// chatID is empty), most recently completed first, for the "/reports"
// command (spec §4.9).
func (d *DetachedReportStore) List(chatID string, limit int) ([]DetachedReport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list detached reports: %w", err)
	}

	var reports []DetachedReport
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(d.Dir, entry.Name()))
		if err != nil {
			continue
		}
		var report DetachedReport
		if err := json.Unmarshal(data, &report); err != nil {
			continue
		}
		if chatID != "" && report.ChatID != chatID {
			continue
		}
		reports = append(reports, report)
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].CompletedAt > reports[j].CompletedAt })
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}
