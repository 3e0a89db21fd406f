package chat

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDetachedReportStore_SaveAndGet(t *testing.T) {
	store := NewDetachedReportStore(t.TempDir())
	runID := NewRunID()

	report := DetachedReport{
		RunID:         runID,
		Task:          "build the thing",
		ChatID:        "chat1",
		Success:       true,
		ExitCode:      0,
		CompletedAt:   1000,
		StdoutPreview: "all good",
	}
	if err := store.Save(report); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok := store.Get(runID)
	if !ok {
		t.Fatal("expected report to be found")
	}
	if got.Task != "build the thing" || !got.Success {
		t.Fatalf("unexpected report: %+v", got)
	}
}

func TestDetachedReportStore_TruncatesLongPreviews(t *testing.T) {
	store := NewDetachedReportStore(t.TempDir())
	runID := NewRunID()

	longOutput := strings.Repeat("x", previewLen+500)
	if err := store.Save(DetachedReport{RunID: runID, ChatID: "c", StdoutPreview: longOutput}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, _ := store.Get(runID)
	if len(got.StdoutPreview) >= len(longOutput) {
		t.Fatalf("expected truncated preview, got length %d", len(got.StdoutPreview))
	}
}

func TestDetachedReportStore_ListFiltersByChatAndOrdersNewestFirst(t *testing.T) {
	store := NewDetachedReportStore(t.TempDir())
	store.Save(DetachedReport{RunID: NewRunID(), ChatID: "chat1", CompletedAt: 100})
	store.Save(DetachedReport{RunID: NewRunID(), ChatID: "chat1", CompletedAt: 300})
	store.Save(DetachedReport{RunID: NewRunID(), ChatID: "chat2", CompletedAt: 200})

	reports, err := store.List("chat1", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports for chat1, got %d", len(reports))
	}
	if reports[0].CompletedAt != 300 {
		t.Fatalf("expected newest-first ordering, got %+v", reports)
	}
}

func TestDetachedReportStore_ListOnEmptyDirReturnsNil(t *testing.T) {
	store := NewDetachedReportStore(filepath.Join(t.TempDir(), "does-not-exist"))
	reports, err := store.List("", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if reports != nil {
		t.Fatalf("expected nil reports, got %v", reports)
	}
}
