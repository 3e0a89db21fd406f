package tracker

import (
	"path/filepath"
	"testing"
	"time"
)

func TestTracker_StartAndUpdateStatus(t *testing.T) {
	tr := New(filepath.Join(t.TempDir(), "state.json"))

	id := tr.StartExecution("delegate", "", "", "summarize the log", "", nil, "")
	exec, ok := tr.Get(id)
	if !ok || exec.Status != StatusStarting {
		t.Fatalf("expected starting status, got %+v ok=%v", exec, ok)
	}

	var fired Execution
	done := make(chan struct{})
	tr.RegisterCompletionCallback(func(e Execution) {
		fired = e
		close(done)
	})

	tr.UpdateStatus(id, StatusCompleted, "")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("completion callback never fired")
	}
	if fired.ExecutionID != id {
		t.Fatalf("callback fired for wrong execution: %+v", fired)
	}

	exec, _ = tr.Get(id)
	if exec.Status != StatusCompleted || exec.CompletedAtMs == 0 {
		t.Fatalf("expected completed execution, got %+v", exec)
	}
}

func TestTracker_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	tr1 := New(path)
	id := tr1.StartExecution("smart_delegate", "", "", "task", "sonnet-4.5", nil, "mid")
	tr1.UpdateStatus(id, StatusCompleted, "")

	tr2 := New(path)
	exec, ok := tr2.Get(id)
	if !ok || exec.Status != StatusCompleted {
		t.Fatalf("expected reloaded execution to be completed, got %+v ok=%v", exec, ok)
	}
}

func TestTracker_ActiveExcludesTerminal(t *testing.T) {
	tr := New(filepath.Join(t.TempDir(), "state.json"))
	running := tr.StartExecution("delegate", "", "", "a", "", nil, "")
	done := tr.StartExecution("delegate", "", "", "b", "", nil, "")
	tr.UpdateStatus(done, StatusFailed, "boom")

	active := tr.Active()
	if len(active) != 1 || active[0].ExecutionID != running {
		t.Fatalf("expected only the running execution active, got %+v", active)
	}
}

func TestTracker_StatsCountsByBucket(t *testing.T) {
	tr := New(filepath.Join(t.TempDir(), "state.json"))
	a := tr.StartExecution("delegate", "", "", "a", "", nil, "")
	b := tr.StartExecution("delegate", "", "", "b", "", nil, "")
	tr.UpdateStatus(a, StatusCompleted, "")
	tr.UpdateStatus(b, StatusTimeout, "deadline exceeded")

	stats := tr.Stats()
	if stats.Total != 2 || stats.Completed != 1 || stats.Timeout != 1 || stats.Active != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
