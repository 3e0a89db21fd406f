// Package tracker implements the durable Sub-Agent Tracker: a log of
// delegate/smart-delegate/cursor-agent executions with status, progress
// updates, and completion callbacks, grounded on the original subagent
// tracker (spec §4.7 "Tracker").
package tracker

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/metrics"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/storeutil"
)

// Status is an execution's lifecycle state.
type Status string

const (
	StatusStarting  Status = "starting"
	StatusRunning   Status = "running"
	StatusThinking  Status = "thinking"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusTimeout   Status = "timeout"
	StatusCancelled Status = "cancelled"
)

// terminal reports whether status ends an execution's lifecycle.
func (s Status) terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusTimeout, StatusCancelled:
		return true
	default:
		return false
	}
}

// ProgressUpdate is one timestamped note attached to an execution.
type ProgressUpdate struct {
	TimestampMs int64          `json:"timestamp_ms"`
	Message     string         `json:"message"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Execution represents one tracked subagent run (delegate, smart_delegate,
// or cursor_agent).
type Execution struct {
	ExecutionID     string           `json:"execution_id"`
	ToolName        string           `json:"tool_name"`
	AgentID         string           `json:"agent_id,omitempty"`
	AgentName       string           `json:"agent_name,omitempty"`
	Task            string           `json:"task,omitempty"`
	Model           string           `json:"model,omitempty"`
	Status          Status           `json:"status"`
	StartedAtMs     int64            `json:"started_at_ms"`
	CompletedAtMs   int64            `json:"completed_at_ms,omitempty"`
	ResponsePreview string           `json:"response_preview,omitempty"`
	Error           string           `json:"error,omitempty"`
	ProgressUpdates []ProgressUpdate `json:"progress_updates,omitempty"`
	ComplexityScore *float64         `json:"complexity_score,omitempty"`
	Tier            string           `json:"tier,omitempty"`
}

// ElapsedMs returns the duration from start to completion, or to now if
// still running. Zero if never started.
func (e Execution) ElapsedMs(nowMs int64) int64 {
	if e.StartedAtMs == 0 {
		return 0
	}
	if e.CompletedAtMs != 0 {
		return e.CompletedAtMs - e.StartedAtMs
	}
	return nowMs - e.StartedAtMs
}

// CompletionCallback is invoked (in its own goroutine) when an execution
// transitions into a terminal status.
type CompletionCallback func(Execution)

// stateFile is the on-disk shape persisted at Tracker.StatePath.
type stateFile struct {
	Executions map[string]Execution `json:"executions"`
}

// DefaultStatePath mirrors the original tool's state file location, rooted
// under the caller-supplied home directory.
func DefaultStatePath(home string) string {
	return filepath.Join(home, ".cursor-enhanced", "subagent-tracker-state.json")
}

// Tracker tracks subagent executions with persistent JSON-backed state and
// in-process completion callbacks (spec §4.7). Unlike the Python original's
// asyncio.Lock, concurrency here is a plain sync.Mutex since every exported
// method does a short, synchronous load-mutate-save under it.
type Tracker struct {
	StatePath string

	mu         sync.Mutex
	executions map[string]Execution

	cbMu      sync.Mutex
	callbacks []CompletionCallback
}

// New creates a Tracker backed by statePath, loading any existing state.
func New(statePath string) *Tracker {
	t := &Tracker{StatePath: statePath, executions: make(map[string]Execution)}
	t.load()
	return t
}

func (t *Tracker) load() {
	var sf stateFile
	storeutil.ReadJSONOrDefault(t.StatePath, &sf)
	if sf.Executions != nil {
		t.executions = sf.Executions
	}
}

func (t *Tracker) saveLocked() {
	if err := os.MkdirAll(filepath.Dir(t.StatePath), 0o755); err != nil {
		return
	}
	_ = storeutil.WriteJSONAtomic(t.StatePath, stateFile{Executions: t.executions})
}

// RegisterCompletionCallback adds a callback fired asynchronously whenever
// an execution reaches a terminal status, each callback in its own
// goroutine; there is no completion channel or worker (spec §4.7).
func (t *Tracker) RegisterCompletionCallback(cb CompletionCallback) {
	t.cbMu.Lock()
	defer t.cbMu.Unlock()
	t.callbacks = append(t.callbacks, cb)
}

func (t *Tracker) fireCallbacks(exec Execution) {
	t.cbMu.Lock()
	cbs := append([]CompletionCallback(nil), t.callbacks...)
	t.cbMu.Unlock()
	for _, cb := range cbs {
		go cb(exec)
	}
}

// StartExecution begins tracking a new run and returns its id.
func (t *Tracker) StartExecution(toolName, agentID, agentName, task, model string, complexityScore *float64, tier string) string {
	id := uuid.New().String()
	exec := Execution{
		ExecutionID:     id,
		ToolName:        toolName,
		AgentID:         agentID,
		AgentName:       agentName,
		Task:            task,
		Model:           model,
		Status:          StatusStarting,
		StartedAtMs:     nowMs(),
		ComplexityScore: complexityScore,
		Tier:            tier,
	}

	t.mu.Lock()
	t.executions[id] = exec
	t.saveLocked()
	t.mu.Unlock()

	metrics.ExecutionsStarted.WithLabelValues(toolName).Inc()
	metrics.ExecutionsActive.Inc()
	return id
}

// UpdateStatus transitions an execution's status, recording completion time
// and firing completion callbacks on a terminal transition. Unknown ids are
// a no-op (matching the original's "not found" warning-and-continue).
func (t *Tracker) UpdateStatus(executionID string, status Status, errMsg string) {
	t.mu.Lock()
	exec, ok := t.executions[executionID]
	if !ok {
		t.mu.Unlock()
		return
	}

	old := exec.Status
	exec.Status = status
	if status.terminal() {
		exec.CompletedAtMs = nowMs()
	}
	if errMsg != "" {
		exec.Error = errMsg
	}
	t.executions[executionID] = exec
	t.saveLocked()
	t.mu.Unlock()

	if old != status && status.terminal() {
		metrics.ExecutionsCompleted.WithLabelValues(exec.ToolName, string(status)).Inc()
		metrics.ExecutionsActive.Dec()
		t.fireCallbacks(exec)
	}
}

// AddProgressUpdate appends a progress note to an execution.
func (t *Tracker) AddProgressUpdate(executionID, message string, metadata map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	exec, ok := t.executions[executionID]
	if !ok {
		return
	}
	exec.ProgressUpdates = append(exec.ProgressUpdates, ProgressUpdate{
		TimestampMs: nowMs(), Message: message, Metadata: metadata,
	})
	t.executions[executionID] = exec
	t.saveLocked()
}

// SetResponsePreview records the (possibly truncated) response text.
func (t *Tracker) SetResponsePreview(executionID, preview string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	exec, ok := t.executions[executionID]
	if !ok {
		return
	}
	exec.ResponsePreview = preview
	t.executions[executionID] = exec
	t.saveLocked()
}

// UpdateMeta patches the agent id/name of an execution (set once the
// underlying cursor_agent launch or delegate run reports its own id).
func (t *Tracker) UpdateMeta(executionID, agentID, agentName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	exec, ok := t.executions[executionID]
	if !ok {
		return
	}
	if agentID != "" {
		exec.AgentID = agentID
	}
	if agentName != "" {
		exec.AgentName = agentName
	}
	t.executions[executionID] = exec
	t.saveLocked()
}

// Get returns an execution by id.
func (t *Tracker) Get(executionID string) (Execution, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.executions[executionID]
	return e, ok
}

// List returns executions, optionally filtered by toolName, newest first,
// capped to limit when limit > 0.
func (t *Tracker) List(toolName string, limit int) []Execution {
	t.mu.Lock()
	out := make([]Execution, 0, len(t.executions))
	for _, e := range t.executions {
		if toolName != "" && e.ToolName != toolName {
			continue
		}
		out = append(out, e)
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].StartedAtMs > out[j].StartedAtMs })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Active returns executions not yet in a terminal status, newest first.
func (t *Tracker) Active() []Execution {
	t.mu.Lock()
	out := make([]Execution, 0)
	for _, e := range t.executions {
		if !e.Status.terminal() {
			out = append(out, e)
		}
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].StartedAtMs > out[j].StartedAtMs })
	return out
}

// Stats summarizes execution counts by lifecycle bucket.
type Stats struct {
	Total     int `json:"total_executions"`
	Active    int `json:"active_executions"`
	Completed int `json:"completed_executions"`
	Failed    int `json:"failed_executions"`
	Timeout   int `json:"timeout_executions"`
}

// Stats computes aggregate counts across all tracked executions.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	var s Stats
	s.Total = len(t.executions)
	for _, e := range t.executions {
		switch e.Status {
		case StatusStarting, StatusRunning, StatusThinking:
			s.Active++
		case StatusCompleted:
			s.Completed++
		case StatusFailed:
			s.Failed++
		case StatusTimeout:
			s.Timeout++
		}
	}
	return s
}

// Result is the flattened, human-facing view of an execution, matching the
// original tool's get_result() shape.
type Result struct {
	ExecutionID     string           `json:"execution_id"`
	ToolName        string           `json:"tool_name"`
	AgentID         string           `json:"agent_id,omitempty"`
	AgentName       string           `json:"agent_name,omitempty"`
	Task            string           `json:"task,omitempty"`
	Model           string           `json:"model,omitempty"`
	Status          Status           `json:"status"`
	StartedAtMs     int64            `json:"started_at_ms"`
	CompletedAtMs   int64            `json:"completed_at_ms,omitempty"`
	ElapsedMs       int64            `json:"elapsed_ms"`
	Response        string           `json:"response,omitempty"`
	Error           string           `json:"error,omitempty"`
	ProgressUpdates []ProgressUpdate `json:"progress_updates,omitempty"`
}

// GetResult returns the flattened result view for an execution, or
// (Result{}, false) if unknown.
func (t *Tracker) GetResult(executionID string) (Result, bool) {
	exec, ok := t.Get(executionID)
	if !ok {
		return Result{}, false
	}
	return Result{
		ExecutionID:     exec.ExecutionID,
		ToolName:        exec.ToolName,
		AgentID:         exec.AgentID,
		AgentName:       exec.AgentName,
		Task:            exec.Task,
		Model:           exec.Model,
		Status:          exec.Status,
		StartedAtMs:     exec.StartedAtMs,
		CompletedAtMs:   exec.CompletedAtMs,
		ElapsedMs:       exec.ElapsedMs(nowMs()),
		Response:        exec.ResponsePreview,
		Error:           exec.Error,
		ProgressUpdates: exec.ProgressUpdates,
	}, true
}

func nowMs() int64 { return time.Now().UnixMilli() }
