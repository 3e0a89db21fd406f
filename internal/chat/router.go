package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/childagent"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/contextassembler"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/dispatch"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/history"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/tracker"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/workerpool"
)

// DefaultBackgroundConcurrency bounds how many "new "/"detached:" agents
// may run at once, so an unbounded burst of chat messages can't spawn an
// unbounded number of child-agent subprocesses (spec §4.9, "Scheduler Core"
// ambient-stack worker-pool requirement).
const DefaultBackgroundConcurrency = 4

// DefaultHistoryBudget bounds the main-stream context assembly call.
const DefaultHistoryBudget = 20000

func nowMs() int64 { return time.Now().UnixMilli() }

// Reply is what the Router hands back to the transport adapter: the text
// to send, plus whether it may be sent with HTML parse mode.
type Reply struct {
	Text string
	HTML bool
}

func plainReply(text string) Reply { return Reply{Text: text} }

func formattedReply(text string) Reply {
	body, ok := FormatResponse(text)
	return Reply{Text: body, HTML: ok}
}

// Router implements spec §4.9's message routing rules: pairing gate,
// "new "-prefixed fresh-context agents, "/re <code>" view/continue,
// "detached:"-prefixed background runs, "/reports", and the default
// main-stream path through the Context Assembler and Tool Dispatcher.
type Router struct {
	Pairing      *PairingStore
	NewThreads   *NewThreadAgentStore
	Detached     *DetachedReportStore
	Assembler    *contextassembler.Assembler
	Dispatcher   *dispatch.Dispatcher
	ChildAgent   *childagent.Runner
	History      *history.Store
	Tracker      *tracker.Tracker
	Pool         *workerpool.Pool
	SystemPrompt string
	Logger       *slog.Logger
}

// New creates a Router. logger defaults to slog.Default() when nil. trk may
// be nil, in which case executions simply aren't tracked. Background
// new-thread/detached runs are bounded by DefaultBackgroundConcurrency,
// scoped to backgroundCtx rather than any one request's context.
func New(pairing *PairingStore, newThreads *NewThreadAgentStore, detached *DetachedReportStore,
	assembler *contextassembler.Assembler, dispatcher *dispatch.Dispatcher, childAgent *childagent.Runner,
	hist *history.Store, trk *tracker.Tracker, systemPrompt string, logger *slog.Logger,
	backgroundCtx context.Context) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		Pairing: pairing, NewThreads: newThreads, Detached: detached,
		Assembler: assembler, Dispatcher: dispatcher, ChildAgent: childAgent,
		History: hist, Tracker: trk, Pool: workerpool.New(backgroundCtx, DefaultBackgroundConcurrency),
		SystemPrompt: systemPrompt, Logger: logger,
	}
}

// trackStart records a new tracked execution when r.Tracker is set,
// returning "" otherwise so callers can no-op subsequent Tracker calls.
func (r *Router) trackStart(kind, task string) string {
	if r.Tracker == nil {
		return ""
	}
	return r.Tracker.StartExecution(kind, "", "", task, "", nil, "")
}

func (r *Router) trackDone(executionID string, success bool, preview string, errMsg string) {
	if r.Tracker == nil || executionID == "" {
		return
	}
	status := tracker.StatusCompleted
	if !success {
		status = tracker.StatusFailed
	}
	r.Tracker.UpdateStatus(executionID, status, errMsg)
	r.Tracker.SetResponsePreview(executionID, preview)
}

// HandleMessage routes one inbound chat message to the right subsystem and
// returns the immediate reply (background work for "new "/"detached:" runs
// continues after this call returns).
func (r *Router) HandleMessage(ctx context.Context, chatID, userID, text string) Reply {
	text = strings.TrimSpace(text)
	chatIDNum, _ := strconv.ParseInt(chatID, 10, 64)

	if !r.Pairing.IsPaired(chatIDNum) {
		return r.handleUnpaired(chatIDNum, text)
	}

	switch {
	case text == "/reports":
		return r.handleReports(chatID)
	case strings.HasPrefix(text, "/approve "):
		return r.handleApprove(strings.TrimSpace(strings.TrimPrefix(text, "/approve ")))
	case strings.HasPrefix(text, "/re "):
		return r.handleResume(ctx, chatID, userID, strings.TrimSpace(strings.TrimPrefix(text, "/re ")))
	case strings.HasPrefix(strings.ToLower(text), "new "):
		return r.handleNewThread(ctx, chatID, userID, strings.TrimSpace(text[4:]))
	case strings.HasPrefix(text, "detached:"):
		return r.handleDetached(ctx, chatID, strings.TrimSpace(strings.TrimPrefix(text, "detached:")))
	default:
		return r.handleMainStream(ctx, chatID, text)
	}
}

func (r *Router) handleUnpaired(chatID int64, text string) Reply {
	if text != "/start" {
		return plainReply("This chat is not paired yet. Send /start to request pairing.")
	}
	code, err := r.Pairing.RequestPairing(chatID)
	if err != nil {
		r.Logger.Error("pairing request failed", "chat_id", chatID, "error", err)
		return plainReply("Could not start pairing, please try again.")
	}
	return plainReply(fmt.Sprintf("Pairing code: %s\nAsk the bot owner to run /approve %s.", code, code))
}

func (r *Router) handleApprove(code string) Reply {
	chatID, ok, err := r.Pairing.Approve(code)
	if err != nil {
		r.Logger.Error("pairing approve failed", "error", err)
		return plainReply("Approval failed, please try again.")
	}
	if !ok {
		return plainReply("No pending pairing request matches that code.")
	}
	return plainReply(fmt.Sprintf("Chat %d is now paired.", chatID))
}

// handleNewThread spawns a fresh-context child-agent run that never touches
// the main chat's session history (spec §4.9 "New-thread agents").
func (r *Router) handleNewThread(ctx context.Context, chatID, userID, task string) Reply {
	if task == "" {
		return plainReply("Usage: new <task>")
	}

	agent, err := r.NewThreads.Allocate(task, chatID, userID, nowMs())
	if err != nil {
		r.Logger.Error("new-thread allocation failed", "error", err)
		return plainReply("Could not start a new thread agent, please try again.")
	}

	r.Pool.Go(func(ctx context.Context) error {
		r.runNewThread(ctx, agent.AgentCode, task)
		return nil
	}, nil)

	return plainReply(fmt.Sprintf("Started new thread agent #%d. Use /re %d to check on it.", agent.AgentCode, agent.AgentCode))
}

func (r *Router) runNewThread(ctx context.Context, code int, task string) {
	execID := r.trackStart("new_thread_agent", task)
	prompt := fmt.Sprintf("System: %s\n\nTask:\n%s", r.SystemPrompt, task)
	result, err := r.ChildAgent.Run(ctx, childagent.EnsureForceFlag(nil), prompt)
	success := err == nil && result.ExitCode == 0
	response := result.Stdout
	if !success {
		response = errString(err, result.Stderr)
	}
	r.trackDone(execID, success, response, errString(err, ""))
	if updErr := r.NewThreads.UpdateResponse(code, response, success, nowMs()); updErr != nil {
		r.Logger.Error("failed to persist new-thread result", "agent_code", code, "error", updErr)
	}
}

// handleResume implements "/re <code>" — with no body it returns the
// agent's last response; with a body it continues the thread with more
// context appended, still outside the main session history.
func (r *Router) handleResume(ctx context.Context, chatID, userID, rest string) Reply {
	parts := strings.SplitN(rest, " ", 2)
	code, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return plainReply("Usage: /re <code> [additional instructions]")
	}

	agent, ok := r.NewThreads.Get(code)
	if !ok {
		return plainReply(fmt.Sprintf("No new-thread agent #%d found.", code))
	}

	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		if agent.Status == NewThreadStatusRunning {
			return plainReply(fmt.Sprintf("Agent #%d is still running.", code))
		}
		if agent.LastResponse == nil {
			return plainReply(fmt.Sprintf("Agent #%d has no response yet.", code))
		}
		return formattedReply(*agent.LastResponse)
	}

	followUp := strings.TrimSpace(parts[1])
	combinedTask := agent.Task + "\n\n" + followUp
	if agent.LastResponse != nil {
		combinedTask = agent.Task + "\n\nPrevious response:\n" + *agent.LastResponse + "\n\nFollow-up:\n" + followUp
	}

	if err := r.NewThreads.UpdateResponse(code, "", false, nowMs()); err != nil {
		r.Logger.Error("failed to mark resumed agent running", "agent_code", code, "error", err)
	}
	r.Pool.Go(func(ctx context.Context) error {
		r.runNewThread(ctx, code, combinedTask)
		return nil
	}, nil)

	return plainReply(fmt.Sprintf("Continuing agent #%d.", code))
}

// handleDetached launches a background run whose outcome is retrieved
// later via /reports (spec §4.9 "Detached runs").
func (r *Router) handleDetached(ctx context.Context, chatID, task string) Reply {
	if task == "" {
		return plainReply("Usage: detached:<task>")
	}

	runID := NewRunID()
	r.Pool.Go(func(ctx context.Context) error {
		r.runDetached(ctx, runID, chatID, task)
		return nil
	}, nil)
	return plainReply(fmt.Sprintf("Detached run started: %s\nCheck /reports once it completes.", runID))
}

func (r *Router) runDetached(ctx context.Context, runID, chatID, task string) {
	execID := r.trackStart("detached_agent", task)
	prompt := fmt.Sprintf("System: %s\n\nTask:\n%s", r.SystemPrompt, task)
	result, err := r.ChildAgent.Run(ctx, childagent.EnsureForceFlag(nil), prompt)

	report := DetachedReport{
		RunID:         runID,
		Task:          task,
		ChatID:        chatID,
		Success:       err == nil && result.ExitCode == 0,
		ExitCode:      result.ExitCode,
		CompletedAt:   nowMs(),
		StdoutPreview: result.Stdout,
		StderrPreview: result.Stderr,
	}
	if err != nil {
		report.StderrPreview = err.Error() + "\n" + report.StderrPreview
	}
	r.trackDone(execID, report.Success, report.StdoutPreview, errString(err, ""))
	if saveErr := r.Detached.Save(report); saveErr != nil {
		r.Logger.Error("failed to persist detached report", "run_id", runID, "error", saveErr)
	}
}

func (r *Router) handleReports(chatID string) Reply {
	reports, err := r.Detached.List(chatID, 10)
	if err != nil {
		r.Logger.Error("failed to list detached reports", "error", err)
		return plainReply("Could not list detached reports.")
	}
	if len(reports) == 0 {
		return plainReply("No detached reports yet.")
	}

	var b strings.Builder
	for _, rep := range reports {
		status := "ok"
		if !rep.Success {
			status = "failed"
		}
		fmt.Fprintf(&b, "%s [%s] %s\n", rep.RunID, status, rep.Task)
	}
	return plainReply(b.String())
}

// handleMainStream is the default path: assemble context from persisted
// history, run the child agent, dispatch any tool calls in its response,
// format it for the transport, and persist both turns.
func (r *Router) handleMainStream(ctx context.Context, session, text string) Reply {
	execID := r.trackStart("main_stream", text)

	block, err := r.Assembler.Assemble(ctx, contextassembler.Request{
		Session:      session,
		SystemPrompt: r.SystemPrompt,
		UserPrompt:   text,
		Budget:       DefaultHistoryBudget,
	})
	if err != nil {
		r.Logger.Error("context assembly failed", "session", session, "error", err)
		r.trackDone(execID, false, "", err.Error())
		return plainReply("Something went wrong assembling context, please try again.")
	}

	prompt := block + "\n\nUser: " + text
	result, runErr := r.ChildAgent.Run(ctx, childagent.EnsureForceFlag(nil), prompt)
	if runErr != nil || result.ExitCode != 0 {
		r.Logger.Error("child agent run failed", "session", session, "error", runErr, "exit_code", result.ExitCode)
		r.trackDone(execID, false, "", errString(runErr, result.Stderr))
		return plainReply("The agent failed to respond, please try again.")
	}

	augmented, _ := r.Dispatcher.Execute(ctx, result.Stdout, text)
	r.trackDone(execID, true, augmented, "")

	if err := r.History.Append(session, history.Entry{Role: history.RoleUser, Content: text}); err != nil {
		r.Logger.Warn("failed to persist user turn", "session", session, "error", err)
	}
	if err := r.History.Append(session, history.Entry{Role: history.RoleAgent, Content: augmented}); err != nil {
		r.Logger.Warn("failed to persist assistant turn", "session", session, "error", err)
	}

	return formattedReply(augmented)
}

func errString(err error, stderr string) string {
	if err != nil {
		return err.Error() + "\n" + stderr
	}
	return stderr
}
