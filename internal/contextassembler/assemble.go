package contextassembler

import (
	"context"
	"log/slog"
	"time"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/history"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/tokens"
)

func nowMs() int64 { return time.Now().UnixMilli() }

// reserveFloor and softThreshold bound the memory-flush trigger window
// (spec §4.1 "Triggering memory flush" — exact constants are an
// implementation choice left open by the spec; see DESIGN.md).
const (
	reserveFloor  = 2000
	softThreshold = 2000
)

// Summarizer is the narrow interface the assembler needs from the
// summarizer package (kept as an interface here to avoid a hard
// dependency; the concrete type in package summarizer satisfies it).
type Summarizer interface {
	Summarize(ctx context.Context, entries []history.Entry, force bool) (newer []history.Entry, summary string, ok bool)
}

// MemoryFlusher is the narrow interface the assembler needs from the
// memoryflush package.
type MemoryFlusher interface {
	Flush(ctx context.Context, entries []history.Entry) error
}

// Assembler ties the pure Select algorithm to the history store, and
// triggers the Summarizer / MemoryFlusher side effects the spec requires
// before re-running selection (spec §4.1 "Triggering summarization",
// "Triggering memory flush").
type Assembler struct {
	Store       *history.Store
	Summarizer  Summarizer
	MemoryFlush MemoryFlusher
}

// New creates an Assembler.
func New(store *history.Store, summarizer Summarizer, flush MemoryFlusher) *Assembler {
	return &Assembler{Store: store, Summarizer: summarizer, MemoryFlush: flush}
}

// Request bundles the assembler's inputs for one call.
type Request struct {
	Session        string
	SystemPrompt   string
	UserPrompt     string
	Budget         int
	HistoryLimit   int  // >0 selects fixed last-N mode; 0 selects token-budgeted mode
	ForceSummarize bool // passed through to the summarizer (spec §4.2 "must pass any force flag")
}

// Assemble produces the context block for one request, running memory
// flush and/or summarization first if the full history would overflow the
// budget (spec §4.1).
func (a *Assembler) Assemble(ctx context.Context, req Request) (string, error) {
	entries, meta, err := a.Store.Load(req.Session)
	if err != nil {
		return "", err
	}

	total := tokens.Estimate(req.SystemPrompt) + tokens.Estimate(renderAll(entries)) + tokens.Estimate(req.UserPrompt)

	if total > req.Budget || req.ForceSummarize {
		entries, meta = a.maybeFlushAndSummarize(ctx, req, entries, meta, total)
	}

	if req.HistoryLimit > 0 {
		window := SelectLastN(entries, req.HistoryLimit)
		block := renderBlock(window)
		// Fixed-count mode still falls back to the token-budgeted algorithm
		// if the full window text exceeds the budget (spec §4.1 "Two modes").
		if tokens.Estimate(req.SystemPrompt)+tokens.Estimate(block)+tokens.Estimate(req.UserPrompt) > req.Budget {
			block, _ = Select(entries, req.SystemPrompt, req.UserPrompt, req.Budget)
		}
		return block, nil
	}

	block, _ := Select(entries, req.SystemPrompt, req.UserPrompt, req.Budget)
	return block, nil
}

func renderAll(entries []history.Entry) string {
	return renderBlock(entries)
}

func (a *Assembler) maybeFlushAndSummarize(ctx context.Context, req Request, entries []history.Entry, meta history.Meta, total int) ([]history.Entry, history.Meta) {
	// Memory flush runs first, advisory and best-effort (spec §4.3).
	if total >= req.Budget-reserveFloor-softThreshold && meta.MemoryFlushCompactionCount < meta.CompactionCount+1 {
		if a.MemoryFlush != nil {
			if err := a.MemoryFlush.Flush(ctx, entries); err != nil {
				slog.Warn("memory flush failed", "session", req.Session, "error", err)
			} else {
				if err := a.Store.SetMemoryFlushDone(req.Session, nowMs()); err != nil {
					slog.Warn("failed to persist memory flush state", "session", req.Session, "error", err)
				} else {
					_, meta, _ = a.Store.Load(req.Session)
				}
			}
		}
	}

	if total > req.Budget && a.Summarizer != nil {
		newer, summary, ok := a.Summarizer.Summarize(ctx, entries, req.ForceSummarize)
		if ok {
			if err := a.Store.ReplaceWithSummary(req.Session, newer, summary); err != nil {
				slog.Warn("failed to persist summarized history", "session", req.Session, "error", err)
			} else {
				entries, meta, _ = a.Store.Load(req.Session)
			}
		} else {
			slog.Warn("summarization failed, continuing with original history", "session", req.Session)
		}
	}

	return entries, meta
}
