package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/childagent"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/contextassembler"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/history"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/tracker"
)

// runOnce implements the root command's default behavior (spec §6 "one-shot
// CLI run"): assemble context for --chat's session, run the child agent,
// dispatch any tool calls in its response, print the result, and persist
// both turns unless --fresh was given.
func runOnce(ctx context.Context, extraArgs []string) {
	env, err := buildEnvironment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	session := history.SanitizeSession(chatName)

	if clearHistory {
		if err := env.History.Clear(session); err != nil {
			fmt.Fprintln(os.Stderr, "error clearing history:", err)
			os.Exit(1)
		}
		fmt.Printf("History cleared for session %q.\n", session)
		return
	}

	if viewHistory {
		entries, _, err := env.History.Load(session)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error loading history:", err)
			os.Exit(1)
		}
		for _, e := range entries {
			fmt.Printf("[%s] %s\n", e.Role, e.Content)
		}
		return
	}

	userPrompt := prompt
	if userPrompt == "" && len(extraArgs) > 0 {
		userPrompt = extraArgs[0]
	}
	if userPrompt == "" {
		fmt.Fprintln(os.Stderr, "error: -p/--prompt (or a positional prompt) is required")
		os.Exit(1)
	}

	sysPrompt := systemPromptFor(env.Cfg, systemPrompt)

	var block string
	if freshRun {
		block = sysPrompt
	} else {
		block, err = env.Assembler.Assemble(ctx, contextassembler.Request{
			Session:      session,
			SystemPrompt: sysPrompt,
			UserPrompt:   userPrompt,
			Budget:       DefaultContextBudget,
			HistoryLimit: historyLimit,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "error assembling context:", err)
			os.Exit(1)
		}
	}

	flags := childagent.EnsureForceFlag(nil)
	if modelID != "" {
		flags = append(flags, "--model", modelID)
	}

	execID := env.Tracker.StartExecution("cli_run", "", "", userPrompt, modelID, nil, "")

	result, runErr := env.ChildAgent.Run(ctx, flags, block+"\n\nUser: "+userPrompt)
	if runErr != nil && result.ExitCode == 0 {
		env.Tracker.UpdateStatus(execID, tracker.StatusFailed, runErr.Error())
		fmt.Fprintln(os.Stderr, "error running child agent:", runErr)
		os.Exit(1)
	}

	augmented, _ := env.Dispatcher.Execute(ctx, result.Stdout, userPrompt)
	if result.ExitCode == 0 {
		env.Tracker.UpdateStatus(execID, tracker.StatusCompleted, "")
	} else {
		env.Tracker.UpdateStatus(execID, tracker.StatusFailed, fmt.Sprintf("exit code %d", result.ExitCode))
	}
	env.Tracker.SetResponsePreview(execID, augmented)
	if isInteractive() {
		fmt.Printf("\n%s\n\n", augmented)
	} else {
		fmt.Println(augmented)
	}

	if !freshRun {
		_ = env.History.Append(session, history.Entry{Role: history.RoleUser, Content: userPrompt})
		_ = env.History.Append(session, history.Entry{Role: history.RoleAgent, Content: augmented})
	}

	if result.ExitCode != 0 {
		os.Exit(result.ExitCode)
	}
}

// DefaultContextBudget is the token budget given to the assembler for a
// one-shot CLI run (spec §6, matching the chat front-end's default).
const DefaultContextBudget = 20000
