package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/tools"
)

// ExecutedCall records one tool invocation's outcome, returned alongside the
// augmented text (spec §4.4 "(augmented_output, tool_results[])").
type ExecutedCall struct {
	Kind  Kind
	Query string
	Err   error
}

// DelegateRunner is the narrow interface the dispatcher needs from the
// Sub-Agent Orchestrator's Delegate runner (spec §4.5).
type DelegateRunner interface {
	Run(ctx context.Context, personaID, task string) (response string, success bool, err error)
}

// SmartDelegateRunner is the narrow interface the dispatcher needs from the
// Smart-Delegate runner (spec §4.6).
type SmartDelegateRunner interface {
	Run(ctx context.Context, task string) (announcement, response string, success bool, err error)
}

// Dispatcher extracts and executes tool calls from child-agent output
// (spec §4.4).
type Dispatcher struct {
	Registry      *tools.Registry
	Delegate      DelegateRunner
	SmartDelegate SmartDelegateRunner
}

// New creates a Dispatcher.
func New(registry *tools.Registry, delegate DelegateRunner, smartDelegate SmartDelegateRunner) *Dispatcher {
	return &Dispatcher{Registry: registry, Delegate: delegate, SmartDelegate: smartDelegate}
}

// Execute finds and runs tool calls in agentResponse, in the same order the
// original wrapper did (web_fetch, web_search, memory_search, delegate,
// weather, smart_delegate, cursor_agent), and returns the augmented text
// plus the list of calls actually executed.
func (d *Dispatcher) Execute(ctx context.Context, agentResponse, lastUserMessage string) (string, []ExecutedCall) {
	out := agentResponse
	var executed []ExecutedCall

	out, executed = d.runWebFetch(ctx, out, executed)
	out, executed = d.runWebSearch(ctx, out, executed)
	out, executed = d.runMemorySearch(ctx, out, executed)
	out, executed = d.runDelegate(ctx, out, lastUserMessage, executed)
	out, executed = d.runWeather(ctx, out, executed)
	out, executed = d.runSmartDelegate(ctx, out, lastUserMessage, executed)
	out, executed = d.runCursorAgent(ctx, out, executed)

	return out, executed
}

func capped(calls []DetectedCall, kind Kind) []DetectedCall {
	n := kind.Cap()
	if len(calls) > n {
		return calls[:n]
	}
	return calls
}

func (d *Dispatcher) runWebFetch(ctx context.Context, text string, executed []ExecutedCall) (string, []ExecutedCall) {
	calls := capped(DetectWebFetch(text), KindWebFetch)
	for _, c := range calls {
		res := d.Registry.Execute(ctx, "web_fetch", map[string]any{"url": c.URL})
		executed = append(executed, ExecutedCall{Kind: KindWebFetch, Query: c.URL, Err: res.Err})
		if res.IsError() {
			text += fmt.Sprintf("\n\n[Tool Error: web_fetch for %s - %s]", c.URL, res.Err)
			continue
		}
		preview := truncate(res.Text, 500)
		text += fmt.Sprintf("\n\n[Tool Result: web_fetch for %s]\n%s...", c.URL, preview)
	}
	return text, executed
}

func (d *Dispatcher) runWebSearch(ctx context.Context, text string, executed []ExecutedCall) (string, []ExecutedCall) {
	calls := capped(DetectWebSearch(text), KindWebSearch)
	for _, c := range calls {
		res := d.Registry.Execute(ctx, "web_search", map[string]any{"query": c.Query})
		executed = append(executed, ExecutedCall{Kind: KindWebSearch, Query: c.Query, Err: res.Err})
		if res.IsError() {
			text += fmt.Sprintf("\n\n[Tool Error: web_search for '%s']\n%s", c.Query, res.Err)
			continue
		}
		text += fmt.Sprintf("\n\n[Tool Result: web_search for '%s']\n%s", c.Query, res.Text)
	}
	return text, executed
}

func (d *Dispatcher) runMemorySearch(ctx context.Context, text string, executed []ExecutedCall) (string, []ExecutedCall) {
	calls := capped(DetectMemorySearch(text), KindMemorySearch)
	for _, c := range calls {
		res := d.Registry.Execute(ctx, "memory_search", map[string]any{"query": c.Query})
		executed = append(executed, ExecutedCall{Kind: KindMemorySearch, Query: c.Query, Err: res.Err})
		if res.IsError() {
			text += fmt.Sprintf("\n\n[Tool Error: memory_search for '%s']\n%s", c.Query, res.Err)
			continue
		}
		text += fmt.Sprintf("\n\n[Tool Result: memory_search for '%s']\n%s", c.Query, res.Text)
	}
	return text, executed
}

func (d *Dispatcher) runDelegate(ctx context.Context, text, lastUserMessage string, executed []ExecutedCall) (string, []ExecutedCall) {
	if d.Delegate == nil {
		return text, executed
	}
	calls := capped(DetectDelegate(text, lastUserMessage), KindDelegate)
	for _, c := range calls {
		resp, ok, err := d.Delegate.Run(ctx, c.PersonaID, c.Task)
		executed = append(executed, ExecutedCall{Kind: KindDelegate, Query: c.PersonaID, Err: err})
		if !ok {
			errMsg := "Unknown error"
			if err != nil {
				errMsg = err.Error()
			}
			text += fmt.Sprintf("\n\n[Delegate Error: %s] %s", c.PersonaID, errMsg)
			continue
		}
		text += fmt.Sprintf("\n\n[Delegate Result: %s]\n%s", c.PersonaID, truncate(resp, 4000))
	}
	return text, executed
}

func (d *Dispatcher) runWeather(ctx context.Context, text string, executed []ExecutedCall) (string, []ExecutedCall) {
	calls := capped(DetectWeather(text), KindWeather)
	for _, c := range calls {
		res := d.Registry.Execute(ctx, "weather", map[string]any{"city": c.City})
		executed = append(executed, ExecutedCall{Kind: KindWeather, Query: c.City, Err: res.Err})
		if res.IsError() {
			text += fmt.Sprintf("\n\n[Weather Error: %s]", res.Err)
			continue
		}
		text += "\n\n" + res.Text
	}
	return text, executed
}

func (d *Dispatcher) runSmartDelegate(ctx context.Context, text, lastUserMessage string, executed []ExecutedCall) (string, []ExecutedCall) {
	if d.SmartDelegate == nil {
		return text, executed
	}
	calls := capped(DetectSmartDelegate(text, lastUserMessage), KindSmartDelegate)
	for _, c := range calls {
		announcement, resp, ok, err := d.SmartDelegate.Run(ctx, c.SmartTask)
		executed = append(executed, ExecutedCall{Kind: KindSmartDelegate, Err: err})
		if announcement != "" {
			text += "\n\n" + announcement
		}
		if !ok {
			errMsg := "Unknown error"
			if err != nil {
				errMsg = err.Error()
			}
			text += fmt.Sprintf("\n\n[Smart Delegate Error] %s", errMsg)
			continue
		}
		text += fmt.Sprintf("\n\n[Smart Delegate Response]\n%s", truncate(resp, 6000))
	}
	return text, executed
}

func (d *Dispatcher) runCursorAgent(ctx context.Context, text string, executed []ExecutedCall) (string, []ExecutedCall) {
	calls := capped(DetectCursorAgent(text), KindCursorAgent)
	for _, c := range calls {
		params := cursorAgentParams(c)
		res := d.Registry.Execute(ctx, "cursor_agent", params)
		executed = append(executed, ExecutedCall{Kind: KindCursorAgent, Query: c.Action, Err: res.Err})
		if res.IsError() {
			text += fmt.Sprintf("\n\n[Cursor Agent Error: %s] %s", c.Action, res.Err)
			continue
		}
		if res.Summary != "" {
			text += fmt.Sprintf("\n\n[Cursor Agent: %s]\n%s", c.Action, res.Summary)
			continue
		}
		raw, _ := json.MarshalIndent(res.Raw, "", "  ")
		text += fmt.Sprintf("\n\n[Cursor Agent: %s]\n%s", c.Action, truncate(string(raw), 3000))
	}
	return text, executed
}

func cursorAgentParams(c DetectedCall) map[string]any {
	params := map[string]any{"action": c.Action}
	switch c.Action {
	case "launch", "create":
		params["prompt"] = c.Rest
	case "status", "get", "conversation", "stop", "delete":
		params["agent_id"] = c.Rest
	case "followup", "follow_up":
		params["agent_id"] = c.Rest
		if c.Extra != "" {
			params["prompt"] = c.Extra
		}
	}
	return params
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n])
}
