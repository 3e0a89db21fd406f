package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	cursorAPIBase      = "https://api.cursor.com/v0"
	cursorAPITimeout   = 60 * time.Second
	cursorDefaultModel = "default"
)

// CursorAgentTool manages Cursor Cloud Agents via the REST API: launch,
// status, list, conversation, followup, stop, delete, models, repos, me
// (spec §4.4 "cursor_agent", grounded on the Cursor Cloud Agents API client).
type CursorAgentTool struct {
	APIKey       string
	DefaultModel string
	client       *http.Client
}

// NewCursorAgentTool creates a CursorAgentTool. apiKey may be empty, in
// which case every call returns a configuration error.
func NewCursorAgentTool(apiKey string) *CursorAgentTool {
	return &CursorAgentTool{
		APIKey:       apiKey,
		DefaultModel: cursorDefaultModel,
		client:       &http.Client{Timeout: cursorAPITimeout},
	}
}

func (t *CursorAgentTool) Name() string { return "cursor_agent" }

// Execute dispatches params["action"] to the matching Cursor Cloud Agents
// endpoint. This mirrors the dispatcher's DetectedCall{Action, Rest, Extra}
// shape from internal/dispatch.
func (t *CursorAgentTool) Execute(ctx context.Context, params map[string]any) *Result {
	action, _ := params["action"].(string)
	if t.APIKey == "" {
		return ErrorResult(fmt.Errorf("Cursor API key not configured"))
	}

	switch action {
	case "launch", "create":
		return t.launch(ctx, params)
	case "status", "get":
		return t.status(ctx, params)
	case "list":
		return t.list(ctx, params)
	case "conversation":
		return t.conversation(ctx, params)
	case "followup", "follow_up":
		return t.followup(ctx, params)
	case "stop":
		return t.simpleAction(ctx, params, "stop", fmt.Sprintf("/agents/%s/stop", asString(params["agent_id"])), http.MethodPost)
	case "delete":
		return t.simpleAction(ctx, params, "delete", fmt.Sprintf("/agents/%s", asString(params["agent_id"])), http.MethodDelete)
	case "models":
		return t.models(ctx)
	case "repos", "repositories":
		return t.repos(ctx)
	case "me", "info":
		return t.me(ctx)
	default:
		return ErrorResult(fmt.Errorf("unknown cursor_agent action %q", action))
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func (t *CursorAgentTool) request(ctx context.Context, method, path string, body any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, cursorAPIBase+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(t.APIKey, "")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		text := string(raw)
		if len(text) > 500 {
			text = text[:500]
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, text)
	}

	var out map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	return out, nil
}

func (t *CursorAgentTool) launch(ctx context.Context, params map[string]any) *Result {
	prompt := asString(params["prompt"])
	repository := asString(params["repository"])
	prURL := asString(params["pr_url"])
	if prompt == "" {
		return ErrorResult(fmt.Errorf("prompt is required"))
	}
	if repository == "" && prURL == "" {
		return ErrorResult(fmt.Errorf("either repository or pr_url is required"))
	}

	source := map[string]any{}
	if prURL != "" {
		source["prUrl"] = prURL
	} else {
		source["repository"] = repository
		if ref := asString(params["ref"]); ref != "" {
			source["ref"] = ref
		}
	}

	// Model policy: the dispatcher never extracts a model from free-form
	// model text, so this is always "default" unless a caller explicitly
	// sets user_confirmed_model.
	model := t.DefaultModel
	if confirmed, _ := params["user_confirmed_model"].(bool); confirmed {
		if m := asString(params["model"]); m != "" {
			model = m
		}
	}

	body := map[string]any{"prompt": map[string]any{"text": prompt}, "source": source, "model": model}

	out, err := t.request(ctx, http.MethodPost, "/agents", body)
	if err != nil {
		return ErrorResult(err)
	}
	summary := fmt.Sprintf("Agent '%v' launched (id=%v). Status: %v.", out["name"], out["id"], out["status"])
	return &Result{Text: summary, Summary: summary, Raw: out}
}

func (t *CursorAgentTool) status(ctx context.Context, params map[string]any) *Result {
	id := asString(params["agent_id"])
	if id == "" {
		return ErrorResult(fmt.Errorf("agent_id is required"))
	}
	out, err := t.request(ctx, http.MethodGet, "/agents/"+id, nil)
	if err != nil {
		return ErrorResult(err)
	}
	summary := fmt.Sprintf("Agent '%v': %v. Summary: %v", out["name"], out["status"], out["summary"])
	return &Result{Text: summary, Summary: summary, Raw: out}
}

func (t *CursorAgentTool) list(ctx context.Context, params map[string]any) *Result {
	out, err := t.request(ctx, http.MethodGet, "/agents?limit=20", nil)
	if err != nil {
		return ErrorResult(err)
	}
	agents, _ := out["agents"].([]any)
	summary := fmt.Sprintf("%d agent(s)", len(agents))
	return &Result{Text: summary, Summary: summary, Raw: out}
}

func (t *CursorAgentTool) conversation(ctx context.Context, params map[string]any) *Result {
	id := asString(params["agent_id"])
	if id == "" {
		return ErrorResult(fmt.Errorf("agent_id is required"))
	}
	out, err := t.request(ctx, http.MethodGet, fmt.Sprintf("/agents/%s/conversation", id), nil)
	if err != nil {
		return ErrorResult(err)
	}
	messages, _ := out["messages"].([]any)
	summary := fmt.Sprintf("%d message(s)", len(messages))
	return &Result{Text: summary, Summary: summary, Raw: out}
}

func (t *CursorAgentTool) followup(ctx context.Context, params map[string]any) *Result {
	id := asString(params["agent_id"])
	prompt := asString(params["prompt"])
	if id == "" {
		return ErrorResult(fmt.Errorf("agent_id is required"))
	}
	if prompt == "" {
		return ErrorResult(fmt.Errorf("prompt is required"))
	}
	out, err := t.request(ctx, http.MethodPost, fmt.Sprintf("/agents/%s/followup", id), map[string]any{"prompt": map[string]any{"text": prompt}})
	if err != nil {
		return ErrorResult(err)
	}
	summary := fmt.Sprintf("Follow-up sent to agent %s.", id)
	return &Result{Text: summary, Summary: summary, Raw: out}
}

func (t *CursorAgentTool) simpleAction(ctx context.Context, params map[string]any, verb, path, method string) *Result {
	id := asString(params["agent_id"])
	if id == "" {
		return ErrorResult(fmt.Errorf("agent_id is required"))
	}
	out, err := t.request(ctx, method, path, nil)
	if err != nil {
		return ErrorResult(err)
	}
	summary := fmt.Sprintf("Agent %s %sd.", id, verb)
	return &Result{Text: summary, Summary: summary, Raw: out}
}

func (t *CursorAgentTool) models(ctx context.Context) *Result {
	out, err := t.request(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return ErrorResult(err)
	}
	return &Result{Text: fmt.Sprintf("%v", out["models"]), Raw: out}
}

func (t *CursorAgentTool) repos(ctx context.Context) *Result {
	out, err := t.request(ctx, http.MethodGet, "/repositories", nil)
	if err != nil {
		return ErrorResult(err)
	}
	repos, _ := out["repositories"].([]any)
	summary := fmt.Sprintf("%d repo(s)", len(repos))
	return &Result{Text: summary, Summary: summary, Raw: out}
}

func (t *CursorAgentTool) me(ctx context.Context) *Result {
	out, err := t.request(ctx, http.MethodGet, "/me", nil)
	if err != nil {
		return ErrorResult(err)
	}
	summary := fmt.Sprintf("Key: %v, Email: %v", out["apiKeyName"], out["userEmail"])
	return &Result{Text: summary, Summary: summary, Raw: out}
}
