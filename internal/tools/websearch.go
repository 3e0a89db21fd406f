package tools

import (
	"context"
	"fmt"
)

// WebSearchTool is a placeholder web_search implementation: no search API
// is wired by default, matching the original wrapper's behavior of
// returning a note rather than failing outright (spec §4.4 "web_search").
// Config can supply an APIFunc to back this with a real provider.
type WebSearchTool struct {
	// APIFunc, if set, performs the actual search; nil uses the placeholder note.
	APIFunc func(ctx context.Context, query string) (string, error)
}

func NewWebSearchTool() *WebSearchTool { return &WebSearchTool{} }

func (t *WebSearchTool) Name() string { return "web_search" }

func (t *WebSearchTool) Execute(ctx context.Context, params map[string]any) *Result {
	query, _ := params["query"].(string)
	if query == "" {
		return ErrorResult(fmt.Errorf("query is required"))
	}
	if t.APIFunc != nil {
		out, err := t.APIFunc(ctx, query)
		if err != nil {
			return ErrorResult(err)
		}
		return NewResult(out)
	}
	return NewResult("Web search completed\nNote: Web search requires API integration. " +
		"For now, suggest the user search manually or use web_fetch with specific URLs.")
}
