// Package tools implements the Tool Registry: the concrete tools the
// dispatcher invokes (web_fetch, web_search, memory_search, weather,
// cursor_agent) plus the registry type that looks them up by name
// (spec §4.4 "given ... a tool registry").
package tools

// Result is the unified return shape from tool execution, appended to the
// child agent's output by the dispatcher.
type Result struct {
	Text    string
	Err     error
	Summary string // preferred short form (e.g. cursor_agent "_summary")
	Raw     map[string]any
}

func NewResult(text string) *Result { return &Result{Text: text} }
func ErrorResult(err error) *Result { return &Result{Err: err, Text: err.Error()} }
func (r *Result) IsError() bool     { return r.Err != nil }
