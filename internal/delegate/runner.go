package delegate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/childagent"
)

// DefaultTimeout matches the original delegate tool's default (spec §4.5).
const DefaultTimeout = 3600 * time.Second

// Runner spawns a child-agent subprocess using a persona's system prompt
// and returns its response (spec §4.5 "Delegate").
type Runner struct {
	Registry   *Registry
	BinaryPath string
	// HomeAssistantToken is injected into the subprocess env only for the
	// home_assistant persona.
	HomeAssistantToken string
	// MCPConfigByPersona maps persona id to an MCP config path override.
	MCPConfigByPersona map[string]string
	Timeout            time.Duration
}

// NewRunner creates a Runner.
func NewRunner(registry *Registry, binaryPath string) *Runner {
	return &Runner{Registry: registry, BinaryPath: binaryPath, Timeout: DefaultTimeout}
}

// Run executes task under personaID's persona and returns the sub-agent's
// response. success is false on an unknown persona, empty task, subprocess
// failure, or non-zero exit.
func (r *Runner) Run(ctx context.Context, personaID, task string) (response string, success bool, err error) {
	task = strings.TrimSpace(task)
	if personaID == "" || task == "" {
		return "", false, fmt.Errorf("persona_id and task are required")
	}

	persona, ok := r.Registry.Get(personaID)
	if !ok {
		return "", false, fmt.Errorf("unknown persona %q; available: %v", personaID, r.Registry.IDs())
	}

	prompt := fmt.Sprintf("System: %s\n\nTask: %s", persona.SystemPrompt, task)

	flags := []string{"--force"}
	if persona.Model != "" {
		flags = append(flags, "--model", persona.Model)
	}

	overrides := childagent.Overrides{Channel: "delegate"}
	if path, ok := r.MCPConfigByPersona[personaID]; ok {
		overrides.MCPConfigPath = path
	}
	if personaID == "home_assistant" {
		overrides.HomeAssistantToken = r.HomeAssistantToken
	}

	runner := &childagent.Runner{
		BinaryPath: r.BinaryPath,
		Env:        childagent.EnvWithOverrides(overrides),
		Timeout:    r.Timeout,
	}

	res, runErr := runner.Run(ctx, flags, prompt)
	response = strings.TrimSpace(res.Stdout)
	if runErr != nil {
		if response != "" {
			return response, false, runErr
		}
		return "", false, runErr
	}
	return response, true, nil
}
