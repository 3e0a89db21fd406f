package childagent

import (
	"os"
	"path/filepath"
)

// Overrides carries the environment values callers may need to inject into
// a child-agent subprocess beyond the inherited process environment.
type Overrides struct {
	// MCPConfigPath, if set, is expanded and exported as CURSOR_MCP_CONFIG_PATH
	// so the child agent can reach MCP integrations such as Home Assistant.
	MCPConfigPath string
	// Channel identifies which front-end is driving this invocation
	// (e.g. "cli", "telegram"), exported as CURSOR_ENHANCED_CHANNEL.
	Channel string
	// HomeAssistantToken, if set, is exported as HASS_TOKEN.
	HomeAssistantToken string
}

// EnvWithOverrides returns os.Environ() plus the given overrides applied,
// matching the original's "_env_for_cursor_agent" wrapper: callers never
// invoke the child agent with a bare inherited environment when any
// integration config is available.
func EnvWithOverrides(o Overrides) []string {
	env := os.Environ()
	if o.MCPConfigPath != "" {
		if expanded, err := expandHome(o.MCPConfigPath); err == nil {
			env = append(env, "CURSOR_MCP_CONFIG_PATH="+expanded)
		} else {
			env = append(env, "CURSOR_MCP_CONFIG_PATH="+o.MCPConfigPath)
		}
	}
	if o.Channel != "" {
		env = append(env, "CURSOR_ENHANCED_CHANNEL="+o.Channel)
	}
	if o.HomeAssistantToken != "" {
		env = append(env, "HASS_TOKEN="+o.HomeAssistantToken)
	}
	return env
}

func expandHome(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path, err
	}
	if len(path) == 1 {
		return home, nil
	}
	return filepath.Join(home, path[1:]), nil
}
