package cmd

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"
)

// toolsCmd implements --list-tools: the wrapper's own Tool Registry, which
// the spec distinguishes from the child agent's native --list-skills.
func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-tools",
		Short: "List the tools the dispatcher can invoke from agent output",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := buildEnvironment()
			if err != nil {
				return err
			}
			names := []string{"web_fetch", "web_search", "memory_search", "weather", "delegate", "smart_delegate"}
			if env.Cfg.APIKey != "" {
				names = append(names, "cursor_agent")
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	}
}

// skillsCmd implements --list-skills by passing through to the configured
// child agent binary, which owns the skill registry (spec §6: this wrapper
// does not define skills itself, only tools and delegation personas).
func skillsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-skills",
		Short: "List skills known to the configured child agent binary",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := buildEnvironment()
			if err != nil {
				return err
			}
			out, err := exec.CommandContext(cmd.Context(), env.Cfg.ChildAgentBinaryPath, "--list-skills").CombinedOutput()
			fmt.Print(string(out))
			return err
		},
	}
}
