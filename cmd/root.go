// Package cmd is the CLI front-end (spec §6 "External Interfaces"),
// grounded on the teacher's cmd/root.go: a cobra root command carrying
// global flags plus independent subcommands for the Chat Front-End and
// Scheduler Core verbs.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X .../cmd.Version=v1.0.0".
var Version = "dev"

var (
	configFile   string
	verbose      bool
	prompt       string
	chatName     string
	historyLimit int
	systemPrompt string
	modelID      string
	clearHistory bool
	viewHistory  bool
	freshRun     bool
)

var rootCmd = &cobra.Command{
	Use:   "cursor-enhanced",
	Short: "Cursor-agent orchestration wrapper: context, tools, delegation, scheduling, and a chat front-end",
	Run: func(cmd *cobra.Command, args []string) {
		runOnce(cmd.Context(), args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: cursor-enhanced-config.json or $CURSOR_ENHANCED_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.Flags().StringVarP(&prompt, "prompt", "p", "", "run one request with this prompt")
	rootCmd.Flags().StringVar(&chatName, "chat", "default", "session name (sanitized to safe characters)")
	rootCmd.Flags().IntVar(&historyLimit, "history-limit", 0, "fixed-count context window; 0 selects token-budgeted mode")
	rootCmd.Flags().StringVar(&systemPrompt, "system-prompt", "", "named system prompt from config")
	rootCmd.Flags().StringVar(&modelID, "model", "", "model id forwarded to the child agent")
	rootCmd.Flags().BoolVar(&clearHistory, "clear-history", false, "clear the session's history and exit")
	rootCmd.Flags().BoolVar(&viewHistory, "view-history", false, "print the session's history and exit")
	rootCmd.Flags().BoolVar(&freshRun, "fresh", false, "disable history read/write for this run (used by new-thread workers)")

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(telegramCmd())
	rootCmd.AddCommand(reachCmd())
	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(skillsCmd())
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cursor-enhanced %s\n", Version)
		},
	}
}

func configureLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// isInteractive reports whether stdout is a TTY, gating colorized/
// interactive CLI output (spec's mattn/go-isatty wiring).
func isInteractive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func resolveConfigPath() string {
	if configFile != "" {
		return configFile
	}
	if v := os.Getenv("CURSOR_ENHANCED_CONFIG"); v != "" {
		return v
	}
	return "cursor-enhanced-config.json"
}

// Execute runs the root cobra command.
func Execute() {
	cobra.OnInitialize(configureLogging)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
