package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/chat"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/childagent"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/config"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/contextassembler"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/delegate"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/dispatch"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/history"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/memoryflush"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/scheduler"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/smartdelegate"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/summarizer"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/tools"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/tracker"
)

// environment bundles every subsystem a CLI subcommand might need,
// wired from one loaded Config, following the teacher's pattern of
// constructing collaborators once in cmd/ and passing concrete types
// down rather than a service-locator container.
type environment struct {
	Home          string
	Cfg           config.Config
	Logger        *slog.Logger
	ChildAgent    *childagent.Runner
	History       *history.Store
	Assembler     *contextassembler.Assembler
	Dispatcher    *dispatch.Dispatcher
	Tracker       *tracker.Tracker
	Scheduler     *scheduler.Store
	Notifications *scheduler.NotificationStore
	Personas      *delegate.Registry
	Pairing       *chat.PairingStore
	NewThreads    *chat.NewThreadAgentStore
	Detached      *chat.DetachedReportStore
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// buildEnvironment loads config and wires every collaborator needed by the
// root run, the telegram command, and the scheduler commands.
func buildEnvironment() (*environment, error) {
	home := userHome()
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := slog.Default()

	childRunner := childagent.NewRunner(cfg.ChildAgentBinaryPath, childagent.EnvWithOverrides(childagent.Overrides{
		MCPConfigPath:      cfg.MCPConfigPath,
		Channel:            "cli",
		HomeAssistantToken: cfg.HomeAssistantToken,
	}))

	histStore := history.NewStore(home)
	sum := summarizer.New(childRunner, childagent.EnsureForceFlag(nil))
	flusher := memoryflush.New(childRunner, childagent.EnsureForceFlag(nil), filepath.Join(home, ".cursor-enhanced"))
	assembler := contextassembler.New(histStore, sum, flusher)

	personas := delegate.NewRegistry()
	personas.LoadCustom(cfg.Personas)
	delegateRunner := delegate.NewRunner(personas, cfg.ChildAgentBinaryPath)
	delegateRunner.HomeAssistantToken = cfg.HomeAssistantToken

	smartRunner := smartdelegate.NewRunner(cfg.ChildAgentBinaryPath)
	smartRunner.MCPConfigPath = cfg.MCPConfigPath

	registry := tools.NewRegistry()
	registry.Register(tools.NewWebFetchTool())
	registry.Register(tools.NewWebSearchTool())
	registry.Register(tools.NewMemoryTool(filepath.Join(home, ".cursor-enhanced")))
	registry.Register(tools.NewWeatherTool())
	if cfg.APIKey != "" {
		registry.Register(tools.NewCursorAgentTool(cfg.APIKey))
	}

	dispatcher := dispatch.New(registry, delegateRunner, smartRunner)

	trk := tracker.New(tracker.DefaultStatePath(home))
	schedStore := scheduler.NewStore(scheduler.DefaultStorePath(home))
	notifStore := scheduler.NewNotificationStore(scheduler.DefaultNotificationStorePath(home))

	return &environment{
		Home:          home,
		Cfg:           cfg,
		Logger:        logger,
		ChildAgent:    childRunner,
		History:       histStore,
		Assembler:     assembler,
		Dispatcher:    dispatcher,
		Tracker:       trk,
		Scheduler:     schedStore,
		Notifications: notifStore,
		Personas:      personas,
		Pairing:       chat.NewPairingStore(chat.DefaultPairingPath(home)),
		NewThreads:    chat.NewNewThreadAgentStore(chat.DefaultNewThreadPath(home)),
		Detached:      chat.NewDetachedReportStore(chat.DefaultDetachedReportsDir(home)),
	}, nil
}

// systemPromptFor resolves the --system-prompt flag against the config's
// named prompts, falling back to the literal flag value when it isn't a
// known name, and finally to a minimal default.
func systemPromptFor(cfg config.Config, name string) string {
	if name == "" {
		if p, ok := cfg.SystemPrompts["default"]; ok {
			return p
		}
		return "You are a helpful assistant with access to tools via explicit tool-call syntax in your response."
	}
	if p, ok := cfg.SystemPrompts[name]; ok {
		return p
	}
	return name
}
