package smartdelegate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/childagent"
)

// DefaultTimeout matches the original smart-delegate tool's sub-agent
// timeout default.
const DefaultTimeout = 3600 * time.Second

// Runner discovers models, scores task complexity, selects a model, and
// runs the child-agent binary with a clean (task-only) prompt, satisfying
// dispatch.SmartDelegateRunner (spec §4.6 "Smart-Delegate").
type Runner struct {
	Discoverer    *Discoverer
	BinaryPath    string
	MCPConfigPath string
	Timeout       time.Duration

	// ForceTier/ForceModel/ExcludeModel/SystemPrompt let a caller (e.g. a
	// future CLI flag) override the automatic choice; all are optional.
	ForceTier    string
	ForceModel   string
	ExcludeModel string
	SystemPrompt string
}

// NewRunner creates a Runner.
func NewRunner(binaryPath string) *Runner {
	return &Runner{
		Discoverer: NewDiscoverer(binaryPath),
		BinaryPath: binaryPath,
		Timeout:    DefaultTimeout,
	}
}

// Result is the full outcome of one smart-delegation, mirroring the
// original tool's execute() return shape.
type Result struct {
	Success      bool
	Response     string
	Announcement string
	Choice       ModelChoice
	Complexity   ComplexityAssessment
	Err          error
}

// Run implements dispatch.SmartDelegateRunner: assess, select, announce,
// and delegate task with clean context. success is false on an empty
// task, subprocess timeout/failure, or non-zero exit.
func (r *Runner) Run(ctx context.Context, task string) (announcement, response string, success bool, err error) {
	res := r.RunFull(ctx, task)
	return res.Announcement, res.Response, res.Success, res.Err
}

// RunFull is the richer entry point exposing the complexity assessment
// and model choice alongside the response, for callers that want to log
// or display the reasoning (e.g. the chat front-end).
func (r *Runner) RunFull(ctx context.Context, task string) Result {
	task = strings.TrimSpace(task)
	if task == "" {
		return Result{Err: fmt.Errorf("task is required")}
	}

	models := r.Discoverer.Discover(ctx)
	if len(models) == 0 {
		models = []ModelInfo{{ID: "auto", Name: "Auto"}}
	}

	complexity := AssessComplexity(task)

	var choice ModelChoice
	if r.ForceModel != "" {
		tier, ok := tierOf(r.ForceModel)
		if !ok {
			tier = "mid"
		}
		choice = ModelChoice{
			ModelID:   r.ForceModel,
			ModelName: modelName(r.ForceModel, models),
			Tier:      tier,
			Reasons:   []string{fmt.Sprintf("Model forced: %s", r.ForceModel)},
		}
		for _, m := range models {
			choice.AvailableModels = append(choice.AvailableModels, m.ID)
		}
	} else {
		choice = SelectModel(complexity, models, r.ExcludeModel, r.ForceTier)
	}

	announcement := FormatAnnouncement(complexity, choice)

	var promptParts []string
	if r.SystemPrompt != "" {
		promptParts = append(promptParts, "System: "+r.SystemPrompt)
	}
	promptParts = append(promptParts, "Task:\n"+task)
	prompt := strings.Join(promptParts, "\n\n")

	flags := []string{"--force"}
	if choice.ModelID != "" && choice.ModelID != "auto" {
		flags = append(flags, "--model", choice.ModelID)
	}

	overrides := childagent.Overrides{Channel: "smart_delegate", MCPConfigPath: r.MCPConfigPath}
	runner := &childagent.Runner{
		BinaryPath: r.BinaryPath,
		Env:        childagent.EnvWithOverrides(overrides),
		Timeout:    r.Timeout,
	}

	out, runErr := runner.Run(ctx, flags, prompt)
	response := strings.TrimSpace(out.Stdout)

	if runErr != nil {
		return Result{
			Success: false, Response: response, Announcement: announcement,
			Choice: choice, Complexity: complexity, Err: runErr,
		}
	}

	return Result{
		Success: true, Response: response, Announcement: announcement,
		Choice: choice, Complexity: complexity,
	}
}
