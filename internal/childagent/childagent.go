// Package childagent wraps process invocation of the opaque child-agent CLI
// binary (e.g. cursor-agent) that performs the actual model call. Every
// caller in this module treats the child agent as an opaque subprocess:
// this package owns the argv/env/timeout contract and classifies the
// outcome into the spec's error-kind taxonomy (spec §7).
package childagent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/storeutil"
)

// DefaultTimeout is the subprocess deadline used for summarization and
// memory-flush child-agent invocations (spec §4.2/§4.3 "180s timeout").
const DefaultTimeout = 180 * time.Second

// Result is the outcome of one child-agent invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner invokes the child-agent binary as a subprocess, offloaded to a
// worker pool by callers that hold one (spec §9 "always offloaded").
type Runner struct {
	// BinaryPath is the resolved path to the child-agent executable
	// (e.g. "~/.local/bin/cursor-agent", expanded by the caller).
	BinaryPath string
	// Env is the environment passed to the subprocess, already carrying
	// any MCP config path / channel / integration token overrides the
	// caller has computed (see EnvWithOverrides).
	Env []string
	// Timeout bounds the subprocess; zero uses DefaultTimeout.
	Timeout time.Duration
}

// NewRunner creates a Runner for binaryPath with the given base environment.
func NewRunner(binaryPath string, env []string) *Runner {
	return &Runner{BinaryPath: binaryPath, Env: env, Timeout: DefaultTimeout}
}

// Run invokes the child agent with flags and a single prompt passed via
// "-p", mirroring the "bash <cursor-agent> <flags> -p <prompt>" wrapper
// the original implementation used.
func (r *Runner) Run(ctx context.Context, flags []string, prompt string) (Result, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append([]string{r.BinaryPath}, flags...)
	args = append(args, "-p", prompt)

	cmd := exec.CommandContext(ctx, "bash", args...)
	if len(r.Env) > 0 {
		cmd.Env = r.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if exitErr := new(exec.ExitError); errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return res, fmt.Errorf("%w: child agent timed out after %s", storeutil.ErrSubprocessFailure, timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return res, fmt.Errorf("%w: %s", storeutil.ErrSubprocessFailure, stderr.String())
		}
		return res, fmt.Errorf("%w: %w", storeutil.ErrSubprocessFailure, err)
	}

	return res, nil
}

// EnsureForceFlag appends --force to flags if neither --force nor -f is
// already present, matching the original's "summarization/flush always
// runs non-interactively" behavior.
func EnsureForceFlag(flags []string) []string {
	for _, f := range flags {
		if f == "--force" || f == "-f" {
			return flags
		}
	}
	out := make([]string, len(flags), len(flags)+1)
	copy(out, flags)
	return append(out, "--force")
}
