// Package execkit runs external command-line tools (kubectl, helm, docker,
// kind, k3d) with bounded timeouts and captures their outcome as a value.
//
// The central contract: Run never returns a Go error. A missing binary, a
// timeout, a cancellation, or a non-zero exit are all ordinary outcomes that
// callers classify, so a broken tool can never abort a diagnostics run.
package execkit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/MAVRICK-1/kubestellar-mcp/pkg/logging"
)

// Command describes one external invocation.
type Command struct {
	Binary  string
	Args    []string
	Timeout time.Duration     // zero means no per-command timeout
	Env     map[string]string // appended to the inherited environment
	Dir     string
}

// String renders the command the way it would be typed in a shell.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Binary
	}
	return c.Binary + " " + strings.Join(c.Args, " ")
}

// Result is the complete outcome of one invocation.
type Result struct {
	ExitCode  int
	Stdout    string
	Stderr    string
	Elapsed   time.Duration
	NotFound  bool // binary not present in PATH
	TimedOut  bool // per-command timeout expired
	Cancelled bool // outer context cancelled before completion
	Err       error
}

// Ok reports whether the command ran to completion with exit code zero.
func (r Result) Ok() bool {
	return r.Err == nil && !r.NotFound && !r.TimedOut && !r.Cancelled && r.ExitCode == 0
}

// Runner executes external commands. The production implementation shells
// out; tests substitute a scripted fake.
type Runner interface {
	Run(ctx context.Context, cmd Command) Result
}

type execRunner struct{}

// NewRunner returns the os/exec backed Runner.
func NewRunner() Runner {
	return &execRunner{}
}

// pipeWaitDelay bounds how long Run waits for the stdout/stderr pipes after
// the process has exited or been killed. Tools like the demo installer and
// kind/k3d leave children behind that inherit the pipes; without this bound a
// timed-out command would block Run until the last descendant exits.
const pipeWaitDelay = time.Second

func (e *execRunner) Run(ctx context.Context, cmd Command) Result {
	start := time.Now()

	runCtx := ctx
	var cancel context.CancelFunc
	if cmd.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	logging.Debug("execkit", "Executing command: %s", cmd.String())

	c := exec.CommandContext(runCtx, cmd.Binary, cmd.Args...)
	c.WaitDelay = pipeWaitDelay
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		env := os.Environ()
		for k, v := range cmd.Env {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		c.Env = env
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	c.Stdout = &stdoutBuf
	c.Stderr = &stderrBuf

	runErr := c.Run()
	result := Result{
		Stdout:  stdoutBuf.String(),
		Stderr:  stderrBuf.String(),
		Elapsed: time.Since(start),
	}

	if runErr == nil {
		logging.Debug("execkit", "Command completed: %s (exit 0, %s)", cmd.Binary, result.Elapsed.Round(time.Millisecond))
		return result
	}

	switch {
	case errors.Is(runErr, exec.ErrWaitDelay):
		// The command itself exited zero; only a leftover child still held
		// the output pipes when the wait delay expired.
		logging.Debug("execkit", "Command completed: %s (exit 0, pipes abandoned, %s)", cmd.Binary, result.Elapsed.Round(time.Millisecond))
	case errors.Is(runErr, exec.ErrNotFound):
		result.NotFound = true
		result.ExitCode = -1
		result.Err = runErr
	case runCtx.Err() != nil && ctx.Err() == nil:
		// The per-command deadline fired; the caller's context is still live.
		result.TimedOut = true
		result.ExitCode = -1
		result.Err = runErr
	case ctx.Err() != nil:
		result.Cancelled = true
		result.ExitCode = -1
		result.Err = runErr
	default:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
			result.Err = runErr
		}
	}

	if result.Stderr != "" && result.ExitCode != 0 {
		logging.Warn("execkit", "Command %s failed: %s", cmd.Binary, strings.TrimSpace(result.Stderr))
	}
	return result
}
